package dump

import (
	"fmt"
	"math"
	"strconv"

	"github.com/chazu/vmdump/value"
)

// formatDouble renders f like C's %.*G. A negative precision selects the
// shortest representation that round-trips; zero selects DefaultPrecision.
func formatDouble(f float64, precision int) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	if precision == 0 {
		precision = DefaultPrecision
	}
	if precision < 0 {
		precision = -1
	}
	return strconv.FormatFloat(f, 'G', precision, 64)
}

// renderValue is the single-field rendering of an operand value.
func renderValue(v value.Value, precision int) string {
	return renderHop(v, precision, nil)
}

func renderHop(v value.Value, precision int, seen map[*value.Indirect]bool) string {
	switch x := v.(type) {
	case nil, value.Undefined:
		return "undefined"
	case value.Null:
		return "null"
	case value.Bool:
		if x {
			return "true"
		}
		return "false"
	case value.Int:
		return strconv.FormatInt(int64(x), 10)
	case value.Float:
		return formatDouble(float64(x), precision)
	case *value.String:
		return `"` + value.Escape(x.Bytes).String() + `"`
	case *value.Array:
		return fmt.Sprintf("array:0x%x", x.Addr)
	case *value.Object:
		return fmt.Sprintf("object:0x%x", x.Addr)
	case *value.Resource:
		return fmt.Sprintf("resource:0x%x", x.Addr)
	case *value.Reference:
		return fmt.Sprintf("reference:0x%x", x.Addr)
	case *value.Indirect:
		if seen == nil {
			seen = map[*value.Indirect]bool{}
		}
		if seen[x] {
			return ""
		}
		seen[x] = true
		return renderHop(x.Target(), precision, seen)
	}
	return ""
}
