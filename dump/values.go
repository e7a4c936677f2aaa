package dump

import (
	"math"

	"github.com/chazu/vmdump/value"
)

const recursionMarker = "*RECURSION*\n"

// normalize maps nil interfaces and typed nil pointers to Undefined.
func normalize(v value.Value) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Undefined{}
	case *value.String:
		if x == nil {
			return value.Undefined{}
		}
	case *value.Array:
		if x == nil {
			return value.Undefined{}
		}
	case *value.Object:
		if x == nil {
			return value.Undefined{}
		}
	case *value.Resource:
		if x == nil {
			return value.Undefined{}
		}
	case *value.Reference:
		if x == nil {
			return value.Undefined{}
		}
	case *value.Indirect:
		if x == nil {
			return value.Undefined{}
		}
	}
	return v
}

// zval dumps v starting at the given indent. References and indirections
// are announced on the same line as the value they lead to.
func (p *printer) zval(g *CycleGuard, v value.Value, level int) {
	p.indent(level)

	var hops map[value.Value]bool
	for {
		p.puts("zval ")
		v = normalize(v)
		var next value.Value
		switch x := v.(type) {
		case *value.Reference:
			if hops[x] {
				p.puts(recursionMarker)
				return
			}
			p.printf("-> reference(%d) addr(0x%x) ", x.Refcount, x.Addr)
			next = x.Val
		case *value.Indirect:
			if hops[x] {
				p.puts(recursionMarker)
				return
			}
			p.puts("-> ")
			next = x.Target()
		default:
			p.direct(g, v, level)
			return
		}
		if hops == nil {
			hops = make(map[value.Value]bool)
		}
		hops[v] = true
		v = next
	}
}

// direct dumps a value that is neither a reference nor an indirection.
func (p *printer) direct(g *CycleGuard, v value.Value, level int) {
	switch x := v.(type) {
	case value.Undefined:
		p.puts(": undefined\n")
	case value.Null:
		p.puts(": null\n")
	case value.Bool:
		if x {
			p.puts(": true\n")
		} else {
			p.puts(": false\n")
		}
	case value.Int:
		p.printf(": long(%d)\n", int64(x))
	case value.Float:
		f := float64(x)
		p.printf(": double(%s) hex(%x)\n", formatDouble(f, p.opts.Precision), math.Float64bits(f))
	case *value.String:
		p.puts("-> string(")
		p.printf("%d,\"", x.Len())
		p.write(value.Escape(x.Bytes).Bytes)
		p.printf("\") addr(0x%x)", x.Addr)
		p.meta(x.Meta)
		p.puts("\n")
	case *value.Array:
		p.array(g, x, level)
	case *value.Object:
		p.object(g, x, level)
	case *value.Resource:
		typeName := x.TypeName
		if typeName == "" {
			typeName = "unknown"
		}
		p.printf("-> resource addr(0x%x) data(0x%x) type(%s) refcount(%d)\n", x.Addr, x.Data, typeName, x.Refcount)
	default:
		p.printf(": unknown type(%d)\n", uint8(v.Kind()))
	}
}

func (p *printer) meta(m value.Meta) {
	if m.Interned {
		p.puts(" interned")
		return
	}
	p.printf(" refcount(%d)", m.Refcount)
}

func (p *printer) array(g *CycleGuard, a *value.Array, level int) {
	if !g.EnterArray(a) {
		p.puts(recursionMarker)
		return
	}
	defer g.ExitArray(a)

	m := a.Elements
	p.printf("-> array(%d) addr(0x%x) refcount(%d) bucket(%d,%d)\n", m.Len(), a.Addr, a.Refcount, m.Capacity(), m.Used())
	if m.Len() == 0 {
		return
	}
	p.indent(level)
	p.puts("{\n")
	p.entries(g, m, level+p.opts.IndentSize)
	p.indent(level)
	p.puts("}\n")
}

func (p *printer) object(g *CycleGuard, o *value.Object, level int) {
	if !g.EnterObject(o) {
		p.puts(recursionMarker)
		return
	}
	defer g.ExitObject(o)

	p.printf("-> object(%s) addr(0x%x) refcount(%d)", o.ClassName, o.Addr, o.Refcount)
	if o.Declared.Len()+o.Statics.Len()+o.Dynamic.Len() > 0 {
		p.puts(" {\n")
		inner := level + p.opts.IndentSize
		p.block(g, "default_properties", o.Declared, inner)
		p.block(g, "static_members", o.Statics, inner)
		p.block(g, "properties", o.Dynamic, inner)
		p.indent(level)
		p.puts("}")
	}
	p.puts("\n")
}

// block writes a named, counted table. Empty tables are skipped.
func (p *printer) block(g *CycleGuard, name string, m *value.OrderedMap, level int) {
	if m.Len() == 0 {
		return
	}
	p.indent(level)
	p.printf("%s(%d) {\n", name, m.Len())
	p.entries(g, m, level+p.opts.IndentSize)
	p.indent(level)
	p.puts("}\n")
}

// entries writes every occupied slot of m in slot order.
func (p *printer) entries(g *CycleGuard, m *value.OrderedMap, level int) {
	for k, v := range m.Entries() {
		p.key(k, level)
		p.zval(g, v, level)
	}
}

func (p *printer) key(k value.Key, level int) {
	p.indent(level)
	if !k.IsString() {
		p.printf("[%d] =>\n", k.Index)
		return
	}
	p.puts("[\"")
	p.write(value.Escape(k.Name.Bytes).Bytes)
	p.printf("\"] len(%d) addr(0x%x)", k.Name.Len(), k.Name.Addr)
	p.meta(k.Name.Meta)
	p.puts(" =>\n")
}
