// Package snapshot persists VM state for offline dumping.
//
// A snapshot holds free-standing values, the function and class tables, and
// optionally the frame that was executing when it was taken together with
// the program counters it visited. Snapshots are encoded as canonical CBOR
// or as YAML. Heap values live in a table keyed by id, so sharing and cycles
// survive a round trip.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/chazu/vmdump/bytecode"
	"github.com/chazu/vmdump/value"
)

// ErrUnknownKind is returned when a document names a value, operand or
// opcode the decoder does not know.
var ErrUnknownKind = errors.New("snapshot: unknown kind")

// Snapshot is a decoded snapshot.
type Snapshot struct {
	ID      uuid.UUID
	Values  []value.Value
	Symbols *bytecode.SymbolTable
	Frame   *Frame // nil when no frame was captured
}

// New creates an empty snapshot with a fresh id.
func New() *Snapshot {
	return &Snapshot{ID: uuid.New(), Symbols: bytecode.NewSymbolTable()}
}

// LookupFunction resolves a function by case-insensitive name.
func (s *Snapshot) LookupFunction(name string) (*bytecode.Function, bool) {
	return s.Symbols.LookupFunction(name)
}

// LookupClass resolves a class by case-insensitive name.
func (s *Snapshot) LookupClass(name string) (*bytecode.Class, bool) {
	return s.Symbols.LookupClass(name)
}

// Resolve finds a function by qualified name: "name" for a free function,
// "Class::method" for a method.
func (s *Snapshot) Resolve(qualified string) (*bytecode.Function, bool) {
	class, method, ok := strings.Cut(qualified, "::")
	if !ok {
		return s.LookupFunction(qualified)
	}
	c, found := s.LookupClass(class)
	if !found {
		return nil, false
	}
	return c.Method(method)
}

// ---------------------------------------------------------------------------
// Frame
// ---------------------------------------------------------------------------

// Frame is a captured call frame. A nil *Frame reads as an empty frame.
type Frame struct {
	Fn      *bytecode.Function
	Vars    []value.Value
	Args    []value.Value
	Symbols *value.OrderedMap
	Trace   []int // instruction indices in execution order
}

func (f *Frame) Function() *bytecode.Function {
	if f == nil {
		return nil
	}
	return f.Fn
}

func (f *Frame) Locals() []value.Value {
	if f == nil {
		return nil
	}
	return f.Vars
}

func (f *Frame) Arguments() []value.Value {
	if f == nil {
		return nil
	}
	return f.Args
}

func (f *Frame) SymbolTable() *value.OrderedMap {
	if f == nil {
		return nil
	}
	return f.Symbols
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Decode decodes data as CBOR when it starts with a CBOR map header and as
// YAML otherwise.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) > 0 && data[0] >= 0xa0 && data[0] <= 0xbf {
		return DecodeCBOR(data)
	}
	return DecodeYAML(data)
}

// ReadFile loads a snapshot. Files ending in .yaml or .yml are read as YAML,
// anything else is sniffed.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var s *Snapshot
	if isYAML(path) {
		s, err = DecodeYAML(data)
	} else {
		s, err = Decode(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// WriteFile stores a snapshot, as YAML for .yaml and .yml paths and as CBOR
// otherwise.
func WriteFile(path string, s *Snapshot) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = EncodeYAML(s)
	} else {
		data, err = EncodeCBOR(s)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
