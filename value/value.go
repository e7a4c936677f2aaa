// Package value is the tagged-variant value model shared by the dumper and
// the disassembler. Values are read-only snapshots owned by the host; nothing
// in this module mutates them while rendering.
package value

import "sync/atomic"

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
	KindResource
	KindReference
	KindIndirect
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBool:      "bool",
	KindInt:       "long",
	KindFloat:     "double",
	KindString:    "string",
	KindArray:     "array",
	KindObject:    "object",
	KindResource:  "resource",
	KindReference: "reference",
	KindIndirect:  "indirect",
}

// String returns the VM-facing name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is implemented by every variant of the model. The set is closed.
type Value interface {
	Kind() Kind
	isValue()
}

// ---------------------------------------------------------------------------
// Identity and diagnostic metadata
// ---------------------------------------------------------------------------

// Meta carries diagnostic-only metadata for heap values. It is displayed but
// never consulted for control flow.
type Meta struct {
	Addr     uint64 // display identity, printed as 0x<addr>
	Refcount uint32
	Interned bool
}

// addrBase keeps allocated display addresses away from zero so tokens look
// like the heap addresses a host would report.
const addrBase = 0x7f0000000000

const addrStep = 0x40

var nextAddr atomic.Uint64

// NextAddr hands out a fresh display address.
func NextAddr() uint64 {
	return addrBase + nextAddr.Add(1)*addrStep
}

func newMeta() Meta {
	return Meta{Addr: NextAddr(), Refcount: 1}
}

// ---------------------------------------------------------------------------
// Scalars
// ---------------------------------------------------------------------------

// Undefined is the value of a slot that was never assigned.
type Undefined struct{}

// Null is the null value.
type Null struct{}

// Bool is a boolean.
type Bool bool

// Int is a 64-bit signed integer.
type Int int64

// Float is a 64-bit IEEE 754 double.
type Float float64

func (Undefined) Kind() Kind { return KindUndefined }
func (Null) Kind() Kind      { return KindNull }
func (Bool) Kind() Kind      { return KindBool }
func (Int) Kind() Kind       { return KindInt }
func (Float) Kind() Kind     { return KindFloat }

func (Undefined) isValue() {}
func (Null) isValue()      {}
func (Bool) isValue()      {}
func (Int) isValue()       {}
func (Float) isValue()     {}

// ---------------------------------------------------------------------------
// Heap values
// ---------------------------------------------------------------------------

// String is a byte string. Bytes may contain NUL and control characters.
type String struct {
	Bytes []byte
	Meta
}

// NewString allocates a refcounted string.
func NewString(s string) *String {
	return &String{Bytes: []byte(s), Meta: newMeta()}
}

// NewInternedString allocates a string flagged as interned.
func NewInternedString(s string) *String {
	str := NewString(s)
	str.Interned = true
	str.Refcount = 0
	return str
}

// Len returns the length in bytes.
func (s *String) Len() int { return len(s.Bytes) }

// Array is an ordered hash map value.
type Array struct {
	Elements *OrderedMap
	Meta
}

// NewArray allocates an empty array.
func NewArray() *Array {
	return &Array{Elements: NewOrderedMap(), Meta: newMeta()}
}

// Object is an instance of a class. Declared properties come from the class
// definition, statics are the class's static members and Dynamic holds
// properties added at runtime.
type Object struct {
	ClassName string
	Declared  *OrderedMap
	Statics   *OrderedMap
	Dynamic   *OrderedMap
	Meta
}

// NewObject allocates an object of the named class with empty property tables.
func NewObject(className string) *Object {
	return &Object{
		ClassName: className,
		Declared:  NewOrderedMap(),
		Statics:   NewOrderedMap(),
		Dynamic:   NewOrderedMap(),
		Meta:      newMeta(),
	}
}

// Resource is an opaque host handle. An empty TypeName means the resource
// type is not registered.
type Resource struct {
	Handle   int64
	Data     uint64
	TypeName string
	Meta
}

// NewResource allocates a resource.
func NewResource(handle int64, typeName string) *Resource {
	return &Resource{Handle: handle, TypeName: typeName, Meta: newMeta()}
}

// Reference owns exactly one value.
type Reference struct {
	Val Value
	Meta
}

// NewReference wraps v in a reference.
func NewReference(v Value) *Reference {
	return &Reference{Val: v, Meta: newMeta()}
}

// Indirect stands for another storage slot and is resolved transparently.
type Indirect struct {
	Slot *Value
}

// NewIndirect points at slot.
func NewIndirect(slot *Value) *Indirect {
	return &Indirect{Slot: slot}
}

// Target returns the value held by the referenced slot, or Undefined when
// the slot is missing.
func (i *Indirect) Target() Value {
	if i == nil || i.Slot == nil || *i.Slot == nil {
		return Undefined{}
	}
	return *i.Slot
}

func (*String) Kind() Kind    { return KindString }
func (*Array) Kind() Kind     { return KindArray }
func (*Object) Kind() Kind    { return KindObject }
func (*Resource) Kind() Kind  { return KindResource }
func (*Reference) Kind() Kind { return KindReference }
func (*Indirect) Kind() Kind  { return KindIndirect }

func (*String) isValue()    {}
func (*Array) isValue()     {}
func (*Object) isValue()    {}
func (*Resource) isValue()  {}
func (*Reference) isValue() {}
func (*Indirect) isValue()  {}
