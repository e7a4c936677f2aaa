package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// FormatVersion is written into every document.
const FormatVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Document is the wire form of a snapshot.
type Document struct {
	Version   int           `cbor:"version" yaml:"version"`
	ID        string        `cbor:"id" yaml:"id"`
	Heap      []HeapDoc     `cbor:"heap,omitempty" yaml:"heap,omitempty"`
	Values    []ValueDoc    `cbor:"values,omitempty" yaml:"values,omitempty"`
	Functions []FunctionDoc `cbor:"functions,omitempty" yaml:"functions,omitempty"`
	Classes   []ClassDoc    `cbor:"classes,omitempty" yaml:"classes,omitempty"`
	Frame     *FrameDoc     `cbor:"frame,omitempty" yaml:"frame,omitempty"`
}

// ValueDoc is a value slot. Scalars are stored inline; heap kinds refer to
// a HeapDoc by id.
type ValueDoc struct {
	Kind  string  `cbor:"kind" yaml:"kind"`
	Bool  bool    `cbor:"bool,omitempty" yaml:"bool,omitempty"`
	Int   int64   `cbor:"int,omitempty" yaml:"int,omitempty"`
	Float float64 `cbor:"float,omitempty" yaml:"float,omitempty"`
	Bits  uint64  `cbor:"bits,omitempty" yaml:"bits,omitempty"` // IEEE bits of -0 and NaN
	Ref   int     `cbor:"ref,omitempty" yaml:"ref,omitempty"`
}

// HeapDoc is one heap value. Which fields are used depends on Kind.
type HeapDoc struct {
	ID       int      `cbor:"id" yaml:"id"`
	Kind     string   `cbor:"kind" yaml:"kind"`
	Addr     uint64   `cbor:"addr,omitempty" yaml:"addr,omitempty"`
	Refcount uint32   `cbor:"refcount,omitempty" yaml:"refcount,omitempty"`
	Interned bool     `cbor:"interned,omitempty" yaml:"interned,omitempty"`
	Bytes    rawBytes `cbor:"bytes,omitempty" yaml:"bytes,omitempty"`

	// array
	Elements *MapDoc `cbor:"elements,omitempty" yaml:"elements,omitempty"`

	// object
	Class    string  `cbor:"class,omitempty" yaml:"class,omitempty"`
	Declared *MapDoc `cbor:"declared,omitempty" yaml:"declared,omitempty"`
	Statics  *MapDoc `cbor:"statics,omitempty" yaml:"statics,omitempty"`
	Dynamic  *MapDoc `cbor:"dynamic,omitempty" yaml:"dynamic,omitempty"`

	// resource
	Handle   int64  `cbor:"handle,omitempty" yaml:"handle,omitempty"`
	Data     uint64 `cbor:"data,omitempty" yaml:"data,omitempty"`
	TypeName string `cbor:"type,omitempty" yaml:"type,omitempty"`

	// reference and indirect
	Target *ValueDoc `cbor:"target,omitempty" yaml:"target,omitempty"`
}

// MapDoc is an ordered map with its slot layout, tombstones included.
type MapDoc struct {
	Slots []SlotDoc `cbor:"slots" yaml:"slots"`
}

// SlotDoc is one map slot. KeyRef names a string heap entry; zero means the
// slot has the integer key Index.
type SlotDoc struct {
	KeyRef  int      `cbor:"key,omitempty" yaml:"key,omitempty"`
	Index   int64    `cbor:"index,omitempty" yaml:"index,omitempty"`
	Deleted bool     `cbor:"deleted,omitempty" yaml:"deleted,omitempty"`
	Value   ValueDoc `cbor:"value" yaml:"value"`
}

type OperandDoc struct {
	Kind  string `cbor:"kind" yaml:"kind"`
	Value uint32 `cbor:"value,omitempty" yaml:"value,omitempty"`
}

type InstructionDoc struct {
	Opcode   string     `cbor:"opcode" yaml:"opcode"`
	Op1      OperandDoc `cbor:"op1" yaml:"op1"`
	Op2      OperandDoc `cbor:"op2" yaml:"op2"`
	Result   OperandDoc `cbor:"result" yaml:"result"`
	Extended uint32     `cbor:"extended,omitempty" yaml:"extended,omitempty"`
}

type ProgramDoc struct {
	Instructions []InstructionDoc `cbor:"instructions" yaml:"instructions"`
	Vars         []string         `cbor:"vars,omitempty" yaml:"vars,omitempty"`
	Constants    []ValueDoc       `cbor:"constants,omitempty" yaml:"constants,omitempty"`
	Temps        uint32           `cbor:"temps,omitempty" yaml:"temps,omitempty"`
	File         string           `cbor:"file,omitempty" yaml:"file,omitempty"`
	LineStart    uint32           `cbor:"line_start,omitempty" yaml:"line_start,omitempty"`
	LineEnd      uint32           `cbor:"line_end,omitempty" yaml:"line_end,omitempty"`
	Refcount     *uint32          `cbor:"refcount,omitempty" yaml:"refcount,omitempty"`
	Addr         uint64           `cbor:"addr,omitempty" yaml:"addr,omitempty"`
	Statics      *MapDoc          `cbor:"statics,omitempty" yaml:"statics,omitempty"`
}

type ArgDoc struct {
	Name      string `cbor:"name" yaml:"name"`
	TypeCode  uint32 `cbor:"type,omitempty" yaml:"type,omitempty"`
	ClassName string `cbor:"class,omitempty" yaml:"class,omitempty"`
	ByRef     bool   `cbor:"by_ref,omitempty" yaml:"by_ref,omitempty"`
	Variadic  bool   `cbor:"variadic,omitempty" yaml:"variadic,omitempty"`
}

type ModuleDoc struct {
	Number  int    `cbor:"number" yaml:"number"`
	Name    string `cbor:"name" yaml:"name"`
	Version string `cbor:"version,omitempty" yaml:"version,omitempty"`
}

type FunctionDoc struct {
	Name    string      `cbor:"name" yaml:"name"`
	Flags   uint32      `cbor:"flags,omitempty" yaml:"flags,omitempty"`
	Args    []ArgDoc    `cbor:"args,omitempty" yaml:"args,omitempty"`
	NumArgs uint32      `cbor:"num_args,omitempty" yaml:"num_args,omitempty"`
	Program *ProgramDoc `cbor:"program,omitempty" yaml:"program,omitempty"`
	Handler uint64      `cbor:"handler,omitempty" yaml:"handler,omitempty"`
	Module  *ModuleDoc  `cbor:"module,omitempty" yaml:"module,omitempty"`
}

type ClassDoc struct {
	Name              string        `cbor:"name" yaml:"name"`
	Parent            string        `cbor:"parent,omitempty" yaml:"parent,omitempty"`
	Flags             uint32        `cbor:"flags,omitempty" yaml:"flags,omitempty"`
	Addr              uint64        `cbor:"addr,omitempty" yaml:"addr,omitempty"`
	Constants         *MapDoc       `cbor:"constants,omitempty" yaml:"constants,omitempty"`
	DefaultProperties *MapDoc       `cbor:"default_properties,omitempty" yaml:"default_properties,omitempty"`
	StaticMembers     *MapDoc       `cbor:"static_members,omitempty" yaml:"static_members,omitempty"`
	Methods           []FunctionDoc `cbor:"methods,omitempty" yaml:"methods,omitempty"`
}

// FrameDoc names the executing function by qualified name ("f" or
// "Class::method").
type FrameDoc struct {
	Function string     `cbor:"function" yaml:"function"`
	Locals   []ValueDoc `cbor:"locals,omitempty" yaml:"locals,omitempty"`
	Args     []ValueDoc `cbor:"args,omitempty" yaml:"args,omitempty"`
	Symbols  *MapDoc    `cbor:"symbols,omitempty" yaml:"symbols,omitempty"`
	Trace    []int      `cbor:"trace,omitempty" yaml:"trace,omitempty"`
}

// rawBytes is written to YAML as a string so readable text stays readable;
// yaml.v3 falls back to !!binary for invalid UTF-8. CBOR sees a byte string.
type rawBytes []byte

func (b rawBytes) MarshalYAML() (any, error) {
	return string(b), nil
}

func (b *rawBytes) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	*b = rawBytes(s)
	return nil
}

// ---------------------------------------------------------------------------
// Codecs
// ---------------------------------------------------------------------------

// EncodeCBOR serializes a snapshot to canonical CBOR.
func EncodeCBOR(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(Marshal(s))
}

// DecodeCBOR deserializes a snapshot from CBOR.
func DecodeCBOR(data []byte) (*Snapshot, error) {
	var doc Document
	if err := cbor.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal cbor: %w", err)
	}
	return Unmarshal(&doc)
}

// EncodeYAML serializes a snapshot to YAML.
func EncodeYAML(s *Snapshot) ([]byte, error) {
	return yaml.Marshal(Marshal(s))
}

// DecodeYAML deserializes a snapshot from YAML.
func DecodeYAML(data []byte) (*Snapshot, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal yaml: %w", err)
	}
	return Unmarshal(&doc)
}
