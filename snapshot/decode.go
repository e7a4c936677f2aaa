package snapshot

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/chazu/vmdump/bytecode"
	"github.com/chazu/vmdump/value"
)

// invalidOperand is what an operand named "invalid" decodes to. It renders
// as a blank field.
const invalidOperand = bytecode.OperandKind(0xff)

var kindsByName = func() map[string]value.Kind {
	m := make(map[string]value.Kind)
	for k := value.KindUndefined; k <= value.KindIndirect; k++ {
		m[k.String()] = k
	}
	return m
}()

// decoder rebuilds the heap in two passes: allocate every entry, then fill
// contents, so references to entries not yet seen resolve.
type decoder struct {
	heap map[int]value.Value
}

// Unmarshal converts a wire document to a snapshot.
func Unmarshal(doc *Document) (*Snapshot, error) {
	if doc.Version > FormatVersion {
		return nil, fmt.Errorf("snapshot: unsupported version %d", doc.Version)
	}
	s := &Snapshot{Symbols: bytecode.NewSymbolTable()}
	if doc.ID == "" {
		s.ID = uuid.New()
	} else {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot: bad id %q: %w", doc.ID, err)
		}
		s.ID = id
	}

	d := &decoder{heap: make(map[int]value.Value, len(doc.Heap))}
	if err := d.allocate(doc.Heap); err != nil {
		return nil, err
	}
	for i := range doc.Heap {
		if err := d.fill(&doc.Heap[i]); err != nil {
			return nil, err
		}
	}

	var err error
	if s.Values, err = d.values(doc.Values); err != nil {
		return nil, err
	}
	for i := range doc.Functions {
		f, err := d.function(&doc.Functions[i])
		if err != nil {
			return nil, err
		}
		s.Symbols.DefineFunction(f)
	}
	for i := range doc.Classes {
		c, err := d.class(&doc.Classes[i])
		if err != nil {
			return nil, err
		}
		s.Symbols.DefineClass(c)
	}
	if doc.Frame != nil {
		if s.Frame, err = d.frame(s, doc.Frame); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func metaOf(h *HeapDoc) value.Meta {
	return value.Meta{Addr: h.Addr, Refcount: h.Refcount, Interned: h.Interned}
}

func (d *decoder) allocate(heap []HeapDoc) error {
	for i := range heap {
		h := &heap[i]
		if h.ID <= 0 {
			return fmt.Errorf("snapshot: heap entry %d has invalid id %d", i, h.ID)
		}
		if _, dup := d.heap[h.ID]; dup {
			return fmt.Errorf("snapshot: duplicate heap id %d", h.ID)
		}
		var v value.Value
		switch kindsByName[h.Kind] {
		case value.KindString:
			v = &value.String{Bytes: []byte(h.Bytes), Meta: metaOf(h)}
		case value.KindArray:
			v = &value.Array{Elements: value.NewOrderedMap(), Meta: metaOf(h)}
		case value.KindObject:
			v = &value.Object{ClassName: h.Class, Meta: metaOf(h)}
		case value.KindResource:
			v = &value.Resource{Handle: h.Handle, Data: h.Data, TypeName: h.TypeName, Meta: metaOf(h)}
		case value.KindReference:
			v = &value.Reference{Val: value.Undefined{}, Meta: metaOf(h)}
		case value.KindIndirect:
			v = value.NewIndirect(new(value.Value))
		default:
			return fmt.Errorf("%w: heap entry %d has kind %q", ErrUnknownKind, h.ID, h.Kind)
		}
		d.heap[h.ID] = v
	}
	return nil
}

func (d *decoder) fill(h *HeapDoc) error {
	var err error
	switch x := d.heap[h.ID].(type) {
	case *value.Array:
		if h.Elements != nil {
			x.Elements, err = d.omap(h.Elements)
		}
	case *value.Object:
		if x.Declared, err = d.omapOrEmpty(h.Declared); err != nil {
			return err
		}
		if x.Statics, err = d.omapOrEmpty(h.Statics); err != nil {
			return err
		}
		x.Dynamic, err = d.omapOrEmpty(h.Dynamic)
	case *value.Reference:
		if h.Target != nil {
			x.Val, err = d.value(*h.Target)
		}
	case *value.Indirect:
		if h.Target != nil {
			*x.Slot, err = d.value(*h.Target)
		}
	}
	return err
}

func (d *decoder) value(vd ValueDoc) (value.Value, error) {
	if vd.Kind == "" {
		return value.Undefined{}, nil
	}
	kind, ok := kindsByName[vd.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: value kind %q", ErrUnknownKind, vd.Kind)
	}
	switch kind {
	case value.KindUndefined:
		return value.Undefined{}, nil
	case value.KindNull:
		return value.Null{}, nil
	case value.KindBool:
		return value.Bool(vd.Bool), nil
	case value.KindInt:
		return value.Int(vd.Int), nil
	case value.KindFloat:
		if vd.Bits != 0 {
			return value.Float(math.Float64frombits(vd.Bits)), nil
		}
		return value.Float(vd.Float), nil
	}
	v, ok := d.heap[vd.Ref]
	if !ok {
		return nil, fmt.Errorf("snapshot: dangling %s ref %d", vd.Kind, vd.Ref)
	}
	if v.Kind() != kind {
		return nil, fmt.Errorf("snapshot: ref %d is %s, not %s", vd.Ref, v.Kind(), kind)
	}
	return v, nil
}

func (d *decoder) values(docs []ValueDoc) ([]value.Value, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]value.Value, len(docs))
	for i, vd := range docs {
		v, err := d.value(vd)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) omap(md *MapDoc) (*value.OrderedMap, error) {
	if md == nil {
		return nil, nil
	}
	m := value.NewOrderedMap()
	for _, sd := range md.Slots {
		k := value.IntKey(sd.Index)
		if sd.KeyRef != 0 {
			s, ok := d.heap[sd.KeyRef].(*value.String)
			if !ok {
				return nil, fmt.Errorf("snapshot: key ref %d is not a string", sd.KeyRef)
			}
			k = value.Key{Name: s}
		}
		if sd.Deleted {
			m.AppendTombstone(k)
			continue
		}
		v, err := d.value(sd.Value)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}

func (d *decoder) omapOrEmpty(md *MapDoc) (*value.OrderedMap, error) {
	if md == nil {
		return value.NewOrderedMap(), nil
	}
	return d.omap(md)
}

// ---------------------------------------------------------------------------
// Bytecode
// ---------------------------------------------------------------------------

func parseOpcode(name string) (bytecode.Opcode, error) {
	if op, ok := bytecode.Lookup(name); ok {
		return op, nil
	}
	if hex, ok := strings.CutPrefix(name, "UNKNOWN_"); ok {
		if n, err := strconv.ParseUint(hex, 16, 8); err == nil && !bytecode.Opcode(n).Known() {
			return bytecode.Opcode(n), nil
		}
	}
	return 0, fmt.Errorf("%w: opcode %q", ErrUnknownKind, name)
}

func parseOperand(od OperandDoc) (bytecode.Operand, error) {
	if od.Kind == "" {
		return bytecode.Operand{Kind: bytecode.Unused, Value: od.Value}, nil
	}
	if od.Kind == "invalid" {
		return bytecode.Operand{Kind: invalidOperand, Value: od.Value}, nil
	}
	k, ok := bytecode.ParseOperandKind(od.Kind)
	if !ok {
		return bytecode.Operand{}, fmt.Errorf("%w: operand %q", ErrUnknownKind, od.Kind)
	}
	return bytecode.Operand{Kind: k, Value: od.Value}, nil
}

func (d *decoder) program(pd *ProgramDoc) (*bytecode.Program, error) {
	if pd == nil {
		return nil, nil
	}
	p := &bytecode.Program{
		Vars:      pd.Vars,
		Temps:     pd.Temps,
		File:      pd.File,
		LineStart: pd.LineStart,
		LineEnd:   pd.LineEnd,
		Refcount:  pd.Refcount,
		Addr:      pd.Addr,
	}
	var err error
	if p.Constants, err = d.values(pd.Constants); err != nil {
		return nil, err
	}
	if p.Statics, err = d.omap(pd.Statics); err != nil {
		return nil, err
	}

	p.Instructions = make([]bytecode.Instruction, len(pd.Instructions))
	for i, id := range pd.Instructions {
		ins := &p.Instructions[i]
		if ins.Opcode, err = parseOpcode(id.Opcode); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		if ins.Op1, err = parseOperand(id.Op1); err != nil {
			return nil, fmt.Errorf("instruction %d op1: %w", i, err)
		}
		if ins.Op2, err = parseOperand(id.Op2); err != nil {
			return nil, fmt.Errorf("instruction %d op2: %w", i, err)
		}
		if ins.Result, err = parseOperand(id.Result); err != nil {
			return nil, fmt.Errorf("instruction %d result: %w", i, err)
		}
		ins.Extended = id.Extended
	}
	return p, nil
}

func (d *decoder) function(fd *FunctionDoc) (*bytecode.Function, error) {
	f := &bytecode.Function{
		Name:    fd.Name,
		Flags:   fd.Flags,
		NumArgs: fd.NumArgs,
		Handler: fd.Handler,
	}
	for _, a := range fd.Args {
		f.Args = append(f.Args, bytecode.ArgInfo{
			Name:      a.Name,
			TypeCode:  a.TypeCode,
			ClassName: a.ClassName,
			ByRef:     a.ByRef,
			Variadic:  a.Variadic,
		})
	}
	if m := fd.Module; m != nil {
		f.Module = &bytecode.Module{Number: m.Number, Name: m.Name, Version: m.Version}
	}
	var err error
	if f.Program, err = d.program(fd.Program); err != nil {
		return nil, fmt.Errorf("function %s: %w", fd.Name, err)
	}
	return f, nil
}

func (d *decoder) class(cd *ClassDoc) (*bytecode.Class, error) {
	c := &bytecode.Class{
		Name:   cd.Name,
		Parent: cd.Parent,
		Flags:  cd.Flags,
		Addr:   cd.Addr,
	}
	var err error
	if c.Constants, err = d.omapOrEmpty(cd.Constants); err != nil {
		return nil, err
	}
	if c.DefaultProperties, err = d.omapOrEmpty(cd.DefaultProperties); err != nil {
		return nil, err
	}
	if c.StaticMembers, err = d.omapOrEmpty(cd.StaticMembers); err != nil {
		return nil, err
	}
	for i := range cd.Methods {
		m, err := d.function(&cd.Methods[i])
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", cd.Name, err)
		}
		c.AddMethod(m)
	}
	return c, nil
}

func (d *decoder) frame(s *Snapshot, fd *FrameDoc) (*Frame, error) {
	f := &Frame{Trace: fd.Trace}
	if fd.Function != "" {
		fn, ok := s.Resolve(fd.Function)
		if !ok {
			return nil, fmt.Errorf("snapshot: frame function %q is not defined", fd.Function)
		}
		f.Fn = fn
	}
	var err error
	if f.Vars, err = d.values(fd.Locals); err != nil {
		return nil, err
	}
	if f.Args, err = d.values(fd.Args); err != nil {
		return nil, err
	}
	if f.Symbols, err = d.omap(fd.Symbols); err != nil {
		return nil, err
	}
	return f, nil
}
