package snapshot

import (
	"math"

	"github.com/chazu/vmdump/bytecode"
	"github.com/chazu/vmdump/value"
)

// encoder assigns heap ids by pointer identity. Ids start at 1.
type encoder struct {
	ids  map[any]int
	heap []HeapDoc
}

// Marshal converts a snapshot to its wire document.
func Marshal(s *Snapshot) *Document {
	e := &encoder{ids: make(map[any]int)}
	doc := &Document{Version: FormatVersion, ID: s.ID.String()}

	for _, v := range s.Values {
		doc.Values = append(doc.Values, e.value(v))
	}
	if s.Symbols != nil {
		for _, f := range s.Symbols.Functions() {
			doc.Functions = append(doc.Functions, e.function(f))
		}
		for _, c := range s.Symbols.Classes() {
			doc.Classes = append(doc.Classes, e.class(c))
		}
	}
	if f := s.Frame; f != nil {
		fd := &FrameDoc{
			Locals:  e.values(f.Vars),
			Args:    e.values(f.Args),
			Symbols: e.omap(f.Symbols),
			Trace:   f.Trace,
		}
		if f.Fn != nil {
			fd.Function = f.Fn.QualifiedName()
		}
		doc.Frame = fd
	}
	doc.Heap = e.heap
	return doc
}

// alloc reserves an id for key and fills the entry with build. The id is
// visible before build runs, so cycles through key resolve to it.
func (e *encoder) alloc(key any, build func() HeapDoc) int {
	if id, ok := e.ids[key]; ok {
		return id
	}
	id := len(e.heap) + 1
	e.ids[key] = id
	e.heap = append(e.heap, HeapDoc{})
	h := build()
	h.ID = id
	e.heap[id-1] = h
	return id
}

func meta(kind value.Kind, m value.Meta) HeapDoc {
	return HeapDoc{Kind: kind.String(), Addr: m.Addr, Refcount: m.Refcount, Interned: m.Interned}
}

func (e *encoder) str(s *value.String) int {
	return e.alloc(s, func() HeapDoc {
		h := meta(value.KindString, s.Meta)
		h.Bytes = rawBytes(s.Bytes)
		return h
	})
}

func (e *encoder) values(vals []value.Value) []ValueDoc {
	if len(vals) == 0 {
		return nil
	}
	out := make([]ValueDoc, len(vals))
	for i, v := range vals {
		out[i] = e.value(v)
	}
	return out
}

func (e *encoder) value(v value.Value) ValueDoc {
	switch x := v.(type) {
	case value.Null:
		return ValueDoc{Kind: value.KindNull.String()}
	case value.Bool:
		return ValueDoc{Kind: value.KindBool.String(), Bool: bool(x)}
	case value.Int:
		return ValueDoc{Kind: value.KindInt.String(), Int: int64(x)}
	case value.Float:
		return floatDoc(float64(x))
	case *value.String:
		if x != nil {
			return ValueDoc{Kind: x.Kind().String(), Ref: e.str(x)}
		}
	case *value.Array:
		if x != nil {
			return ValueDoc{Kind: x.Kind().String(), Ref: e.alloc(x, func() HeapDoc {
				h := meta(value.KindArray, x.Meta)
				h.Elements = e.omap(x.Elements)
				return h
			})}
		}
	case *value.Object:
		if x != nil {
			return ValueDoc{Kind: x.Kind().String(), Ref: e.alloc(x, func() HeapDoc {
				h := meta(value.KindObject, x.Meta)
				h.Class = x.ClassName
				h.Declared = e.omap(x.Declared)
				h.Statics = e.omap(x.Statics)
				h.Dynamic = e.omap(x.Dynamic)
				return h
			})}
		}
	case *value.Resource:
		if x != nil {
			return ValueDoc{Kind: x.Kind().String(), Ref: e.alloc(x, func() HeapDoc {
				h := meta(value.KindResource, x.Meta)
				h.Handle = x.Handle
				h.Data = x.Data
				h.TypeName = x.TypeName
				return h
			})}
		}
	case *value.Reference:
		if x != nil {
			return ValueDoc{Kind: x.Kind().String(), Ref: e.alloc(x, func() HeapDoc {
				h := meta(value.KindReference, x.Meta)
				t := e.value(x.Val)
				h.Target = &t
				return h
			})}
		}
	case *value.Indirect:
		if x != nil {
			return ValueDoc{Kind: x.Kind().String(), Ref: e.alloc(x, func() HeapDoc {
				t := e.value(x.Target())
				return HeapDoc{Kind: value.KindIndirect.String(), Target: &t}
			})}
		}
	}
	return ValueDoc{Kind: value.KindUndefined.String()}
}

func (e *encoder) omap(m *value.OrderedMap) *MapDoc {
	if m == nil {
		return nil
	}
	doc := &MapDoc{Slots: make([]SlotDoc, 0, m.Used())}
	for i := 0; i < m.Used(); i++ {
		s := m.Slot(i)
		sd := SlotDoc{Deleted: s.Deleted}
		if s.Key.IsString() {
			sd.KeyRef = e.str(s.Key.Name)
		} else {
			sd.Index = s.Key.Index
		}
		if !s.Deleted {
			sd.Value = e.value(s.Val)
		}
		doc.Slots = append(doc.Slots, sd)
	}
	return doc
}

// ---------------------------------------------------------------------------
// Bytecode
// ---------------------------------------------------------------------------

func operand(op bytecode.Operand) OperandDoc {
	return OperandDoc{Kind: op.Kind.String(), Value: op.Value}
}

func (e *encoder) program(p *bytecode.Program) *ProgramDoc {
	if p == nil {
		return nil
	}
	doc := &ProgramDoc{
		Vars:      p.Vars,
		Constants: e.values(p.Constants),
		Temps:     p.Temps,
		File:      p.File,
		LineStart: p.LineStart,
		LineEnd:   p.LineEnd,
		Refcount:  p.Refcount,
		Addr:      p.Addr,
		Statics:   e.omap(p.Statics),
	}
	doc.Instructions = make([]InstructionDoc, len(p.Instructions))
	for i, ins := range p.Instructions {
		doc.Instructions[i] = InstructionDoc{
			Opcode:   ins.Opcode.Name(),
			Op1:      operand(ins.Op1),
			Op2:      operand(ins.Op2),
			Result:   operand(ins.Result),
			Extended: ins.Extended,
		}
	}
	return doc
}

func (e *encoder) function(f *bytecode.Function) FunctionDoc {
	doc := FunctionDoc{
		Name:    f.Name,
		Flags:   f.Flags,
		NumArgs: f.NumArgs,
		Program: e.program(f.Program),
		Handler: f.Handler,
	}
	for _, a := range f.Args {
		doc.Args = append(doc.Args, ArgDoc{
			Name:      a.Name,
			TypeCode:  a.TypeCode,
			ClassName: a.ClassName,
			ByRef:     a.ByRef,
			Variadic:  a.Variadic,
		})
	}
	if m := f.Module; m != nil {
		doc.Module = &ModuleDoc{Number: m.Number, Name: m.Name, Version: m.Version}
	}
	return doc
}

func (e *encoder) class(c *bytecode.Class) ClassDoc {
	doc := ClassDoc{
		Name:              c.Name,
		Parent:            c.Parent,
		Flags:             c.Flags,
		Addr:              c.Addr,
		Constants:         e.omap(c.Constants),
		DefaultProperties: e.omap(c.DefaultProperties),
		StaticMembers:     e.omap(c.StaticMembers),
	}
	for _, m := range c.Methods {
		doc.Methods = append(doc.Methods, e.function(m))
	}
	return doc
}

// floatDoc stores f inline, except negative zero and NaN, which are stored
// as their IEEE bits so the sign and payload survive both codecs.
func floatDoc(f float64) ValueDoc {
	vd := ValueDoc{Kind: value.KindFloat.String(), Float: f}
	if math.IsNaN(f) || (f == 0 && math.Signbit(f)) {
		vd.Float = 0
		vd.Bits = math.Float64bits(f)
	}
	return vd
}
