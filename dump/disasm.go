package dump

import (
	"strings"

	"github.com/chazu/vmdump/bytecode"
	"github.com/chazu/vmdump/value"
)

var columns = [...]string{"OPCODE", "OP1", "OP2", "RESULT", "EXTENDED"}

// Fields returns the unpadded columns of the row for prog.Instructions[index]:
// mnemonic, op1, op2, result and extended value. It returns nil when index
// is out of range.
func Fields(prog *bytecode.Program, index, precision int) []string {
	if prog == nil || index < 0 || index >= len(prog.Instructions) {
		return nil
	}
	ins := prog.Instructions[index]
	return []string{
		ins.Opcode.Name(),
		resolveOperand(prog, index, slotOp1, precision),
		resolveOperand(prog, index, slotOp2, precision),
		resolveOperand(prog, index, slotResult, precision),
		decodeExtended(ins),
	}
}

// instruction writes one disassembled row.
func (p *printer) instruction(prog *bytecode.Program, index int) {
	for _, f := range Fields(prog, index, p.opts.Precision) {
		p.field(f)
	}
	p.puts("\n")
}

// program writes the metadata line, the column header and every
// instruction row.
func (p *printer) program(prog *bytecode.Program) {
	if prog.Refcount != nil {
		p.printf(" refcount(%d)", *prog.Refcount)
	}
	p.printf(" addr(0x%x) vars(%d) T(%d)", prog.Addr, len(prog.Vars), prog.Temps)
	if prog.File != "" {
		p.printf(" filename(%s) line(%d,%d)", prog.File, prog.LineStart, prog.LineEnd)
	}
	p.puts("\n")

	for _, c := range columns {
		p.field(c)
	}
	p.puts("\n")

	for i := range prog.Instructions {
		p.instruction(prog, i)
	}
}

// prototype renders " &name(type &$a, ...$rest)" for a named function.
func prototype(f *bytecode.Function) string {
	if f.Name == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte(' ')
	if f.Flags&bytecode.AccReturnReference != 0 {
		sb.WriteByte('&')
	}
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	hints := f.Flags&bytecode.AccHasTypeHints != 0
	for i := 0; i < f.ArgCount(); i++ {
		arg := f.Args[i]
		if arg.Name == "" {
			continue
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		if arg.Variadic {
			sb.WriteString("...")
		}
		if hints {
			typ := arg.ClassName
			if typ == "" && arg.TypeCode != bytecode.TypeUndefined {
				typ = bytecode.TypeName(arg.TypeCode)
			}
			if typ != "" {
				sb.WriteString(typ)
				sb.WriteByte(' ')
			}
		}
		if arg.ByRef {
			sb.WriteByte('&')
		}
		sb.WriteByte('$')
		sb.WriteString(arg.Name)
	}
	sb.WriteByte(')')
	return sb.String()
}

// function writes a function descriptor followed by its program, or by the
// native handler details for internal functions.
func (p *printer) function(f *bytecode.Function) {
	kind := "internal_function"
	if f.IsUser() {
		kind = "op_array"
	}
	p.printf("%s(\"%s\")", kind, f.QualifiedName())
	p.puts(prototype(f))
	p.printf(" flags(0x%x)", f.Flags)

	if f.IsUser() {
		p.program(f.Program)
		return
	}
	p.printf(" handler(0x%x)", f.Handler)
	if f.Module != nil {
		p.printf(" module(%d,\"%s\",\"%s\")", f.Module.Number, f.Module.Name, f.Module.Version)
	}
	p.puts("\n")
}

// class writes a class descriptor, its tables and its methods. Magic
// methods are included only when magic is set.
func (p *printer) class(c *bytecode.Class, magic bool) {
	g := NewCycleGuard()
	p.printf("class(\"%s\")", c.Name)
	if c.Parent != "" {
		p.printf(" parent(\"%s\")", c.Parent)
	}
	p.printf(" flags(0x%x) addr(0x%x) {\n", c.Flags, c.Addr)

	level := p.opts.Indent + p.opts.IndentSize
	p.table(g, "constants", c.Constants, level)
	p.table(g, "default_properties", c.DefaultProperties, level)
	p.table(g, "static_members", c.StaticMembers, level)

	for _, m := range c.Methods {
		if m.IsMagic() && !magic {
			continue
		}
		p.function(m)
	}
	p.indent(p.opts.Indent)
	p.puts("}\n")
}

// table is block without the empty-table skip.
func (p *printer) table(g *CycleGuard, name string, m *value.OrderedMap, level int) {
	p.indent(level)
	p.printf("%s(%d) {\n", name, m.Len())
	p.entries(g, m, level+p.opts.IndentSize)
	p.indent(level)
	p.puts("}\n")
}
