// Package dump renders VM values and bytecode as deterministic text.
//
// A Dumper writes to an io.Writer. Every operation builds its own
// CycleGuard, so one Dumper may serve goroutines that dump disjoint graphs.
// The first write error stops further output and is returned from the
// operation; text written before it is left in the sink.
package dump

import (
	"errors"
	"io"

	"github.com/chazu/vmdump/bytecode"
	"github.com/chazu/vmdump/value"
)

// ErrNotFound is returned by the registry operations when a function, class
// or method name does not resolve. Nothing is written in that case.
var ErrNotFound = errors.New("dump: not found")

// Default layout.
const (
	DefaultColumnWidth = 35
	DefaultIndentSize  = 2
	DefaultPrecision   = 14

	// PrecisionShortest renders doubles with the fewest digits that
	// round-trip.
	PrecisionShortest = -1
)

// Options controls layout.
type Options struct {
	ColumnWidth int // disassembly column width
	Indent      int // base indent for value dumps
	IndentSize  int // indent added per nesting level
	Precision   int // significant digits for doubles; 0 means DefaultPrecision, negative shortest
}

// DefaultOptions returns the default layout.
func DefaultOptions() Options {
	return Options{
		ColumnWidth: DefaultColumnWidth,
		IndentSize:  DefaultIndentSize,
		Precision:   DefaultPrecision,
	}
}

// Frame is the host call frame the frame-sourced operations read from.
type Frame interface {
	// Function returns the executing function, or nil when there is none.
	Function() *bytecode.Function
	// Locals returns the values of the named variables, one per Program.Vars.
	Locals() []value.Value
	// Arguments returns the arguments actually passed, in order.
	Arguments() []value.Value
	// SymbolTable returns the frame's symbol table, or nil.
	SymbolTable() *value.OrderedMap
}

// Registry resolves functions and classes by case-insensitive name.
type Registry interface {
	LookupFunction(name string) (*bytecode.Function, bool)
	LookupClass(name string) (*bytecode.Class, bool)
}

// Dumper writes dumps to a sink.
type Dumper struct {
	w    io.Writer
	opts Options
}

// New creates a Dumper. Non-positive ColumnWidth and IndentSize and a zero
// Precision fall back to the defaults.
func New(w io.Writer, opts Options) *Dumper {
	if opts.Precision == 0 {
		opts.Precision = DefaultPrecision
	}
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = DefaultColumnWidth
	}
	if opts.IndentSize <= 0 {
		opts.IndentSize = DefaultIndentSize
	}
	if opts.Indent < 0 {
		opts.Indent = 0
	}
	return &Dumper{w: w, opts: opts}
}

// Options returns the layout in effect.
func (d *Dumper) Options() Options { return d.opts }

// WithColumns returns a copy of d with a different column width and base
// indent.
func (d *Dumper) WithColumns(width, indent int) *Dumper {
	opts := d.opts
	opts.ColumnWidth = width
	opts.Indent = indent
	return New(d.w, opts)
}

func (d *Dumper) printer() *printer {
	return newPrinter(d.w, d.opts)
}

// userProgram returns the program of the frame's function when it is user
// code.
func userProgram(f Frame) *bytecode.Program {
	if f == nil {
		return nil
	}
	fn := f.Function()
	if fn == nil || !fn.IsUser() {
		return nil
	}
	return fn.Program
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// Values dumps each value at the base indent.
func (d *Dumper) Values(vals ...value.Value) error {
	p := d.printer()
	for _, v := range vals {
		p.zval(NewCycleGuard(), v, d.opts.Indent)
	}
	return p.err()
}

// Locals dumps the named variables of the frame's function.
func (d *Dumper) Locals(f Frame) error {
	prog := userProgram(f)
	if prog == nil {
		return nil
	}
	p := d.printer()
	locals := f.Locals()
	level := d.opts.Indent + d.opts.IndentSize
	p.indent(d.opts.Indent)
	p.printf("vars(%d): {\n", len(prog.Vars))
	for i, name := range prog.Vars {
		p.indent(level)
		p.printf("$%s ->\n", name)
		var v value.Value = value.Undefined{}
		if i < len(locals) {
			v = locals[i]
		}
		p.zval(NewCycleGuard(), v, level)
	}
	p.indent(d.opts.Indent)
	p.puts("}\n")
	return p.err()
}

// Arguments dumps the arguments passed to the frame's function.
func (d *Dumper) Arguments(f Frame) error {
	if userProgram(f) == nil {
		return nil
	}
	p := d.printer()
	args := f.Arguments()
	p.indent(d.opts.Indent)
	p.printf("args(%d): {\n", len(args))
	for _, v := range args {
		p.zval(NewCycleGuard(), v, d.opts.Indent+d.opts.IndentSize)
	}
	p.indent(d.opts.Indent)
	p.puts("}\n")
	return p.err()
}

// SymbolTable dumps the frame's symbol table.
func (d *Dumper) SymbolTable(f Frame) error {
	if f == nil {
		return nil
	}
	return d.table("symbols", f.SymbolTable())
}

// Statics dumps the static variables of the frame's function.
func (d *Dumper) Statics(f Frame) error {
	prog := userProgram(f)
	if prog == nil {
		return nil
	}
	return d.table("statics", prog.Statics)
}

func (d *Dumper) table(name string, m *value.OrderedMap) error {
	if m == nil {
		return nil
	}
	p := d.printer()
	p.indent(d.opts.Indent)
	p.printf("%s(%d): {\n", name, m.Len())
	p.entries(NewCycleGuard(), m, d.opts.Indent+d.opts.IndentSize)
	p.indent(d.opts.Indent)
	p.puts("}\n")
	return p.err()
}

// Literals dumps the constant table of the frame's function.
func (d *Dumper) Literals(f Frame) error {
	prog := userProgram(f)
	if prog == nil {
		return nil
	}
	p := d.printer()
	p.indent(d.opts.Indent)
	p.printf("literals(%d): {\n", len(prog.Constants))
	for _, v := range prog.Constants {
		p.zval(NewCycleGuard(), v, d.opts.Indent+d.opts.IndentSize)
	}
	p.indent(d.opts.Indent)
	p.puts("}\n")
	return p.err()
}

// ---------------------------------------------------------------------------
// Bytecode
// ---------------------------------------------------------------------------

// Instructions disassembles the frame's function.
func (d *Dumper) Instructions(f Frame) error {
	if userProgram(f) == nil {
		return nil
	}
	p := d.printer()
	p.function(f.Function())
	return p.err()
}

// Program disassembles prog without a function header.
func (d *Dumper) Program(prog *bytecode.Program) error {
	if prog == nil {
		return nil
	}
	p := d.printer()
	p.program(prog)
	return p.err()
}

// Instruction writes the row for prog.Instructions[index]. An index out of
// range writes nothing.
func (d *Dumper) Instruction(prog *bytecode.Program, index int) error {
	if prog == nil || index < 0 || index >= len(prog.Instructions) {
		return nil
	}
	p := d.printer()
	p.instruction(prog, index)
	return p.err()
}

// Function dumps the named function.
func (d *Dumper) Function(r Registry, name string) error {
	fn, ok := r.LookupFunction(name)
	if !ok || fn == nil {
		return ErrNotFound
	}
	p := d.printer()
	p.function(fn)
	return p.err()
}

// Class dumps the named class. Magic methods are included when magic is set.
func (d *Dumper) Class(r Registry, name string, magic bool) error {
	c, ok := r.LookupClass(name)
	if !ok || c == nil {
		return ErrNotFound
	}
	p := d.printer()
	p.class(c, magic)
	return p.err()
}

// Method dumps one method of the named class.
func (d *Dumper) Method(r Registry, class, method string) error {
	c, ok := r.LookupClass(class)
	if !ok || c == nil {
		return ErrNotFound
	}
	fn, ok := c.Method(method)
	if !ok {
		return ErrNotFound
	}
	p := d.printer()
	p.function(fn)
	return p.err()
}
