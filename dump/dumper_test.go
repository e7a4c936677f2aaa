package dump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/vmdump/bytecode"
	"github.com/chazu/vmdump/value"
)

type testFrame struct {
	fn      *bytecode.Function
	locals  []value.Value
	args    []value.Value
	symbols *value.OrderedMap
}

func (f *testFrame) Function() *bytecode.Function   { return f.fn }
func (f *testFrame) Locals() []value.Value          { return f.locals }
func (f *testFrame) Arguments() []value.Value       { return f.args }
func (f *testFrame) SymbolTable() *value.OrderedMap { return f.symbols }

func newTestFrame() *testFrame {
	prog := testProgram(bytecode.Instruction{Opcode: bytecode.OpRETURN, Op1: bytecode.Const(0)})
	prog.Statics = value.NewOrderedMap()
	prog.Statics.Set(key("count", 0xa0), value.Int(9))

	symbols := value.NewOrderedMap()
	symbols.Set(key("x", 0xb0), value.Int(1))

	return &testFrame{
		fn:      &bytecode.Function{Name: "f", NumArgs: 2, Program: prog},
		locals:  []value.Value{value.Int(1)},
		args:    []value.Value{value.Int(1), value.Null{}, value.Bool(true)},
		symbols: symbols,
	}
}

func TestFrameOperations(t *testing.T) {
	frame := newTestFrame()

	tests := []struct {
		name string
		op   func(d *Dumper) error
		want string
	}{
		{
			"locals",
			func(d *Dumper) error { return d.Locals(frame) },
			"vars(2): {\n" +
				"  $x ->\n" +
				"  zval : long(1)\n" +
				"  $y ->\n" +
				"  zval : undefined\n" +
				"}\n",
		},
		{
			"arguments",
			func(d *Dumper) error { return d.Arguments(frame) },
			"args(3): {\n" +
				"  zval : long(1)\n" +
				"  zval : null\n" +
				"  zval : true\n" +
				"}\n",
		},
		{
			"symbols",
			func(d *Dumper) error { return d.SymbolTable(frame) },
			"symbols(1): {\n" +
				`  ["x"] len(1) addr(0xb0) refcount(1) =>` + "\n" +
				"  zval : long(1)\n" +
				"}\n",
		},
		{
			"statics",
			func(d *Dumper) error { return d.Statics(frame) },
			"statics(1): {\n" +
				`  ["count"] len(5) addr(0xa0) refcount(1) =>` + "\n" +
				"  zval : long(9)\n" +
				"}\n",
		},
		{
			"literals",
			func(d *Dumper) error { return d.Literals(frame) },
			"literals(3): {\n" +
				"  zval : long(5)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.op(New(&buf, DefaultOptions())); err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Errorf("\n got %q\nwant prefix %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFrameOperationsIndent(t *testing.T) {
	frame := newTestFrame()

	tests := []struct {
		name string
		op   func(d *Dumper) error
		want string
	}{
		{
			"locals",
			func(d *Dumper) error { return d.Locals(frame) },
			"    vars(2): {\n" +
				"      $x ->\n" +
				"      zval : long(1)\n" +
				"      $y ->\n" +
				"      zval : undefined\n" +
				"    }\n",
		},
		{
			"arguments",
			func(d *Dumper) error { return d.Arguments(frame) },
			"    args(3): {\n" +
				"      zval : long(1)\n" +
				"      zval : null\n" +
				"      zval : true\n" +
				"    }\n",
		},
		{
			"symbols",
			func(d *Dumper) error { return d.SymbolTable(frame) },
			"    symbols(1): {\n" +
				`      ["x"] len(1) addr(0xb0) refcount(1) =>` + "\n" +
				"      zval : long(1)\n" +
				"    }\n",
		},
		{
			"literals",
			func(d *Dumper) error { return d.Literals(frame) },
			"    literals(3): {\n" +
				"      zval : long(5)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			d := New(&buf, DefaultOptions()).WithColumns(DefaultColumnWidth, 4)
			if err := tt.op(d); err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Errorf("\n got %q\nwant prefix %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFrameInstructions(t *testing.T) {
	frame := newTestFrame()
	var buf bytes.Buffer
	if err := New(&buf, DefaultOptions()).Instructions(frame); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, `op_array("f") f() flags(0x0) addr(0x1000) vars(2) T(3)`+"\n") {
		t.Errorf("unexpected header: %q", out)
	}
	if got := strings.Count(out, "\n"); got != 3 {
		t.Errorf("%d lines, want 3", got)
	}
}

func TestAbsentFrameWritesNothing(t *testing.T) {
	internal := &testFrame{fn: &bytecode.Function{Name: "strlen"}}
	noTables := &testFrame{fn: &bytecode.Function{Name: "g", Program: testProgram()}}

	frames := []struct {
		name  string
		frame Frame
	}{
		{"nil frame", nil},
		{"no function", &testFrame{}},
		{"internal function", internal},
	}

	for _, f := range frames {
		var buf bytes.Buffer
		d := New(&buf, DefaultOptions())
		d.Locals(f.frame)
		d.Arguments(f.frame)
		d.Statics(f.frame)
		d.Literals(f.frame)
		d.Instructions(f.frame)
		if buf.Len() != 0 {
			t.Errorf("%s: wrote %q", f.name, buf.String())
		}
	}

	var buf bytes.Buffer
	d := New(&buf, DefaultOptions())
	d.SymbolTable(nil)
	d.SymbolTable(noTables)
	d.Statics(noTables)
	if buf.Len() != 0 {
		t.Errorf("missing tables wrote %q", buf.String())
	}
}

func TestWithColumns(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf, DefaultOptions())
	narrow := d.WithColumns(4, 2)

	if d.Options().ColumnWidth != DefaultColumnWidth {
		t.Error("WithColumns modified the original")
	}
	if narrow.Options().ColumnWidth != 4 || narrow.Options().Indent != 2 {
		t.Errorf("WithColumns options = %+v", narrow.Options())
	}

	narrow.Values(value.Null{})
	if buf.String() != "  zval : null\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestNewDefaults(t *testing.T) {
	opts := New(nil, Options{}).Options()
	if opts.ColumnWidth != DefaultColumnWidth || opts.IndentSize != DefaultIndentSize ||
		opts.Precision != DefaultPrecision {
		t.Errorf("New(Options{}) = %+v", opts)
	}

	var buf bytes.Buffer
	if err := New(&buf, Options{ColumnWidth: 20}).Values(value.Float(3.14159)); err != nil {
		t.Fatal(err)
	}
	if want := "zval : double(3.14159) hex(400921f9f01b866e)\n"; buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
