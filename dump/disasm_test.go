package dump

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/chazu/vmdump/bytecode"
	"github.com/chazu/vmdump/value"
)

func row(width int, fields ...string) string {
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(pad(f, width))
	}
	sb.WriteString("\n")
	return sb.String()
}

func testProgram(ins ...bytecode.Instruction) *bytecode.Program {
	return &bytecode.Program{
		Instructions: ins,
		Vars:         []string{"x", "y"},
		Constants: []value.Value{
			value.Int(5),
			value.NewString("a\tb"),
			value.Float(0.5),
		},
		Temps: 3,
		Addr:  0x1000,
	}
}

// ---------------------------------------------------------------------------
// Padding
// ---------------------------------------------------------------------------

func TestPad(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"ADD", 6, "ADD   "},
		{"", 3, "   "},
		{"EXACT", 5, "EXACT"},
		{"OVERFLOWING", 4, "OVERFLOWING"},
		{"x", 0, "x"},
	}
	for _, tt := range tests {
		if got := pad(tt.s, tt.width); got != tt.want {
			t.Errorf("pad(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}

func TestRowFieldWidths(t *testing.T) {
	prog := testProgram(bytecode.Instruction{
		Opcode:   bytecode.OpINIT_FCALL_BY_NAME,
		Op1:      bytecode.Raw(0),
		Op2:      bytecode.Const(1),
		Result:   bytecode.Raw(0),
		Extended: 2,
	})

	for _, width := range []int{1, 4, 12, 35} {
		var buf bytes.Buffer
		if err := New(&buf, Options{ColumnWidth: width}).Instruction(prog, 0); err != nil {
			t.Fatal(err)
		}
		want := row(width, "INIT_FCALL_BY_NAME", "", `"a\tb"`, "", "2")
		if buf.String() != want {
			t.Errorf("width %d:\n got %q\nwant %q", width, buf.String(), want)
		}
	}
}

// ---------------------------------------------------------------------------
// Instruction rows
// ---------------------------------------------------------------------------

func TestInstructionRows(t *testing.T) {
	const w = 10
	tests := []struct {
		name string
		ins  bytecode.Instruction
		want []string
	}{
		{
			"add constant and variable",
			bytecode.Instruction{Opcode: bytecode.OpADD, Op1: bytecode.Const(0), Op2: bytecode.CV(0), Result: bytecode.Tmp(2)},
			[]string{"ADD", "5", "$x", "#tmp0", ""},
		},
		{
			"conditional jump extended offset",
			bytecode.Instruction{Opcode: bytecode.OpJMPZNZ, Op1: bytecode.CV(1), Op2: bytecode.Raw(5), Extended: 12 * bytecode.InstructionSize},
			[]string{"JMPZNZ", "$y", "1", "", "12"},
		},
		{
			"unconditional jump",
			bytecode.Instruction{Opcode: bytecode.OpJMP, Op1: bytecode.Raw(0)},
			[]string{"JMP", "-4", "", "", ""},
		},
		{
			"synthetic result",
			bytecode.Instruction{Opcode: bytecode.OpFETCH_DIM_R, Op1: bytecode.CV(0), Op2: bytecode.Const(2), Result: bytecode.Var(4)},
			[]string{"FETCH_DIM_R", "$x", "0.5", "#var2", ""},
		},
		{
			"received argument number",
			bytecode.Instruction{Opcode: bytecode.OpRECV, Op1: bytecode.Raw(1), Result: bytecode.CV(0)},
			[]string{"RECV", "1", "", "$x", ""},
		},
		{
			"class fetch mode",
			bytecode.Instruction{Opcode: bytecode.OpFETCH_CLASS, Op1: bytecode.Raw(2), Result: bytecode.Var(2)},
			[]string{"FETCH_CLASS", "parent", "", "#var0", ""},
		},
		{
			"cast type",
			bytecode.Instruction{Opcode: bytecode.OpCAST, Op1: bytecode.CV(0), Result: bytecode.Tmp(2), Extended: bytecode.TypeString},
			[]string{"CAST", "$x", "", "#tmp0", "string"},
		},
		{
			"cast reserved type",
			bytecode.Instruction{Opcode: bytecode.OpCAST, Op1: bytecode.CV(0), Result: bytecode.Tmp(2), Extended: 16},
			[]string{"CAST", "$x", "", "#tmp0", ""},
		},
		{
			"include once",
			bytecode.Instruction{Opcode: bytecode.OpINCLUDE_OR_EVAL, Op1: bytecode.Const(1), Result: bytecode.Var(2), Extended: bytecode.EvalIncludeOnce},
			[]string{"INCLUDE_OR_EVAL", `"a\tb"`, "", "#var0", "include_once"},
		},
		{
			"eval without bits",
			bytecode.Instruction{Opcode: bytecode.OpINCLUDE_OR_EVAL, Op1: bytecode.Const(1), Result: bytecode.Var(2)},
			[]string{"INCLUDE_OR_EVAL", `"a\tb"`, "", "#var0", "none"},
		},
		{
			"eval past the table",
			bytecode.Instruction{Opcode: bytecode.OpINCLUDE_OR_EVAL, Op1: bytecode.Const(1), Result: bytecode.Var(2), Extended: 1 << 5},
			[]string{"INCLUDE_OR_EVAL", `"a\tb"`, "", "#var0", ""},
		},
		{
			"assign by reference source",
			bytecode.Instruction{Opcode: bytecode.OpASSIGN_REF, Op1: bytecode.CV(0), Op2: bytecode.CV(1), Extended: bytecode.ReturnsFunction},
			[]string{"ASSIGN_REF", "$x", "$y", "", "function"},
		},
		{
			"return by reference unknown source",
			bytecode.Instruction{Opcode: bytecode.OpRETURN_BY_REF, Op1: bytecode.CV(0), Extended: 7},
			[]string{"RETURN_BY_REF", "$x", "", "", ""},
		},
		{
			"isset",
			bytecode.Instruction{Opcode: bytecode.OpISSET_ISEMPTY_CV, Op1: bytecode.CV(1), Result: bytecode.Tmp(2), Extended: bytecode.IssetFlag},
			[]string{"ISSET_ISEMPTY_CV", "$y", "", "#tmp0", "isset"},
		},
		{
			"empty",
			bytecode.Instruction{Opcode: bytecode.OpISSET_ISEMPTY_CV, Op1: bytecode.CV(1), Result: bytecode.Tmp(2)},
			[]string{"ISSET_ISEMPTY_CV", "$y", "", "#tmp0", "empty"},
		},
		{
			"class name fetch",
			bytecode.Instruction{Opcode: bytecode.OpFETCH_CLASS_NAME, Result: bytecode.Tmp(2), Extended: 3},
			[]string{"FETCH_CLASS_NAME", "", "", "#tmp0", "static"},
		},
		{
			"negative num extended",
			bytecode.Instruction{Opcode: bytecode.OpINIT_FCALL, Op1: bytecode.Raw(2), Op2: bytecode.Const(0), Extended: 0xffffffff},
			[]string{"INIT_FCALL", "2", "5", "", "-1"},
		},
		{
			"unknown opcode",
			bytecode.Instruction{Opcode: bytecode.Opcode(0xEE), Op1: bytecode.Raw(9), Extended: 5},
			[]string{"UNKNOWN_EE", "", "", "", ""},
		},
		{
			"out of range slots",
			bytecode.Instruction{Opcode: bytecode.OpASSIGN, Op1: bytecode.CV(9), Op2: bytecode.Const(99), Result: bytecode.Operand{Kind: 42}},
			[]string{"ASSIGN", "", "", "", ""},
		},
		{
			"result never uses unused rules",
			bytecode.Instruction{Opcode: bytecode.OpJMP, Op1: bytecode.Raw(4), Result: bytecode.Raw(4)},
			[]string{"JMP", "0", "", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := testProgram(
				bytecode.Instruction{Opcode: bytecode.OpNOP},
				bytecode.Instruction{Opcode: bytecode.OpNOP},
				bytecode.Instruction{Opcode: bytecode.OpNOP},
				tt.ins,
			)
			var buf bytes.Buffer
			if err := New(&buf, Options{ColumnWidth: w}).Instruction(prog, 3); err != nil {
				t.Fatal(err)
			}
			want := row(w, tt.want...)
			if buf.String() != want {
				t.Errorf("\n got %q\nwant %q", buf.String(), want)
			}
		})
	}
}

func TestInstructionOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf, DefaultOptions())
	if err := d.Instruction(testProgram(), 0); err != nil {
		t.Fatal(err)
	}
	if err := d.Instruction(nil, 0); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q, want nothing", buf.String())
	}
}

func TestFields(t *testing.T) {
	prog := testProgram(bytecode.Instruction{
		Opcode: bytecode.OpADD,
		Op1:    bytecode.CV(1),
		Op2:    bytecode.Const(0),
		Result: bytecode.Tmp(2),
	})

	got := Fields(prog, 0, DefaultPrecision)
	want := []string{"ADD", "$y", "5", "#tmp0", ""}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Fields = %q, want %q", got, want)
	}
	if Fields(prog, 1, DefaultPrecision) != nil {
		t.Error("Fields out of range should be nil")
	}
}

// ---------------------------------------------------------------------------
// Programs and functions
// ---------------------------------------------------------------------------

func TestProgramDump(t *testing.T) {
	const w = 8
	rc := uint32(1)
	prog := testProgram(
		bytecode.Instruction{Opcode: bytecode.OpASSIGN, Op1: bytecode.CV(0), Op2: bytecode.Const(0)},
		bytecode.Instruction{Opcode: bytecode.OpRETURN, Op1: bytecode.Const(0)},
	)
	prog.Refcount = &rc
	prog.File = "t.php"
	prog.LineStart, prog.LineEnd = 2, 4

	var buf bytes.Buffer
	if err := New(&buf, Options{ColumnWidth: w}).Program(prog); err != nil {
		t.Fatal(err)
	}
	want := " refcount(1) addr(0x1000) vars(2) T(3) filename(t.php) line(2,4)\n" +
		row(w, "OPCODE", "OP1", "OP2", "RESULT", "EXTENDED") +
		row(w, "ASSIGN", "$x", "5", "", "") +
		row(w, "RETURN", "5", "", "", "")
	if buf.String() != want {
		t.Errorf("\n got %q\nwant %q", buf.String(), want)
	}
}

func TestProgramLineCount(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		ins := make([]bytecode.Instruction, n)
		prog := testProgram(ins...)
		var buf bytes.Buffer
		New(&buf, DefaultOptions()).Program(prog)
		if got := strings.Count(buf.String(), "\n"); got != n+2 {
			t.Errorf("%d instructions: %d lines, want %d", n, got, n+2)
		}
	}
}

func TestPrototype(t *testing.T) {
	tests := []struct {
		name string
		fn   *bytecode.Function
		want string
	}{
		{
			"typed",
			&bytecode.Function{
				Name:    "add",
				Flags:   bytecode.AccHasTypeHints,
				NumArgs: 2,
				Args: []bytecode.ArgInfo{
					{Name: "a", TypeCode: bytecode.TypeLong},
					{Name: "b", ClassName: "Foo", ByRef: true},
				},
			},
			" add(long $a, Foo &$b)",
		},
		{
			"hints ignored without flag",
			&bytecode.Function{
				Name:    "add",
				NumArgs: 1,
				Args:    []bytecode.ArgInfo{{Name: "a", TypeCode: bytecode.TypeLong}},
			},
			" add($a)",
		},
		{
			"variadic by reference",
			&bytecode.Function{
				Name:    "collect",
				Flags:   bytecode.AccVariadic | bytecode.AccReturnReference,
				NumArgs: 1,
				Args:    []bytecode.ArgInfo{{Name: "a"}, {Name: "rest", Variadic: true}},
			},
			" &collect($a, ...$rest)",
		},
		{
			"anonymous",
			&bytecode.Function{},
			"",
		},
	}
	for _, tt := range tests {
		if got := prototype(tt.fn); got != tt.want {
			t.Errorf("%s: prototype() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func testRegistry() *bytecode.SymbolTable {
	st := bytecode.NewSymbolTable()

	prog := testProgram(bytecode.Instruction{Opcode: bytecode.OpRETURN, Op1: bytecode.Const(0)})
	st.DefineFunction(&bytecode.Function{
		Name:    "Answer",
		Flags:   bytecode.AccPublic,
		Program: prog,
	})
	st.DefineFunction(&bytecode.Function{
		Name:    "strlen",
		Flags:   bytecode.AccPublic | bytecode.AccHasTypeHints,
		NumArgs: 1,
		Args:    []bytecode.ArgInfo{{Name: "str", TypeCode: bytecode.TypeString}},
		Handler: 0xdead,
		Module:  &bytecode.Module{Number: 1, Name: "standard", Version: "7.3.0"},
	})

	c := bytecode.NewClass("Point")
	c.Parent = "Shape"
	c.Addr = 0x2000
	c.Constants.Set(value.Key{Name: &value.String{Bytes: []byte("ORIGIN"), Meta: value.Meta{Addr: 0x2100, Interned: true}}}, value.Int(0))
	c.AddMethod(&bytecode.Function{Name: "__construct", Program: testProgram()})
	c.AddMethod(&bytecode.Function{Name: "norm", Program: testProgram()})
	st.DefineClass(c)
	return st
}

func TestFunctionDump(t *testing.T) {
	const w = 8
	st := testRegistry()

	var buf bytes.Buffer
	if err := New(&buf, Options{ColumnWidth: w}).Function(st, "ANSWER"); err != nil {
		t.Fatal(err)
	}
	want := `op_array("Answer") Answer() flags(0x100) addr(0x1000) vars(2) T(3)` + "\n" +
		row(w, "OPCODE", "OP1", "OP2", "RESULT", "EXTENDED") +
		row(w, "RETURN", "5", "", "", "")
	if buf.String() != want {
		t.Errorf("\n got %q\nwant %q", buf.String(), want)
	}
}

func TestInternalFunctionDump(t *testing.T) {
	st := testRegistry()
	var buf bytes.Buffer
	if err := New(&buf, DefaultOptions()).Function(st, "strlen"); err != nil {
		t.Fatal(err)
	}
	want := `internal_function("strlen") strlen(string $str) flags(0x10000100) handler(0xdead) module(1,"standard","7.3.0")` + "\n"
	if buf.String() != want {
		t.Errorf("\n got %q\nwant %q", buf.String(), want)
	}
}

func TestClassDump(t *testing.T) {
	st := testRegistry()

	var plain, magic bytes.Buffer
	if err := New(&plain, DefaultOptions()).Class(st, "point", false); err != nil {
		t.Fatal(err)
	}
	if err := New(&magic, DefaultOptions()).Class(st, "point", true); err != nil {
		t.Fatal(err)
	}

	out := plain.String()
	if !strings.HasPrefix(out, `class("Point") parent("Shape") flags(0x0) addr(0x2000) {`+"\n") {
		t.Errorf("unexpected header in %q", out)
	}
	for _, want := range []string{
		"  constants(1) {\n",
		`    ["ORIGIN"] len(6) addr(0x2100) interned =>` + "\n",
		"    zval : long(0)\n",
		"  default_properties(0) {\n",
		"  static_members(0) {\n",
		`op_array("Point::norm") norm()`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("class dump missing %q", want)
		}
	}
	if strings.Contains(out, "__construct") {
		t.Error("magic method dumped without magic flag")
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Error("class dump not closed")
	}
	if !strings.Contains(magic.String(), `op_array("Point::__construct")`) {
		t.Error("magic method missing with magic flag")
	}
}

func TestMethodDump(t *testing.T) {
	st := testRegistry()
	var buf bytes.Buffer
	if err := New(&buf, DefaultOptions()).Method(st, "POINT", "Norm"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), `op_array("Point::norm")`) {
		t.Errorf("got %q", buf.String())
	}
}

func TestRegistryNotFound(t *testing.T) {
	st := testRegistry()
	var buf bytes.Buffer
	d := New(&buf, DefaultOptions())

	checks := []struct {
		name string
		err  error
	}{
		{"function", d.Function(st, "nope")},
		{"class", d.Class(st, "Nope", true)},
		{"method class", d.Method(st, "Nope", "norm")},
		{"method", d.Method(st, "Point", "nope")},
	}
	for _, c := range checks {
		if !errors.Is(c.err, ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", c.name, c.err)
		}
	}
	if buf.Len() != 0 {
		t.Errorf("not-found lookups wrote %q", buf.String())
	}
}
