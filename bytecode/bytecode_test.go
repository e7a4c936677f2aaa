package bytecode

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Opcode metadata tests
// ---------------------------------------------------------------------------

func TestOpcodeInfo(t *testing.T) {
	tests := []struct {
		op     Opcode
		name   string
		op1    UnusedRule
		op2    UnusedRule
		family Family
	}{
		{OpNOP, "NOP", UnusedNone, UnusedNone, ExtNone},
		{OpADD, "ADD", UnusedNone, UnusedNone, ExtNone},
		{OpJMP, "JMP", UnusedJmpAddr, UnusedNone, ExtNone},
		{OpJMPZ, "JMPZ", UnusedNone, UnusedJmpAddr, ExtNone},
		{OpJMPZNZ, "JMPZNZ", UnusedNone, UnusedJmpAddr, ExtJmpAddr},
		{OpFAST_CALL, "FAST_CALL", UnusedJmpAddr, UnusedNone, ExtNone},
		{OpRECV, "RECV", UnusedNum, UnusedNone, ExtNone},
		{OpINIT_FCALL, "INIT_FCALL", UnusedNum, UnusedNone, ExtNum},
		{OpSEND_VAL, "SEND_VAL", UnusedNone, UnusedNum, ExtNone},
		{OpFETCH_CLASS, "FETCH_CLASS", UnusedClassFetch, UnusedNone, ExtNone},
		{OpCAST, "CAST", UnusedNone, UnusedNone, ExtType},
		{OpINCLUDE_OR_EVAL, "INCLUDE_OR_EVAL", UnusedNone, UnusedNone, ExtEval},
		{OpASSIGN_REF, "ASSIGN_REF", UnusedNone, UnusedNone, ExtSrc},
		{OpISSET_ISEMPTY_VAR, "ISSET_ISEMPTY_VAR", UnusedNone, UnusedNone, ExtIsset},
		{OpFETCH_CLASS_NAME, "FETCH_CLASS_NAME", UnusedNone, UnusedNone, ExtClassFetch},
		{OpSWITCH_STR, "SWITCH_STRING", UnusedNone, UnusedNone, ExtJmpAddr},
	}

	for _, tt := range tests {
		info := tt.op.Info()
		if info.Name != tt.name {
			t.Errorf("%d: Name = %q, want %q", byte(tt.op), info.Name, tt.name)
		}
		if info.Op1 != tt.op1 || info.Op2 != tt.op2 {
			t.Errorf("%s: rules = (%d, %d), want (%d, %d)", tt.op, info.Op1, info.Op2, tt.op1, tt.op2)
		}
		if info.Family != tt.family {
			t.Errorf("%s: Family = %s, want %s", tt.op, info.Family, tt.family)
		}
	}
}

func TestOpcodeTableIsDense(t *testing.T) {
	for i := 0; i <= int(OpFETCH_LIST_W); i++ {
		if !Opcode(i).Known() {
			t.Errorf("opcode %d has no table entry", i)
		}
	}
}

func TestUnknownOpcode(t *testing.T) {
	op := Opcode(0xF3)
	if op.Known() {
		t.Fatal("0xF3 should be unknown")
	}
	if got := op.Name(); got != "UNKNOWN_F3" {
		t.Errorf("Name() = %q, want UNKNOWN_F3", got)
	}
	if op.Family() != ExtNone {
		t.Errorf("Family() = %s, want none", op.Family())
	}
}

func TestLookup(t *testing.T) {
	op, ok := Lookup("INIT_METHOD_CALL")
	if !ok || op != OpINIT_METHOD_CALL {
		t.Errorf("Lookup(INIT_METHOD_CALL) = %v, %v", op, ok)
	}
	if _, ok := Lookup("NOT_AN_OPCODE"); ok {
		t.Error("Lookup(NOT_AN_OPCODE) should fail")
	}
}

func TestMnemonicsAreUnique(t *testing.T) {
	seen := map[string]Opcode{}
	for op, info := range opcodeTable {
		if prev, ok := seen[info.Name]; ok {
			t.Errorf("mnemonic %q used by %d and %d", info.Name, byte(prev), byte(op))
		}
		seen[info.Name] = op
		if strings.HasPrefix(info.Name, "ZEND_") {
			t.Errorf("mnemonic %q carries a prefix", info.Name)
		}
	}
}

// ---------------------------------------------------------------------------
// Decoding tables
// ---------------------------------------------------------------------------

func TestTypeName(t *testing.T) {
	tests := []struct {
		code uint32
		want string
	}{
		{TypeUndefined, "undefined"},
		{TypeLong, "long"},
		{TypeConstantAST, "constant_ast"},
		{16, ""},
		{TypePointer, "pointer"},
		{TypeError, "error"},
		{21, ""},
		{1 << 30, ""},
	}
	for _, tt := range tests {
		if got := TypeName(tt.code); got != tt.want {
			t.Errorf("TypeName(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestEvalName(t *testing.T) {
	tests := []struct {
		ext  uint32
		want string
	}{
		{0, "none"},
		{EvalEval, "eval"},
		{EvalInclude, "include"},
		{EvalIncludeOnce, "include_once"},
		{EvalRequire, "require"},
		{EvalRequireOnce, "require_once"},
		{EvalRequireOnce | EvalEval, "require_once"},
		{1 << 5, ""},
	}
	for _, tt := range tests {
		if got := EvalName(tt.ext); got != tt.want {
			t.Errorf("EvalName(%#x) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestFetchName(t *testing.T) {
	tests := []struct {
		v    uint32
		want string
	}{
		{0, "default"},
		{1, "self"},
		{6, "trait"},
		{7, ""},
		{0x10 | 2, "parent"},
	}
	for _, tt := range tests {
		if got := FetchName(tt.v); got != tt.want {
			t.Errorf("FetchName(%#x) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestOperandKindNames(t *testing.T) {
	for _, k := range []OperandKind{Unused, Constant, LocalVariable, Temporary, Synthetic} {
		got, ok := ParseOperandKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseOperandKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if OperandKind(99).String() != "invalid" {
		t.Error("out-of-range kind should be invalid")
	}
}

// ---------------------------------------------------------------------------
// Functions, classes and the symbol table
// ---------------------------------------------------------------------------

func TestFunctionArgCount(t *testing.T) {
	f := &Function{
		Name:    "f",
		NumArgs: 1,
		Flags:   AccVariadic,
		Args:    []ArgInfo{{Name: "a"}, {Name: "rest", Variadic: true}},
	}
	if got := f.ArgCount(); got != 2 {
		t.Errorf("ArgCount() = %d, want 2", got)
	}

	f.Args = f.Args[:1]
	if got := f.ArgCount(); got != 1 {
		t.Errorf("ArgCount() with short Args = %d, want 1", got)
	}
}

func TestSymbolTableCaseInsensitive(t *testing.T) {
	st := NewSymbolTable()
	st.DefineFunction(&Function{Name: "StrLen"})
	c := NewClass("Foo")
	c.AddMethod(&Function{Name: "doThing"})
	c.AddMethod(&Function{Name: "__construct"})
	st.DefineClass(c)

	if _, ok := st.LookupFunction("strlen"); !ok {
		t.Error("LookupFunction(strlen) not found")
	}
	if _, ok := st.LookupFunction("missing"); ok {
		t.Error("LookupFunction(missing) found")
	}

	got, ok := st.LookupClass("FOO")
	if !ok || got != c {
		t.Fatal("LookupClass(FOO) failed")
	}
	m, ok := got.Method("DOTHING")
	if !ok || m.Scope != "Foo" {
		t.Errorf("Method(DOTHING) = %+v, %v", m, ok)
	}
	if m.QualifiedName() != "Foo::doThing" {
		t.Errorf("QualifiedName() = %q", m.QualifiedName())
	}
	ctor, _ := got.Method("__construct")
	if !ctor.IsMagic() {
		t.Error("__construct should be magic")
	}
}

func TestSymbolTableOrder(t *testing.T) {
	st := NewSymbolTable()
	for _, name := range []string{"b", "a", "c"} {
		st.DefineClass(NewClass(name))
		st.DefineFunction(&Function{Name: name})
	}
	st.DefineClass(NewClass("A"))

	var classes, funcs []string
	for _, c := range st.Classes() {
		classes = append(classes, c.Name)
	}
	for _, f := range st.Functions() {
		funcs = append(funcs, f.Name)
	}
	if strings.Join(classes, ",") != "b,A,c" {
		t.Errorf("Classes() = %v", classes)
	}
	if strings.Join(funcs, ",") != "b,a,c" {
		t.Errorf("Functions() = %v", funcs)
	}
}

func TestNewProgramAddr(t *testing.T) {
	p := NewProgram()
	if p.Addr == 0 {
		t.Error("NewProgram should assign an address")
	}
}
