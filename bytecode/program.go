// Package bytecode describes compiled programs of the host VM: opcodes,
// typed operands, instructions and the function and class descriptors that
// own them.
package bytecode

import "github.com/chazu/vmdump/value"

// InstructionSize is the in-memory size of one host instruction in bytes.
// Extended values of jump-address opcodes are byte offsets in these units.
const InstructionSize = 32

// Extended value flags.
const (
	IssetFlag       = 0x02000000 // set for isset, clear for empty
	ReturnsFunction = 1
	ReturnsValue    = 2
	FetchClassMask  = 0x0f
)

// Include/eval bits, decoded by bit length.
const (
	EvalEval        = 1 << 0
	EvalInclude     = 1 << 1
	EvalIncludeOnce = 1 << 2
	EvalRequire     = 1 << 3
	EvalRequireOnce = 1 << 4
)

// OperandKind tags what an operand slot refers to.
type OperandKind uint8

const (
	Unused        OperandKind = iota
	Constant                  // index into the literal table
	LocalVariable             // named variable slot
	Temporary                 // compiler temporary
	Synthetic                 // compiler-synthesized variable
)

var operandKindNames = [...]string{
	Unused:        "unused",
	Constant:      "const",
	LocalVariable: "cv",
	Temporary:     "tmp",
	Synthetic:     "var",
}

func (k OperandKind) String() string {
	if int(k) < len(operandKindNames) {
		return operandKindNames[k]
	}
	return "invalid"
}

// ParseOperandKind maps a kind name back to its tag.
func ParseOperandKind(s string) (OperandKind, bool) {
	for i, name := range operandKindNames {
		if name == s {
			return OperandKind(i), true
		}
	}
	return 0, false
}

// Operand is one typed operand slot. For variable kinds Value is the
// absolute frame slot; named variables occupy the first len(Vars) slots.
// For Unused operands Value is a raw payload such as a jump target index.
type Operand struct {
	Kind  OperandKind
	Value uint32
}

// Const returns a constant-table operand.
func Const(idx uint32) Operand { return Operand{Kind: Constant, Value: idx} }

// CV returns a named-variable operand.
func CV(slot uint32) Operand { return Operand{Kind: LocalVariable, Value: slot} }

// Tmp returns a temporary operand at an absolute slot.
func Tmp(slot uint32) Operand { return Operand{Kind: Temporary, Value: slot} }

// Var returns a synthetic-variable operand at an absolute slot.
func Var(slot uint32) Operand { return Operand{Kind: Synthetic, Value: slot} }

// Raw returns an unused operand carrying a payload.
func Raw(payload uint32) Operand { return Operand{Kind: Unused, Value: payload} }

// Instruction is one decoded VM instruction.
type Instruction struct {
	Opcode   Opcode
	Op1      Operand
	Op2      Operand
	Result   Operand
	Extended uint32
}

// Program is a compiled instruction sequence with its tables.
type Program struct {
	Instructions []Instruction
	Vars         []string
	Constants    []value.Value
	Temps        uint32

	File      string
	LineStart uint32
	LineEnd   uint32

	Refcount *uint32 // nil when the host does not track it
	Addr     uint64
	Statics  *value.OrderedMap
}

// NewProgram creates an empty program with a fresh display address.
func NewProgram() *Program {
	return &Program{Addr: value.NextAddr()}
}


// ---------------------------------------------------------------------------
// Type codes
// ---------------------------------------------------------------------------

// Type codes as used by CAST, TYPE_CHECK and argument type hints.
const (
	TypeUndefined   = 0
	TypeNull        = 1
	TypeFalse       = 2
	TypeTrue        = 3
	TypeLong        = 4
	TypeDouble      = 5
	TypeString      = 6
	TypeArray       = 7
	TypeObject      = 8
	TypeResource    = 9
	TypeReference   = 10
	TypeConstant    = 11
	TypeConstantAST = 12
	TypeBool        = 13
	TypeCallable    = 14
	TypeIndirect    = 15
	TypePointer     = 17
	TypeVoid        = 18
	TypeIterable    = 19
	TypeError       = 20
)

// typeNames is indexed by type code; code 16 is reserved.
var typeNames = [...]string{
	"undefined", "null", "false", "true", "long", "double", "string", "array",
	"object", "resource", "reference", "constant", "constant_ast", "bool",
	"callable", "indirect", "", "pointer", "void", "iterable", "error",
}

// TypeName returns the name of a type code, or "" when reserved or out of
// range.
func TypeName(code uint32) string {
	if code < uint32(len(typeNames)) {
		return typeNames[code]
	}
	return ""
}

var evalNames = [...]string{"none", "eval", "include", "include_once", "require", "require_once"}

// EvalName decodes an include/eval extended value by its highest set bit.
// Zero decodes to "none"; values past require_once decode to "".
func EvalName(ext uint32) string {
	idx := 0
	for v := ext; v != 0; v >>= 1 {
		idx++
	}
	if idx >= len(evalNames) {
		return ""
	}
	return evalNames[idx]
}

var fetchNames = [...]string{"default", "self", "parent", "static", "auto", "interface", "trait"}

// FetchName returns the class fetch mode name for the low bits of v.
func FetchName(v uint32) string {
	idx := v & FetchClassMask
	if idx < uint32(len(fetchNames)) {
		return fetchNames[idx]
	}
	return ""
}
