package dump

import (
	"strconv"

	"github.com/chazu/vmdump/bytecode"
)

// operandSlot selects which operand of an instruction is being resolved.
type operandSlot uint8

const (
	slotOp1 operandSlot = iota
	slotOp2
	slotResult
)

// resolveOperand renders one operand of prog.Instructions[index]. Anything
// that cannot be decoded renders as "".
func resolveOperand(prog *bytecode.Program, index int, slot operandSlot, precision int) string {
	ins := prog.Instructions[index]

	var op bytecode.Operand
	rule := bytecode.UnusedNone
	info := ins.Opcode.Info()
	switch slot {
	case slotOp1:
		op, rule = ins.Op1, info.Op1
	case slotOp2:
		op, rule = ins.Op2, info.Op2
	case slotResult:
		op = ins.Result
	}

	nvars := uint32(len(prog.Vars))
	switch op.Kind {
	case bytecode.Constant:
		if int(op.Value) >= len(prog.Constants) {
			return ""
		}
		return renderValue(prog.Constants[op.Value], precision)
	case bytecode.LocalVariable:
		if op.Value >= nvars {
			return ""
		}
		return "$" + prog.Vars[op.Value]
	case bytecode.Temporary:
		return "#tmp" + strconv.FormatInt(int64(op.Value)-int64(nvars), 10)
	case bytecode.Synthetic:
		return "#var" + strconv.FormatInt(int64(op.Value)-int64(nvars), 10)
	case bytecode.Unused:
		return decodeUnused(op.Value, rule, index)
	}
	return ""
}

func decodeUnused(payload uint32, rule bytecode.UnusedRule, index int) string {
	switch rule {
	case bytecode.UnusedNum:
		return strconv.FormatInt(int64(int32(payload)), 10)
	case bytecode.UnusedJmpAddr:
		return strconv.FormatInt(int64(payload)-int64(index)-1, 10)
	case bytecode.UnusedClassFetch:
		return bytecode.FetchName(payload)
	}
	return ""
}

// decodeExtended renders the extended value of ins according to its
// opcode's family.
func decodeExtended(ins bytecode.Instruction) string {
	ext := ins.Extended
	switch ins.Opcode.Family() {
	case bytecode.ExtNum:
		return strconv.FormatInt(int64(int32(ext)), 10)
	case bytecode.ExtJmpAddr:
		return strconv.FormatInt(int64(int32(ext)/bytecode.InstructionSize), 10)
	case bytecode.ExtType:
		return bytecode.TypeName(ext)
	case bytecode.ExtEval:
		return bytecode.EvalName(ext)
	case bytecode.ExtSrc:
		switch ext {
		case bytecode.ReturnsValue:
			return "value"
		case bytecode.ReturnsFunction:
			return "function"
		}
	case bytecode.ExtIsset:
		if ext&bytecode.IssetFlag != 0 {
			return "isset"
		}
		return "empty"
	case bytecode.ExtClassFetch:
		return bytecode.FetchName(ext)
	}
	return ""
}
