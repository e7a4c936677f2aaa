package bytecode

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies a VM instruction. Numbering follows the host VM's
// opcode list so snapshots taken from a live process decode directly.
type Opcode byte

// Arithmetic and comparison
const (
	OpNOP               Opcode = 0
	OpADD               Opcode = 1
	OpSUB               Opcode = 2
	OpMUL               Opcode = 3
	OpDIV               Opcode = 4
	OpMOD               Opcode = 5
	OpSL                Opcode = 6
	OpSR                Opcode = 7
	OpCONCAT            Opcode = 8
	OpBW_OR             Opcode = 9
	OpBW_AND            Opcode = 10
	OpBW_XOR            Opcode = 11
	OpBW_NOT            Opcode = 12
	OpBOOL_NOT          Opcode = 13
	OpBOOL_XOR          Opcode = 14
	OpIS_IDENTICAL      Opcode = 15
	OpIS_NOT_IDENTICAL  Opcode = 16
	OpIS_EQUAL          Opcode = 17
	OpIS_NOT_EQUAL      Opcode = 18
	OpIS_SMALLER        Opcode = 19
	OpIS_SMALLER_OR_EQ  Opcode = 20
	OpCAST              Opcode = 21
	OpQM_ASSIGN         Opcode = 22
	OpPOW               Opcode = 166
	OpSPACESHIP         Opcode = 170
	OpFAST_CONCAT       Opcode = 53
	OpBOOL              Opcode = 52
	OpSTRLEN            Opcode = 121
	OpDEFINED           Opcode = 122
	OpTYPE_CHECK        Opcode = 123
	OpINSTANCEOF        Opcode = 138
	OpIN_ARRAY          Opcode = 189
	OpCOUNT             Opcode = 190
	OpGET_CLASS         Opcode = 191
	OpGET_CALLED_CLASS  Opcode = 192
	OpGET_TYPE          Opcode = 193
	OpFUNC_NUM_ARGS     Opcode = 194
	OpFUNC_GET_ARGS     Opcode = 195
	OpCASE              Opcode = 48
	OpBEGIN_SILENCE     Opcode = 57
	OpEND_SILENCE       Opcode = 58
	OpECHO              Opcode = 40
	OpEXIT              Opcode = 79
	OpCLONE             Opcode = 110
	OpSEPARATE          Opcode = 156
	OpMAKE_REF          Opcode = 51
	OpCHECK_VAR         Opcode = 49
	OpCHECK_FUNC_ARG    Opcode = 100
	OpUSER_OPCODE       Opcode = 150
	OpCALL_TRAMPOLINE   Opcode = 158
	OpHANDLE_EXCEPTION  Opcode = 149
	OpDISCARD_EXCEPTION Opcode = 159
)

// Assignment
const (
	OpASSIGN_ADD    Opcode = 23
	OpASSIGN_SUB    Opcode = 24
	OpASSIGN_MUL    Opcode = 25
	OpASSIGN_DIV    Opcode = 26
	OpASSIGN_MOD    Opcode = 27
	OpASSIGN_SL     Opcode = 28
	OpASSIGN_SR     Opcode = 29
	OpASSIGN_CONCAT Opcode = 30
	OpASSIGN_BW_OR  Opcode = 31
	OpASSIGN_BW_AND Opcode = 32
	OpASSIGN_BW_XOR Opcode = 33
	OpPRE_INC       Opcode = 34
	OpPRE_DEC       Opcode = 35
	OpPOST_INC      Opcode = 36
	OpPOST_DEC      Opcode = 37
	OpASSIGN        Opcode = 38
	OpASSIGN_REF    Opcode = 39
	OpASSIGN_OBJ    Opcode = 136
	OpASSIGN_DIM    Opcode = 147
	OpASSIGN_POW    Opcode = 167
	OpOP_DATA       Opcode = 137
	OpPRE_INC_OBJ   Opcode = 132
	OpPRE_DEC_OBJ   Opcode = 133
	OpPOST_INC_OBJ  Opcode = 134
	OpPOST_DEC_OBJ  Opcode = 135
)

// Control flow
const (
	OpJMP          Opcode = 42
	OpJMPZ         Opcode = 43
	OpJMPNZ        Opcode = 44
	OpJMPZNZ       Opcode = 45
	OpJMPZ_EX      Opcode = 46
	OpJMPNZ_EX     Opcode = 47
	OpJMP_SET      Opcode = 152
	OpCOALESCE     Opcode = 169
	OpASSERT_CHECK Opcode = 151
	OpFAST_CALL    Opcode = 162
	OpFAST_RET     Opcode = 163
	OpSWITCH_LONG  Opcode = 187
	OpSWITCH_STR   Opcode = 188
	OpCATCH        Opcode = 107
	OpTHROW        Opcode = 108
	OpFE_RESET_R   Opcode = 77
	OpFE_FETCH_R   Opcode = 78
	OpFE_RESET_RW  Opcode = 125
	OpFE_FETCH_RW  Opcode = 126
	OpFE_FREE      Opcode = 127
	OpFREE         Opcode = 70
	OpTICKS        Opcode = 105
	OpEXT_STMT     Opcode = 101
	OpEXT_FCALL_BE Opcode = 102
	OpEXT_FCALL_EN Opcode = 103
	OpEXT_NOP      Opcode = 104
)

// Calls and returns
const (
	OpINIT_FCALL_BY_NAME      Opcode = 59
	OpDO_FCALL                Opcode = 60
	OpINIT_FCALL              Opcode = 61
	OpRETURN                  Opcode = 62
	OpRECV                    Opcode = 63
	OpRECV_INIT               Opcode = 64
	OpSEND_VAL                Opcode = 65
	OpSEND_VAR_EX             Opcode = 66
	OpSEND_REF                Opcode = 67
	OpNEW                     Opcode = 68
	OpINIT_NS_FCALL_BY_NAME   Opcode = 69
	OpINCLUDE_OR_EVAL         Opcode = 73
	OpSEND_VAR_NO_REF         Opcode = 106
	OpSEND_VAR_NO_REF_EX      Opcode = 50
	OpRETURN_BY_REF           Opcode = 111
	OpINIT_METHOD_CALL        Opcode = 112
	OpINIT_STATIC_METHOD_CALL Opcode = 113
	OpSEND_VAL_EX             Opcode = 116
	OpSEND_VAR                Opcode = 117
	OpINIT_USER_CALL          Opcode = 118
	OpSEND_ARRAY              Opcode = 119
	OpSEND_USER               Opcode = 120
	OpVERIFY_RETURN_TYPE      Opcode = 124
	OpINIT_DYNAMIC_CALL       Opcode = 128
	OpDO_ICALL                Opcode = 129
	OpDO_UCALL                Opcode = 130
	OpDO_FCALL_BY_NAME        Opcode = 131
	OpRECV_VARIADIC           Opcode = 164
	OpSEND_UNPACK             Opcode = 165
	OpSEND_FUNC_ARG           Opcode = 185
	OpGENERATOR_CREATE        Opcode = 41
	OpYIELD_FROM              Opcode = 142
	OpYIELD                   Opcode = 160
	OpGENERATOR_RETURN        Opcode = 161
)

// Fetches
const (
	OpROPE_INIT                 Opcode = 54
	OpROPE_ADD                  Opcode = 55
	OpROPE_END                  Opcode = 56
	OpINIT_ARRAY                Opcode = 71
	OpADD_ARRAY_ELEMENT         Opcode = 72
	OpUNSET_VAR                 Opcode = 74
	OpUNSET_DIM                 Opcode = 75
	OpUNSET_OBJ                 Opcode = 76
	OpFETCH_R                   Opcode = 80
	OpFETCH_DIM_R               Opcode = 81
	OpFETCH_OBJ_R               Opcode = 82
	OpFETCH_W                   Opcode = 83
	OpFETCH_DIM_W               Opcode = 84
	OpFETCH_OBJ_W               Opcode = 85
	OpFETCH_RW                  Opcode = 86
	OpFETCH_DIM_RW              Opcode = 87
	OpFETCH_OBJ_RW              Opcode = 88
	OpFETCH_IS                  Opcode = 89
	OpFETCH_DIM_IS              Opcode = 90
	OpFETCH_OBJ_IS              Opcode = 91
	OpFETCH_FUNC_ARG            Opcode = 92
	OpFETCH_DIM_FUNC_ARG        Opcode = 93
	OpFETCH_OBJ_FUNC_ARG        Opcode = 94
	OpFETCH_UNSET               Opcode = 95
	OpFETCH_DIM_UNSET           Opcode = 96
	OpFETCH_OBJ_UNSET           Opcode = 97
	OpFETCH_LIST_R              Opcode = 98
	OpFETCH_CONSTANT            Opcode = 99
	OpFETCH_CLASS               Opcode = 109
	OpISSET_ISEMPTY_VAR         Opcode = 114
	OpISSET_ISEMPTY_DIM_OBJ     Opcode = 115
	OpISSET_ISEMPTY_PROP_OBJ    Opcode = 148
	OpFETCH_CLASS_NAME          Opcode = 157
	OpBIND_GLOBAL               Opcode = 168
	OpFETCH_STATIC_PROP_R       Opcode = 173
	OpFETCH_STATIC_PROP_W       Opcode = 174
	OpFETCH_STATIC_PROP_RW      Opcode = 175
	OpFETCH_STATIC_PROP_IS      Opcode = 176
	OpFETCH_STATIC_PROP_FARG    Opcode = 177
	OpFETCH_STATIC_PROP_UNSET   Opcode = 178
	OpUNSET_STATIC_PROP         Opcode = 179
	OpISSET_ISEMPTY_STATIC_PROP Opcode = 180
	OpFETCH_CLASS_CONSTANT      Opcode = 181
	OpBIND_LEXICAL              Opcode = 182
	OpBIND_STATIC               Opcode = 183
	OpFETCH_THIS                Opcode = 184
	OpISSET_ISEMPTY_THIS        Opcode = 186
	OpUNSET_CV                  Opcode = 196
	OpISSET_ISEMPTY_CV          Opcode = 197
	OpFETCH_LIST_W              Opcode = 198
)

// Declarations
const (
	OpDECLARE_CLASS                   Opcode = 139
	OpDECLARE_INHERITED_CLASS         Opcode = 140
	OpDECLARE_FUNCTION                Opcode = 141
	OpDECLARE_CONST                   Opcode = 143
	OpADD_INTERFACE                   Opcode = 144
	OpDECLARE_INHERITED_CLASS_DELAYED Opcode = 145
	OpVERIFY_ABSTRACT_CLASS           Opcode = 146
	OpDECLARE_LAMBDA_FUNCTION         Opcode = 153
	OpADD_TRAIT                       Opcode = 154
	OpBIND_TRAITS                     Opcode = 155
	OpDECLARE_ANON_CLASS              Opcode = 171
	OpDECLARE_ANON_INHERITED_CLASS    Opcode = 172
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// UnusedRule says how an operand slot is decoded when its kind is Unused.
type UnusedRule uint8

const (
	UnusedNone       UnusedRule = iota // blank
	UnusedNum                          // raw number
	UnusedJmpAddr                      // jump target relative to the next instruction
	UnusedClassFetch                   // class fetch mode name
)

// Family classifies how an instruction's extended value is decoded.
type Family uint8

const (
	ExtNone       Family = iota // unclassified, rendered blank
	ExtNum                      // signed decimal
	ExtJmpAddr                  // byte offset divided by InstructionSize
	ExtType                     // type-name table
	ExtEval                     // include/eval keyword
	ExtSrc                      // value/function return source
	ExtIsset                    // isset/empty
	ExtClassFetch               // class fetch mode name
)

var familyNames = [...]string{
	ExtNone:       "none",
	ExtNum:        "num",
	ExtJmpAddr:    "jmp_addr",
	ExtType:       "type",
	ExtEval:       "eval",
	ExtSrc:        "src",
	ExtIsset:      "isset",
	ExtClassFetch: "class_fetch",
}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return fmt.Sprintf("family(%d)", uint8(f))
}

// OpcodeInfo holds the decoding metadata for an opcode.
type OpcodeInfo struct {
	Name   string     // mnemonic
	Op1    UnusedRule // op1 decoding when unused
	Op2    UnusedRule // op2 decoding when unused
	Family Family     // extended value family
}

const (
	none  = UnusedNone
	num   = UnusedNum
	jmp   = UnusedJmpAddr
	fetch = UnusedClassFetch
)

// opcodeTable maps opcodes to their metadata.
var opcodeTable = map[Opcode]OpcodeInfo{
	OpNOP:               {"NOP", none, none, ExtNone},
	OpADD:               {"ADD", none, none, ExtNone},
	OpSUB:               {"SUB", none, none, ExtNone},
	OpMUL:               {"MUL", none, none, ExtNone},
	OpDIV:               {"DIV", none, none, ExtNone},
	OpMOD:               {"MOD", none, none, ExtNone},
	OpSL:                {"SL", none, none, ExtNone},
	OpSR:                {"SR", none, none, ExtNone},
	OpCONCAT:            {"CONCAT", none, none, ExtNone},
	OpBW_OR:             {"BW_OR", none, none, ExtNone},
	OpBW_AND:            {"BW_AND", none, none, ExtNone},
	OpBW_XOR:            {"BW_XOR", none, none, ExtNone},
	OpBW_NOT:            {"BW_NOT", none, none, ExtNone},
	OpBOOL_NOT:          {"BOOL_NOT", none, none, ExtNone},
	OpBOOL_XOR:          {"BOOL_XOR", none, none, ExtNone},
	OpIS_IDENTICAL:      {"IS_IDENTICAL", none, none, ExtNone},
	OpIS_NOT_IDENTICAL:  {"IS_NOT_IDENTICAL", none, none, ExtNone},
	OpIS_EQUAL:          {"IS_EQUAL", none, none, ExtNone},
	OpIS_NOT_EQUAL:      {"IS_NOT_EQUAL", none, none, ExtNone},
	OpIS_SMALLER:        {"IS_SMALLER", none, none, ExtNone},
	OpIS_SMALLER_OR_EQ:  {"IS_SMALLER_OR_EQUAL", none, none, ExtNone},
	OpCAST:              {"CAST", none, none, ExtType},
	OpQM_ASSIGN:         {"QM_ASSIGN", none, none, ExtNone},
	OpPOW:               {"POW", none, none, ExtNone},
	OpSPACESHIP:         {"SPACESHIP", none, none, ExtNone},
	OpFAST_CONCAT:       {"FAST_CONCAT", none, none, ExtNone},
	OpBOOL:              {"BOOL", none, none, ExtNone},
	OpSTRLEN:            {"STRLEN", none, none, ExtNone},
	OpDEFINED:           {"DEFINED", none, none, ExtNone},
	OpTYPE_CHECK:        {"TYPE_CHECK", none, none, ExtType},
	OpINSTANCEOF:        {"INSTANCEOF", none, fetch, ExtNone},
	OpIN_ARRAY:          {"IN_ARRAY", none, none, ExtNum},
	OpCOUNT:             {"COUNT", none, none, ExtNone},
	OpGET_CLASS:         {"GET_CLASS", none, none, ExtNone},
	OpGET_CALLED_CLASS:  {"GET_CALLED_CLASS", none, none, ExtNone},
	OpGET_TYPE:          {"GET_TYPE", none, none, ExtNone},
	OpFUNC_NUM_ARGS:     {"FUNC_NUM_ARGS", none, none, ExtNone},
	OpFUNC_GET_ARGS:     {"FUNC_GET_ARGS", none, none, ExtNone},
	OpCASE:              {"CASE", none, none, ExtNone},
	OpBEGIN_SILENCE:     {"BEGIN_SILENCE", none, none, ExtNone},
	OpEND_SILENCE:       {"END_SILENCE", none, none, ExtNone},
	OpECHO:              {"ECHO", none, none, ExtNone},
	OpEXIT:              {"EXIT", none, none, ExtNone},
	OpCLONE:             {"CLONE", none, none, ExtNone},
	OpSEPARATE:          {"SEPARATE", none, none, ExtNone},
	OpMAKE_REF:          {"MAKE_REF", none, none, ExtNone},
	OpCHECK_VAR:         {"CHECK_VAR", none, none, ExtNone},
	OpCHECK_FUNC_ARG:    {"CHECK_FUNC_ARG", none, num, ExtNone},
	OpUSER_OPCODE:       {"USER_OPCODE", none, none, ExtNone},
	OpCALL_TRAMPOLINE:   {"CALL_TRAMPOLINE", none, none, ExtNone},
	OpHANDLE_EXCEPTION:  {"HANDLE_EXCEPTION", none, none, ExtNone},
	OpDISCARD_EXCEPTION: {"DISCARD_EXCEPTION", none, none, ExtNone},

	OpASSIGN_ADD:    {"ASSIGN_ADD", none, none, ExtNone},
	OpASSIGN_SUB:    {"ASSIGN_SUB", none, none, ExtNone},
	OpASSIGN_MUL:    {"ASSIGN_MUL", none, none, ExtNone},
	OpASSIGN_DIV:    {"ASSIGN_DIV", none, none, ExtNone},
	OpASSIGN_MOD:    {"ASSIGN_MOD", none, none, ExtNone},
	OpASSIGN_SL:     {"ASSIGN_SL", none, none, ExtNone},
	OpASSIGN_SR:     {"ASSIGN_SR", none, none, ExtNone},
	OpASSIGN_CONCAT: {"ASSIGN_CONCAT", none, none, ExtNone},
	OpASSIGN_BW_OR:  {"ASSIGN_BW_OR", none, none, ExtNone},
	OpASSIGN_BW_AND: {"ASSIGN_BW_AND", none, none, ExtNone},
	OpASSIGN_BW_XOR: {"ASSIGN_BW_XOR", none, none, ExtNone},
	OpPRE_INC:       {"PRE_INC", none, none, ExtNone},
	OpPRE_DEC:       {"PRE_DEC", none, none, ExtNone},
	OpPOST_INC:      {"POST_INC", none, none, ExtNone},
	OpPOST_DEC:      {"POST_DEC", none, none, ExtNone},
	OpASSIGN:        {"ASSIGN", none, none, ExtNone},
	OpASSIGN_REF:    {"ASSIGN_REF", none, none, ExtSrc},
	OpASSIGN_OBJ:    {"ASSIGN_OBJ", none, none, ExtNone},
	OpASSIGN_DIM:    {"ASSIGN_DIM", none, none, ExtNone},
	OpASSIGN_POW:    {"ASSIGN_POW", none, none, ExtNone},
	OpOP_DATA:       {"OP_DATA", none, none, ExtNone},
	OpPRE_INC_OBJ:   {"PRE_INC_OBJ", none, none, ExtNone},
	OpPRE_DEC_OBJ:   {"PRE_DEC_OBJ", none, none, ExtNone},
	OpPOST_INC_OBJ:  {"POST_INC_OBJ", none, none, ExtNone},
	OpPOST_DEC_OBJ:  {"POST_DEC_OBJ", none, none, ExtNone},

	OpJMP:          {"JMP", jmp, none, ExtNone},
	OpJMPZ:         {"JMPZ", none, jmp, ExtNone},
	OpJMPNZ:        {"JMPNZ", none, jmp, ExtNone},
	OpJMPZNZ:       {"JMPZNZ", none, jmp, ExtJmpAddr},
	OpJMPZ_EX:      {"JMPZ_EX", none, jmp, ExtNone},
	OpJMPNZ_EX:     {"JMPNZ_EX", none, jmp, ExtNone},
	OpJMP_SET:      {"JMP_SET", none, jmp, ExtNone},
	OpCOALESCE:     {"COALESCE", none, jmp, ExtNone},
	OpASSERT_CHECK: {"ASSERT_CHECK", none, jmp, ExtNone},
	OpFAST_CALL:    {"FAST_CALL", jmp, none, ExtNone},
	OpFAST_RET:     {"FAST_RET", none, none, ExtNone},
	OpSWITCH_LONG:  {"SWITCH_LONG", none, none, ExtJmpAddr},
	OpSWITCH_STR:   {"SWITCH_STRING", none, none, ExtJmpAddr},
	OpCATCH:        {"CATCH", none, none, ExtJmpAddr},
	OpTHROW:        {"THROW", none, none, ExtNone},
	OpFE_RESET_R:   {"FE_RESET_R", none, jmp, ExtNone},
	OpFE_FETCH_R:   {"FE_FETCH_R", none, none, ExtJmpAddr},
	OpFE_RESET_RW:  {"FE_RESET_RW", none, jmp, ExtNone},
	OpFE_FETCH_RW:  {"FE_FETCH_RW", none, none, ExtJmpAddr},
	OpFE_FREE:      {"FE_FREE", none, none, ExtNone},
	OpFREE:         {"FREE", none, none, ExtNone},
	OpTICKS:        {"TICKS", none, none, ExtNum},
	OpEXT_STMT:     {"EXT_STMT", none, none, ExtNone},
	OpEXT_FCALL_BE: {"EXT_FCALL_BEGIN", none, none, ExtNone},
	OpEXT_FCALL_EN: {"EXT_FCALL_END", none, none, ExtNone},
	OpEXT_NOP:      {"EXT_NOP", none, none, ExtNone},

	OpINIT_FCALL_BY_NAME:      {"INIT_FCALL_BY_NAME", none, none, ExtNum},
	OpDO_FCALL:                {"DO_FCALL", none, none, ExtNone},
	OpINIT_FCALL:              {"INIT_FCALL", num, none, ExtNum},
	OpRETURN:                  {"RETURN", none, none, ExtNone},
	OpRECV:                    {"RECV", num, none, ExtNone},
	OpRECV_INIT:               {"RECV_INIT", num, none, ExtNone},
	OpSEND_VAL:                {"SEND_VAL", none, num, ExtNone},
	OpSEND_VAR_EX:             {"SEND_VAR_EX", none, num, ExtNone},
	OpSEND_REF:                {"SEND_REF", none, num, ExtNone},
	OpNEW:                     {"NEW", fetch, none, ExtNum},
	OpINIT_NS_FCALL_BY_NAME:   {"INIT_NS_FCALL_BY_NAME", none, none, ExtNum},
	OpINCLUDE_OR_EVAL:         {"INCLUDE_OR_EVAL", none, none, ExtEval},
	OpSEND_VAR_NO_REF:         {"SEND_VAR_NO_REF", none, num, ExtNone},
	OpSEND_VAR_NO_REF_EX:      {"SEND_VAR_NO_REF_EX", none, num, ExtNone},
	OpRETURN_BY_REF:           {"RETURN_BY_REF", none, none, ExtSrc},
	OpINIT_METHOD_CALL:        {"INIT_METHOD_CALL", none, none, ExtNum},
	OpINIT_STATIC_METHOD_CALL: {"INIT_STATIC_METHOD_CALL", fetch, none, ExtNum},
	OpSEND_VAL_EX:             {"SEND_VAL_EX", none, num, ExtNone},
	OpSEND_VAR:                {"SEND_VAR", none, num, ExtNone},
	OpINIT_USER_CALL:          {"INIT_USER_CALL", none, none, ExtNum},
	OpSEND_ARRAY:              {"SEND_ARRAY", none, none, ExtNum},
	OpSEND_USER:               {"SEND_USER", none, num, ExtNone},
	OpVERIFY_RETURN_TYPE:      {"VERIFY_RETURN_TYPE", none, none, ExtNone},
	OpINIT_DYNAMIC_CALL:       {"INIT_DYNAMIC_CALL", none, none, ExtNum},
	OpDO_ICALL:                {"DO_ICALL", none, none, ExtNone},
	OpDO_UCALL:                {"DO_UCALL", none, none, ExtNone},
	OpDO_FCALL_BY_NAME:        {"DO_FCALL_BY_NAME", none, none, ExtNone},
	OpRECV_VARIADIC:           {"RECV_VARIADIC", num, none, ExtNone},
	OpSEND_UNPACK:             {"SEND_UNPACK", none, none, ExtNone},
	OpSEND_FUNC_ARG:           {"SEND_FUNC_ARG", none, num, ExtNone},
	OpGENERATOR_CREATE:        {"GENERATOR_CREATE", none, none, ExtNone},
	OpYIELD_FROM:              {"YIELD_FROM", none, none, ExtNone},
	OpYIELD:                   {"YIELD", none, none, ExtSrc},
	OpGENERATOR_RETURN:        {"GENERATOR_RETURN", none, none, ExtNone},

	OpROPE_INIT:                 {"ROPE_INIT", none, none, ExtNum},
	OpROPE_ADD:                  {"ROPE_ADD", none, none, ExtNum},
	OpROPE_END:                  {"ROPE_END", none, none, ExtNum},
	OpINIT_ARRAY:                {"INIT_ARRAY", none, none, ExtNone},
	OpADD_ARRAY_ELEMENT:         {"ADD_ARRAY_ELEMENT", none, none, ExtNone},
	OpUNSET_VAR:                 {"UNSET_VAR", none, none, ExtNone},
	OpUNSET_DIM:                 {"UNSET_DIM", none, none, ExtNone},
	OpUNSET_OBJ:                 {"UNSET_OBJ", none, none, ExtNone},
	OpFETCH_R:                   {"FETCH_R", none, none, ExtNone},
	OpFETCH_DIM_R:               {"FETCH_DIM_R", none, none, ExtNone},
	OpFETCH_OBJ_R:               {"FETCH_OBJ_R", none, none, ExtNone},
	OpFETCH_W:                   {"FETCH_W", none, none, ExtNone},
	OpFETCH_DIM_W:               {"FETCH_DIM_W", none, none, ExtNone},
	OpFETCH_OBJ_W:               {"FETCH_OBJ_W", none, none, ExtNone},
	OpFETCH_RW:                  {"FETCH_RW", none, none, ExtNone},
	OpFETCH_DIM_RW:              {"FETCH_DIM_RW", none, none, ExtNone},
	OpFETCH_OBJ_RW:              {"FETCH_OBJ_RW", none, none, ExtNone},
	OpFETCH_IS:                  {"FETCH_IS", none, none, ExtNone},
	OpFETCH_DIM_IS:              {"FETCH_DIM_IS", none, none, ExtNone},
	OpFETCH_OBJ_IS:              {"FETCH_OBJ_IS", none, none, ExtNone},
	OpFETCH_FUNC_ARG:            {"FETCH_FUNC_ARG", none, none, ExtNone},
	OpFETCH_DIM_FUNC_ARG:        {"FETCH_DIM_FUNC_ARG", none, none, ExtNum},
	OpFETCH_OBJ_FUNC_ARG:        {"FETCH_OBJ_FUNC_ARG", none, none, ExtNum},
	OpFETCH_UNSET:               {"FETCH_UNSET", none, none, ExtNone},
	OpFETCH_DIM_UNSET:           {"FETCH_DIM_UNSET", none, none, ExtNone},
	OpFETCH_OBJ_UNSET:           {"FETCH_OBJ_UNSET", none, none, ExtNone},
	OpFETCH_LIST_R:              {"FETCH_LIST_R", none, none, ExtNone},
	OpFETCH_CONSTANT:            {"FETCH_CONSTANT", none, none, ExtNone},
	OpFETCH_CLASS:               {"FETCH_CLASS", fetch, none, ExtNone},
	OpISSET_ISEMPTY_VAR:         {"ISSET_ISEMPTY_VAR", none, none, ExtIsset},
	OpISSET_ISEMPTY_DIM_OBJ:     {"ISSET_ISEMPTY_DIM_OBJ", none, none, ExtIsset},
	OpISSET_ISEMPTY_PROP_OBJ:    {"ISSET_ISEMPTY_PROP_OBJ", none, none, ExtIsset},
	OpFETCH_CLASS_NAME:          {"FETCH_CLASS_NAME", none, none, ExtClassFetch},
	OpBIND_GLOBAL:               {"BIND_GLOBAL", none, none, ExtNone},
	OpFETCH_STATIC_PROP_R:       {"FETCH_STATIC_PROP_R", none, fetch, ExtNone},
	OpFETCH_STATIC_PROP_W:       {"FETCH_STATIC_PROP_W", none, fetch, ExtNone},
	OpFETCH_STATIC_PROP_RW:      {"FETCH_STATIC_PROP_RW", none, fetch, ExtNone},
	OpFETCH_STATIC_PROP_IS:      {"FETCH_STATIC_PROP_IS", none, fetch, ExtNone},
	OpFETCH_STATIC_PROP_FARG:    {"FETCH_STATIC_PROP_FUNC_ARG", none, fetch, ExtNum},
	OpFETCH_STATIC_PROP_UNSET:   {"FETCH_STATIC_PROP_UNSET", none, fetch, ExtNone},
	OpUNSET_STATIC_PROP:         {"UNSET_STATIC_PROP", none, fetch, ExtNone},
	OpISSET_ISEMPTY_STATIC_PROP: {"ISSET_ISEMPTY_STATIC_PROP", none, fetch, ExtIsset},
	OpFETCH_CLASS_CONSTANT:      {"FETCH_CLASS_CONSTANT", fetch, none, ExtNone},
	OpBIND_LEXICAL:              {"BIND_LEXICAL", none, none, ExtNone},
	OpBIND_STATIC:               {"BIND_STATIC", none, none, ExtNone},
	OpFETCH_THIS:                {"FETCH_THIS", none, none, ExtNone},
	OpISSET_ISEMPTY_THIS:        {"ISSET_ISEMPTY_THIS", none, none, ExtIsset},
	OpUNSET_CV:                  {"UNSET_CV", none, none, ExtNone},
	OpISSET_ISEMPTY_CV:          {"ISSET_ISEMPTY_CV", none, none, ExtIsset},
	OpFETCH_LIST_W:              {"FETCH_LIST_W", none, none, ExtNone},

	OpDECLARE_CLASS:                   {"DECLARE_CLASS", none, none, ExtNone},
	OpDECLARE_INHERITED_CLASS:         {"DECLARE_INHERITED_CLASS", none, none, ExtNone},
	OpDECLARE_FUNCTION:                {"DECLARE_FUNCTION", none, none, ExtNone},
	OpDECLARE_CONST:                   {"DECLARE_CONST", none, none, ExtNone},
	OpADD_INTERFACE:                   {"ADD_INTERFACE", none, none, ExtNone},
	OpDECLARE_INHERITED_CLASS_DELAYED: {"DECLARE_INHERITED_CLASS_DELAYED", none, none, ExtNone},
	OpVERIFY_ABSTRACT_CLASS:           {"VERIFY_ABSTRACT_CLASS", none, none, ExtNone},
	OpDECLARE_LAMBDA_FUNCTION:         {"DECLARE_LAMBDA_FUNCTION", none, none, ExtNone},
	OpADD_TRAIT:                       {"ADD_TRAIT", none, none, ExtNone},
	OpBIND_TRAITS:                     {"BIND_TRAITS", none, none, ExtNone},
	OpDECLARE_ANON_CLASS:              {"DECLARE_ANON_CLASS", none, none, ExtJmpAddr},
	OpDECLARE_ANON_INHERITED_CLASS:    {"DECLARE_ANON_INHERITED_CLASS", none, none, ExtJmpAddr},
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op))}
}

// Known reports whether the opcode has a table entry.
func (op Opcode) Known() bool {
	_, ok := opcodeTable[op]
	return ok
}

// Name returns the mnemonic for an opcode.
func (op Opcode) Name() string {
	return op.Info().Name
}

// Family returns the extended value family for an opcode.
func (op Opcode) Family() Family {
	return op.Info().Family
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}

// Lookup finds an opcode by mnemonic.
func Lookup(name string) (Opcode, bool) {
	for op, info := range opcodeTable {
		if info.Name == name {
			return op, true
		}
	}
	return 0, false
}
