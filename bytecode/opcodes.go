package bytecode

import "fmt"

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack manipulation (0x00-0x0F)
	// ========================================================================

	OpNop Opcode = 0x00 // No operation
	OpPop Opcode = 0x01 // Pop top of stack
	OpDup Opcode = 0x02 // Duplicate top of stack

	// ========================================================================
	// Constants (0x10-0x1F)
	// ========================================================================

	OpConst Opcode = 0x10 // Push constant from pool: OpConst <index:u16>
	OpNull  Opcode = 0x11 // Push null
	OpTrue  Opcode = 0x12 // Push true
	OpFalse Opcode = 0x13 // Push false
	OpZero  Opcode = 0x14 // Push 0
	OpOne   Opcode = 0x15 // Push 1

	// ========================================================================
	// Globals (0x20-0x2F) - name operand is a string constant index
	// ========================================================================

	OpDefineGlobal Opcode = 0x20 // Pop and define global: OpDefineGlobal <name:u16>
	OpLoadGlobal   Opcode = 0x21 // Push global value: OpLoadGlobal <name:u16>
	OpStoreGlobal  Opcode = 0x22 // Peek and store to existing global: OpStoreGlobal <name:u16>

	// ========================================================================
	// Locals (0x30-0x3F)
	// ========================================================================

	OpLoadLocal  Opcode = 0x30 // Push local slot: OpLoadLocal <slot:u8>
	OpStoreLocal Opcode = 0x31 // Peek and store to local: OpStoreLocal <slot:u8>

	// ========================================================================
	// Arithmetic (0x40-0x4F)
	// ========================================================================

	OpAdd Opcode = 0x40 // Pop two, push sum (numbers) or concatenation (strings)
	OpSub Opcode = 0x41 // Pop two, push difference (a - b where b is TOS)
	OpMul Opcode = 0x42 // Pop two, push product
	OpDiv Opcode = 0x43 // Pop two, push quotient
	OpNeg Opcode = 0x44 // Negate top of stack

	// ========================================================================
	// Comparison and logic (0x50-0x5F)
	// ========================================================================

	OpEq  Opcode = 0x50 // Pop two, push true if equal
	OpNe  Opcode = 0x51 // Pop two, push true if not equal
	OpLt  Opcode = 0x52 // Pop two, push true if a < b
	OpLe  Opcode = 0x53 // Pop two, push true if a <= b
	OpGt  Opcode = 0x54 // Pop two, push true if a > b
	OpGe  Opcode = 0x55 // Pop two, push true if a >= b
	OpNot Opcode = 0x56 // Push true if TOS is falsy

	// ========================================================================
	// Control flow (0x60-0x6F) - offsets are unsigned, relative to the
	// first byte after the operand
	// ========================================================================

	OpJump      Opcode = 0x60 // Jump forward: OpJump <offset:u16>
	OpJumpFalse Opcode = 0x61 // Jump forward if TOS is falsy (peek): OpJumpFalse <offset:u16>
	OpLoop      Opcode = 0x62 // Jump backward: OpLoop <offset:u16>

	// ========================================================================
	// Calls (0x70-0x7F)
	// ========================================================================

	OpCall Opcode = 0x70 // Call TOS-argc..TOS args on callee below them: OpCall <argc:u8>

	// ========================================================================
	// Output and termination (0x80-0x8F)
	// ========================================================================

	OpPrint  Opcode = 0x80 // Pop and write to the VM's output
	OpReturn Opcode = 0x81 // End of program
)

// OpcodeInfo provides metadata about each opcode for disassembly and tracing.
type OpcodeInfo struct {
	Name       string // Human-readable name
	StackPop   int    // How many values popped from stack (-1 = variable)
	StackPush  int    // How many values pushed to stack
	OperandLen int    // Number of operand bytes following the opcode
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Stack manipulation
	OpNop: {"NOP", 0, 0, 0},
	OpPop: {"POP", 1, 0, 0},
	OpDup: {"DUP", 1, 2, 0},

	// Constants
	OpConst: {"CONST", 0, 1, 2},
	OpNull:  {"NULL", 0, 1, 0},
	OpTrue:  {"TRUE", 0, 1, 0},
	OpFalse: {"FALSE", 0, 1, 0},
	OpZero:  {"ZERO", 0, 1, 0},
	OpOne:   {"ONE", 0, 1, 0},

	// Globals
	OpDefineGlobal: {"DEFINE_GLOBAL", 1, 0, 2},
	OpLoadGlobal:   {"LOAD_GLOBAL", 0, 1, 2},
	OpStoreGlobal:  {"STORE_GLOBAL", 0, 0, 2},

	// Locals
	OpLoadLocal:  {"LOAD_LOCAL", 0, 1, 1},
	OpStoreLocal: {"STORE_LOCAL", 0, 0, 1},

	// Arithmetic
	OpAdd: {"ADD", 2, 1, 0},
	OpSub: {"SUB", 2, 1, 0},
	OpMul: {"MUL", 2, 1, 0},
	OpDiv: {"DIV", 2, 1, 0},
	OpNeg: {"NEG", 1, 1, 0},

	// Comparison and logic
	OpEq:  {"EQ", 2, 1, 0},
	OpNe:  {"NE", 2, 1, 0},
	OpLt:  {"LT", 2, 1, 0},
	OpLe:  {"LE", 2, 1, 0},
	OpGt:  {"GT", 2, 1, 0},
	OpGe:  {"GE", 2, 1, 0},
	OpNot: {"NOT", 1, 1, 0},

	// Control flow
	OpJump:      {"JUMP", 0, 0, 2},
	OpJumpFalse: {"JUMP_FALSE", 0, 0, 2},
	OpLoop:      {"LOOP", 0, 0, 2},

	// Calls
	OpCall: {"CALL", -1, 1, 1},

	// Output and termination
	OpPrint:  {"PRINT", 1, 0, 0},
	OpReturn: {"RETURN", 0, 0, 0},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with an UNKNOWN name if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// Name returns the human-readable name of the opcode.
func (op Opcode) Name() string {
	return GetOpcodeInfo(op).Name
}
