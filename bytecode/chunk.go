package bytecode

import (
	"encoding/binary"
	"fmt"
)

// BytecodeVersion is the current bytecode format version.
// Increment when making incompatible changes to the format.
const BytecodeVersion uint16 = 1

// LineEntry maps a bytecode offset to a source line for diagnostics.
// Entries are run-length encoded: an entry covers every offset from its
// own up to (but not including) the next entry's.
type LineEntry struct {
	Offset uint32 // Offset in the code section
	Line   uint32 // Source line number (1-based)
}

// Chunk is a compiled program: code, constant pool, and debug line info.
// It is the unit the VM executes and the wire format serializes.
type Chunk struct {
	Version   uint16
	Code      []byte
	Constants []Value
	Lines     []LineEntry
}

// NewChunk creates an empty chunk with the current bytecode version.
func NewChunk() *Chunk {
	return &Chunk{
		Version:   BytecodeVersion,
		Code:      make([]byte, 0, 256),
		Constants: make([]Value, 0, 16),
	}
}

// AddConstant adds a value to the constant pool, reusing an existing
// entry when an equal value is already present. Returns the pool index.
func (c *Chunk) AddConstant(v Value) uint16 {
	for i, existing := range c.Constants {
		if existing.Equal(v) {
			return uint16(i)
		}
	}
	c.Constants = append(c.Constants, v)
	return uint16(len(c.Constants) - 1)
}

// GetConstant returns the constant at the given index.
func (c *Chunk) GetConstant(index uint16) Value {
	return c.Constants[index]
}

// Emit appends an opcode with no operands. Returns its offset.
func (c *Chunk) Emit(op Opcode, line int) int {
	offset := len(c.Code)
	c.recordLine(offset, line)
	c.Code = append(c.Code, byte(op))
	return offset
}

// EmitWithOperand appends an opcode followed by operand bytes. Returns its offset.
func (c *Chunk) EmitWithOperand(op Opcode, line int, operands ...byte) int {
	offset := c.Emit(op, line)
	c.Code = append(c.Code, operands...)
	return offset
}

// EmitConstant adds v to the pool and emits OpConst for it. Returns the
// instruction offset.
func (c *Chunk) EmitConstant(v Value, line int) int {
	idx := c.AddConstant(v)
	return c.EmitWithOperand(OpConst, line, uint16Operand(idx)...)
}

// EmitJump emits a forward jump with a placeholder offset to be patched
// later. Returns the offset of the placeholder operand.
func (c *Chunk) EmitJump(op Opcode, line int) int {
	c.Emit(op, line)
	placeholder := len(c.Code)
	c.Code = append(c.Code, 0xFF, 0xFF)
	return placeholder
}

// PatchJump patches a jump placeholder to target the current offset.
// The stored offset is relative to the first byte after the operand.
func (c *Chunk) PatchJump(placeholder int) {
	jump := len(c.Code) - placeholder - 2
	if jump > 0xFFFF {
		panic(fmt.Sprintf("bytecode: jump of %d exceeds 16-bit offset", jump))
	}
	binary.BigEndian.PutUint16(c.Code[placeholder:], uint16(jump))
}

// EmitLoop emits a backward jump to loopStart.
func (c *Chunk) EmitLoop(loopStart int, line int) {
	c.Emit(OpLoop, line)
	// +2 accounts for the operand bytes the VM will have consumed.
	back := len(c.Code) - loopStart + 2
	if back > 0xFFFF {
		panic(fmt.Sprintf("bytecode: loop of %d exceeds 16-bit offset", back))
	}
	c.Code = append(c.Code, byte(back>>8), byte(back))
}

// CurrentOffset returns the offset where the next instruction will be emitted.
func (c *Chunk) CurrentOffset() int {
	return len(c.Code)
}

// recordLine appends a line entry when the line changes.
func (c *Chunk) recordLine(offset, line int) {
	if line <= 0 {
		return
	}
	if n := len(c.Lines); n > 0 && c.Lines[n-1].Line == uint32(line) {
		return
	}
	c.Lines = append(c.Lines, LineEntry{Offset: uint32(offset), Line: uint32(line)})
}

// LineForOffset returns the source line for a bytecode offset, or 0 when
// no debug info covers it.
func (c *Chunk) LineForOffset(offset int) int {
	line := uint32(0)
	for _, e := range c.Lines {
		if int(e.Offset) > offset {
			break
		}
		line = e.Line
	}
	return int(line)
}

// uint16Operand encodes v as big-endian operand bytes.
func uint16Operand(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}
