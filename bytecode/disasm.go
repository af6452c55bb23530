package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Disassemble returns a human-readable bytecode listing for the chunk.
func (c *Chunk) Disassemble() string {
	return c.DisassembleWithName("")
}

// DisassembleWithName returns a human-readable bytecode listing with a name header.
func (c *Chunk) DisassembleWithName(name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; Cinder Bytecode v%d\n", c.Version))

	if len(c.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, v := range c.Constants {
			sb.WriteString(fmt.Sprintf(";   [%3d] %s\n", i, v.Quote()))
		}
	}
	sb.WriteString("\n")

	offset := 0
	lastLine := 0
	for offset < len(c.Code) {
		line := c.LineForOffset(offset)
		if line != lastLine {
			sb.WriteString(fmt.Sprintf("%04x  %4d  ", offset, line))
			lastLine = line
		} else {
			sb.WriteString(fmt.Sprintf("%04x     |  ", offset))
		}
		offset = c.disassembleInstruction(&sb, offset)
		sb.WriteString("\n")
	}

	return sb.String()
}

// disassembleInstruction writes one instruction and returns the offset of
// the next one.
func (c *Chunk) disassembleInstruction(sb *strings.Builder, offset int) int {
	op := Opcode(c.Code[offset])
	info := GetOpcodeInfo(op)
	sb.WriteString(fmt.Sprintf("%-16s", info.Name))
	offset++

	if offset+info.OperandLen > len(c.Code) {
		sb.WriteString(" <truncated>")
		return len(c.Code)
	}

	switch op {
	case OpConst, OpDefineGlobal, OpLoadGlobal, OpStoreGlobal:
		idx := binary.BigEndian.Uint16(c.Code[offset:])
		sb.WriteString(fmt.Sprintf(" %d", idx))
		if int(idx) < len(c.Constants) {
			sb.WriteString(fmt.Sprintf(" (%s)", c.Constants[idx].Quote()))
		}

	case OpJump, OpJumpFalse:
		jump := binary.BigEndian.Uint16(c.Code[offset:])
		sb.WriteString(fmt.Sprintf(" %d -> %04x", jump, offset+2+int(jump)))

	case OpLoop:
		jump := binary.BigEndian.Uint16(c.Code[offset:])
		sb.WriteString(fmt.Sprintf(" %d -> %04x", jump, offset+2-int(jump)))

	case OpLoadLocal, OpStoreLocal, OpCall:
		sb.WriteString(fmt.Sprintf(" %d", c.Code[offset]))
	}

	return offset + info.OperandLen
}
