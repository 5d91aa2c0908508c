package mos6502

import "fmt"

// formatOperand renders the operand of an instruction in conventional 6502
// syntax. addr is the address of the instruction itself; only Relative mode
// uses it, to resolve the branch target.
func formatOperand(mode AddrMode, val uint16, addr uint16) string {
	switch mode {
	case Implied, Accumulator:
		return ""
	case Immediate:
		return fmt.Sprintf("#$%02X", val)
	case ZeroPage:
		return fmt.Sprintf("$%02X", val)
	case ZeroPageX:
		return fmt.Sprintf("$%02X,X", val)
	case ZeroPageY:
		return fmt.Sprintf("$%02X,Y", val)
	case Absolute:
		return fmt.Sprintf("$%04X", val)
	case AbsoluteX:
		return fmt.Sprintf("$%04X,X", val)
	case AbsoluteY:
		return fmt.Sprintf("$%04X,Y", val)
	case Indirect:
		return fmt.Sprintf("($%04X)", val)
	case IndirectX:
		return fmt.Sprintf("($%02X,X)", val)
	case IndirectY:
		return fmt.Sprintf("($%02X),Y", val)
	case Relative:
		// Branches are always 2 bytes; the displacement is signed and
		// counted from the address of the next instruction.
		target := addr + 2 + uint16(int8(val))
		return fmt.Sprintf("$%04X", target)
	}
	return "???"
}
