package mos6502

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRange reports a decode request whose start offset lies at or
	// past the end of the buffer, or whose end precedes its start.
	ErrInvalidRange = errors.New("mos6502: invalid decode range")

	// ErrTruncated reports an instruction whose operand bytes run past the
	// end of the buffer.
	ErrTruncated = errors.New("mos6502: truncated instruction")
)

// Instruction is one decoded instruction anchored to its CPU address.
type Instruction struct {
	Addr     uint16 // CPU address of the opcode byte, not the file offset
	Raw      []byte // 1-3 bytes exactly as they appeared in the buffer
	Mnemonic string
	Mode     AddrMode
	Operand  uint16 // raw operand value; meaningless when HasOperand is false

	// HasOperand is false for Implied and Accumulator instructions.
	HasOperand bool

	// Data marks an undefined opcode byte carried through as a raw-data row.
	Data bool
}

// OperandText renders the operand for display. Relative branches render the
// resolved target address rather than the displacement, which is why the
// instruction's own address feeds the formatter.
func (in Instruction) OperandText() string {
	if in.Data {
		return fmt.Sprintf("$%02X", in.Raw[0])
	}
	if !in.HasOperand {
		return ""
	}
	return formatOperand(in.Mode, in.Operand, in.Addr)
}

// Text renders the mnemonic and operand without the address column, e.g.
// "LDA #$05" or ".byte $FF". This is the form the comparer normalizes.
func (in Instruction) Text() string {
	op := in.OperandText()
	if op == "" {
		return in.Mnemonic
	}
	return in.Mnemonic + " " + op
}

// String renders a full listing row: address, raw bytes, mnemonic, operand.
func (in Instruction) String() string {
	var hex strings.Builder
	for i, b := range in.Raw {
		if i > 0 {
			hex.WriteByte(' ')
		}
		fmt.Fprintf(&hex, "%02X", b)
	}
	return fmt.Sprintf("$%04X: %-9s %s", in.Addr, hex.String(), in.Text())
}

// DecodeOne decodes the single instruction at data[off]. base is the CPU
// address of data[0]. It returns the instruction and the number of bytes
// consumed, which is at least 1 on success.
//
// An undefined opcode byte is not an error: it comes back as a one-byte
// ".byte" row with Data set. ErrTruncated means the opcode is defined but
// its operand bytes run past the buffer; callers that want to render the
// tail anyway can fall back to Data rows themselves.
func DecodeOne(data []byte, off int, base uint16) (Instruction, int, error) {
	if off < 0 || off >= len(data) {
		return Instruction{}, 0, fmt.Errorf("offset %d of %d bytes: %w", off, len(data), ErrInvalidRange)
	}

	addr := base + uint16(off)
	b := data[off]
	op, ok := Lookup(b)
	if !ok {
		return Instruction{
			Addr:     addr,
			Raw:      data[off : off+1],
			Mnemonic: ".byte",
			Data:     true,
		}, 1, nil
	}

	size := op.Size()
	if off+size > len(data) {
		return Instruction{}, 0, fmt.Errorf("%s at $%04X needs %d bytes, %d left: %w",
			op.Mnemonic, addr, size, len(data)-off, ErrTruncated)
	}

	in := Instruction{
		Addr:     addr,
		Raw:      data[off : off+size],
		Mnemonic: op.Mnemonic,
		Mode:     op.Mode,
	}
	switch size {
	case 2:
		in.Operand = uint16(data[off+1])
		in.HasOperand = true
	case 3:
		in.Operand = uint16(data[off+1]) | uint16(data[off+2])<<8
		in.HasOperand = true
	}
	return in, size, nil
}

// DecodeRange decodes linearly from start until end (exclusive, clamped to
// the buffer). base is the CPU address of data[0]. Addresses in the result
// are strictly increasing. The run is fully deterministic: decoding the same
// range twice yields identical instructions.
//
// A defined opcode whose operand is cut off by the end of the buffer stops
// the run cleanly; the instructions decoded so far are returned without a
// misleading partial row.
func DecodeRange(data []byte, start, end int, base uint16) ([]Instruction, error) {
	if start < 0 || start >= len(data) || end < start {
		return nil, fmt.Errorf("range [%d,%d) of %d bytes: %w", start, end, len(data), ErrInvalidRange)
	}
	if end > len(data) {
		end = len(data)
	}

	var out []Instruction
	for off := start; off < end; {
		in, n, err := DecodeOne(data, off, base)
		if err != nil {
			if errors.Is(err, ErrTruncated) {
				break
			}
			return out, err
		}
		// Don't run past the requested end with a multi-byte instruction.
		if off+n > end {
			break
		}
		out = append(out, in)
		off += n
	}
	return out, nil
}
