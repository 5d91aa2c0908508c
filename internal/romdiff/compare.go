package romdiff

import (
	"nesrev/internal/ines"
	"nesrev/internal/mos6502"
)

// DefaultGap is how many unchanged bytes may separate diffs that still
// belong to the same group. Compilers shuffle operand bytes inside otherwise
// identical code, so adjacent diffs a few bytes apart are one logical edit.
const DefaultGap = 4

// ContextBytes is how far past a diff group the comparison disassembly runs.
const ContextBytes = 50

// Row is one lockstep pair of decoded instructions.
type Row struct {
	AddrA uint16
	TextA string
	AddrB uint16
	TextB string
	Match bool // true when the normalized texts agree
}

// Result is a lockstep comparison of two decoded streams.
type Result struct {
	Rows       []Row
	Mismatches int
}

// SnapStart walks img's instruction stream from the top of PRG and returns
// the start offset of the instruction covering off, so a comparison never
// begins in the middle of an operand. Falls back to off itself when it lies
// outside the PRG section.
func SnapStart(img *ines.Image, off int) int {
	prgStart := img.PRGStart()
	prgEnd := prgStart + len(img.PRG)
	if off < prgStart || off >= prgEnd {
		return off
	}
	cursor := prgStart
	for cursor < off {
		_, n, err := mos6502.DecodeOne(img.Raw, cursor, img.AddrOf(0))
		if err != nil {
			return off
		}
		if cursor+n > off {
			break
		}
		cursor += n
	}
	return cursor
}

// Compare disassembles both images from the same file offset for span bytes
// and walks the streams in lockstep, comparing normalized text so that
// relocation-shifted absolute operands do not count as mismatches.
func Compare(a, b *ines.Image, startOff, span int) Result {
	insA := decodeAt(a, startOff, span)
	insB := decodeAt(b, startOff, span)

	var res Result
	n := len(insA)
	if len(insB) < n {
		n = len(insB)
	}
	for i := 0; i < n; i++ {
		row := Row{
			AddrA: insA[i].Addr,
			TextA: insA[i].Text(),
			AddrB: insB[i].Addr,
			TextB: insB[i].Text(),
		}
		row.Match = mos6502.Normalize(row.TextA) == mos6502.Normalize(row.TextB)
		if !row.Match {
			res.Mismatches++
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

func decodeAt(img *ines.Image, startOff, span int) []mos6502.Instruction {
	end := startOff + span
	if end > len(img.Raw) {
		end = len(img.Raw)
	}
	if startOff < 0 || startOff >= len(img.Raw) {
		return nil
	}
	base := img.AddrOf(0) // lets file offsets index straight into Raw
	ins, err := mos6502.DecodeRange(img.Raw, startOff, end, base)
	if err != nil {
		return nil
	}
	return ins
}
