package mos6502

import "strings"

// absMnemonics are the mnemonics whose absolute (and absolute-indexed)
// operands get wildcarded by Normalize. These are the instructions whose
// operand is a code or data address that shifts when two otherwise
// equivalent binaries lay out routines differently.
var absMnemonics = map[string]bool{
	"JSR": true, "JMP": true,
	"STA": true, "STX": true, "STY": true,
	"LDA": true, "LDX": true, "LDY": true,
	"INC": true, "DEC": true,
	"CMP": true, "CPX": true, "CPY": true, "BIT": true,
	"ORA": true, "AND": true, "EOR": true, "ADC": true, "SBC": true,
	"ASL": true, "ROL": true, "LSR": true, "ROR": true,
}

// Normalize rewrites a rendered instruction so that two relocation-shifted
// but control-flow-equivalent streams compare equal under string equality:
// a 4-hex-digit absolute operand of an address-taking mnemonic becomes
// "$????". Immediates, zero-page and relative operands pass through
// untouched, and the function is idempotent.
func Normalize(text string) string {
	mne, operand, ok := strings.Cut(text, " ")
	if !ok || !absMnemonics[mne] {
		return text
	}

	// Peel indirect parentheses and index suffixes so "$9000", "$9000,X",
	// "$9000,Y" and "($9000)" all wildcard the same way.
	prefix, suffix := "", ""
	core := operand
	if strings.HasPrefix(core, "(") && strings.HasSuffix(core, ")") {
		prefix, suffix = "(", ")"
		core = core[1 : len(core)-1]
	}
	if n := len(core); n > 2 && (strings.HasSuffix(core, ",X") || strings.HasSuffix(core, ",Y")) {
		suffix = core[n-2:] + suffix
		core = core[:n-2]
	}

	if len(core) != 5 || core[0] != '$' || !isHex4(core[1:]) {
		return text
	}
	return mne + " " + prefix + "$????" + suffix
}

func isHex4(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'F':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return len(s) == 4
}
