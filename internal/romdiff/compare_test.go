package romdiff

import (
	"testing"
)

func TestCompareRelocated(t *testing.T) {
	// Same routine, string data placed at $9000 in one build and $9200 in
	// the other. Normalization should make the loads compare equal.
	codeA := []byte{
		0xA9, 0x05, // LDA #$05
		0xAD, 0x00, 0x90, // LDA $9000
		0x20, 0x10, 0x80, // JSR $8010
		0x60, // RTS
	}
	codeB := []byte{
		0xA9, 0x05,
		0xAD, 0x00, 0x92, // LDA $9200
		0x20, 0x10, 0x80,
		0x60,
	}
	a := buildTestROM(t, codeA)
	b := buildTestROM(t, codeB)

	res := Compare(a, b, a.PRGStart(), len(codeA))
	if len(res.Rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(res.Rows))
	}
	if res.Mismatches != 0 {
		for _, r := range res.Rows {
			t.Logf("%04X %-16s | %04X %-16s | match=%v", r.AddrA, r.TextA, r.AddrB, r.TextB, r.Match)
		}
		t.Errorf("mismatches = %d, want 0", res.Mismatches)
	}
	if res.Rows[0].AddrA != 0x8000 {
		t.Errorf("first row at $%04X, want $8000", res.Rows[0].AddrA)
	}
}

func TestCompareRealMismatch(t *testing.T) {
	// Immediate operands are semantic, not relocation noise.
	a := buildTestROM(t, []byte{0xA9, 0x05, 0x60})
	b := buildTestROM(t, []byte{0xA9, 0x06, 0x60})

	res := Compare(a, b, a.PRGStart(), 3)
	if res.Mismatches != 1 {
		t.Errorf("mismatches = %d, want 1", res.Mismatches)
	}
	if res.Rows[0].Match {
		t.Error("differing immediates reported as matching")
	}
	if !res.Rows[1].Match {
		t.Error("identical RTS reported as mismatch")
	}
}

func TestSnapStart(t *testing.T) {
	// LDA #$05 (2) / LDA $9000 (3) / RTS (1) at PRG offsets 16, 18, 21.
	img := buildTestROM(t, []byte{0xA9, 0x05, 0xAD, 0x00, 0x90, 0x60})

	tests := []struct {
		off  int
		want int
	}{
		{16, 16}, // already a boundary
		{17, 16}, // operand of the immediate load
		{18, 18},
		{20, 18}, // high operand byte of the absolute load
		{21, 21},
	}
	for _, tt := range tests {
		if got := SnapStart(img, tt.off); got != tt.want {
			t.Errorf("SnapStart(%d) = %d, want %d", tt.off, got, tt.want)
		}
	}

	// Offsets outside PRG come back untouched.
	if got := SnapStart(img, 3); got != 3 {
		t.Errorf("SnapStart(3) = %d, want 3", got)
	}
}

func TestCompareDeterministic(t *testing.T) {
	a := buildTestROM(t, []byte{0xA9, 0x05, 0x4C, 0x00, 0x90, 0xFF, 0x60})
	b := buildTestROM(t, []byte{0xA9, 0x05, 0x4C, 0x40, 0x91, 0xFF, 0x60})
	first := Compare(a, b, a.PRGStart(), 7)
	second := Compare(a, b, a.PRGStart(), 7)
	if len(first.Rows) != len(second.Rows) || first.Mismatches != second.Mismatches {
		t.Error("two runs of Compare disagree")
	}
}
