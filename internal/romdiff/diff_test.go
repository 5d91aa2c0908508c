package romdiff

import (
	"testing"

	"nesrev/internal/ines"
)

func TestDiff(t *testing.T) {
	a := []byte{1, 2, 3, 4, 5}
	b := []byte{1, 9, 3, 4, 8}
	diffs := Diff(a, b)
	if len(diffs) != 2 {
		t.Fatalf("got %d diffs, want 2", len(diffs))
	}
	if diffs[0] != (ByteDiff{Offset: 1, A: 2, B: 9}) {
		t.Errorf("first diff = %+v", diffs[0])
	}
	if diffs[1] != (ByteDiff{Offset: 4, A: 5, B: 8}) {
		t.Errorf("second diff = %+v", diffs[1])
	}

	if got := Diff(a, a); got != nil {
		t.Errorf("identical buffers diff: %+v", got)
	}

	// Length mismatch compares the common prefix only.
	if got := Diff([]byte{1, 2}, []byte{1, 2, 3, 4}); got != nil {
		t.Errorf("prefix-equal buffers diff: %+v", got)
	}
}

func TestGroupDiffs(t *testing.T) {
	diffs := []ByteDiff{
		{Offset: 10}, {Offset: 12}, {Offset: 16}, // one group, gaps <= 4
		{Offset: 30}, {Offset: 31},               // second group
	}
	groups := GroupDiffs(diffs, DefaultGap)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Start() != 10 || groups[0].End() != 16 || groups[0].Span() != 7 {
		t.Errorf("group 0 = [%d,%d] span %d", groups[0].Start(), groups[0].End(), groups[0].Span())
	}
	if len(groups[1].Diffs) != 2 {
		t.Errorf("group 1 has %d diffs", len(groups[1].Diffs))
	}

	largest, ok := Largest(groups)
	if !ok || largest.Start() != 10 {
		t.Errorf("largest = %+v ok=%v", largest, ok)
	}

	if got := GroupDiffs(nil, DefaultGap); got != nil {
		t.Errorf("GroupDiffs(nil) = %+v", got)
	}
	if _, ok := Largest(nil); ok {
		t.Error("Largest(nil) reported a group")
	}
}

// The merge predicate is on the offset delta, not the count of unchanged
// bytes in between: delta == gap still merges, delta == gap+1 splits.
func TestGroupDiffsGapBoundary(t *testing.T) {
	merged := GroupDiffs([]ByteDiff{{Offset: 0}, {Offset: DefaultGap}}, DefaultGap)
	if len(merged) != 1 {
		t.Errorf("delta %d: got %d groups, want 1", DefaultGap, len(merged))
	}
	split := GroupDiffs([]ByteDiff{{Offset: 0}, {Offset: DefaultGap + 1}}, DefaultGap)
	if len(split) != 2 {
		t.Errorf("delta %d: got %d groups, want 2", DefaultGap+1, len(split))
	}
}

func TestSplitRegions(t *testing.T) {
	diffs := []ByteDiff{{Offset: 3}, {Offset: 20}, {Offset: 100}, {Offset: 40000}}
	r := SplitRegions(diffs, 16, 16+32768)
	if r.Header != 1 || r.PRG != 2 || r.CHR != 1 {
		t.Errorf("regions = %+v", r)
	}
}

func TestScan(t *testing.T) {
	rom := buildTestROM(t, nil)
	needle := []byte("LOL!")
	copy(rom.Raw[rom.PRGStart()+0x100:], needle)
	copy(rom.Raw[rom.PRGStart()+0x200:], needle)

	res := Scan(rom, needle)
	if res.Count != 2 {
		t.Errorf("count = %d, want 2", res.Count)
	}
	if res.FirstAddr != 0x8100 {
		t.Errorf("first hit at $%04X, want $8100", res.FirstAddr)
	}

	if res := Scan(rom, []byte("not there")); res.Count != 0 || res.FirstOff != -1 {
		t.Errorf("absent needle: %+v", res)
	}
}

// buildTestROM makes a 1-bank image with code at the start of PRG.
func buildTestROM(t *testing.T, code []byte) *ines.Image {
	t.Helper()
	raw := make([]byte, ines.HeaderSize+16*1024)
	copy(raw, []byte{'N', 'E', 'S', 0x1A, 1, 0, 0, 0})
	copy(raw[ines.HeaderSize:], code)
	img, err := ines.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return img
}
