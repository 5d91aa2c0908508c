// Package romdiff compares two ROM images byte-by-byte and, where they
// diverge inside the program section, instruction-by-instruction.
package romdiff

import (
	"bytes"

	"nesrev/internal/ines"
)

// ByteDiff is a single differing byte at a file offset.
type ByteDiff struct {
	Offset int
	A, B   byte
}

// Diff reports every differing byte over the common prefix of a and b.
func Diff(a, b []byte) []ByteDiff {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var diffs []ByteDiff
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			diffs = append(diffs, ByteDiff{Offset: i, A: a[i], B: b[i]})
		}
	}
	return diffs
}

// Regions buckets diffs by the file region they fall in.
type Regions struct {
	Header int
	PRG    int
	CHR    int
}

// SplitRegions counts diffs per region. prgEnd is the file offset one past
// the PRG section.
func SplitRegions(diffs []ByteDiff, prgStart, prgEnd int) Regions {
	var r Regions
	for _, d := range diffs {
		switch {
		case d.Offset < prgStart:
			r.Header++
		case d.Offset < prgEnd:
			r.PRG++
		default:
			r.CHR++
		}
	}
	return r
}

// Group is a run of nearby diffs.
type Group struct {
	Diffs []ByteDiff
}

// Start and End return the first and last differing file offsets.
func (g Group) Start() int { return g.Diffs[0].Offset }
func (g Group) End() int   { return g.Diffs[len(g.Diffs)-1].Offset }

// Span is the byte distance covered, endpoints included.
func (g Group) Span() int { return g.End() - g.Start() + 1 }

// GroupDiffs merges diffs into contiguous groups, joining runs whose offsets
// differ by at most gap (so up to gap-1 unchanged bytes between them).
func GroupDiffs(diffs []ByteDiff, gap int) []Group {
	if len(diffs) == 0 {
		return nil
	}
	var groups []Group
	current := Group{Diffs: []ByteDiff{diffs[0]}}
	for _, d := range diffs[1:] {
		if d.Offset-current.End() <= gap {
			current.Diffs = append(current.Diffs, d)
		} else {
			groups = append(groups, current)
			current = Group{Diffs: []ByteDiff{d}}
		}
	}
	return append(groups, current)
}

// Largest returns the group with the most differing bytes.
func Largest(groups []Group) (Group, bool) {
	if len(groups) == 0 {
		return Group{}, false
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if len(g.Diffs) > len(best.Diffs) {
			best = g
		}
	}
	return best, true
}

// ScanResult summarizes occurrences of a byte pattern in one image.
type ScanResult struct {
	Count     int
	FirstOff  int    // file offset of the first hit, -1 when absent
	FirstAddr uint16 // CPU address of the first hit
}

// Scan counts non-overlapping occurrences of needle in the image, starting
// at the PRG section.
func Scan(img *ines.Image, needle []byte) ScanResult {
	res := ScanResult{FirstOff: -1}
	if len(needle) == 0 {
		return res
	}
	idx := img.PRGStart()
	for {
		rel := bytes.Index(img.Raw[idx:], needle)
		if rel < 0 {
			return res
		}
		idx += rel
		if res.Count == 0 {
			res.FirstOff = idx
			res.FirstAddr = img.AddrOf(idx)
		}
		res.Count++
		idx += len(needle)
	}
}
