package ines

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// buildROM assembles a minimal iNES image: header, one 16K PRG bank with the
// given code at its start, no CHR.
func buildROM(code []byte) []byte {
	rom := make([]byte, HeaderSize+16*1024)
	copy(rom, []byte{'N', 'E', 'S', 0x1A, 1, 0, 0, 0})
	copy(rom[HeaderSize:], code)
	return rom
}

func TestParse(t *testing.T) {
	rom := buildROM([]byte{0xA9, 0x05, 0xEA})
	// Reset vector at $FFFC -> $8000.
	rom[len(rom)-4] = 0x00
	rom[len(rom)-3] = 0x80

	img, err := Parse(rom)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if img.PRGBanks != 1 || img.CHRBanks != 0 || img.Mapper != 0 || img.Trainer {
		t.Errorf("header = %+v", img)
	}
	if len(img.PRG) != 16*1024 || len(img.CHR) != 0 {
		t.Errorf("PRG %d bytes, CHR %d bytes", len(img.PRG), len(img.CHR))
	}
	if img.PRG[0] != 0xA9 {
		t.Errorf("PRG starts with $%02X, want $A9", img.PRG[0])
	}

	_, reset, _ := img.Vectors()
	if reset != 0x8000 {
		t.Errorf("reset vector $%04X, want $8000", reset)
	}
}

func TestAddressTranslation(t *testing.T) {
	img, err := Parse(buildROM(nil))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := img.AddrOf(HeaderSize); got != LoadBase {
		t.Errorf("AddrOf(16) = $%04X, want $8000", got)
	}
	if got := img.AddrOf(0x20); got != 0x8010 {
		t.Errorf("AddrOf(0x20) = $%04X, want $8010", got)
	}
	if got := img.OffsetOf(0x8010); got != 0x20 {
		t.Errorf("OffsetOf($8010) = %d, want 32", got)
	}
	// Round trip.
	for _, off := range []int{16, 100, 4096} {
		if back := img.OffsetOf(img.AddrOf(off)); back != off {
			t.Errorf("offset %d round-trips to %d", off, back)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("not a rom")); !errors.Is(err, ErrBadMagic) {
		t.Errorf("short garbage: %v, want ErrBadMagic", err)
	}
	if _, err := Parse([]byte{'N', 'E', 'S', 0x1A, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}); !errors.Is(err, ErrShortFile) {
		t.Errorf("bank count past EOF: %v, want ErrShortFile", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.nes")
	if err := os.WriteFile(path, buildROM([]byte{0xEA}), 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if img.Path != path {
		t.Errorf("Path = %q", img.Path)
	}
	if len(img.Digest()) != 64 {
		t.Errorf("digest %q not a sha256 hex string", img.Digest())
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.nes")); err == nil {
		t.Error("Open of missing file succeeded")
	}
}
