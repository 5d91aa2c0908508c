// Package ines opens iNES cartridge images and maps file offsets to CPU
// addresses. The 16-byte header is parsed here so the decoding core only
// ever sees stripped program bytes plus an address base.
package ines

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
)

const (
	// HeaderSize is the fixed iNES header length.
	HeaderSize = 16

	// LoadBase is the CPU address the PRG section is mapped at.
	LoadBase = 0x8000

	// TrainerSize is the optional trainer blob between header and PRG.
	TrainerSize = 512

	prgBankSize = 16 * 1024
	chrBankSize = 8 * 1024
)

var (
	ErrBadMagic  = errors.New("ines: missing NES<EOF> magic")
	ErrShortFile = errors.New("ines: file shorter than its header claims")
)

// Image is a fully loaded cartridge image.
type Image struct {
	Path string
	Raw  []byte // entire file, header included

	PRGBanks int // 16 KiB units
	CHRBanks int // 8 KiB units
	Mapper   int
	Trainer  bool

	PRG []byte // program section, sliced out of Raw
	CHR []byte // character section, may be empty
}

// Open reads and parses the image at path.
func Open(path string) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ines: %w", err)
	}
	img, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img.Path = path
	return img, nil
}

// Parse builds an Image from an in-memory file.
func Parse(raw []byte) (*Image, error) {
	if len(raw) < HeaderSize || raw[0] != 'N' || raw[1] != 'E' || raw[2] != 'S' || raw[3] != 0x1A {
		return nil, ErrBadMagic
	}

	flags6, flags7 := raw[6], raw[7]
	img := &Image{
		Raw:      raw,
		PRGBanks: int(raw[4]),
		CHRBanks: int(raw[5]),
		Mapper:   int(flags7&0xF0) | int(flags6>>4),
		Trainer:  flags6&0x04 != 0,
	}

	prgStart := img.PRGStart()
	prgLen := img.PRGBanks * prgBankSize
	if prgStart+prgLen > len(raw) {
		return nil, fmt.Errorf("%d PRG banks in a %d byte file: %w", img.PRGBanks, len(raw), ErrShortFile)
	}
	img.PRG = raw[prgStart : prgStart+prgLen]

	chrStart := prgStart + prgLen
	chrLen := img.CHRBanks * chrBankSize
	if chrStart+chrLen > len(raw) {
		return nil, fmt.Errorf("%d CHR banks in a %d byte file: %w", img.CHRBanks, len(raw), ErrShortFile)
	}
	img.CHR = raw[chrStart : chrStart+chrLen]
	return img, nil
}

// PRGStart returns the file offset of the first PRG byte.
func (img *Image) PRGStart() int {
	if img.Trainer {
		return HeaderSize + TrainerSize
	}
	return HeaderSize
}

// AddrOf translates a file offset inside the PRG section to its CPU address.
func (img *Image) AddrOf(fileOff int) uint16 {
	return uint16(LoadBase + fileOff - img.PRGStart())
}

// OffsetOf translates a CPU address back to a file offset.
func (img *Image) OffsetOf(addr uint16) int {
	return int(addr) - LoadBase + img.PRGStart()
}

// Vectors returns the NMI, RESET and IRQ entry addresses from the top of the
// mapped PRG ($FFFA-$FFFF). Smaller-than-32K PRG is mirrored into the top of
// the address space, so the last six PRG bytes hold the vectors either way.
func (img *Image) Vectors() (nmi, reset, irq uint16) {
	n := len(img.PRG)
	if n < 6 {
		return 0, 0, 0
	}
	word := func(off int) uint16 {
		return uint16(img.PRG[off]) | uint16(img.PRG[off+1])<<8
	}
	return word(n - 6), word(n - 4), word(n - 2)
}

// Digest returns the SHA-256 of the whole file as a hex string.
func (img *Image) Digest() string {
	return fmt.Sprintf("%x", sha256.Sum256(img.Raw))
}

// Summary is a one-line header description for logs and the overview pane.
func (img *Image) Summary() string {
	return fmt.Sprintf("PRG %dx16K, CHR %dx8K, mapper %d", img.PRGBanks, img.CHRBanks, img.Mapper)
}
