package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

func init() {
	// Register our custom disassembly style on package initialization
	_ = ListingDark
}

// ListingDark is a custom style for 6502 listings matching our color scheme
var ListingDark = styles.Register(chroma.MustNewStyle("nesrev-dark", chroma.StyleEntries{
	chroma.Text:           "#FFFFFF",    // Default text white
	chroma.Background:     "bg:#1e1e1e", // Dark background
	chroma.Comment:        "#6A9955",    // Comments in green
	chroma.CommentPreproc: "#6A9955",

	// Mnemonics come out of the asm lexers as keywords or names
	chroma.Keyword:       "#FFFFFF",
	chroma.KeywordPseudo: "#FFFFFF", // .byte rows
	chroma.Name:          "#7C9C9D", // X/Y index registers in teal
	chroma.NameBuiltin:   "#7C9C9D",
	chroma.NameVariable:  "#7C9C9D",
	chroma.NameFunction:  "#FFFFFF", // some lexers tokenize mnemonics as functions

	// Hex operands
	chroma.LiteralNumber:        "#FF5F87",
	chroma.LiteralNumberHex:     "#FF5F87",
	chroma.LiteralNumberBin:     "#FF5F87",
	chroma.LiteralNumberInteger: "#FF5F87",

	chroma.NameLabel: "#FFD700", // Labels in gold

	chroma.Operator:    "#FFFFFF",
	chroma.Punctuation: "#FFFFFF",
	chroma.String:      "#EACD53",
}))
