// Package colorize applies terminal syntax highlighting to disassembly
// listings. Colors are skipped entirely when NESREV_NO_COLOR is set.
package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// getAssemblyLexer returns an assembly lexer with fallbacks. Chroma has no
// dedicated 6502 lexer; nasm tokenizes mnemonics and $-less hex acceptably.
func getAssemblyLexer() chroma.Lexer {
	candidates := []string{"nasm", "tasm", "gas", "GAS"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// getListingStyle returns the listing style with fallbacks.
func getListingStyle() *chroma.Style {
	candidates := []string{"nesrev-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns a terminal formatter, high-color first.
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Listing highlights a whole multi-line disassembly listing.
func Listing(code string) (string, error) {
	if os.Getenv("NESREV_NO_COLOR") != "" {
		return code, nil
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return code, nil
	}

	style := getListingStyle()
	formatter := getTerminalFormatter()

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// Line colorizes a single listing row while preserving its column layout.
// Rows look like "$8000: A9 05     LDA #$05"; the address column comes out
// gray and the rest goes through chroma.
func Line(line string) string {
	if os.Getenv("NESREV_NO_COLOR") != "" {
		return line
	}

	addr, rest, ok := strings.Cut(line, " ")
	if !ok || !isAddrColumn(addr) {
		return colorizeFullLine(line)
	}

	addrColored := fmt.Sprintf("\033[38;2;79;79;79m%s\033[0m", addr)
	return fmt.Sprintf("%s %s", addrColored, colorizeFullLine(rest))
}

func isAddrColumn(s string) bool {
	if len(s) < 2 || s[0] != '$' || s[len(s)-1] != ':' {
		return false
	}
	for i := 1; i < len(s)-1; i++ {
		if !isHexChar(s[i]) {
			return false
		}
	}
	return true
}

func isHexChar(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func colorizeFullLine(line string) string {
	colorized, err := Listing(line)
	if err != nil {
		return line
	}
	// Chroma appends a newline to single-line input.
	return strings.TrimSuffix(colorized, "\n")
}
