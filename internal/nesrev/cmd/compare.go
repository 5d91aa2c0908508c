package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"nesrev/internal/ines"
	"nesrev/internal/nesrev/styles"
	"nesrev/internal/romdiff"
)

// CompareOutput is the machine-readable compare result for regression testing
type CompareOutput struct {
	PathA       string   `json:"path_a"`
	PathB       string   `json:"path_b"`
	SizeA       int      `json:"size_a"`
	SizeB       int      `json:"size_b"`
	TotalDiffs  int      `json:"total_diffs"`
	HeaderDiffs int      `json:"header_diffs"`
	PRGDiffs    int      `json:"prg_diffs"`
	CHRDiffs    int      `json:"chr_diffs"`
	Groups      []string `json:"groups"`
	Mismatches  int      `json:"instruction_mismatches"`
}

var compareCmd = &cobra.Command{
	Use:   "compare <a.nes> <b.nes>",
	Short: "Compare two builds of a ROM",
	Long: `Compare two iNES images byte-by-byte, group the differences, and
disassemble both sides of the largest program-section group in lockstep.
Absolute operands are wildcarded before comparing, so two builds that only
place their routines at different addresses come out clean.`,
	Example: `
# Compare a reference build against ours
nesrev compare cc65.nes ours.nes

# Count occurrences of a data string in both images on the way
nesrev compare --find 'LOL!' cc65.nes ours.nes

# Regression-friendly output
nesrev compare --json cc65.nes ours.nes
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := ines.Open(args[0])
		if err != nil {
			return err
		}
		b, err := ines.Open(args[1])
		if err != nil {
			return err
		}

		jsonOut, _ := cmd.Flags().GetBool("json")
		report, _ := cmd.Flags().GetBool("report")
		find, _ := cmd.Flags().GetString("find")

		res := runCompare(a, b, find)

		if jsonOut {
			bts, err := json.MarshalIndent(res.output(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(bts))
			return nil
		}
		if report {
			return renderReport(res)
		}
		printCompare(res)
		return nil
	},
}

// compareResult gathers everything the three output modes need.
type compareResult struct {
	a, b     *ines.Image
	diffs    []romdiff.ByteDiff
	regions  romdiff.Regions
	groups   []romdiff.Group
	needle   string
	scanA    romdiff.ScanResult
	scanB    romdiff.ScanResult
	lockstep romdiff.Result
	hasLock  bool
	lockOff  int
}

func runCompare(a, b *ines.Image, find string) compareResult {
	res := compareResult{a: a, b: b, needle: find}

	res.diffs = romdiff.Diff(a.Raw, b.Raw)
	prgStart := a.PRGStart()
	prgEnd := prgStart + len(a.PRG)
	res.regions = romdiff.SplitRegions(res.diffs, prgStart, prgEnd)
	res.groups = romdiff.GroupDiffs(res.diffs, romdiff.DefaultGap)

	if find != "" {
		needle := parseNeedle(find)
		res.scanA = romdiff.Scan(a, needle)
		res.scanB = romdiff.Scan(b, needle)
	}

	// Disassemble both sides of the largest PRG diff group.
	if res.regions.PRG > 0 {
		var prgGroups []romdiff.Group
		for _, g := range res.groups {
			if g.Start() >= prgStart && g.Start() < prgEnd {
				prgGroups = append(prgGroups, g)
			}
		}
		if largest, ok := romdiff.Largest(prgGroups); ok {
			// Snap back to an instruction boundary so the listing doesn't
			// start inside an operand.
			startOff := romdiff.SnapStart(a, largest.Start())
			span := largest.End() - startOff + 1 + romdiff.ContextBytes
			res.lockstep = romdiff.Compare(a, b, startOff, span)
			res.hasLock = true
			res.lockOff = startOff
		}
	}

	slog.Debug("Compared images",
		"diffs", len(res.diffs), "groups", len(res.groups), "mismatches", res.lockstep.Mismatches)
	return res
}

// parseNeedle accepts either an even-length hex string ("4C4F4C21") or a
// literal byte string ("LOL!").
func parseNeedle(s string) []byte {
	if len(s)%2 == 0 {
		if b, err := hex.DecodeString(s); err == nil {
			return b
		}
	}
	return []byte(s)
}

func (res compareResult) output() CompareOutput {
	out := CompareOutput{
		PathA:       res.a.Path,
		PathB:       res.b.Path,
		SizeA:       len(res.a.Raw),
		SizeB:       len(res.b.Raw),
		TotalDiffs:  len(res.diffs),
		HeaderDiffs: res.regions.Header,
		PRGDiffs:    res.regions.PRG,
		CHRDiffs:    res.regions.CHR,
		Mismatches:  res.lockstep.Mismatches,
	}
	for _, g := range res.groups {
		out.Groups = append(out.Groups, fmt.Sprintf("0x%04X: %d diffs, %d byte span",
			g.Start(), len(g.Diffs), g.Span()))
	}
	return out
}

func printCompare(res compareResult) {
	fmt.Printf("File sizes: %s=%d, %s=%d\n", res.a.Path, len(res.a.Raw), res.b.Path, len(res.b.Raw))
	fmt.Printf("Total byte diffs: %d (header=%d, PRG=%d, CHR=%d)\n",
		len(res.diffs), res.regions.Header, res.regions.PRG, res.regions.CHR)

	if len(res.groups) > 0 {
		fmt.Println()
		fmt.Println("Diff groups:")
		for _, g := range res.groups {
			fmt.Printf("  0x%04X (NES $%04X): %d diffs, %d byte span\n",
				g.Start(), res.a.AddrOf(g.Start()), len(g.Diffs), g.Span())
		}
	}

	if res.needle != "" {
		fmt.Println()
		for _, side := range []struct {
			label string
			scan  romdiff.ScanResult
		}{{res.a.Path, res.scanA}, {res.b.Path, res.scanB}} {
			if side.scan.Count > 0 {
				fmt.Printf("%s: %d copies of %q, first at NES $%04X\n",
					side.label, side.scan.Count, res.needle, side.scan.FirstAddr)
			} else {
				fmt.Printf("%s: %q not found\n", side.label, res.needle)
			}
		}
	}

	if !res.hasLock {
		return
	}

	color := term.IsTerminal(os.Stdout.Fd())
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	diffStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)

	fmt.Println()
	fmt.Printf("Largest PRG diff group, disassembled from 0x%04X (NES $%04X):\n",
		res.lockOff, res.a.AddrOf(res.lockOff))
	fmt.Printf("%-30s | %-30s | Match?\n", res.a.Path, res.b.Path)
	fmt.Println(strings.Repeat("-", 75))
	for _, row := range res.lockstep.Rows {
		status := "OK"
		if !row.Match {
			status = "** DIFF **"
		}
		if color {
			if row.Match {
				status = okStyle.Render(status)
			} else {
				status = diffStyle.Render(status)
			}
		}
		fmt.Printf("%04X %-25s | %04X %-25s | %s\n",
			row.AddrA, row.TextA, row.AddrB, row.TextB, status)
	}
	fmt.Println()
	fmt.Printf("Instruction mismatches (ignoring addresses): %d\n", res.lockstep.Mismatches)
}

// renderReport prints the comparison as glamour-rendered markdown.
func renderReport(res compareResult) error {
	var md strings.Builder

	fmt.Fprintf(&md, "# ROM comparison\n\n")
	fmt.Fprintf(&md, "**A:** `%s` (%d bytes)\n\n", res.a.Path, len(res.a.Raw))
	fmt.Fprintf(&md, "**B:** `%s` (%d bytes)\n\n", res.b.Path, len(res.b.Raw))
	fmt.Fprintf(&md, "Total byte diffs: **%d** (header=%d, PRG=%d, CHR=%d)\n\n",
		len(res.diffs), res.regions.Header, res.regions.PRG, res.regions.CHR)

	if len(res.groups) > 0 {
		fmt.Fprintf(&md, "## Diff groups\n\n")
		for _, g := range res.groups {
			fmt.Fprintf(&md, "- `0x%04X` (NES `$%04X`): %d diffs, %d byte span\n",
				g.Start(), res.a.AddrOf(g.Start()), len(g.Diffs), g.Span())
		}
		fmt.Fprintf(&md, "\n")
	}

	if res.hasLock {
		fmt.Fprintf(&md, "## Largest group, disassembled from NES $%04X\n\n```\n",
			res.a.AddrOf(res.lockOff))
		for _, row := range res.lockstep.Rows {
			status := "OK"
			if !row.Match {
				status = "** DIFF **"
			}
			fmt.Fprintf(&md, "%04X %-25s | %04X %-25s | %s\n",
				row.AddrA, row.TextA, row.AddrB, row.TextB, status)
		}
		fmt.Fprintf(&md, "```\n\nInstruction mismatches (ignoring addresses): **%d**\n",
			res.lockstep.Mismatches)
	}

	width := 100
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		width = w
	}
	renderer := styles.GetMarkdownRenderer(width - 2)
	rendered, err := renderer.Render(md.String())
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}

func init() {
	compareCmd.Flags().BoolP("json", "j", false, "Output results as JSON for regression testing")
	compareCmd.Flags().Bool("report", false, "Render the comparison as a markdown report")
	compareCmd.Flags().String("find", "", "Also count a byte pattern (hex or literal) in both images")
}
