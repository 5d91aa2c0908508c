package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"nesrev/internal/ines"
	"nesrev/internal/mos6502"
	"nesrev/internal/ui/colorize"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <file.nes> [start] [end]",
	Short: "Disassemble the PRG section of a ROM",
	Long: `Disassemble the program section of an iNES image linearly from start
to end. Start and end are CPU addresses in hex, like 8500; the default
range is $8000 to the end of PRG.`,
	Example: `
# Full PRG listing
nesrev disasm game.nes

# Just the reset handler region
nesrev disasm game.nes 8000 8100
  `,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := ines.Open(args[0])
		if err != nil {
			return err
		}

		// Default range is the whole PRG section; overrides arrive as CPU
		// addresses and get translated back to file offsets.
		startOff := img.PRGStart()
		endOff := img.PRGStart() + len(img.PRG)
		if len(args) > 1 {
			start, err := parseAddr(args[1])
			if err != nil {
				return err
			}
			startOff = img.OffsetOf(start)
		}
		if len(args) > 2 {
			end, err := parseAddr(args[2])
			if err != nil {
				return err
			}
			endOff = img.OffsetOf(end)
		}
		slog.Debug("Disassembling", "file", img.Path, "startOff", startOff, "endOff", endOff)
		ins, err := mos6502.DecodeRange(img.Raw, startOff, endOff, img.AddrOf(0))
		if err != nil {
			return fmt.Errorf("disassemble %s: %w", img.Path, err)
		}

		color := term.IsTerminal(os.Stdout.Fd())
		for _, in := range ins {
			line := in.String()
			if color {
				line = colorize.Line(line)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func parseAddr(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: expected hex like 8500", s)
	}
	return uint16(v), nil
}
