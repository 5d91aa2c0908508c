package cmd

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	pathpkg "path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nesrev/internal/ines"
	"nesrev/internal/romdiff"
)

// patternMatch is one occurrence of the pattern in one file.
type patternMatch struct {
	Path  string
	Count int
	Off   int    // file offset of the first occurrence
	Addr  uint16 // NES address of the first occurrence, when mappable
	InPRG bool
}

var findCmd = &cobra.Command{
	Use:   "find <hex|string> <file|dir>",
	Short: "Search ROMs for a byte pattern",
	Long: `Search an iNES image, or every .nes file under a directory, for a byte
pattern. The pattern is hex when it parses as hex ("4C4F4C21"), a literal
byte string otherwise ("LOL!").`,
	Example: `
# Where did the string data end up?
nesrev find 'LOL!' game.nes

# Same search across a whole build tree
nesrev find -r 4C4F4C21 ./builds
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		needle := parseNeedle(args[0])
		recursive, _ := cmd.Flags().GetBool("recursive")

		matches, err := findPattern(args[1], needle, recursive)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if m.InPRG {
				fmt.Printf("%s: %d hits, first at offset 0x%04X (NES $%04X)\n", m.Path, m.Count, m.Off, m.Addr)
			} else {
				fmt.Printf("%s: %d hits, first at offset 0x%04X\n", m.Path, m.Count, m.Off)
			}
		}
		if len(matches) == 0 {
			slog.Info("Pattern not found", "pattern", args[0], "path", args[1])
		}
		return nil
	},
}

// findPattern searches one image, or every image under a directory.
func findPattern(root string, needle []byte, recursive bool) ([]patternMatch, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		m, ok, err := scanFile(root, needle)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return []patternMatch{m}, nil
	}

	var matches []patternMatch
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(pathpkg.Ext(path), ".nes") {
			return nil
		}
		m, ok, scanErr := scanFile(path, needle)
		if scanErr != nil {
			// A malformed image in the tree shouldn't kill the search.
			slog.Warn("Skipping unreadable image", "path", path, "error", scanErr)
			return nil
		}
		if ok {
			matches = append(matches, m)
		}
		return nil
	}
	if err := pathpkg.WalkDir(root, walkFn); err != nil {
		return nil, fmt.Errorf("error walking directory: %v", err)
	}
	return matches, nil
}

func scanFile(path string, needle []byte) (patternMatch, bool, error) {
	img, err := ines.Open(path)
	if err != nil {
		return patternMatch{}, false, err
	}
	res := romdiff.Scan(img, needle)
	if res.Count == 0 {
		return patternMatch{}, false, nil
	}
	m := patternMatch{
		Path:  path,
		Count: res.Count,
		Off:   res.FirstOff,
		Addr:  res.FirstAddr,
		InPRG: res.FirstOff >= img.PRGStart() && res.FirstOff < img.PRGStart()+len(img.PRG),
	}
	return m, true, nil
}

func init() {
	findCmd.Flags().BoolP("recursive", "r", false, "Search recursively in subdirectories")
}
