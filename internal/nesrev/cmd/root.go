package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	pathpkg "path/filepath"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"nesrev/internal/ines"
	"nesrev/internal/logging"
	"nesrev/internal/mos6502"
	"nesrev/internal/nesrev/log"
	"nesrev/internal/nesrev/styles"
	"nesrev/internal/ui/colorize"
)

type viewMode int

const (
	viewOverview viewMode = iota
	viewEntries
	viewListing
)

// maxRoutineInsns bounds an entry-point disassembly so a listing through
// data never runs away.
const maxRoutineInsns = 512

// JSONOutput is the machine-readable result structure for regression testing
type JSONOutput struct {
	Digest      string   `json:"digest"`
	Header      string   `json:"header"`
	Mapper      int      `json:"mapper"`
	PRGBanks    int      `json:"prg_banks"`
	CHRBanks    int      `json:"chr_banks"`
	EntryPoints []string `json:"entry_points"`
}

type entryInfo struct {
	address uint16
	name    string
}

type entryItem struct {
	address    uint16
	name       string
	filterTerm string // Pre-computed filter value
}

func (i entryItem) Title() string {
	return fmt.Sprintf("$%04X  %s", i.address, i.name)
}

func (i entryItem) FilterValue() string {
	return i.filterTerm
}

// Custom item delegate for the entry-point list
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(entryItem)
	if !ok {
		return
	}

	var addrStyle lipgloss.Style
	var indicator string

	if index == m.Index() {
		indicator = ">"
		addrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	} else {
		indicator = " "
		addrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	}

	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	if strings.HasPrefix(i.name, "sub_") {
		nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	}

	fmt.Fprintf(w, " %s  %s  %s",
		indicator,
		addrStyle.Render(fmt.Sprintf("$%04X", i.address)),
		nameStyle.Render(i.name))
}

type model struct {
	viewport       viewport.Model
	entriesList    list.Model
	listingView    viewport.Model
	spinner        spinner.Model
	mode           viewMode
	filepath       string
	img            *ines.Image
	digest         string
	entries        []entryInfo
	entryCount     int
	loadErr        string
	loadingImage   bool
	loadingEntries bool
	width          int
	height         int
}

// Message types
type imageMsg struct {
	img *ines.Image
	err error
}

type digestMsg struct {
	digest string
}

type entriesMsg struct {
	entries []entryInfo
}

// Commands
func loadImageCmd(filepath string) tea.Cmd {
	return func() tea.Msg {
		img, err := ines.Open(filepath)
		return imageMsg{img: img, err: err}
	}
}

func calculateDigestCmd(img *ines.Image) tea.Cmd {
	return func() tea.Msg {
		return digestMsg{digest: img.Digest()}
	}
}

func scanEntriesCmd(img *ines.Image) tea.Cmd {
	return func() tea.Msg {
		return entriesMsg{entries: scanEntries(img)}
	}
}

// scanEntries collects the interrupt vectors plus every JSR target found in
// a linear decode of the PRG section. ROMs carry no symbol table, so these
// call targets are the closest thing to one.
func scanEntries(img *ines.Image) []entryInfo {
	found := make(map[uint16]string)

	nmi, reset, irq := img.Vectors()
	found[reset] = "RESET"
	found[nmi] = "NMI"
	found[irq] = "IRQ"

	prgEnd := img.PRGStart() + len(img.PRG)
	ins, err := mos6502.DecodeRange(img.Raw, img.PRGStart(), prgEnd, img.AddrOf(0))
	if err == nil {
		for _, in := range ins {
			if in.Mnemonic != "JSR" {
				continue
			}
			target := in.Operand
			if target < ines.LoadBase {
				continue
			}
			if _, exists := found[target]; !exists {
				found[target] = fmt.Sprintf("sub_%04X", target)
			}
		}
	}

	entries := make([]entryInfo, 0, len(found))
	for addr, name := range found {
		entries = append(entries, entryInfo{address: addr, name: name})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].address < entries[j].address
	})

	if logging.IsDebug() {
		lg := logging.NewLogger()
		lg.Debug("scanned entry points",
			"file", img.Path,
			"entries", len(entries),
			"reset", fmt.Sprintf("$%04X", reset))
		lg.Close()
	}
	return entries
}

func NewModel(filepath string) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	delegate := itemDelegate{}

	entriesList := list.New([]list.Item{}, delegate, 80, 24)
	entriesList.SetShowStatusBar(false)
	entriesList.SetFilteringEnabled(true)
	entriesList.Title = "Entry points"
	entriesList.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	entriesList.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	lvp := viewport.New()
	lvp.SetWidth(80)
	lvp.SetHeight(24)

	m := model{
		viewport:       vp,
		entriesList:    entriesList,
		listingView:    lvp,
		spinner:        s,
		mode:           viewOverview,
		filepath:       filepath,
		loadingImage:   true,
		loadingEntries: true,
		width:          80,
		height:         24,
	}

	m.updateContent()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		loadImageCmd(m.filepath),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case imageMsg:
		m.loadingImage = false
		if msg.err != nil {
			m.loadErr = msg.err.Error()
			m.loadingEntries = false
			m.updateContent()
			return m, nil
		}
		m.img = msg.img
		m.updateContent()
		// Digest and entry scan run once the image is in.
		return m, tea.Batch(calculateDigestCmd(m.img), scanEntriesCmd(m.img))

	case digestMsg:
		m.digest = msg.digest
		m.updateContent()
		return m, nil

	case entriesMsg:
		m.entries = msg.entries
		m.entryCount = len(msg.entries)
		m.loadingEntries = false
		m.updateEntriesList()
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loadingImage || m.loadingEntries {
			m.updateContent()
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.viewport.SetWidth(msg.Width)
			m.viewport.SetHeight(msg.Height - 2)
			m.entriesList.SetWidth(msg.Width)
			m.entriesList.SetHeight(msg.Height - 2)
			m.listingView.SetWidth(msg.Width)
			m.listingView.SetHeight(msg.Height - 2)

			m.updateContent()
		}

	case tea.KeyMsg:
		// When the entries list is filtering it gets first crack at keys.
		if m.mode == viewEntries && m.entriesList.FilterState() == list.Filtering {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		} else {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "o":
				m.mode = viewOverview
				return m, nil
			case "e":
				if m.entryCount > 0 {
					m.mode = viewEntries
				}
				return m, nil
			case "enter":
				if m.mode == viewEntries {
					if selectedItem := m.entriesList.SelectedItem(); selectedItem != nil {
						if entry, ok := selectedItem.(entryItem); ok && m.img != nil {
							listing := disassembleRoutine(m.img, entry.address, maxRoutineInsns, true)
							if listing != "" {
								m.mode = viewListing
								m.listingView.SetContent(listing)
								m.listingView.GotoTop()
							}
						}
					}
				}
				return m, nil
			case "tab":
				switch m.mode {
				case viewOverview:
					if m.entryCount > 0 {
						m.mode = viewEntries
					}
				case viewEntries:
					m.mode = viewListing
				case viewListing:
					m.mode = viewOverview
				}
				return m, nil
			case "shift+tab":
				switch m.mode {
				case viewOverview:
					m.mode = viewListing
				case viewEntries:
					m.mode = viewOverview
				case viewListing:
					if m.entryCount > 0 {
						m.mode = viewEntries
					}
				}
				return m, nil
			}
		}
	}

	switch m.mode {
	case viewEntries:
		m.entriesList, cmd = m.entriesList.Update(msg)
	case viewListing:
		m.listingView, cmd = m.listingView.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	var content string
	switch m.mode {
	case viewEntries:
		content = m.entriesList.View()
	case viewListing:
		content = m.listingView.View()
	default:
		content = m.viewport.View()
	}

	var menu string
	switch m.mode {
	case viewEntries:
		menu = " Enter: disassemble • O: overview • Tab: cycle • Q: quit "
	case viewListing:
		menu = " O: overview • E: entry points • Tab: cycle • Q: quit "
	default: // viewOverview
		if m.entryCount > 0 {
			menu = " E: entry points • Tab: cycle • Q: quit "
		} else {
			menu = " Q: quit "
		}
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

func (m *model) updateContent() {
	relPath := m.filepath
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := pathpkg.Rel(cwd, m.filepath); err == nil {
			relPath = rel
		}
	}

	var lines []string

	dir := pathpkg.Dir(relPath)
	base := pathpkg.Base(relPath)
	if dir != "." {
		lines = append(lines, fmt.Sprintf("; %s/", dir))
	}
	lines = append(lines, fmt.Sprintf("; %s", base))

	if m.digest != "" {
		lines = append(lines, fmt.Sprintf("; %s", m.digest))
	} else if m.loadingImage {
		lines = append(lines, "; Loading image...")
	}

	lines = append(lines, "")

	if m.loadErr != "" {
		lines = append(lines, fmt.Sprintf("; %s", m.loadErr))
	} else if m.img != nil {
		lines = append(lines, fmt.Sprintf("; %s", m.img.Summary()))
		nmi, reset, irq := m.img.Vectors()
		lines = append(lines, fmt.Sprintf("; RESET $%04X  NMI $%04X  IRQ $%04X", reset, nmi, irq))
	}

	markdown := fmt.Sprintf("# nesrev\n\n```\n%s\n```", strings.Join(lines, "\n"))

	if m.entryCount > 0 {
		markdown += fmt.Sprintf("\n\n%d entry points found. Press **e** to browse them.", m.entryCount)
	}

	if m.loadingEntries && m.img != nil {
		markdown += fmt.Sprintf("\n\n%s Scanning for entry points...", m.spinner.View())
	}

	width := m.width
	if width == 0 {
		width = 80
	}
	renderer := styles.GetMarkdownRenderer(width - 2)
	rendered, _ := renderer.Render(markdown)
	m.viewport.SetContent(strings.TrimSuffix(rendered, "\n"))
}

func (m *model) updateEntriesList() {
	items := make([]list.Item, 0, len(m.entries))
	for _, e := range m.entries {
		items = append(items, entryItem{
			address:    e.address,
			name:       e.name,
			filterTerm: fmt.Sprintf("%04x %s", e.address, e.name),
		})
	}
	m.entriesList.SetItems(items)
	m.entriesList.Title = fmt.Sprintf("Entry points (%d total)", m.entryCount)
}

// disassembleRoutine decodes from addr until the routine returns, jumps
// away, or maxInsns is hit. color applies the chroma highlighting pass.
func disassembleRoutine(img *ines.Image, addr uint16, maxInsns int, color bool) string {
	off := img.OffsetOf(addr)
	prgEnd := img.PRGStart() + len(img.PRG)
	if off < img.PRGStart() || off >= prgEnd {
		return ""
	}

	var b strings.Builder
	for count := 0; count < maxInsns && off < prgEnd; count++ {
		in, n, err := mos6502.DecodeOne(img.Raw, off, img.AddrOf(0))
		if err != nil {
			break
		}
		line := in.String()
		if color {
			line = colorize.Line(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
		off += n

		switch in.Mnemonic {
		case "RTS", "RTI":
			return b.String()
		case "JMP":
			if in.Mode == mos6502.Absolute || in.Mode == mos6502.Indirect {
				return b.String()
			}
		}
	}
	return b.String()
}

var rootCmd = &cobra.Command{
	Use:   "nesrev [file.nes]",
	Short: "Terminal-based NES ROM inspection tool",
	Long: `Nesrev is a terminal-based tool for inspecting NES cartridge images.
It disassembles the 6502 program section, browses entry points
interactively, and compares two builds of the same ROM.`,
	Example: `
# Browse a ROM interactively
nesrev game.nes

# Print a summary without the TUI
nesrev -n game.nes
  `,
	Args: cobra.ExactArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.Setup(debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cpuprofile, _ := cmd.Flags().GetString("cpuprofile")
		if cpuprofile != "" {
			f, err := os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %v", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %v", err)
			}
			defer pprof.StopCPUProfile()
		}

		absPath, err := pathpkg.Abs(args[0])
		if err != nil {
			return fmt.Errorf("could not resolve path: %v", err)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return runJSON(absPath)
		}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		if !noTUI && !term.IsTerminal(os.Stdout.Fd()) {
			noTUI = true
		}
		if noTUI {
			full, _ := cmd.Flags().GetBool("full")
			return runNoTUI(absPath, full)
		}

		// Set up the TUI.
		program := tea.NewProgram(
			NewModel(absPath),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

// runJSON prints the regression-friendly summary of one image.
func runJSON(path string) error {
	img, err := ines.Open(path)
	if err != nil {
		return err
	}

	out := JSONOutput{
		Digest:   img.Digest(),
		Header:   img.Summary(),
		Mapper:   img.Mapper,
		PRGBanks: img.PRGBanks,
		CHRBanks: img.CHRBanks,
	}
	for _, e := range scanEntries(img) {
		out.EntryPoints = append(out.EntryPoints, fmt.Sprintf("$%04X %s", e.address, e.name))
	}

	bts, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(bts))
	return nil
}

// runNoTUI prints the overview, and with full set, every entry routine.
func runNoTUI(path string, full bool) error {
	img, err := ines.Open(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", img.Path)
	fmt.Printf("%s\n", img.Summary())
	fmt.Printf("sha256 %s\n", img.Digest())
	nmi, reset, irq := img.Vectors()
	fmt.Printf("RESET $%04X  NMI $%04X  IRQ $%04X\n", reset, nmi, irq)

	entries := scanEntries(img)
	fmt.Printf("%d entry points\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  $%04X  %s\n", e.address, e.name)
		if full {
			listing := disassembleRoutine(img, e.address, maxRoutineInsns, term.IsTerminal(os.Stdout.Fd()))
			for _, line := range strings.Split(strings.TrimRight(listing, "\n"), "\n") {
				fmt.Printf("    %s\n", line)
			}
		}
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Show summary without TUI")
	rootCmd.Flags().BoolP("full", "f", false, "Show full routine listings (use with --no-tui)")
	rootCmd.Flags().BoolP("json", "j", false, "Output results as JSON for regression testing")
	rootCmd.Flags().String("cpuprofile", "", "Write CPU profile to file")

	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(findCmd)
}

func Execute() {
	// Check if --no-tui or --full flag is present, or if output is being
	// piped, to bypass fang's automatic markdown rendering.
	noTUI := false
	for _, arg := range os.Args[1:] {
		if arg == "--no-tui" || arg == "-n" || arg == "--full" || arg == "-f" {
			noTUI = true
			break
		}
	}
	if !noTUI && !term.IsTerminal(os.Stdout.Fd()) {
		noTUI = true
	}

	if noTUI {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
	} else {
		if err := fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		); err != nil {
			os.Exit(1)
		}
	}
}
