package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/fastx"
	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/forest"
	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/seq"
)

// Colors for modern design
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Align(lipgloss.Center)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	sequenceStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(lipgloss.Color("#111827")).
			Padding(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	// Motif class styles
	classSingleStyle = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	classMultiStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	classOtherStyle  = lipgloss.NewStyle().Foreground(mutedColor)
)

// catalogPath is set from the -in flag before the model loads.
var catalogPath = "motifs.txt"

// motifClass labels an entry by its name: single-terminal, multi-terminal or
// an assembled product (barcoded probe, template, array capture).
func motifClass(name string) string {
	switch {
	case strings.Contains(name, "_Multi_"):
		return "multi"
	case strings.Contains(name, "_Motif_"):
		return "single"
	default:
		return "product"
	}
}

type listItem struct {
	motif forest.Motif
}

func (i listItem) FilterValue() string {
	return i.motif.Name
}

func (i listItem) Title() string {
	return i.motif.Name
}

func (i listItem) Description() string {
	class := motifClass(i.motif.Name)
	var rendered string
	switch class {
	case "single":
		rendered = classSingleStyle.Render(class)
	case "multi":
		rendered = classMultiStyle.Render(class)
	default:
		rendered = classOtherStyle.Render(class)
	}
	return fmt.Sprintf("Class: %s    Length: %d nt", rendered, len(i.motif.Sequence))
}

type mode int

const (
	modeSequence mode = iota
	modeStructure
	modeTemplate
)

func (m mode) String() string {
	switch m {
	case modeSequence:
		return "Sequence"
	case modeStructure:
		return "Structure"
	case modeTemplate:
		return "Template preview"
	default:
		return "Unknown"
	}
}

type model struct {
	list          list.Model
	catalog       forest.Catalog
	currentMode   mode
	showHelp      bool
	width         int
	height        int
	totalMotifs   int
	selectedIndex int
}

func initialModel() model {
	// Load catalog; a missing file just starts the browser empty.
	var catalog forest.Catalog
	if f, err := os.Open(catalogPath); err == nil {
		catalog, _ = fastx.ReadCatalog(f)
		f.Close()
	}

	items := make([]list.Item, len(catalog))
	for i, m := range catalog {
		items[i] = listItem{motif: m}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "FOREST Motif Catalog"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	return model{
		list:        l,
		catalog:     catalog,
		currentMode: modeSequence,
		totalMotifs: len(catalog),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

// cycleMode advances to the next view mode, wrapping around.
func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % 3
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Calculate list dimensions (left panel takes 1/3 of width)
		listWidth := msg.Width / 3
		listHeight := msg.Height - 4 // Account for borders and status

		m.list.SetWidth(listWidth)
		m.list.SetHeight(listHeight)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "h":
			m.showHelp = !m.showHelp
			return m, nil

		case "tab":
			return m.cycleMode(), nil

		case "1":
			m.currentMode = modeSequence
			return m, nil

		case "2":
			m.currentMode = modeStructure
			return m, nil

		case "3":
			m.currentMode = modeTemplate
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpModal()
	}

	leftPanel := m.renderLeftPanel()
	rightPanel := m.renderRightPanel()
	statusBar := m.renderStatusBar()

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanel,
		rightPanel,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		statusBar,
	)
}

func (m model) renderLeftPanel() string {
	listWidth := m.width / 3

	return containerStyle.
		Width(listWidth - 2).
		Height(m.height - 4).
		Render(m.list.View())
}

// buildRightLines produces the detail-panel lines for a motif in the current
// mode, wrapped to the panel width.
func (m model) buildRightLines(motif forest.Motif) []string {
	var content string
	switch m.currentMode {
	case modeSequence:
		content = motif.Sequence
	case modeStructure:
		content = motif.Structure
	case modeTemplate:
		// quick look at the antisense strand an ordered oligo would carry
		content = seq.RevCom(strings.ReplaceAll(strings.ToUpper(motif.Sequence), "U", "T"))
	}
	if content == "" {
		return nil
	}

	width := m.width*2/3 - 6
	if width < 10 {
		width = 10
	}
	var lines []string
	for len(content) > width {
		lines = append(lines, content[:width])
		content = content[width:]
	}
	lines = append(lines, content)
	return lines
}

func (m model) renderRightPanel() string {
	rightWidth := (m.width * 2) / 3

	if len(m.catalog) == 0 {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No motifs available (open a catalog with -in)")
	}

	selectedItem := m.list.SelectedItem()
	if selectedItem == nil {
		return containerStyle.
			Width(rightWidth - 2).
			Height(m.height - 4).
			Render("No motif selected")
	}

	motif := selectedItem.(listItem).motif

	header := titleStyle.Render(fmt.Sprintf("%s (%s)", motif.Name, motifClass(motif.Name)))

	label := lipgloss.NewStyle().Foreground(mutedColor)
	meta := label.Render("Length: ") + fmt.Sprintf("%d nt", len(motif.Sequence)) +
		label.Render("    Mode: ") + m.currentMode.String()

	lines := m.buildRightLines(motif)
	var content string
	if len(lines) == 0 {
		content = label.Render(fmt.Sprintf("No %s available", strings.ToLower(m.currentMode.String())))
	} else {
		content = sequenceStyle.
			Width(rightWidth - 6).
			Render(strings.Join(lines, "\n"))
	}

	panelContent := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		meta,
		"",
		content,
	)

	return containerStyle.
		Width(rightWidth - 2).
		Height(m.height - 4).
		Render(panelContent)
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%d/%d motifs", m.selectedIndex+1, m.totalMotifs)
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode.String())
	rightInfo := "Press 'h' for help, 'q' to quit"

	totalUsed := len(leftInfo) + len(centerInfo) + len(rightInfo)
	spacing := m.width - totalUsed - 6

	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		rightSpacing := spacing - leftSpacing

		statusContent = fmt.Sprintf("%s%s%s%s%s",
			leftInfo,
			strings.Repeat(" ", leftSpacing),
			centerInfo,
			strings.Repeat(" ", rightSpacing),
			rightInfo,
		)
	} else {
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}

	return statusBarStyle.
		Width(m.width).
		Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `FOREST Motif Browser - Help

Navigation:
  up/down, j/k   Navigate list
  /              Filter motifs
  Enter          Select motif

View Modes:
  1              Show RNA sequence
  2              Show dot-bracket structure
  3              Show DNA template preview
  Tab            Cycle modes

General:
  h              Toggle this help
  q, Ctrl+C      Quit application

Current Mode: ` + m.currentMode.String() + `
Total Motifs: ` + fmt.Sprintf("%d", m.totalMotifs) + `
`

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Align(lipgloss.Center)

	modal := modalStyle.Render(helpContent)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
	)
}

func main() {
	inFlag := flag.String("in", "motifs.txt", "motif catalog file to browse")
	flag.Parse()
	catalogPath = *inFlag

	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
