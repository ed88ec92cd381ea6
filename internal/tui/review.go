// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/shelf/internal/importer"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// ReviewAction is the user's decision in the import review UI.
type ReviewAction int

const (
	// ActionNone indicates no decision was made.
	ActionNone ReviewAction = iota
	// ActionCommitValid commits only rows without validation errors.
	ActionCommitValid
	// ActionCommitAll commits every row.
	ActionCommitAll
	// ActionAbort cancels the import.
	ActionAbort
)

func (a ReviewAction) String() string {
	switch a {
	case ActionCommitValid:
		return "commit-valid"
	case ActionCommitAll:
		return "commit-all"
	case ActionAbort:
		return "abort"
	}
	return "none"
}

// ReviewResult holds the outcome of an import review.
type ReviewResult struct {
	Action ReviewAction
}

type rowItem struct {
	importer.Outcome
}

func (i rowItem) Title() string {
	return fmt.Sprintf("#%d %s", i.Row, displayTitle(i.Outcome))
}

func (i rowItem) FilterValue() string {
	return i.Candidate.Title
}

func (i rowItem) Description() string {
	return strings.Join(i.Errors, "; ")
}

func displayTitle(o importer.Outcome) string {
	if o.Candidate.Title != "" {
		return o.Candidate.Title
	}
	if o.Candidate.ISBN != "" {
		return "ISBN " + o.Candidate.ISBN
	}
	return "(untitled)"
}

type itemStyles struct {
	normal        lipgloss.Style
	selected      lipgloss.Style
	statusOK      lipgloss.Style
	statusBad     lipgloss.Style
	titleStyle    lipgloss.Style
	metadataStyle lipgloss.Style
	errorStyle    lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		statusOK: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("76")),
		statusBad: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("161")),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		metadataStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")),
	}
}

type rowDelegate struct {
	styles itemStyles
}

func newDelegate() rowDelegate {
	return rowDelegate{styles: newItemStyles()}
}

func (d rowDelegate) Height() int                         { return 4 }
func (d rowDelegate) Spacing() int                        { return 1 }
func (d rowDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	row, ok := item.(rowItem)
	if !ok {
		return
	}

	status := d.styles.statusOK.Render(fmt.Sprintf("[ROW %d] OK", row.Row))
	problems := ""
	if !row.Valid() {
		status = d.styles.statusBad.Render(fmt.Sprintf("[ROW %d] INVALID", row.Row))
		problems = d.styles.errorStyle.Render(truncate(strings.Join(row.Errors, "; "), m.Width()-4))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		status,
		d.styles.titleStyle.Render(truncate(displayTitle(row.Outcome), m.Width()-4)),
		d.styles.metadataStyle.Render(formatMetadata(row.Candidate, m.Width()-4)),
		problems,
	)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	list    list.Model
	source  string
	valid   int
	invalid int
	result  ReviewResult
}

func newModel(source string, outcomes []importer.Outcome) *model {
	listItems := make([]list.Item, len(outcomes))
	for i, o := range outcomes {
		listItems[i] = rowItem{Outcome: o}
	}

	l := list.New(listItems, newDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	valid, invalid := importer.Summary(outcomes)
	return &model{
		list:    l,
		source:  source,
		valid:   valid,
		invalid: invalid,
		result:  ReviewResult{Action: ActionNone},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "c":
			m.result = ReviewResult{Action: ActionCommitValid}
			return m, tea.Quit
		case "a":
			m.result = ReviewResult{Action: ActionCommitAll}
			return m, tea.Quit
		case "ctrl+c", "q", "esc":
			m.result = ReviewResult{Action: ActionAbort}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-8, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("Import preview: %s (%d valid, %d invalid)", m.source, m.valid, m.invalid))
	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		commitButtonStyle.Render(fmt.Sprintf(" Commit %d valid ", m.valid)),
		lipgloss.NewStyle().Padding(0, 1).Render(""),
		allButtonStyle.Render(fmt.Sprintf(" Commit all %d ", m.valid+m.invalid)),
		lipgloss.NewStyle().Padding(0, 1).Render(""),
		abortButtonStyle.Render(" Abort "),
	)
	help := helpStyle.Render("Up/Down navigate | Enter/c commit valid | a commit all | q abort")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), buttons, help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	commitButtonStyle = lipgloss.NewStyle().
				MarginTop(1).
				Padding(0, 2).
				Background(lipgloss.Color("76")).
				Foreground(lipgloss.Color("0")).
				Bold(true)

	allButtonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Background(lipgloss.Color("178")).
			Foreground(lipgloss.Color("0")).
			Bold(true)

	abortButtonStyle = lipgloss.NewStyle().
				MarginTop(1).
				Padding(0, 2).
				Background(lipgloss.Color("161")).
				Foreground(lipgloss.Color("230")).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Review shows the previewed rows and asks how to commit them. An empty
// preview is aborted without opening the UI.
func Review(source string, outcomes []importer.Outcome) (ReviewResult, error) {
	if len(outcomes) == 0 {
		return ReviewResult{Action: ActionAbort}, nil
	}

	finalModel, err := runProgram(newModel(source, outcomes))
	if err != nil {
		return ReviewResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return ReviewResult{}, fmt.Errorf("unexpected program result")
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

// formatMetadata builds the authors, isbn and location line.
func formatMetadata(c importer.Candidate, availableWidth int) string {
	var parts []string
	if len(c.Authors) > 0 {
		parts = append(parts, strings.Join(c.Authors, ", "))
	}
	if c.ISBN != "" {
		parts = append(parts, "ISBN "+c.ISBN)
	}
	if c.Location != "" {
		parts = append(parts, c.Location)
	}

	if len(parts) == 0 {
		return "No metadata"
	}

	metadata := strings.Join(parts, " | ")
	if availableWidth > 0 && len(metadata) > availableWidth {
		metadata = truncate(metadata, availableWidth)
	}
	return metadata
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
