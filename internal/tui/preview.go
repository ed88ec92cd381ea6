package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/shelf/internal/importer"
)

var (
	okMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("76")).Render("ok ")
	badMark = lipgloss.NewStyle().Foreground(lipgloss.Color("161")).Render("ERR")
	dimText = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// RenderPreview formats outcomes as plain lines for non-interactive output.
func RenderPreview(outcomes []importer.Outcome, width int) string {
	var b strings.Builder
	for _, o := range outcomes {
		mark := okMark
		if !o.Valid() {
			mark = badMark
		}
		fmt.Fprintf(&b, "%s %4d  %s\n", mark, o.Row, truncate(displayTitle(o), width-12))
		if meta := formatMetadata(o.Candidate, width-12); meta != "No metadata" {
			fmt.Fprintf(&b, "           %s\n", dimText.Render(meta))
		}
		for _, problem := range o.Errors {
			fmt.Fprintf(&b, "           - %s\n", problem)
		}
	}

	valid, invalid := importer.Summary(outcomes)
	fmt.Fprintf(&b, "\n%d rows: %d valid, %d invalid\n", len(outcomes), valid, invalid)
	return b.String()
}
