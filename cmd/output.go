package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/shelf/internal/record"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var footerStyle = lipgloss.NewStyle().Faint(true)

// writeValue prints v as indented JSON or YAML.
func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		out, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// toYAML renders v through its JSON form so field names and unknown record
// fields match the stored documents.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	clearStyle(&node)
	return yaml.Marshal(&node)
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// writeRecords prints records in the requested format.
func writeRecords(w io.Writer, format string, records []record.Record) error {
	if format != formatTable {
		if records == nil {
			records = []record.Record{}
		}
		return writeValue(w, format, records)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHORS\tISBN\tLOCATION")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID), clip(r.Title, 40), clip(r.AuthorsString(), 30), r.ISBN, r.Location)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, footerStyle.Render(fmt.Sprintf("%d records", len(records))))
	return err
}

// writeRecord prints a single record; the table format is a field list.
func writeRecord(w io.Writer, format string, r record.Record) error {
	if format != formatTable {
		return writeValue(w, format, r)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fields := [][2]string{
		{"id", r.ID},
		{"title", r.Title},
		{"authors", r.AuthorsString()},
		{"isbn", r.ISBN},
		{"location", r.Location},
		{"cover", r.Cover},
		{"notes", r.Notes},
		{"created_at", r.CreatedAt},
		{"updated_at", r.UpdatedAt},
	}
	for _, f := range fields {
		fmt.Fprintf(tw, "%s\t%s\n", f[0], f[1])
	}
	for _, key := range slices.Sorted(maps.Keys(r.Extra)) {
		fmt.Fprintf(tw, "%s\t%s\n", key, string(r.Extra[key]))
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clip(s string, width int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= width {
		return string(r)
	}
	return string(r[:width-1]) + "…"
}
