package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/lepinkainen/shelf/internal/catalog"
	"github.com/lepinkainen/shelf/internal/record"
)

// ListCmd lists and searches records
type ListCmd struct {
	Query  string `short:"q" help:"Case-insensitive substring to search for"`
	Field  string `help:"Restrict the search to one field (title, authors, isbn, location, notes, ...)"`
	Format string `short:"o" help:"Output format" enum:"table,json,yaml" default:"table"`
}

func (l *ListCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		records, err := a.catalog.List(ctx, catalog.Query{Q: l.Query, Field: l.Field})
		if err != nil {
			return err
		}
		return writeRecords(stdout, l.Format, records)
	})
}

// GetCmd shows one record
type GetCmd struct {
	ID     string `arg:"" help:"Record id"`
	Format string `short:"o" help:"Output format" enum:"table,json,yaml" default:"table"`
}

func (g *GetCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		r, err := a.catalog.Get(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("record %s: %w", g.ID, err)
		}
		return writeRecord(stdout, g.Format, r)
	})
}

// RecordFlags are the editable record fields. Empty flags are left out of
// the patch.
type RecordFlags struct {
	ISBN     string   `help:"ISBN"`
	Title    string   `help:"Title"`
	Author   []string `help:"Author, repeatable"`
	Location string   `help:"Shelf or room"`
	Cover    string   `help:"Cover image URL or path"`
	Notes    string   `help:"Free-form notes"`
}

func (f RecordFlags) patch() record.Patch {
	var p record.Patch
	set := func(dst **string, v string) {
		if v != "" {
			*dst = record.String(v)
		}
	}
	set(&p.ISBN, f.ISBN)
	set(&p.Title, f.Title)
	set(&p.Location, f.Location)
	set(&p.Cover, f.Cover)
	set(&p.Notes, f.Notes)
	if len(f.Author) > 0 {
		p.Authors = record.SplitAuthors(strings.Join(f.Author, ","))
	}
	return p
}

// AddCmd creates a record
type AddCmd struct {
	RecordFlags `embed:""`
	Format      string `short:"o" help:"Output format" enum:"table,json,yaml" default:"table"`
}

func (c *AddCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		r, err := a.catalog.CreateOne(ctx, c.patch())
		if err != nil {
			return err
		}
		return writeRecord(stdout, c.Format, r)
	})
}

// UpdateCmd overlays the given fields onto an existing record
type UpdateCmd struct {
	ID          string `arg:"" help:"Record id"`
	RecordFlags `embed:""`
	Clear       []string `help:"Field to clear: isbn, title, authors, location, cover, notes"`
	Format      string   `short:"o" help:"Output format" enum:"table,json,yaml" default:"table"`
}

func (c *UpdateCmd) Run(ctx context.Context) error {
	p := c.patch()
	for _, field := range c.Clear {
		switch field {
		case "isbn":
			p.ISBN = record.String("")
		case "title":
			p.Title = record.String("")
		case "authors":
			p.Authors = []string{}
		case "location":
			p.Location = record.String("")
		case "cover":
			p.Cover = record.String("")
		case "notes":
			p.Notes = record.String("")
		default:
			return fmt.Errorf("cannot clear unknown field %q", field)
		}
	}

	return withApp(ctx, func(a *app) error {
		r, err := a.catalog.UpdateOne(ctx, c.ID, p)
		if err != nil {
			return fmt.Errorf("record %s: %w", c.ID, err)
		}
		return writeRecord(stdout, c.Format, r)
	})
}

// DeleteCmd removes a record
type DeleteCmd struct {
	ID string `arg:"" help:"Record id"`
}

func (d *DeleteCmd) Run(ctx context.Context) error {
	return withApp(ctx, func(a *app) error {
		existed, err := a.catalog.Delete(ctx, d.ID)
		if err != nil {
			return err
		}
		if !existed {
			_, err = fmt.Fprintf(stdout, "%s not found\n", d.ID)
			return err
		}
		_, err = fmt.Fprintf(stdout, "deleted %s\n", d.ID)
		return err
	})
}
