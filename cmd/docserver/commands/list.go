package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/docserver/internal/content"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Category string `short:"C" help:"Restrict the listing to one category" optional:""`
	Format   string `short:"f" default:"table" help:"Output format (table or json)" enum:"table,json"`
}

// listEntry is the JSON shape of one listed document.
type listEntry struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Date        string `json:"date,omitempty"`
}

func (l *ListCmd) Run(_ *Global, root *CLI) error {
	_, library, err := loadLibrary(root.Config)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var summaries []content.Summary
	if l.Category != "" {
		summaries, err = library.ListCategory(ctx, l.Category)
	} else {
		summaries, err = library.ListAll(ctx)
	}
	if err != nil {
		return err
	}

	entries := make([]listEntry, 0, len(summaries))
	for _, s := range summaries {
		entries = append(entries, listEntry{
			Category:    s.Category,
			Subcategory: s.Subcategory,
			Slug:        s.Slug,
			Title:       s.Meta.Title,
			Author:      s.Meta.Author,
			Date:        s.Meta.DateString(),
		})
	}

	if l.Format == "json" {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tSUBCATEGORY\tSLUG\tTITLE\tDATE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Category, e.Subcategory, e.Slug, e.Title, e.Date)
	}
	return w.Flush()
}
