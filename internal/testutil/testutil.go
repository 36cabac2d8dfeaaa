// Package testutil builds content-tree fixtures for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Doc describes one fixture document.
type Doc struct {
	Category    string
	Subcategory string
	Slug        string
	Title       string
	Description string
	Author      string
	Date        string // ISO calendar date, empty to omit
	Body        string
}

// Content renders the document file text, header included.
func (d Doc) Content() string {
	var b strings.Builder
	b.WriteString("---\n")
	if d.Title != "" {
		fmt.Fprintf(&b, "title: %s\n", d.Title)
	}
	if d.Description != "" {
		fmt.Fprintf(&b, "description: %s\n", d.Description)
	}
	if d.Author != "" {
		fmt.Fprintf(&b, "author: %s\n", d.Author)
	}
	if d.Date != "" {
		fmt.Fprintf(&b, "date: %s\n", d.Date)
	}
	b.WriteString("---\n\n")
	body := d.Body
	if body == "" {
		body = "Placeholder body.\n"
	}
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// WriteTree materializes docs under a fresh temp directory and returns
// its path.
func WriteTree(t *testing.T, docs ...Doc) string {
	t.Helper()
	root := t.TempDir()
	AddDocs(t, root, docs...)
	return root
}

// AddDocs writes documents into an existing tree.
func AddDocs(t *testing.T, root string, docs ...Doc) {
	t.Helper()
	for _, d := range docs {
		if d.Category == "" || d.Slug == "" {
			t.Fatalf("fixture document needs category and slug: %+v", d)
		}
		dir := filepath.Join(root, d.Category, filepath.FromSlash(d.Subcategory))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create fixture dir %s: %v", dir, err)
		}
		path := filepath.Join(dir, d.Slug+".md")
		if err := os.WriteFile(path, []byte(d.Content()), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", path, err)
		}
	}
}
