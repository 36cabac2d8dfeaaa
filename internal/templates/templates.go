// Package templates renders the server-side HTML pages. All templates
// are embedded in the binary; there is nothing to deploy next to it.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"git.home.luguber.info/inful/docserver/internal/markdown"
)

//go:embed html/*.html
var htmlFS embed.FS

// Page names accepted by Render.
const (
	PageIndex    = "index"
	PageCategory = "category"
	PageDocument = "document"
	PageLogin    = "login"
	PageSubmit   = "submit"
)

var pages = []string{PageIndex, PageCategory, PageDocument, PageLogin, PageSubmit}

var funcs = template.FuncMap{
	"year": func() int { return time.Now().Year() },
	"inc":  func(n int) int { return n + 1 },
}

// Renderer holds the parsed page set. Construct once at startup.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every embedded page against the shared layout. Parse
// failures are programming errors and surface at startup.
func New() (*Renderer, error) {
	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tpl, err := template.New("layout.html").
			Funcs(funcs).
			ParseFS(htmlFS, "html/layout.html", "html/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page template %q: %w", page, err)
		}
		parsed[page] = tpl
	}
	return &Renderer{pages: parsed}, nil
}

// Render executes the named page into w.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}
	if err := tpl.Execute(w, data); err != nil {
		return fmt.Errorf("render page %q: %w", page, err)
	}
	return nil
}

// BaseData carries the fields every page needs.
type BaseData struct {
	Title   string
	User    string // logged-in username, empty when anonymous
	Version string
}

// CategoryCard is one category tile on the index page.
type CategoryCard struct {
	Name  string
	Count int
	URL   string
}

// IndexData feeds the index page.
type IndexData struct {
	BaseData
	Categories []CategoryCard
}

// DocEntry is one document row in a listing, and the prev/next links on
// a document page.
type DocEntry struct {
	Slug        string
	Title       string
	Description string
	Subcategory string
	Date        string
	URL         string
}

// SubcategoryGroup is one section of a category listing. Name is empty
// for documents sitting directly in the category root.
type SubcategoryGroup struct {
	Name string
	Docs []DocEntry
}

// CategoryData feeds the category listing page.
type CategoryData struct {
	BaseData
	Category string
	Groups   []SubcategoryGroup
}

// DocumentData feeds the document page.
type DocumentData struct {
	BaseData
	Category    string
	Subcategory string
	Slug        string
	DocTitle    string
	Description string
	Author      string
	Date        string
	Body        template.HTML // sanitized by the markdown renderer
	TOC         []markdown.Heading
	Prev        *DocEntry
	Next        *DocEntry
}

// LoginData feeds the login form.
type LoginData struct {
	BaseData
	Error string // verification failure message, empty on first render
	Next  string // post-login redirect target
}

// SubmitResult is shown after a successful submission.
type SubmitResult struct {
	Category string
	Slug     string
	URL      string
}

// SubmitData feeds the submission form.
type SubmitData struct {
	BaseData
	Categories []string
	Error      string
	Result     *SubmitResult
}
