// Package markdown renders document bodies to HTML and derives the
// page table of contents from the rendered output.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
)

// Renderer converts Markdown bodies to HTML. It is safe for concurrent
// use; goldmark parsers and renderers are stateless between calls.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds the document renderer. Heading ids are generated
// automatically so the table of contents can link to them. Raw HTML in
// document bodies is escaped; submissions are user content.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
}

// Render converts a Markdown body to HTML.
func (r *Renderer) Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "render markdown").Build()
	}
	return buf.Bytes(), nil
}

// RenderWithTOC converts a Markdown body to HTML and extracts its
// heading outline in one pass.
func (r *Renderer) RenderWithTOC(body []byte) ([]byte, []Heading, error) {
	rendered, err := r.Render(body)
	if err != nil {
		return nil, nil, err
	}
	toc, err := ExtractHeadings(rendered)
	if err != nil {
		return nil, nil, err
	}
	return rendered, toc, nil
}
