package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_BasicMarkdown(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render([]byte("# Title\n\nSome *emphasis* here.\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<h1")
	require.Contains(t, string(out), "<em>emphasis</em>")
}

func TestRender_EscapesRawHTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render([]byte("hello <script>alert(1)</script>\n"))
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script>")
}

func TestRenderWithTOC_CollectsH2AndH3(t *testing.T) {
	r := NewRenderer()
	body := []byte("# Page\n\n## Strings\n\ntext\n\n### Interning\n\nmore\n\n#### Too Deep\n\n## Arrays\n")

	rendered, toc, err := r.RenderWithTOC(body)
	require.NoError(t, err)
	require.NotEmpty(t, rendered)

	require.Len(t, toc, 3)
	require.Equal(t, Heading{Level: 2, ID: "strings", Text: "Strings"}, toc[0])
	require.Equal(t, Heading{Level: 3, ID: "interning", Text: "Interning"}, toc[1])
	require.Equal(t, Heading{Level: 2, ID: "arrays", Text: "Arrays"}, toc[2])
}

func TestExtractHeadings_EmptyDocument(t *testing.T) {
	toc, err := ExtractHeadings([]byte("<p>no headings</p>"))
	require.NoError(t, err)
	require.Empty(t, toc)
}

func TestRenderWithTOC_HeadingWithInlineMarkup(t *testing.T) {
	r := NewRenderer()

	_, toc, err := r.RenderWithTOC([]byte("## Using `var` wisely\n"))
	require.NoError(t, err)
	require.Len(t, toc, 1)
	require.Equal(t, "Using var wisely", toc[0].Text)
}
