package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
)

// Heading is one table-of-contents entry.
type Heading struct {
	Level int    // 2 or 3
	ID    string // anchor id, may be empty for headings without one
	Text  string
}

// ExtractHeadings walks rendered HTML and collects h2/h3 headings in
// document order. Top-level h1 is the page title and stays out of the
// outline; anything below h3 is considered too deep to navigate to.
func ExtractHeadings(rendered []byte) ([]Heading, error) {
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "parse rendered document").Build()
	}

	var headings []Heading
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h2", "h3":
				level := 2
				if n.Data == "h3" {
					level = 3
				}
				headings = append(headings, Heading{
					Level: level,
					ID:    getAttr(n, "id"),
					Text:  strings.TrimSpace(extractText(n)),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return headings, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
