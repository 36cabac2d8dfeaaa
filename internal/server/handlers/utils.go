// Package handlers implements the HTTP handlers for both listeners:
// HTML pages and the JSON API on the docs server, status and health on
// the admin server.
package handlers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"git.home.luguber.info/inful/docserver/internal/content"
	"git.home.luguber.info/inful/docserver/internal/logfields"
	"git.home.luguber.info/inful/docserver/internal/server/responses"
)

// writeJSON serializes v and writes it with the given status code.
// Encoding goes through an intermediate buffer so serialization
// failures never produce a partial response.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed writing JSON response body", logfields.Error(err))
		return err
	}
	return nil
}

// summaryResponse converts a library summary into its API shape.
func summaryResponse(s content.Summary) responses.DocumentSummary {
	return responses.DocumentSummary{
		Category:    s.Category,
		Subcategory: s.Subcategory,
		Slug:        s.Slug,
		Title:       s.Meta.Title,
		Description: s.Meta.Description,
		Author:      s.Meta.Author,
		Date:        s.Meta.DateString(),
		Fingerprint: s.Fingerprint,
	}
}

// documentURL renders the canonical page path for a document position.
func documentURL(category, subcategory, slug string) string {
	if subcategory == "" {
		return "/" + url.PathEscape(category) + "/" + url.PathEscape(slug)
	}
	return "/" + url.PathEscape(category) + "/" + subcategory + "/" + url.PathEscape(slug)
}

// templateHTML marks rendered markdown as safe for the page templates.
// The renderer escapes raw HTML in document bodies before this point.
func templateHTML(b []byte) template.HTML {
	return template.HTML(b) // #nosec G203 -- output of the escaping markdown renderer
}

// safeNext keeps post-login redirects on this site. Anything that is
// not a local absolute path falls back to the index.
func safeNext(next string) string {
	if next == "" || next[0] != '/' {
		return "/"
	}
	if len(next) > 1 && next[1] == '/' {
		return "/" // protocol-relative URL, not local
	}
	return next
}
