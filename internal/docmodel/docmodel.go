// Package docmodel turns raw document files into typed records.
//
// A document is a YAML metadata header plus a Markdown body. The header
// carries title, description, optional author, and an optional calendar date;
// unknown fields are retained untyped so round-trips never drop data.
package docmodel

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/frontmatter"
)

// DateFormat is the only accepted date layout: an ISO-8601 calendar date.
const DateFormat = "2006-01-02"

// Field names recognized in the metadata header.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldAuthor      = "author"
	FieldDate        = "date"
)

// Metadata is the typed view of a document header.
//
// Title and Description are plain strings; Author is optional. Date is nil
// when the header has no date. Extra holds every header field that is not one
// of the typed ones.
type Metadata struct {
	Title       string
	Description string
	Author      string
	Date        *time.Time
	Extra       map[string]any
}

// DateString renders the date in ISO form, or "" when absent.
func (m Metadata) DateString() string {
	if m.Date == nil {
		return ""
	}
	return m.Date.Format(DateFormat)
}

// Fields reassembles the full header map (typed fields plus extras).
// Keys with empty values are omitted so serialized headers stay minimal.
func (m Metadata) Fields() map[string]any {
	fields := make(map[string]any, len(m.Extra)+4)
	for k, v := range m.Extra {
		fields[k] = v
	}
	if m.Title != "" {
		fields[FieldTitle] = m.Title
	}
	if m.Description != "" {
		fields[FieldDescription] = m.Description
	}
	if m.Author != "" {
		fields[FieldAuthor] = m.Author
	}
	if m.Date != nil {
		fields[FieldDate] = m.Date.Format(DateFormat)
	}
	return fields
}

// Document is a fully parsed document file.
type Document struct {
	Meta        Metadata
	Body        []byte
	Raw         []byte
	HadHeader   bool
	Style       frontmatter.Style
	Fingerprint string
}

// Parse parses raw file content into a Document.
//
// A missing header is not an error; it yields empty Metadata. A header that
// fails to split or decode is a content error, as is an invalid date.
func Parse(content []byte) (*Document, error) {
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "parse metadata header").Build()
	}

	meta, err := ParseFields(doc.Fields)
	if err != nil {
		return nil, err
	}

	fp, err := Fingerprint(doc.Fields, doc.Body)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "fingerprint document").Build()
	}

	return &Document{
		Meta:        meta,
		Body:        append([]byte(nil), doc.Body...),
		Raw:         append([]byte(nil), content...),
		HadHeader:   doc.Had,
		Style:       doc.Style,
		Fingerprint: fp,
	}, nil
}

// ParseFile reads a file from disk and parses it into a Document.
// Errors carry the offending path so callers can report which file broke.
func ParseFile(path string) (*Document, error) {
	// #nosec G304 -- path is provided by internal callers (enumeration pipelines).
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read document").
			WithContext("file", path).
			Build()
	}

	doc, err := Parse(content)
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return nil, classified.WithContext("file", path)
		}
		return nil, errors.WrapError(err, errors.CategoryContent, "parse document").
			WithContext("file", path).
			Build()
	}
	return doc, nil
}

// ParseFields extracts typed metadata from decoded header fields.
func ParseFields(fields map[string]any) (Metadata, error) {
	meta := Metadata{Extra: map[string]any{}}

	for key, value := range fields {
		switch key {
		case FieldTitle:
			s, err := scalarString(key, value)
			if err != nil {
				return Metadata{}, err
			}
			meta.Title = s
		case FieldDescription:
			s, err := scalarString(key, value)
			if err != nil {
				return Metadata{}, err
			}
			meta.Description = s
		case FieldAuthor:
			s, err := scalarString(key, value)
			if err != nil {
				return Metadata{}, err
			}
			meta.Author = s
		case FieldDate:
			date, err := parseDate(value)
			if err != nil {
				return Metadata{}, err
			}
			meta.Date = date
		default:
			meta.Extra[key] = value
		}
	}

	return meta, nil
}

// Fingerprint computes the canonical content fingerprint for a document.
//
// Canonicalization: the fingerprint field itself is excluded, remaining
// fields serialize deterministically with LF newlines, and a single trailing
// newline is trimmed before hashing.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	fieldsForHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		fieldsForHash[k] = v
	}

	frontmatterForHash := ""
	if len(fieldsForHash) > 0 {
		serialized, err := frontmatter.SerializeYAML(fieldsForHash, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", err
		}
		frontmatterForHash = trimSingleTrailingNewline(string(serialized))
	}

	return mdfp.CalculateFingerprintFromParts(frontmatterForHash, string(body)), nil
}

func scalarString(key string, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(v), nil
	default:
		return "", errors.ContentError(fmt.Sprintf("header field %q must be a string", key)).Build()
	}
}

func parseDate(value any) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		t, err := time.Parse(DateFormat, v)
		if err != nil {
			return nil, errors.ContentError(fmt.Sprintf("date %q is not a valid ISO-8601 calendar date", v)).Build()
		}
		return &t, nil
	case time.Time:
		// yaml.v3 resolves unquoted ISO dates to time.Time.
		t := time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return &t, nil
	default:
		return nil, errors.ContentError(fmt.Sprintf("date has unsupported type %T", value)).Build()
	}
}

func trimSingleTrailingNewline(s string) string {
	if before, ok := strings.CutSuffix(s, "\r\n"); ok {
		return before
	}
	if before, ok := strings.CutSuffix(s, "\n"); ok {
		return before
	}
	return s
}
