package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docserver/internal/docmodel"
	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/logfields"
)

// ensureRoot verifies the content root exists before any walk. A missing
// root is reported explicitly instead of being treated as an empty tree.
func (l *Library) ensureRoot() error {
	info, err := os.Stat(l.cfg.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileSystemError("content root not found").
				WithContext("content_root", l.cfg.Root).
				Build()
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "content root not accessible").
			WithContext("content_root", l.cfg.Root).
			Build()
	}
	if !info.IsDir() {
		return errors.FileSystemError("content root is not a directory").
			WithContext("content_root", l.cfg.Root).
			Build()
	}
	return nil
}

// scanCategory walks one category directory and returns a summary for
// every parseable document, in traversal order. Documents that fail to
// read or parse are logged and skipped so one bad file cannot empty a
// whole listing. A configured category with no directory yields nil.
func (l *Library) scanCategory(ctx context.Context, category string) ([]Summary, error) {
	dir := filepath.Join(l.cfg.Root, category)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var items []Summary
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip hidden files and directories
		if path != dir && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(info.Name()))
		if !l.extensions.Has(ext) {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		subcategory := filepath.ToSlash(filepath.Dir(relPath))
		if subcategory == "." {
			subcategory = "" // category root
		}
		ref := Ref{
			Category:    category,
			Subcategory: subcategory,
			Slug:        strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())),
		}

		doc, err := docmodel.ParseFile(path)
		if err != nil {
			l.logger.Warn("Skipping unparseable document",
				logfields.Category(category),
				logfields.File(relPath),
				logfields.Error(err))
			l.recorder.IncDocSkipped(category)
			return nil
		}

		items = append(items, Summary{
			Ref:         ref,
			Path:        path,
			Fingerprint: doc.Fingerprint,
			Meta:        doc.Meta,
		})
		l.logger.Debug("Discovered document",
			logfields.Category(category),
			logfields.Subcategory(subcategory),
			logfields.Slug(ref.Slug))
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "walk category directory").
			WithContext("category", category).
			WithContext("path", dir).
			Build()
	}
	return items, nil
}

// loadDocument reads and parses one file into a full Document.
func loadDocument(ref Ref, path string) (*Document, error) {
	parsed, err := docmodel.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return &Document{
		Summary: Summary{
			Ref:         ref,
			Path:        path,
			Fingerprint: parsed.Fingerprint,
			Meta:        parsed.Meta,
		},
		Body: parsed.Body,
		Raw:  parsed.Raw,
	}, nil
}
