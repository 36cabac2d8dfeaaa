package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/metrics"
)

// Resolve locates exactly one document by category and slug. When a
// subcategory hint is given that directory is probed first; on a miss
// (or with no hint) the category root is probed, then the whole
// category is scanned for a filename matching the slug. The returned
// document carries the subcategory it was actually found under, which
// may differ from the hint.
//
// Resolution is fail-fast: a matching file that cannot be parsed
// surfaces its error instead of being skipped.
func (l *Library) Resolve(ctx context.Context, category, slug, subcategoryHint string) (*Document, error) {
	start := time.Now()
	doc, err := l.resolve(ctx, category, slug, subcategoryHint)
	l.recorder.ObserveResolveDuration(category, time.Since(start), resolveResult(err))
	return doc, err
}

func resolveResult(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.HasCategory(err, errors.CategoryNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}

func (l *Library) resolve(ctx context.Context, category, slug, subcategoryHint string) (*Document, error) {
	if err := l.ensureRoot(); err != nil {
		return nil, err
	}
	if !l.categories.Has(category) {
		return nil, l.notFound(category, subcategoryHint, slug)
	}
	hint := normalizeSubcategory(subcategoryHint)

	if l.cache != nil {
		if doc, ok := l.cache.Get(Ref{Category: category, Subcategory: hint, Slug: slug}); ok {
			l.recorder.IncCacheEvent(metrics.CacheHit)
			return doc, nil
		}
		l.recorder.IncCacheEvent(metrics.CacheMiss)
	}

	// Direct probes: hinted subdirectory first, then the category root.
	if hint != "" {
		if doc, err := l.probe(Ref{Category: category, Subcategory: hint, Slug: slug}); doc != nil || err != nil {
			return l.cacheResolved(doc), err
		}
	}
	if doc, err := l.probe(Ref{Category: category, Subcategory: "", Slug: slug}); doc != nil || err != nil {
		return l.cacheResolved(doc), err
	}

	// Fallback: scan every subdirectory of the category for the slug.
	doc, err := l.scanForSlug(ctx, category, slug)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, l.notFound(category, subcategoryHint, slug)
	}
	return l.cacheResolved(doc), nil
}

// probe checks the exact file locations a ref maps to, one per
// recognized extension. A missing file is (nil, nil); an existing file
// that fails to parse is an error.
func (l *Library) probe(ref Ref) (*Document, error) {
	dir := filepath.Join(l.cfg.Root, ref.Category, filepath.FromSlash(ref.Subcategory))
	for _, ext := range l.cfg.Extensions {
		path := filepath.Join(dir, ref.Slug+ext)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "probe document path").
				WithContext("file", path).
				Build()
		}
		return loadDocument(ref, path)
	}
	return nil, nil
}

// scanForSlug walks the category tree looking for a file whose name
// (extension stripped) equals slug. The first match in traversal order
// wins; directory order makes that deterministic.
func (l *Library) scanForSlug(ctx context.Context, category, slug string) (*Document, error) {
	dir := filepath.Join(l.cfg.Root, category)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var foundRef *Ref
	var foundPath string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
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
		if strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())) != slug {
			return nil
		}
		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		subcategory := filepath.ToSlash(filepath.Dir(relPath))
		if subcategory == "." {
			subcategory = ""
		}
		foundRef = &Ref{Category: category, Subcategory: subcategory, Slug: slug}
		foundPath = path
		return filepath.SkipAll
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "scan category for slug").
			WithContext("category", category).
			WithContext("slug", slug).
			Build()
	}
	if foundRef == nil {
		return nil, nil
	}
	return loadDocument(*foundRef, foundPath)
}

// cacheResolved inserts a successfully resolved document under its
// resolved ref and passes it through.
func (l *Library) cacheResolved(doc *Document) *Document {
	if doc != nil && l.cache != nil {
		l.cache.Put(doc.Ref, doc)
	}
	return doc
}

func (l *Library) notFound(category, subcategory, slug string) error {
	return errors.NotFoundError("document not found").
		WithContext("category", category).
		WithContext("subcategory", subcategory).
		WithContext("slug", slug).
		Build()
}

// normalizeSubcategory cleans a caller-supplied subcategory path into
// the canonical slash-separated relative form, rejecting traversal
// segments by flattening them away.
func normalizeSubcategory(s string) string {
	s = strings.Trim(strings.ReplaceAll(s, "\\", "/"), "/")
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "/")
	clean := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		clean = append(clean, p)
	}
	return strings.Join(clean, "/")
}
