package content

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
)

// ListCategory returns summaries for every parseable document in one
// category, in sibling order. Unparseable documents are skipped, not
// fatal; an unknown category is a not-found error.
func (l *Library) ListCategory(ctx context.Context, category string) ([]Summary, error) {
	start := time.Now()
	defer func() { l.recorder.ObserveListDuration("category", time.Since(start)) }()

	if err := l.ensureRoot(); err != nil {
		return nil, err
	}
	if !l.categories.Has(category) {
		return nil, errors.NotFoundError("category not found").
			WithContext("category", category).
			Build()
	}
	items, err := l.scanCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	SortSummaries(items)
	l.recorder.SetDocumentCount(category, len(items))
	return items, nil
}

// ListAll returns summaries for every parseable document under the
// content root, grouped by category in configuration order and in
// sibling order within each category.
func (l *Library) ListAll(ctx context.Context) ([]Summary, error) {
	start := time.Now()
	defer func() { l.recorder.ObserveListDuration("all", time.Since(start)) }()

	if err := l.ensureRoot(); err != nil {
		return nil, err
	}
	var all []Summary
	for _, category := range l.cfg.Categories {
		items, err := l.scanCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		SortSummaries(items)
		l.recorder.SetDocumentCount(category, len(items))
		all = append(all, items...)
	}
	return all, nil
}

// Adjacent computes the previous and next documents relative to slug
// within one category, optionally narrowed to a single subcategory.
// The sibling set is recomputed from disk on every call; a slug that is
// not part of the set yields an empty adjacency, not an error.
func (l *Library) Adjacent(ctx context.Context, category, slug, subcategory string) (Adjacency, error) {
	start := time.Now()
	defer func() { l.recorder.ObserveListDuration("adjacent", time.Since(start)) }()

	if err := l.ensureRoot(); err != nil {
		return Adjacency{}, err
	}
	if !l.categories.Has(category) {
		return Adjacency{}, errors.NotFoundError("category not found").
			WithContext("category", category).
			Build()
	}
	items, err := l.scanCategory(ctx, category)
	if err != nil {
		return Adjacency{}, err
	}
	if sub := normalizeSubcategory(subcategory); sub != "" {
		filtered := make([]Summary, 0, len(items))
		for _, item := range items {
			if item.Subcategory == sub {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	SortSummaries(items)
	previous, next := Neighbors(items, slug)
	return Adjacency{Previous: previous, Next: next}, nil
}
