package lint

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docserver/internal/content"
	"git.home.luguber.info/inful/docserver/internal/logfields"
	"git.home.luguber.info/inful/docserver/internal/util/sets"
)

// siblingDoc is one document within an ordering group (a category root
// or one subcategory directory).
type siblingDoc struct {
	slug    string
	relPath string
}

// Linter walks a content tree and applies every rule.
type Linter struct {
	root       string
	categories []string
	extensions sets.Set[string]
	logger     *slog.Logger
}

// New creates a linter for the given content root. Empty categories or
// extensions fall back to the library defaults.
func New(root string, categories []string, extensions []string, logger *slog.Logger) *Linter {
	if len(categories) == 0 {
		categories = content.DefaultCategories
	}
	if len(extensions) == 0 {
		extensions = content.DefaultExtensions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Linter{
		root:       root,
		categories: categories,
		extensions: sets.New(extensions...),
		logger:     logger,
	}
}

// Run walks the tree and returns every issue found. Unreadable
// directories are reported and skipped; the walk always completes.
func (l *Linter) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	for _, category := range l.categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.lintCategory(category, result)
	}

	sort.SliceStable(result.Issues, func(i, j int) bool {
		if result.Issues[i].FilePath != result.Issues[j].FilePath {
			return result.Issues[i].FilePath < result.Issues[j].FilePath
		}
		return result.Issues[i].Rule < result.Issues[j].Rule
	})
	return result, nil
}

func (l *Linter) lintCategory(category string, result *Result) {
	categoryDir := filepath.Join(l.root, category)
	entries, err := os.ReadDir(categoryDir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("Skipping unreadable category",
				logfields.Category(category),
				logfields.Error(err))
		}
		return
	}

	var group []siblingDoc
	for _, entry := range entries {
		if entry.IsDir() {
			l.lintSubcategory(category, entry.Name(), result)
			continue
		}
		if doc, ok := l.document(category, "", entry.Name()); ok {
			group = append(group, doc)
		}
	}
	l.lintGroup(group, result)
}

func (l *Linter) lintSubcategory(category, subcategory string, result *Result) {
	dir := filepath.Join(l.root, category, subcategory)
	entries, err := os.ReadDir(dir)
	if err != nil {
		l.logger.Warn("Skipping unreadable subcategory",
			logfields.Category(category),
			logfields.Subcategory(subcategory),
			logfields.Error(err))
		return
	}

	var group []siblingDoc
	for _, entry := range entries {
		if entry.IsDir() {
			continue // tree is at most two levels deep
		}
		if doc, ok := l.document(category, subcategory, entry.Name()); ok {
			group = append(group, doc)
		}
	}
	l.lintGroup(group, result)
}

// document classifies one directory entry; non-document files are
// ignored without comment, matching the enumerator.
func (l *Linter) document(category, subcategory, filename string) (siblingDoc, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !l.extensions.Has(ext) {
		return siblingDoc{}, false
	}
	slug := strings.TrimSuffix(filename, filepath.Ext(filename))
	relPath := filepath.Join(category, subcategory, filename)
	return siblingDoc{slug: slug, relPath: relPath}, true
}

func (l *Linter) lintGroup(group []siblingDoc, result *Result) {
	for _, doc := range group {
		result.FilesTotal++
		absPath := filepath.Join(l.root, doc.relPath)
		result.Issues = append(result.Issues, checkFile(absPath, doc.relPath, doc.slug)...)
	}
	result.Issues = append(result.Issues, checkSiblings(group)...)
}
