// Package content implements the document library: enumeration and
// parsing of markdown files under a category tree, slug resolution with
// subcategory disambiguation, sibling ordering for prev/next
// navigation, and create-only submission of new documents.
//
// Layout on disk is <root>/<category>/[<subcategory>/]<slug>.md where
// subcategory may nest further directories. Every file carries a YAML
// frontmatter header (title, description, author, optional ISO-8601
// date) followed by the markdown body.
package content

import (
	"log/slog"
	"path"

	"git.home.luguber.info/inful/docserver/internal/cache"
	"git.home.luguber.info/inful/docserver/internal/docmodel"
	"git.home.luguber.info/inful/docserver/internal/metrics"
	"git.home.luguber.info/inful/docserver/internal/util/sets"
)

// DefaultCategories is the category set used when none is configured.
var DefaultCategories = []string{"guides", "concepts", "references"}

// DefaultExtensions lists recognized content file extensions. The first
// entry is used when writing new documents.
var DefaultExtensions = []string{".md", ".markdown"}

// Ref identifies a document by its position in the category tree.
// Subcategory is the slash-separated directory path below the category,
// empty for documents at the category root.
type Ref struct {
	Category    string
	Subcategory string
	Slug        string
}

// String renders the ref as a slash-joined path fragment.
func (r Ref) String() string {
	if r.Subcategory == "" {
		return path.Join(r.Category, r.Slug)
	}
	return path.Join(r.Category, r.Subcategory, r.Slug)
}

// Summary is a document's listing entry: its position, parsed header
// fields, content fingerprint, and location on disk.
type Summary struct {
	Ref
	Path        string // absolute path of the backing file
	Fingerprint string
	Meta        docmodel.Metadata
}

// Document is a fully loaded document. Body is the markdown text after
// the header; Raw is the complete file contents. Documents are treated
// as immutable once parsed.
type Document struct {
	Summary
	Body []byte
	Raw  []byte
}

// Adjacency holds the previous and next sibling of a document in its
// ordered sibling set. Either side is nil at a sequence boundary, and
// both are nil when the target slug is not part of the set.
type Adjacency struct {
	Previous *Summary
	Next     *Summary
}

// CreateRequest carries a document submission. Content must be the full
// file text, header included. Slug is the proposed slug; the stored
// slug may differ when the proposal collides with an existing file.
type CreateRequest struct {
	Category    string
	Subcategory string
	Slug        string
	Content     []byte
}

// CreateResult reports where a submission landed. Renamed is true when
// collision probing moved the document to a suffixed slug.
type CreateResult struct {
	Ref
	Path    string
	Renamed bool
}

// Config locates and bounds the content tree.
type Config struct {
	Root       string   // content root directory
	Categories []string // allowed top-level categories; empty means DefaultCategories
	Extensions []string // recognized file extensions; empty means DefaultExtensions
}

func (c Config) withDefaults() Config {
	if len(c.Categories) == 0 {
		c.Categories = DefaultCategories
	}
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions
	}
	return c
}

// Library is the facade over the content tree. All read operations are
// safe for concurrent use; Create is safe against concurrent creates of
// the same slug (the losing writer moves to the next free suffix) but
// offers no coordination beyond that.
type Library struct {
	cfg        Config
	categories sets.Set[string]
	extensions sets.Set[string]
	cache      *cache.Cache[Ref, *Document] // nil when read-through caching is disabled
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithRecorder sets the metrics recorder. Defaults to NoopRecorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(l *Library) {
		if r != nil {
			l.recorder = r
		}
	}
}

// WithLogger sets the logger used for skip warnings and cache events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithoutCache disables the read-through document cache; every resolve
// hits the filesystem.
func WithoutCache() Option {
	return func(l *Library) { l.cache = nil }
}

// NewLibrary creates a Library over cfg.Root.
func NewLibrary(cfg Config, opts ...Option) *Library {
	cfg = cfg.withDefaults()
	l := &Library{
		cfg:        cfg,
		categories: sets.New(cfg.Categories...),
		extensions: sets.New(cfg.Extensions...),
		cache:      cache.New[Ref, *Document](),
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Categories returns the configured category names in configuration order.
func (l *Library) Categories() []string {
	out := make([]string, len(l.cfg.Categories))
	copy(out, l.cfg.Categories)
	return out
}

// HasCategory reports whether name is a configured category.
func (l *Library) HasCategory(name string) bool {
	return l.categories.Has(name)
}

// Root returns the configured content root directory.
func (l *Library) Root() string {
	return l.cfg.Root
}

// InvalidateRef drops one document from the read-through cache.
func (l *Library) InvalidateRef(ref Ref) {
	if l.cache == nil {
		return
	}
	if l.cache.Invalidate(ref) {
		l.recorder.IncCacheEvent(metrics.CacheInvalidate)
	}
}

// PurgeCache drops every cached document and returns how many entries
// were removed. The filesystem watcher calls this on change bursts.
func (l *Library) PurgeCache() int {
	if l.cache == nil {
		return 0
	}
	n := l.cache.Purge()
	if n > 0 {
		l.recorder.IncCacheEvent(metrics.CachePurge)
	}
	return n
}

// CacheStats exposes cache counters for the monitoring endpoints.
func (l *Library) CacheStats() cache.Stats {
	if l.cache == nil {
		return cache.Stats{}
	}
	return l.cache.Snapshot()
}
