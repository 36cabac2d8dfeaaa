package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/metrics"
)

func newTestLibrary(t *testing.T, opts ...Option) *Library {
	t.Helper()
	return NewLibrary(Config{Root: t.TempDir()}, opts...)
}

func writeDoc(t *testing.T, lib *Library, category, subcategory, slug, title string) string {
	t.Helper()
	dir := filepath.Join(lib.Root(), category, filepath.FromSlash(subcategory))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, slug+".md")
	content := fmt.Sprintf("---\ntitle: %s\ndescription: about %s\n---\n# %s\n\nbody of %s\n", title, slug, title, slug)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// captureRecorder counts skip and submission events on top of the noop
// recorder.
type captureRecorder struct {
	metrics.NoopRecorder
	skipped     map[string]int
	submissions map[metrics.ResultLabel]int
}

func newCaptureRecorder() *captureRecorder {
	return &captureRecorder{skipped: map[string]int{}, submissions: map[metrics.ResultLabel]int{}}
}

func (c *captureRecorder) IncDocSkipped(category string) { c.skipped[category]++ }
func (c *captureRecorder) IncSubmission(_ string, result metrics.ResultLabel) {
	c.submissions[result]++
}

func TestResolve_SlugAtCategoryRoot_ReturnsDocument(t *testing.T) {
	lib := newTestLibrary(t)
	writeDoc(t, lib, "guides", "", "1-intro", "Introduction")

	doc, err := lib.Resolve(context.Background(), "guides", "1-intro", "")
	require.NoError(t, err)
	require.Equal(t, "1-intro", doc.Slug)
	require.Equal(t, "guides", doc.Category)
	require.Equal(t, "", doc.Subcategory)
	require.Equal(t, "Introduction", doc.Meta.Title)
	require.Contains(t, string(doc.Body), "body of 1-intro")
}

func TestResolve_WithSubcategoryHint_FindsDirectly(t *testing.T) {
	lib := newTestLibrary(t)
	writeDoc(t, lib, "guides", "collections", "2-lists", "Lists")

	doc, err := lib.Resolve(context.Background(), "guides", "2-lists", "collections")
	require.NoError(t, err)
	require.Equal(t, "collections", doc.Subcategory)
	require.Equal(t, "Lists", doc.Meta.Title)
}

func TestResolve_WrongHint_FallsBackToScan(t *testing.T) {
	lib := newTestLibrary(t)
	writeDoc(t, lib, "guides", "collections", "2-lists", "Lists")

	doc, err := lib.Resolve(context.Background(), "guides", "2-lists", "arrays")
	require.NoError(t, err)
	require.Equal(t, "collections", doc.Subcategory, "resolved subcategory reflects where the file was found")
}

func TestResolve_NoHint_FindsNestedDocument(t *testing.T) {
	lib := newTestLibrary(t)
	writeDoc(t, lib, "guides", "collections/maps", "3-hashmaps", "HashMaps")

	doc, err := lib.Resolve(context.Background(), "guides", "3-hashmaps", "")
	require.NoError(t, err)
	require.Equal(t, "collections/maps", doc.Subcategory)
}

func TestResolve_MissingSlug_ReturnsNotFound(t *testing.T) {
	lib := newTestLibrary(t)
	writeDoc(t, lib, "guides", "", "1-intro", "Introduction")

	_, err := lib.Resolve(context.Background(), "guides", "no-such-doc", "")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	slug, _ := classified.Context().GetString("slug")
	require.Equal(t, "no-such-doc", slug)
}

func TestResolve_UnknownCategory_ReturnsNotFound(t *testing.T) {
	lib := newTestLibrary(t)

	_, err := lib.Resolve(context.Background(), "recipes", "1-intro", "")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestResolve_MissingRoot_ReportsContentRootNotFound(t *testing.T) {
	lib := NewLibrary(Config{Root: filepath.Join(t.TempDir(), "absent")})

	_, err := lib.Resolve(context.Background(), "guides", "1-intro", "")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
	require.Contains(t, err.Error(), "content root not found")
}

func TestResolve_MalformedDocument_FailsFast(t *testing.T) {
	lib := newTestLibrary(t)
	dir := filepath.Join(lib.Root(), "guides")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"),
		[]byte("---\ntitle: Unclosed\nbody without closing delimiter\n"), 0o644))

	_, err := lib.Resolve(context.Background(), "guides", "broken", "")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryContent))
	require.False(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestListCategory_AllElementsMatchCategory(t *testing.T) {
	lib := newTestLibrary(t)
	writeDoc(t, lib, "guides", "", "1-intro", "Intro")
	writeDoc(t, lib, "guides", "collections", "2-lists", "Lists")
	writeDoc(t, lib, "concepts", "", "1-oop", "OOP")

	items, err := lib.ListCategory(context.Background(), "guides")
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		require.Equal(t, "guides", item.Category)
	}
}

func TestListCategory_MalformedFile_SkippedNotFatal(t *testing.T) {
	rec := newCaptureRecorder()
	lib := newTestLibrary(t, WithRecorder(rec))
	writeDoc(t, lib, "guides", "", "1-intro", "Intro")
	writeDoc(t, lib, "guides", "", "2-basics", "Basics")
	require.NoError(t, os.WriteFile(filepath.Join(lib.Root(), "guides", "broken.md"),
		[]byte("---\ntitle: Unclosed\nno closing delimiter\n"), 0o644))

	items, err := lib.ListCategory(context.Background(), "guides")
	require.NoError(t, err)
	require.Equal(t, []string{"1-intro", "2-basics"}, slugsOf(items))
	require.Equal(t, 1, rec.skipped["guides"])
}

func TestListCategory_UnknownCategory_ReturnsNotFound(t *testing.T) {
	lib := newTestLibrary(t)

	_, err := lib.ListCategory(context.Background(), "recipes")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestListCategory_CategoryWithoutDirectory_ReturnsEmpty(t *testing.T) {
	lib := newTestLibrary(t)

	items, err := lib.ListCategory(context.Background(), "references")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestListAll_GroupsCategoriesInConfigurationOrder(t *testing.T) {
	lib := newTestLibrary(t)
	writeDoc(t, lib, "references", "", "1-api", "API")
	writeDoc(t, lib, "guides", "", "1-intro", "Intro")
	writeDoc(t, lib, "guides", "", "2-basics", "Basics")

	items, err := lib.ListAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"1-intro", "2-basics", "1-api"}, slugsOf(items))
	require.Equal(t, "guides", items[0].Category)
	require.Equal(t, "references", items[2].Category)
}

func TestAdjacent_ComputesPrevAndNext(t *testing.T) {
	lib := newTestLibrary(t)
	writeDoc(t, lib, "guides", "", "1-intro", "Intro")
	writeDoc(t, lib, "guides", "", "2-basics", "Basics")
	writeDoc(t, lib, "guides", "", "10-advanced", "Advanced")

	adj, err := lib.Adjacent(context.Background(), "guides", "2-basics", "")
	require.NoError(t, err)
	require.NotNil(t, adj.Previous)
	require.NotNil(t, adj.Next)
	require.Equal(t, "1-intro", adj.Previous.Slug)
	require.Equal(t, "10-advanced", adj.Next.Slug)

	adj, err = lib.Adjacent(context.Background(), "guides", "1-intro", "")
	require.NoError(t, err)
	require.Nil(t, adj.Previous)
	require.Equal(t, "2-basics", adj.Next.Slug)

	adj, err = lib.Adjacent(context.Background(), "guides", "10-advanced", "")
	require.NoError(t, err)
	require.Equal(t, "2-basics", adj.Previous.Slug)
	require.Nil(t, adj.Next)
}

func TestAdjacent_SubcategoryFilter_LimitsSiblingSet(t *testing.T) {
	lib := newTestLibrary(t)
	writeDoc(t, lib, "guides", "collections", "1-lists", "Lists")
	writeDoc(t, lib, "guides", "collections", "2-maps", "Maps")
	writeDoc(t, lib, "guides", "concurrency", "1-threads", "Threads")

	adj, err := lib.Adjacent(context.Background(), "guides", "1-lists", "collections")
	require.NoError(t, err)
	require.Nil(t, adj.Previous)
	require.NotNil(t, adj.Next)
	require.Equal(t, "2-maps", adj.Next.Slug)
}

func TestAdjacent_TargetMissing_BothNilNotError(t *testing.T) {
	lib := newTestLibrary(t)
	writeDoc(t, lib, "guides", "", "1-intro", "Intro")

	adj, err := lib.Adjacent(context.Background(), "guides", "no-such-doc", "")
	require.NoError(t, err)
	require.Nil(t, adj.Previous)
	require.Nil(t, adj.Next)
}

func TestCreate_StoresDocument_RoundTripsMetadata(t *testing.T) {
	lib := newTestLibrary(t)
	content := []byte("---\ntitle: Generics Guide\ndescription: Type parameters in practice\nauthor: astrid\ndate: \"2026-01-15\"\n---\n# Generics\n\nbody\n")

	res, err := lib.Create(context.Background(), CreateRequest{
		Category: "guides",
		Slug:     "Generics Guide",
		Content:  content,
	})
	require.NoError(t, err)
	require.Equal(t, "generics-guide", res.Slug)
	require.False(t, res.Renamed)
	require.FileExists(t, res.Path)

	doc, err := lib.Resolve(context.Background(), "guides", res.Slug, "")
	require.NoError(t, err)
	require.Equal(t, "Generics Guide", doc.Meta.Title)
	require.Equal(t, "Type parameters in practice", doc.Meta.Description)
	require.Equal(t, "astrid", doc.Meta.Author)
	require.Equal(t, "2026-01-15", doc.Meta.DateString())
}

func TestCreate_DuplicateSlug_GetsNumericSuffix(t *testing.T) {
	lib := newTestLibrary(t)
	first := []byte("---\ntitle: First\n---\nfirst body\n")
	second := []byte("---\ntitle: Second\n---\nsecond body\n")

	res1, err := lib.Create(context.Background(), CreateRequest{Category: "guides", Slug: "demo", Content: first})
	require.NoError(t, err)
	require.Equal(t, "demo", res1.Slug)

	res2, err := lib.Create(context.Background(), CreateRequest{Category: "guides", Slug: "demo", Content: second})
	require.NoError(t, err)
	require.Equal(t, "demo-1", res2.Slug)
	require.True(t, res2.Renamed)

	doc1, err := lib.Resolve(context.Background(), "guides", "demo", "")
	require.NoError(t, err)
	require.Equal(t, "First", doc1.Meta.Title)

	doc2, err := lib.Resolve(context.Background(), "guides", "demo-1", "")
	require.NoError(t, err)
	require.Equal(t, "Second", doc2.Meta.Title)
}

func TestCreate_NeverOverwritesExistingFile(t *testing.T) {
	lib := newTestLibrary(t)
	existing := writeDoc(t, lib, "guides", "", "demo", "Original")
	before, err := os.ReadFile(existing)
	require.NoError(t, err)

	res, err := lib.Create(context.Background(), CreateRequest{
		Category: "guides",
		Slug:     "demo",
		Content:  []byte("---\ntitle: Imposter\n---\nnew body\n"),
	})
	require.NoError(t, err)
	require.Equal(t, "demo-1", res.Slug)

	after, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestCreate_MissingFields_ValidationError(t *testing.T) {
	lib := newTestLibrary(t)
	valid := []byte("---\ntitle: X\n---\nbody\n")

	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"missing category", CreateRequest{Slug: "demo", Content: valid}},
		{"unknown category", CreateRequest{Category: "recipes", Slug: "demo", Content: valid}},
		{"missing slug", CreateRequest{Category: "guides", Content: valid}},
		{"unusable slug", CreateRequest{Category: "guides", Slug: "!!!", Content: valid}},
		{"missing content", CreateRequest{Category: "guides", Slug: "demo"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := lib.Create(context.Background(), tc.req)
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestCreate_MalformedContent_ValidationError(t *testing.T) {
	rec := newCaptureRecorder()
	lib := newTestLibrary(t, WithRecorder(rec))

	_, err := lib.Create(context.Background(), CreateRequest{
		Category: "guides",
		Slug:     "demo",
		Content:  []byte("---\ntitle: Unclosed\nno delimiter\n"),
	})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.Equal(t, 1, rec.submissions[metrics.ResultInvalid])
}

func TestCreate_SubcategorySegments_Slugified(t *testing.T) {
	lib := newTestLibrary(t)

	res, err := lib.Create(context.Background(), CreateRequest{
		Category:    "guides",
		Subcategory: "Data Structures/Trees",
		Slug:        "avl",
		Content:     []byte("---\ntitle: AVL\n---\nbody\n"),
	})
	require.NoError(t, err)
	require.Equal(t, "data-structures/trees", res.Subcategory)
	require.FileExists(t, filepath.Join(lib.Root(), "guides", "data-structures", "trees", "avl.md"))
}

func TestResolve_SecondLookup_ServedFromCache(t *testing.T) {
	lib := newTestLibrary(t)
	path := writeDoc(t, lib, "guides", "", "1-intro", "Intro")

	doc, err := lib.Resolve(context.Background(), "guides", "1-intro", "")
	require.NoError(t, err)
	require.Equal(t, "Intro", doc.Meta.Title)

	// Mutate the file behind the cache's back; the cached copy wins
	// until invalidation.
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Changed\n---\nnew\n"), 0o644))

	doc, err = lib.Resolve(context.Background(), "guides", "1-intro", "")
	require.NoError(t, err)
	require.Equal(t, "Intro", doc.Meta.Title)

	lib.InvalidateRef(Ref{Category: "guides", Subcategory: "", Slug: "1-intro"})
	doc, err = lib.Resolve(context.Background(), "guides", "1-intro", "")
	require.NoError(t, err)
	require.Equal(t, "Changed", doc.Meta.Title)
}

func TestResolve_CacheDisabled_AlwaysReadsDisk(t *testing.T) {
	lib := newTestLibrary(t, WithoutCache())
	path := writeDoc(t, lib, "guides", "", "1-intro", "Intro")

	_, err := lib.Resolve(context.Background(), "guides", "1-intro", "")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Changed\n---\nnew\n"), 0o644))
	doc, err := lib.Resolve(context.Background(), "guides", "1-intro", "")
	require.NoError(t, err)
	require.Equal(t, "Changed", doc.Meta.Title)
}
