package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func summaries(slugs ...string) []Summary {
	items := make([]Summary, len(slugs))
	for i, s := range slugs {
		items[i] = Summary{Ref: Ref{Category: "guides", Slug: s}}
	}
	return items
}

func slugsOf(items []Summary) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Slug
	}
	return out
}

func TestOrderKey_Extraction(t *testing.T) {
	cases := []struct {
		slug string
		want string
	}{
		{"3-java-strings", "3"},
		{"B-encapsulation", "B"},
		{"10-advanced", "10"},
		{"a1-topic", "a1"},
		{"intro", ""},
		{"-leading-hyphen", ""},
		{"3_underscore", ""},
		{"", ""},
		{"42", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, OrderKey(tc.slug), "slug %q", tc.slug)
	}
}

func TestSortSummaries_NumericPrefixes_SortAsIntegers(t *testing.T) {
	items := summaries("10-advanced", "1-intro", "2-basics")
	SortSummaries(items)
	require.Equal(t, []string{"1-intro", "2-basics", "10-advanced"}, slugsOf(items))
}

// Numeric keys sort before alphabetic ones: "9" and "A" are compared as
// strings because only one side is numeric, and ASCII digits precede
// letters.
func TestSortSummaries_NumericPrefixBeforeAlphabetic(t *testing.T) {
	items := summaries("A-bar", "9-foo")
	SortSummaries(items)
	require.Equal(t, []string{"9-foo", "A-bar"}, slugsOf(items))

	items = summaries("B-encapsulation", "A-classes", "10-interfaces", "2-methods", "9-generics")
	SortSummaries(items)
	require.Equal(t,
		[]string{"2-methods", "9-generics", "10-interfaces", "A-classes", "B-encapsulation"},
		slugsOf(items))
}

func TestSortSummaries_DuplicateKeys_FullSlugBreaksTie(t *testing.T) {
	items := summaries("2-beta", "2-alpha", "2-gamma")
	SortSummaries(items)
	require.Equal(t, []string{"2-alpha", "2-beta", "2-gamma"}, slugsOf(items))
}

func TestSortSummaries_UnprefixedSlugs_SortFirstByEmptyKey(t *testing.T) {
	items := summaries("1-first", "overview", "appendix")
	SortSummaries(items)
	require.Equal(t, []string{"appendix", "overview", "1-first"}, slugsOf(items))
}

func TestSortSummaries_EquivalentNumericSpellings_Deterministic(t *testing.T) {
	items := summaries("01-intro", "1-intro-copy")
	SortSummaries(items)
	require.Equal(t, []string{"01-intro", "1-intro-copy"}, slugsOf(items))
}

func TestNeighbors_MiddleElement_ReturnsBothSides(t *testing.T) {
	items := summaries("1-a", "2-b", "3-c")
	SortSummaries(items)

	previous, next := Neighbors(items, "2-b")
	require.NotNil(t, previous)
	require.NotNil(t, next)
	require.Equal(t, "1-a", previous.Slug)
	require.Equal(t, "3-c", next.Slug)
}

func TestNeighbors_Boundaries_ReturnNilSides(t *testing.T) {
	items := summaries("1-a", "2-b", "3-c")
	SortSummaries(items)

	previous, next := Neighbors(items, "1-a")
	require.Nil(t, previous)
	require.Equal(t, "2-b", next.Slug)

	previous, next = Neighbors(items, "3-c")
	require.Equal(t, "2-b", previous.Slug)
	require.Nil(t, next)
}

func TestNeighbors_MissingTarget_BothNil(t *testing.T) {
	items := summaries("1-a", "2-b")
	SortSummaries(items)

	previous, next := Neighbors(items, "99-zzz")
	require.Nil(t, previous)
	require.Nil(t, next)
}

func TestNeighbors_SingleElement_BothNil(t *testing.T) {
	items := summaries("only")
	previous, next := Neighbors(items, "only")
	require.Nil(t, previous)
	require.Nil(t, next)
}
