package content

import (
	"sort"
	"strconv"
)

// OrderKey extracts the sibling ordering key from a slug: the leading
// run of ASCII letters and digits immediately followed by a hyphen.
// "3-java-strings" yields "3", "B-encapsulation" yields "B", and a slug
// without a hyphenated prefix ("intro") yields "".
func OrderKey(slug string) string {
	i := 0
	for i < len(slug) {
		c := slug[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			i++
			continue
		}
		break
	}
	if i == 0 || i >= len(slug) || slug[i] != '-' {
		return ""
	}
	return slug[:i]
}

// numericKey parses a purely numeric ordering key. Keys that overflow
// uint64 are treated as non-numeric and fall back to string comparison.
func numericKey(key string) (uint64, bool) {
	if key == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// lessSummary is the sibling ordering relation. Primary: ordering keys,
// compared as integers when both are numeric and as strings otherwise.
// Ties (including equal numeric values spelled differently, like "01"
// and "1") fall through to full-slug comparison, then subcategory, so
// the order is total and deterministic regardless of traversal order.
func lessSummary(a, b Summary) bool {
	ka, kb := OrderKey(a.Slug), OrderKey(b.Slug)
	if ka != kb {
		na, aok := numericKey(ka)
		nb, bok := numericKey(kb)
		if aok && bok && na != nb {
			return na < nb
		}
		if !(aok && bok) {
			return ka < kb
		}
	}
	if a.Slug != b.Slug {
		return a.Slug < b.Slug
	}
	return a.Subcategory < b.Subcategory
}

// SortSummaries orders a sibling set in place. The sort is stable so
// equal-ranking documents keep their traversal order as a final
// tie-break, though lessSummary already distinguishes any two documents
// with distinct refs.
func SortSummaries(items []Summary) {
	sort.SliceStable(items, func(i, j int) bool {
		return lessSummary(items[i], items[j])
	})
}

// Neighbors locates slug in an already-sorted sibling set and returns
// its immediate predecessor and successor. A boundary position yields
// nil on that side; an absent slug yields nil on both. The returned
// summaries are copies, safe to retain.
func Neighbors(sorted []Summary, slug string) (previous, next *Summary) {
	for i := range sorted {
		if sorted[i].Slug != slug {
			continue
		}
		if i > 0 {
			p := sorted[i-1]
			previous = &p
		}
		if i+1 < len(sorted) {
			n := sorted[i+1]
			next = &n
		}
		return previous, next
	}
	return nil, nil
}
