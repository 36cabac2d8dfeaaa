// Package normalization maps loosely-typed configuration strings onto
// typed enumerations. Input is case-folded and trimmed before lookup,
// so "Token", " token " and "TOKEN" all canonicalize the same way.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer converts raw strings into values of an enum type T.
type Normalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
	keys         []string // sorted, for stable error messages
}

// NewNormalizer builds a normalizer over the given string->value pairs.
// Map keys are canonicalized, so callers may list them in any casing.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		key := canonicalize(k)
		normalized[key] = v
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &Normalizer[T]{values: normalized, defaultValue: defaultValue, keys: keys}
}

// Normalize converts raw to its enum value, or the default when raw is
// not recognized. The config normalization pass relies on the default
// being the zero value so it can warn before defaults apply.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[canonicalize(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithError converts raw to its enum value, or reports the
// valid options when raw is not recognized.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.values[canonicalize(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.keys)
}

// ValidKeys returns every accepted canonical key.
func (n *Normalizer[T]) ValidKeys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

func canonicalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
