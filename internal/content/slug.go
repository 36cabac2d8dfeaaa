package content

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
)

// maxSlugProbes bounds the collision suffix search in FindAvailableSlug.
const maxSlugProbes = 10000

// stripMarks decomposes accented characters and removes the combining
// marks, so "café" slugifies to "cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a proposed slug or title into canonical form:
// accents stripped, lowercased, every run of non-alphanumeric
// characters collapsed to a single hyphen, no leading or trailing
// hyphen. Returns "" when nothing usable remains.
func Slugify(s string) string {
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FindAvailableSlug probes base, base-1, base-2, ... against the exists
// predicate and returns the first free slug. Extracting the predicate
// keeps collision handling testable without touching a filesystem. The
// search is bounded; exhausting it is reported as a store-side failure
// rather than looping forever.
func FindAvailableSlug(base string, exists func(slug string) (bool, error)) (string, error) {
	for i := 0; i <= maxSlugProbes; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.FileSystemError("no available slug variant").
		WithContext("slug", base).
		WithContext("probes", maxSlugProbes+1).
		Build()
}
