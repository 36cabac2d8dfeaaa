package lint

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/docserver/internal/content"
	"git.home.luguber.info/inful/docserver/internal/docmodel"
	"git.home.luguber.info/inful/docserver/internal/frontmatter"
)

// Rule identifiers, stable for machine consumption.
const (
	RuleHeaderParse  = "header-parse"
	RuleInvalidDate  = "invalid-date"
	RuleMissingTitle = "missing-title"
	RuleDuplicateKey = "duplicate-order-key"
	RuleSlugForm     = "slug-normalization"
)

// checkFile runs every per-file rule against one document and returns
// the issues found. A file that cannot be read yields a single
// header-parse error; later rules need the parsed header.
func checkFile(absPath, relPath, slug string) []Issue {
	var issues []Issue

	raw, err := os.ReadFile(absPath) // #nosec G304 -- paths come from walking the operator's content root.
	if err != nil {
		return []Issue{{
			FilePath: relPath,
			Severity: SeverityError,
			Rule:     RuleHeaderParse,
			Message:  fmt.Sprintf("cannot read file: %v", err),
		}}
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return []Issue{{
			FilePath: relPath,
			Severity: SeverityError,
			Rule:     RuleHeaderParse,
			Message:  fmt.Sprintf("metadata header does not parse: %v", err),
		}}
	}

	meta, err := docmodel.ParseFields(doc.Fields)
	if err != nil {
		// ParseFields only rejects malformed typed fields; the date is
		// the interesting one for authors.
		issues = append(issues, Issue{
			FilePath: relPath,
			Severity: SeverityError,
			Rule:     RuleInvalidDate,
			Message:  fmt.Sprintf("invalid metadata field: %v", err),
		})
		return issues
	}

	if meta.Title == "" {
		issues = append(issues, Issue{
			FilePath: relPath,
			Severity: SeverityWarning,
			Rule:     RuleMissingTitle,
			Message:  "document has no title; listings fall back to the slug",
		})
	}

	if normalized := content.Slugify(slug); normalized != slug {
		issues = append(issues, Issue{
			FilePath: relPath,
			Severity: SeverityWarning,
			Rule:     RuleSlugForm,
			Message:  fmt.Sprintf("filename %q is not in normalized slug form (want %q)", slug, normalized),
		})
	}

	return issues
}

// checkSiblings flags ordering keys shared by more than one document in
// the same directory. Ordering stays deterministic (full slug breaks
// the tie) but the duplicated key is almost always an authoring slip.
func checkSiblings(group []siblingDoc) []Issue {
	byKey := make(map[string][]siblingDoc)
	for _, d := range group {
		key := content.OrderKey(d.slug)
		byKey[key] = append(byKey[key], d)
	}

	var issues []Issue
	for key, docs := range byKey {
		if len(docs) < 2 {
			continue
		}
		for _, d := range docs {
			issues = append(issues, Issue{
				FilePath: d.relPath,
				Severity: SeverityWarning,
				Rule:     RuleDuplicateKey,
				Message:  fmt.Sprintf("ordering key %q is shared by %d sibling documents", key, len(docs)),
			})
		}
	}
	return issues
}
