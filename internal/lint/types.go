// Package lint walks the content tree and reports per-file problems
// before they surface as runtime resolve errors: headers that do not
// parse, invalid dates, missing titles, duplicate ordering keys within
// a sibling group, and filenames that do not match their normalized
// slug form. The check command exits non-zero when issues are found.
package lint

// Severity indicates the importance level of a finding.
type Severity int

const (
	// SeverityWarning indicates issues that degrade ordering or lookups
	// but do not make a document unservable.
	SeverityWarning Severity = iota
	// SeverityError indicates issues that make a document unservable.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single problem found in the content tree.
type Issue struct {
	FilePath string   // path relative to the content root
	Severity Severity // finding severity
	Rule     string   // rule identifier (e.g. "header-parse")
	Message  string   // brief description of the issue
}

// Result contains all issues found during a tree walk.
type Result struct {
	Issues     []Issue
	FilesTotal int // total documents scanned
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			count++
		}
	}
	return count
}
