// Package journal records accepted document submissions in an
// append-only SQLite journal. The journal backs the recent-submissions
// API and the per-user quota window; content itself lives on the
// filesystem and is never stored here.
package journal

import (
	"context"
	"time"
)

// Entry is one accepted submission.
type Entry struct {
	ID          string    // uuid assigned at append time
	Category    string
	Subcategory string
	Slug        string // final slug, after collision probing
	User        string // authenticated submitter, empty for CLI submissions
	Author      string // author header field, may differ from User
	Fingerprint string
	CreatedAt   time.Time
}

// Journal defines the interface for persisting and querying submissions.
type Journal interface {
	// Append records one accepted submission and returns its assigned id.
	Append(ctx context.Context, e Entry) (string, error)

	// Recent retrieves the most recent submissions, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// CountSince counts submissions by one user since the given time.
	CountSince(ctx context.Context, user string, since time.Time) (int, error)

	// Close closes the journal and releases resources.
	Close() error
}
