package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteJournal opens (and bootstraps) the journal at dbPath.
// Use ":memory:" for an in-memory journal in tests.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	j := &SQLiteJournal{db: db}
	if err := j.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return j, nil
}

func (j *SQLiteJournal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		subcategory TEXT NOT NULL,
		slug TEXT NOT NULL,
		user TEXT NOT NULL,
		author TEXT,
		fingerprint TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at);
	CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user, created_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Append records one accepted submission and returns its assigned id.
func (j *SQLiteJournal) Append(ctx context.Context, e Entry) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	id := uuid.NewString()
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO submissions (id, category, subcategory, slug, user, author, fingerprint, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, e.Category, e.Subcategory, e.Slug, e.User, e.Author, e.Fingerprint, createdAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert submission: %w", err)
	}

	return id, nil
}

// Recent retrieves the most recent submissions, newest first.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		"SELECT id, category, subcategory, slug, user, author, fingerprint, created_at FROM submissions ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// CountSince counts submissions by one user since the given time.
func (j *SQLiteJournal) CountSince(ctx context.Context, user string, since time.Time) (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var n int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM submissions WHERE user = ? AND created_at >= ?",
		user, since.Unix(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var author, fingerprint sql.NullString
		var createdUnix int64

		err := rows.Scan(&e.ID, &e.Category, &e.Subcategory, &e.Slug, &e.User, &author, &fingerprint, &createdUnix)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}

		e.Author = author.String
		e.Fingerprint = fingerprint.String
		e.CreatedAt = time.Unix(createdUnix, 0)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}
