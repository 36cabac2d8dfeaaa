package auth

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Session is one active login. Deleting the row revokes the login even
// while its JWT is still unexpired.
type Session struct {
	ID        string
	Subject   string // username
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionStore provides session persistence operations.
type SessionStore interface {
	Create(ctx context.Context, subject string, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int, error)
	Close() error
}

// SQLiteSessionStore implements SessionStore using SQLite.
type SQLiteSessionStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteSessionStore opens (and bootstraps) the session store at dbPath.
func NewSQLiteSessionStore(dbPath string) (*SQLiteSessionStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &SQLiteSessionStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteSessionStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create stores a new session for subject and returns it.
func (s *SQLiteSessionStore) Create(ctx context.Context, subject string, ttl time.Duration) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Subject:   subject,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, subject, expires_at, created_at) VALUES (?, ?, ?, ?)",
		sess.ID, sess.Subject, sess.ExpiresAt.Unix(), sess.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Get returns the session with id, or nil when it does not exist or has
// expired. Expired rows are cleaned up on read.
func (s *SQLiteSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	var sess Session
	var expiresUnix, createdUnix int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, subject, expires_at, created_at FROM sessions WHERE id = ?", id,
	).Scan(&sess.ID, &sess.Subject, &expiresUnix, &createdUnix)
	s.mu.RUnlock()

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	sess.ExpiresAt = time.Unix(expiresUnix, 0)
	sess.CreatedAt = time.Unix(createdUnix, 0)
	if time.Now().After(sess.ExpiresAt) {
		_ = s.Delete(ctx, id)
		return nil, nil
	}
	return &sess, nil
}

// Delete removes one session. Deleting a missing session is not an error.
func (s *SQLiteSessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every expired session and reports how many rows
// went away. The daemon runs this on a schedule.
func (s *SQLiteSessionStore) DeleteExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil //nolint:nilerr // count is advisory; deletion already succeeded
	}
	return int(n), nil
}

// Close closes the database connection.
func (s *SQLiteSessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
