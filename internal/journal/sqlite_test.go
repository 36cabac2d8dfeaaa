package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var _ Journal = (*SQLiteJournal)(nil)

func TestJournalAppendAndRecent(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	ctx := t.Context()

	id, err := j.Append(ctx, Entry{
		Category:    "guides",
		Subcategory: "java",
		Slug:        "3-java-strings",
		User:        "alice",
		Author:      "Alice Example",
		Fingerprint: "abc123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	require.Equal(t, id, e.ID)
	require.Equal(t, "guides", e.Category)
	require.Equal(t, "java", e.Subcategory)
	require.Equal(t, "3-java-strings", e.Slug)
	require.Equal(t, "alice", e.User)
	require.Equal(t, "Alice Example", e.Author)
	require.Equal(t, "abc123", e.Fingerprint)
	require.False(t, e.CreatedAt.IsZero())
}

func TestJournalRecent_NewestFirstAndLimited(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	ctx := t.Context()
	base := time.Now().Add(-time.Hour)
	for i := range 5 {
		_, err := j.Append(ctx, Entry{
			Category:  "guides",
			Slug:      "doc",
			User:      "alice",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := j.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.True(t, entries[0].CreatedAt.After(entries[1].CreatedAt))
	require.True(t, entries[1].CreatedAt.After(entries[2].CreatedAt))
}

func TestJournalCountSince_FiltersUserAndWindow(t *testing.T) {
	j, err := NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	ctx := t.Context()
	now := time.Now()

	// Two recent submissions by alice, one stale, one by someone else.
	for _, e := range []Entry{
		{Category: "guides", Slug: "a", User: "alice", CreatedAt: now.Add(-10 * time.Minute)},
		{Category: "guides", Slug: "b", User: "alice", CreatedAt: now.Add(-5 * time.Minute)},
		{Category: "guides", Slug: "c", User: "alice", CreatedAt: now.Add(-2 * time.Hour)},
		{Category: "guides", Slug: "d", User: "bob", CreatedAt: now.Add(-5 * time.Minute)},
	} {
		_, err := j.Append(ctx, e)
		require.NoError(t, err)
	}

	n, err := j.CountSince(ctx, "alice", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = j.CountSince(ctx, "carol", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)
}
