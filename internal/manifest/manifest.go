// Package manifest produces a deterministic snapshot of the content
// tree. The snapshot hash is the cheap answer to "did anything
// change?": the reindex job compares hashes to decide whether the
// document cache needs purging, and the admin status endpoint reports
// the current hash.
package manifest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"git.home.luguber.info/inful/docserver/internal/content"
)

// Entry describes one document in the snapshot.
type Entry struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Slug        string `json:"slug"`
	Size        int64  `json:"size"`
	ModTime     int64  `json:"mod_time"` // unix seconds
	Fingerprint string `json:"fingerprint"`
}

// Manifest is a point-in-time snapshot of the content tree.
type Manifest struct {
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
	Hash        string    `json:"hash"`
}

// Lister is the library slice the builder needs.
type Lister interface {
	ListAll(ctx context.Context) ([]content.Summary, error)
}

// Build snapshots the current content tree. Entries are sorted by
// (category, subcategory, slug) so the hash is stable across traversal
// orders.
func Build(ctx context.Context, lister Lister) (*Manifest, error) {
	summaries, err := lister.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(summaries))
	for _, s := range summaries {
		e := Entry{
			Category:    s.Category,
			Subcategory: s.Subcategory,
			Slug:        s.Slug,
			Fingerprint: s.Fingerprint,
		}
		if info, err := os.Stat(s.Path); err == nil {
			e.Size = info.Size()
			e.ModTime = info.ModTime().Unix()
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		if entries[i].Subcategory != entries[j].Subcategory {
			return entries[i].Subcategory < entries[j].Subcategory
		}
		return entries[i].Slug < entries[j].Slug
	})

	return &Manifest{
		GeneratedAt: time.Now(),
		Entries:     entries,
		Hash:        ComputeHash(entries),
	}, nil
}

// ComputeHash computes a deterministic hash over manifest entries.
// Callers must pass entries already in canonical order.
func ComputeHash(entries []Entry) string {
	if len(entries) == 0 {
		h := sha256.Sum256([]byte("empty-content-tree"))
		return hex.EncodeToString(h[:])
	}

	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s|%s|%s|%d|%d|%s\n",
			e.Category, e.Subcategory, e.Slug, e.Size, e.ModTime, e.Fingerprint)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FileCount returns the number of documents in the manifest.
func (m *Manifest) FileCount() int { return len(m.Entries) }

// CountByCategory tallies documents per category for the gauges.
func (m *Manifest) CountByCategory() map[string]int {
	counts := make(map[string]int)
	for _, e := range m.Entries {
		counts[e.Category]++
	}
	return counts
}

// ToJSON serializes the manifest to JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Save writes the manifest to path. The write goes through a temp file
// so a crash never leaves a truncated manifest behind.
func (m *Manifest) Save(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// Load reads a manifest from path. A missing file returns (nil, nil)
// so first runs can proceed without one.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's config file.
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}
