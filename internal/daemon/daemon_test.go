package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserver/internal/config"
	"git.home.luguber.info/inful/docserver/internal/testutil"
)

func testConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	return &config.Config{
		Version: config.SupportedVersion,
		Site:    config.SiteConfig{Title: "Test Docs"},
		Content: config.ContentConfig{
			Root:       root,
			Categories: []string{"guides", "concepts"},
			Extensions: []string{".md"},
		},
		Server: config.ServerConfig{DocsPort: 0, AdminPort: 0},
		Store:  config.StoreConfig{Path: filepath.Join(t.TempDir(), "docserver.db")},
	}
}

func TestNew_MinimalConfig_WiresComponents(t *testing.T) {
	root := testutil.WriteTree(t,
		testutil.Doc{Category: "guides", Slug: "1-intro", Title: "Intro"},
		testutil.Doc{Category: "concepts", Slug: "1-oop", Title: "OOP"},
	)

	d, err := New(testConfig(t, root), nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, d.Stop(context.Background())) }()

	require.NotNil(t, d.library)
	require.NotNil(t, d.server)
	require.NotNil(t, d.scheduler)
	require.NotNil(t, d.journal)
	require.Nil(t, d.syncer)
	require.Nil(t, d.notifier)
	require.Nil(t, d.sessions)
}

func TestReindex_PopulatesStatus(t *testing.T) {
	root := testutil.WriteTree(t,
		testutil.Doc{Category: "guides", Slug: "1-intro", Title: "Intro"},
		testutil.Doc{Category: "guides", Slug: "2-setup", Title: "Setup"},
		testutil.Doc{Category: "concepts", Slug: "1-oop", Title: "OOP"},
	)

	d, err := New(testConfig(t, root), nil)
	require.NoError(t, err)
	defer func() { _ = d.Stop(context.Background()) }()

	_, ok := d.LastReindex()
	require.False(t, ok, "no reindex has run yet")

	require.NoError(t, d.Reindex(context.Background()))

	require.NotEmpty(t, d.IndexHash())
	_, ok = d.LastReindex()
	require.True(t, ok)
	counts := d.DocumentCounts()
	require.Equal(t, 2, counts["guides"])
	require.Equal(t, 1, counts["concepts"])
}

func TestReindex_TreeChange_ChangesHash(t *testing.T) {
	root := testutil.WriteTree(t,
		testutil.Doc{Category: "guides", Slug: "1-intro", Title: "Intro"},
	)

	d, err := New(testConfig(t, root), nil)
	require.NoError(t, err)
	defer func() { _ = d.Stop(context.Background()) }()

	require.NoError(t, d.Reindex(context.Background()))
	first := d.IndexHash()

	testutil.AddDocs(t, root,
		testutil.Doc{Category: "guides", Slug: "2-setup", Title: "Setup"},
	)
	require.NoError(t, d.Reindex(context.Background()))

	require.NotEqual(t, first, d.IndexHash())
	require.Equal(t, 2, d.DocumentCounts()["guides"])
}

func TestReindex_MissingRoot_Errors(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing"))
	d, err := New(cfg, nil)
	require.NoError(t, err)
	defer func() { _ = d.Stop(context.Background()) }()

	require.Error(t, d.Reindex(context.Background()))
}

func TestReindex_SavesManifest(t *testing.T) {
	root := testutil.WriteTree(t,
		testutil.Doc{Category: "guides", Slug: "1-intro", Title: "Intro"},
	)
	cfg := testConfig(t, root)
	cfg.Reindex.ManifestPath = filepath.Join(t.TempDir(), "manifest.json")

	d, err := New(cfg, nil)
	require.NoError(t, err)
	defer func() { _ = d.Stop(context.Background()) }()

	require.NoError(t, d.Reindex(context.Background()))
	require.FileExists(t, cfg.Reindex.ManifestPath)
}
