// Package integration exercises the assembled server end to end: real
// content tree on disk, real SQLite journal, real routers mounted on
// httptest listeners.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"git.home.luguber.info/inful/docserver/internal/auth"
	"git.home.luguber.info/inful/docserver/internal/config"
	"git.home.luguber.info/inful/docserver/internal/content"
	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/journal"
	"git.home.luguber.info/inful/docserver/internal/markdown"
	"git.home.luguber.info/inful/docserver/internal/server/handlers"
	"git.home.luguber.info/inful/docserver/internal/server/httpserver"
	"git.home.luguber.info/inful/docserver/internal/templates"
	"git.home.luguber.info/inful/docserver/internal/testutil"
)

// env is one fully wired server instance backed by a temp content tree.
type env struct {
	t       *testing.T
	root    string
	library *content.Library
	journal journal.Journal
	auth    *auth.Service
	docs    *httptest.Server
	admin   *httptest.Server
}

type envOptions struct {
	authUsers map[string]string // username -> plaintext password
}

type envOption func(*envOptions)

// withUsers enables the login gate with the given credentials.
func withUsers(users map[string]string) envOption {
	return func(o *envOptions) { o.authUsers = users }
}

// newEnv builds the docs and admin routers over a fresh content tree
// and serves both through httptest.
func newEnv(t *testing.T, docs []testutil.Doc, opts ...envOption) *env {
	t.Helper()

	var options envOptions
	for _, opt := range opts {
		opt(&options)
	}

	root := testutil.WriteTree(t, docs...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter := errors.NewHTTPErrorAdapter(logger)

	library := content.NewLibrary(content.Config{Root: root}, content.WithLogger(logger))

	jrnl, err := journal.NewSQLiteJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = jrnl.Close() })

	var (
		authService *auth.Service
		authMW      *auth.Middleware
	)
	if len(options.authUsers) > 0 {
		registry := writeUsersFile(t, options.authUsers)
		sessions, err := auth.NewSQLiteSessionStore(filepath.Join(t.TempDir(), "sessions.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = sessions.Close() })
		authService = auth.NewService(registry, sessions, "integration-test-secret", time.Hour, logger)
		authMW = auth.NewMiddleware(authService, adapter, auth.DefaultCookieName, "/login")
	}

	md := markdown.NewRenderer()
	tpl, err := templates.New()
	require.NoError(t, err)

	submitter := handlers.NewSubmitter(library, nil, jrnl, nil, logger)
	pages := handlers.NewPageHandlers(library, md, tpl, submitter, authService,
		auth.DefaultCookieName, config.SiteConfig{Title: "Integration Docs"}, "test", adapter, logger)
	api := handlers.NewAPIHandlers(library, md, submitter, jrnl, adapter, logger)
	monitoring := handlers.NewMonitoringHandlers(&staticStatus{library: library}, adapter)

	srv := httpserver.New(config.ServerConfig{}, httpserver.Deps{
		Pages:      pages,
		API:        api,
		Monitoring: monitoring,
		AuthMW:     authMW,
		Adapter:    adapter,
		Logger:     logger,
	})

	e := &env{
		t:       t,
		root:    root,
		library: library,
		journal: jrnl,
		auth:    authService,
		docs:    httptest.NewServer(srv.DocsHandler()),
		admin:   httptest.NewServer(srv.AdminHandler()),
	}
	t.Cleanup(e.docs.Close)
	t.Cleanup(e.admin.Close)
	return e
}

// staticStatus feeds the admin status endpoint from a live library scan
// so counts track the tree without a daemon.
type staticStatus struct {
	library *content.Library
	started time.Time
}

func (s *staticStatus) StartTime() time.Time {
	if s.started.IsZero() {
		s.started = time.Now().Add(-time.Second)
	}
	return s.started
}

func (s *staticStatus) IndexHash() string { return "integration" }

func (s *staticStatus) LastReindex() (time.Time, bool) { return time.Time{}, false }

func (s *staticStatus) DocumentCounts() map[string]int {
	summaries, err := s.library.ListAll(context.Background())
	if err != nil {
		return nil
	}
	counts := make(map[string]int)
	for _, sum := range summaries {
		counts[sum.Category]++
	}
	return counts
}

func writeUsersFile(t *testing.T, users map[string]string) *auth.Registry {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("users:\n")
	for name, password := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		buf.WriteString("  - username: " + name + "\n")
		buf.WriteString("    password_hash: " + string(hash) + "\n")
	}
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	registry, err := auth.LoadRegistry(path)
	require.NoError(t, err)
	return registry
}

// getJSON fetches a URL and decodes the JSON body into out. Returns the
// HTTP status code.
func (e *env) getJSON(url string, out any) int {
	e.t.Helper()
	resp, err := http.Get(url) // #nosec G107 -- test URL from httptest.
	require.NoError(e.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// postJSON posts a JSON payload and decodes the response into out.
func (e *env) postJSON(url string, payload, out any) int {
	e.t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(e.t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body)) // #nosec G107
	require.NoError(e.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// getBody fetches a URL and returns status and raw body text.
func (e *env) getBody(url string) (int, string) {
	e.t.Helper()
	resp, err := http.Get(url) // #nosec G107
	require.NoError(e.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, string(data)
}

// guidesFixtures is the standard tree most tests share: numeric slug
// prefixes out of lexical order plus a subcategory.
func guidesFixtures() []testutil.Doc {
	return []testutil.Doc{
		{Category: "guides", Slug: "1-install", Title: "Install", Description: "Installing the tool", Date: "2024-01-10", Body: "# Install\n\nRun the installer."},
		{Category: "guides", Slug: "2-configure", Title: "Configure", Date: "2024-01-11", Body: "# Configure\n\nEdit the config."},
		{Category: "guides", Slug: "10-deploy", Title: "Deploy", Date: "2024-01-12", Body: "# Deploy\n\nShip it."},
		{Category: "concepts", Subcategory: "java", Slug: "1-classes", Title: "Classes", Body: "# Classes\n\nBlueprints."},
		{Category: "concepts", Subcategory: "java", Slug: "2-interfaces", Title: "Interfaces", Body: "# Interfaces\n\nContracts."},
	}
}
