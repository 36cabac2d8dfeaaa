// Package daemon owns the serve runtime: it assembles the content
// library, HTTP servers, auth, journal, watcher, scheduler, git sync
// and notifier from configuration, and sequences their startup and
// shutdown.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docserver/internal/auth"
	"git.home.luguber.info/inful/docserver/internal/config"
	"git.home.luguber.info/inful/docserver/internal/content"
	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/gitsync"
	"git.home.luguber.info/inful/docserver/internal/journal"
	"git.home.luguber.info/inful/docserver/internal/logfields"
	"git.home.luguber.info/inful/docserver/internal/manifest"
	"git.home.luguber.info/inful/docserver/internal/markdown"
	"git.home.luguber.info/inful/docserver/internal/metrics"
	"git.home.luguber.info/inful/docserver/internal/notify"
	"git.home.luguber.info/inful/docserver/internal/quota"
	"git.home.luguber.info/inful/docserver/internal/server/handlers"
	"git.home.luguber.info/inful/docserver/internal/server/httpserver"
	"git.home.luguber.info/inful/docserver/internal/templates"
	"git.home.luguber.info/inful/docserver/internal/version"
)

// sessionSweepSchedule removes expired session rows once an hour.
const sessionSweepSchedule = "30 * * * *"

// Daemon is the long-running docserver process.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	library   *content.Library
	watcher   *content.Watcher // nil when watching is disabled
	scheduler *Scheduler
	server    *httpserver.Server
	syncer    *gitsync.Syncer          // nil when sync is disabled
	notifier  notify.Notifier          // nil when notify is disabled
	journal   journal.Journal          // nil when the store is disabled
	sessions  *auth.SQLiteSessionStore // nil when auth is disabled
	recorder  metrics.Recorder

	startTime time.Time

	mu          sync.RWMutex
	indexHash   string
	lastReindex time.Time
	counts      map[string]int
}

// New wires a daemon from configuration. Nothing is started yet; Start
// performs the initial sync and reindex and brings the listeners up.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		recorder: metrics.NoopRecorder{},
		counts:   map[string]int{},
	}

	adapter := errors.NewHTTPErrorAdapter(logger)

	// Metrics first so every later component can record.
	var promHandler http.Handler
	metricsEnabled := cfg.Monitoring == nil || cfg.Monitoring.Metrics.Enabled
	if metricsEnabled {
		registry := prom.NewRegistry()
		d.recorder = metrics.NewPrometheusRecorder(registry)
		promHandler = metrics.HTTPHandler(registry)
	}

	libOpts := []content.Option{
		content.WithRecorder(d.recorder),
		content.WithLogger(logger),
	}
	if !cfg.Content.Cache.IsEnabled() {
		libOpts = append(libOpts, content.WithoutCache())
	}
	d.library = content.NewLibrary(content.Config{
		Root:       cfg.Content.Root,
		Categories: cfg.Content.Categories,
		Extensions: cfg.Content.Extensions,
	}, libOpts...)

	if cfg.Content.Cache.WatchEnabled() {
		watcher, err := content.NewWatcher(d.library, cfg.Content.Cache.DebounceDuration(), nil)
		if err != nil {
			return nil, fmt.Errorf("create content watcher: %w", err)
		}
		d.watcher = watcher
	}

	if cfg.Sync != nil && cfg.Sync.Enabled {
		d.syncer = gitsync.NewSyncer(cfg.Content.Root, cfg.Sync, logger)
	}

	if cfg.Store.Path != "" {
		jrnl, err := journal.NewSQLiteJournal(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open submission journal: %w", err)
		}
		d.journal = jrnl
	}

	var limiter *quota.Limiter
	if cfg.Quota != nil && cfg.Quota.Enabled && d.journal != nil {
		limiter = quota.NewLimiter(d.journal, cfg.Quota.MaxSubmissions, cfg.Quota.WindowDuration())
	}

	if cfg.Notify != nil && cfg.Notify.Enabled {
		notifier, err := notify.NewNATSNotifier(cfg.Notify, d.recorder, logger)
		if err != nil {
			return nil, fmt.Errorf("connect submission notifier: %w", err)
		}
		d.notifier = notifier
	}

	var authService *auth.Service
	var authMW *auth.Middleware
	cookieName := auth.DefaultCookieName
	if cfg.Auth != nil && cfg.Auth.Enabled {
		registry, err := auth.LoadRegistry(cfg.Auth.UsersFile)
		if err != nil {
			return nil, fmt.Errorf("load users: %w", err)
		}
		sessions, err := auth.NewSQLiteSessionStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		d.sessions = sessions
		authService = auth.NewService(registry, sessions, cfg.Auth.JWTSecret, cfg.Auth.SessionTTLDuration(), logger)
		if cfg.Auth.CookieName != "" {
			cookieName = cfg.Auth.CookieName
		}
		authMW = auth.NewMiddleware(authService, adapter, cookieName, "/login")
	}

	tpl, err := templates.New()
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	md := markdown.NewRenderer()

	submitter := handlers.NewSubmitter(d.library, limiter, d.journal, d.notifier, logger)
	pages := handlers.NewPageHandlers(d.library, md, tpl, submitter, authService, cookieName, cfg.Site, version.Version, adapter, logger)
	api := handlers.NewAPIHandlers(d.library, md, submitter, d.journal, adapter, logger)
	monitoring := handlers.NewMonitoringHandlers(d, adapter)

	deps := httpserver.Deps{
		Pages:      pages,
		API:        api,
		Monitoring: monitoring,
		AuthMW:     authMW,
		Recorder:   d.recorder,
		Adapter:    adapter,
		Logger:     logger,
	}
	if metricsEnabled {
		deps.Metrics = promHandler
		if cfg.Monitoring != nil {
			deps.MetricsPath = cfg.Monitoring.Metrics.Path
		}
	}
	if cfg.Monitoring != nil {
		deps.HealthPath = cfg.Monitoring.Health.Path
	}
	d.server = httpserver.New(cfg.Server, deps)

	scheduler, err := NewScheduler(logger)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	d.scheduler = scheduler

	return d, nil
}

// Start brings the daemon up: initial git sync, initial reindex, the
// content watcher, the scheduled jobs, and finally the HTTP listeners.
// A failed initial reindex aborts startup; a failed initial sync only
// logs, since the previous tree may still be serveable.
func (d *Daemon) Start(ctx context.Context) error {
	d.startTime = time.Now()

	if d.syncer != nil {
		if err := d.syncer.Sync(ctx); err != nil {
			d.logger.Error("Initial content sync failed, serving existing tree",
				logfields.Error(err))
		}
	}

	if err := d.Reindex(ctx); err != nil {
		return fmt.Errorf("initial reindex: %w", err)
	}

	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			return fmt.Errorf("start content watcher: %w", err)
		}
	}

	if err := d.scheduleJobs(ctx); err != nil {
		return err
	}
	d.scheduler.Start()

	if err := d.server.Start(ctx); err != nil {
		return err
	}

	d.logger.Info("Daemon started",
		logfields.ContentRoot(d.cfg.Content.Root),
		logfields.Count(d.totalDocuments()))
	return nil
}

func (d *Daemon) scheduleJobs(ctx context.Context) error {
	reindexSchedule := d.cfg.Reindex.Schedule
	if reindexSchedule == "" {
		reindexSchedule = "0 * * * *"
	}
	if err := d.scheduler.ScheduleCron("reindex", reindexSchedule, func() {
		if err := d.Reindex(ctx); err != nil {
			d.logger.Error("Scheduled reindex failed", logfields.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule reindex job: %w", err)
	}

	if d.syncer != nil {
		syncSchedule := d.cfg.Sync.Schedule
		if syncSchedule == "" {
			syncSchedule = "*/15 * * * *"
		}
		if err := d.scheduler.ScheduleCron("content-sync", syncSchedule, func() {
			if err := d.syncer.Sync(ctx); err != nil {
				d.logger.Error("Scheduled content sync failed", logfields.Error(err))
				return
			}
			if err := d.Reindex(ctx); err != nil {
				d.logger.Error("Post-sync reindex failed", logfields.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule sync job: %w", err)
		}
	}

	if d.sessions != nil {
		if err := d.scheduler.ScheduleCron("session-sweep", sessionSweepSchedule, func() {
			n, err := d.sessions.DeleteExpired(ctx)
			if err != nil {
				d.logger.Error("Session sweep failed", logfields.Error(err))
				return
			}
			if n > 0 {
				d.logger.Info("Expired sessions removed", logfields.Count(n))
			}
		}); err != nil {
			return fmt.Errorf("schedule session sweep: %w", err)
		}
	}
	return nil
}

// Stop shuts the daemon down in reverse start order: listeners first so
// no new work arrives, then scheduler, watcher and the external
// connections.
func (d *Daemon) Stop(ctx context.Context) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if d.server != nil {
		record(d.server.Stop(ctx))
	}
	if d.scheduler != nil {
		record(d.scheduler.Stop())
	}
	if d.watcher != nil {
		record(d.watcher.Stop(ctx))
	}
	if d.notifier != nil {
		d.notifier.Close()
	}
	if d.sessions != nil {
		record(d.sessions.Close())
	}
	if d.journal != nil {
		record(d.journal.Close())
	}

	if firstErr != nil {
		return firstErr
	}
	d.logger.Info("Daemon stopped")
	return nil
}

// Reindex rebuilds the content manifest, refreshes the document count
// gauges, and purges the read-through cache when the tree changed. Safe
// for concurrent invocation; the manifest swap is guarded.
func (d *Daemon) Reindex(ctx context.Context) error {
	start := time.Now()

	m, err := manifest.Build(ctx, d.library)
	if err != nil {
		d.recorder.ObserveReindexDuration(time.Since(start), metrics.ResultError)
		return err
	}

	d.mu.Lock()
	previous := d.indexHash
	d.indexHash = m.Hash
	d.lastReindex = time.Now()
	d.counts = m.CountByCategory()
	d.mu.Unlock()

	if previous != "" && previous != m.Hash {
		purged := d.library.PurgeCache()
		d.logger.Info("Content tree changed, cache purged",
			logfields.Count(purged),
			slog.String("hash", m.Hash))
	}

	if path := d.cfg.Reindex.ManifestPath; path != "" {
		if err := m.Save(path); err != nil {
			d.logger.Warn("Manifest save failed", logfields.Path(path), logfields.Error(err))
		}
	}

	d.recorder.ObserveReindexDuration(time.Since(start), metrics.ResultSuccess)
	d.logger.Info("Reindex complete",
		logfields.Count(m.FileCount()),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}

// StartTime implements handlers.StatusSource.
func (d *Daemon) StartTime() time.Time { return d.startTime }

// IndexHash implements handlers.StatusSource.
func (d *Daemon) IndexHash() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.indexHash
}

// LastReindex implements handlers.StatusSource.
func (d *Daemon) LastReindex() (time.Time, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastReindex, !d.lastReindex.IsZero()
}

// DocumentCounts implements handlers.StatusSource.
func (d *Daemon) DocumentCounts() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]int, len(d.counts))
	for k, v := range d.counts {
		out[k] = v
	}
	return out
}

func (d *Daemon) totalDocuments() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	total := 0
	for _, n := range d.counts {
		total += n
	}
	return total
}
