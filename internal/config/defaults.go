package config

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SiteDefaultApplier handles site presentation defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Documentation"
	}
	return nil
}

// ContentDefaultApplier handles content tree defaults.
type ContentDefaultApplier struct{}

func (c *ContentDefaultApplier) Domain() string { return "content" }

func (c *ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Content.Root == "" {
		cfg.Content.Root = "./content"
	}
	// Distinguish between nil slice and explicitly empty slice
	if cfg.Content.Categories == nil {
		cfg.Content.Categories = []string{"guides", "concepts", "references"}
	}
	if cfg.Content.Extensions == nil {
		cfg.Content.Extensions = []string{".md", ".markdown"}
	}
	if cfg.Content.Cache.Debounce == "" {
		cfg.Content.Cache.Debounce = "2s"
	}
	return nil
}

// ServerDefaultApplier handles HTTP listener defaults.
type ServerDefaultApplier struct{}

func (s *ServerDefaultApplier) Domain() string { return "server" }

func (s *ServerDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.DocsPort == 0 {
		cfg.Server.DocsPort = 1313
	}
	if cfg.Server.AdminPort == 0 {
		cfg.Server.AdminPort = 1315
	}
	return nil
}

// AuthDefaultApplier handles session auth defaults.
type AuthDefaultApplier struct{}

func (a *AuthDefaultApplier) Domain() string { return "auth" }

func (a *AuthDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Auth == nil {
		return nil // auth disabled entirely, nothing to default
	}
	if cfg.Auth.UsersFile == "" {
		cfg.Auth.UsersFile = "./users.yaml"
	}
	if cfg.Auth.SessionTTL == "" {
		cfg.Auth.SessionTTL = "24h"
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "docserver_session"
	}
	return nil
}

// StoreDefaultApplier handles embedded database defaults.
type StoreDefaultApplier struct{}

func (s *StoreDefaultApplier) Domain() string { return "store" }

func (s *StoreDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./docserver.db"
	}
	return nil
}

// QuotaDefaultApplier handles submission quota defaults.
type QuotaDefaultApplier struct{}

func (q *QuotaDefaultApplier) Domain() string { return "quota" }

func (q *QuotaDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Quota == nil {
		return nil
	}
	if cfg.Quota.MaxSubmissions == 0 {
		cfg.Quota.MaxSubmissions = 20
	}
	if cfg.Quota.Window == "" {
		cfg.Quota.Window = "24h"
	}
	return nil
}

// SyncDefaultApplier handles content sync defaults.
type SyncDefaultApplier struct{}

func (s *SyncDefaultApplier) Domain() string { return "sync" }

func (s *SyncDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Sync == nil {
		return nil
	}
	if cfg.Sync.Branch == "" {
		cfg.Sync.Branch = "main"
	}
	if cfg.Sync.Schedule == "" {
		cfg.Sync.Schedule = "*/15 * * * *" // every 15 minutes
	}
	applyRetryDefaults(&cfg.Sync.Retry)
	return nil
}

// ReindexDefaultApplier handles manifest rebuild defaults.
type ReindexDefaultApplier struct{}

func (r *ReindexDefaultApplier) Domain() string { return "reindex" }

func (r *ReindexDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Reindex.Schedule == "" {
		cfg.Reindex.Schedule = "0 * * * *" // hourly
	}
	if cfg.Reindex.ManifestPath == "" {
		cfg.Reindex.ManifestPath = "./manifest.json"
	}
	return nil
}

// NotifyDefaultApplier handles submission event publishing defaults.
type NotifyDefaultApplier struct{}

func (n *NotifyDefaultApplier) Domain() string { return "notify" }

func (n *NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify == nil {
		return nil
	}
	if cfg.Notify.URL == "" {
		cfg.Notify.URL = "nats://127.0.0.1:4222"
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "docserver.submissions"
	}
	applyRetryDefaults(&cfg.Notify.Retry)
	return nil
}

// MonitoringDefaultApplier handles monitoring configuration defaults.
type MonitoringDefaultApplier struct{}

func (m *MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (m *MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Monitoring == nil {
		cfg.Monitoring = &MonitoringConfig{}
	}
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = "/metrics"
	}
	if cfg.Monitoring.Health.Path == "" {
		cfg.Monitoring.Health.Path = "/healthz"
	}
	if cfg.Monitoring.Logging.Level == "" {
		cfg.Monitoring.Logging.Level = LogLevelInfo
	}
	if cfg.Monitoring.Logging.Format == "" {
		cfg.Monitoring.Logging.Format = LogFormatJSON
	}
	return nil
}

// applyRetryDefaults fills a retry section in place. A nil section gains the
// full default policy so consumers never branch on presence.
func applyRetryDefaults(r **RetryConfig) {
	if *r == nil {
		*r = &RetryConfig{}
	}
	rc := *r
	if rc.MaxRetries == 0 {
		rc.MaxRetries = 2
	}
	if rc.Backoff == "" {
		rc.Backoff = RetryBackoffExponential
	}
	if rc.InitialDelay == "" {
		rc.InitialDelay = "500ms"
	}
	if rc.MaxDelay == "" {
		rc.MaxDelay = "30s"
	}
}
