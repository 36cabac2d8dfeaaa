package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SupportedVersion is the configuration schema version this binary accepts.
const SupportedVersion = "1.0"

// Config represents the full docserver configuration.
type Config struct {
	Version    string            `yaml:"version"`
	Site       SiteConfig        `yaml:"site"`
	Content    ContentConfig     `yaml:"content"`
	Server     ServerConfig      `yaml:"server"`
	Auth       *AuthConfig       `yaml:"auth,omitempty"`
	Store      StoreConfig       `yaml:"store"`
	Quota      *QuotaConfig      `yaml:"quota,omitempty"`
	Sync       *SyncConfig       `yaml:"sync,omitempty"`
	Reindex    ReindexConfig     `yaml:"reindex,omitempty"`
	Notify     *NotifyConfig     `yaml:"notify,omitempty"`
	Monitoring *MonitoringConfig `yaml:"monitoring,omitempty"`
}

// SiteConfig represents presentation settings used by the rendered pages.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// ContentConfig represents the document tree on disk.
type ContentConfig struct {
	Root       string      `yaml:"root"`
	Categories []string    `yaml:"categories,omitempty"` // top-level sections, defaults applied when empty
	Extensions []string    `yaml:"extensions,omitempty"` // recognized file extensions, default .md/.markdown
	Cache      CacheConfig `yaml:"cache,omitempty"`
}

// CacheConfig represents document cache behaviour. Enabled and Watch are
// pointers so an absent key can default to true without a custom unmarshaler.
type CacheConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Watch    *bool  `yaml:"watch,omitempty"`    // invalidate on external file changes
	Debounce string `yaml:"debounce,omitempty"` // duration string, default 2s
}

// IsEnabled reports whether resolved documents are cached (default true).
func (c CacheConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// WatchEnabled reports whether the content root is watched for external
// changes. Watching without a cache has nothing to invalidate, so the cache
// switch gates it.
func (c CacheConfig) WatchEnabled() bool {
	return c.IsEnabled() && (c.Watch == nil || *c.Watch)
}

// DebounceDuration returns the parsed watch debounce interval. Validation
// guarantees the string parses; unset falls back to 2s.
func (c CacheConfig) DebounceDuration() time.Duration {
	if c.Debounce == "" {
		return 2 * time.Second
	}
	d, err := time.ParseDuration(c.Debounce)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// ServerConfig represents the HTTP listener layout.
type ServerConfig struct {
	DocsPort  int `yaml:"docs_port"`  // public documentation pages and API
	AdminPort int `yaml:"admin_port"` // health, metrics and admin endpoints
}

// AuthConfig represents the session login gate for document submission.
type AuthConfig struct {
	Enabled    bool   `yaml:"enabled"`
	UsersFile  string `yaml:"users_file"`            // YAML file with bcrypt password hashes
	JWTSecret  string `yaml:"jwt_secret"`            // HS256 signing key, typically ${DOCSERVER_JWT_SECRET}
	SessionTTL string `yaml:"session_ttl,omitempty"` // duration string, default 24h
	CookieName string `yaml:"cookie_name,omitempty"` // default docserver_session
}

// SessionTTLDuration returns the parsed session lifetime (default 24h).
func (a *AuthConfig) SessionTTLDuration() time.Duration {
	if a == nil || a.SessionTTL == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(a.SessionTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// StoreConfig represents the embedded database holding sessions, quota
// counters and the submission journal.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite database path, default ./docserver.db
}

// QuotaConfig represents per-author submission rate limits.
type QuotaConfig struct {
	Enabled        bool   `yaml:"enabled"`
	MaxSubmissions int    `yaml:"max_submissions,omitempty"` // per author per window, default 20
	Window         string `yaml:"window,omitempty"`          // duration string, default 24h
}

// WindowDuration returns the parsed quota window (default 24h).
func (q *QuotaConfig) WindowDuration() time.Duration {
	if q == nil || q.Window == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(q.Window)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// SyncConfig represents periodic synchronization of the content root from a
// Git remote.
type SyncConfig struct {
	Enabled  bool           `yaml:"enabled"`
	RepoURL  string         `yaml:"repo_url"`
	Branch   string         `yaml:"branch,omitempty"`   // default main
	Schedule string         `yaml:"schedule,omitempty"` // cron expression, default */15 * * * *
	Auth     *GitAuthConfig `yaml:"auth,omitempty"`
	Retry    *RetryConfig   `yaml:"retry,omitempty"`
}

// ReindexConfig represents the scheduled manifest rebuild.
type ReindexConfig struct {
	Schedule     string `yaml:"schedule,omitempty"`      // cron expression, default hourly
	ManifestPath string `yaml:"manifest_path,omitempty"` // default ./manifest.json
}

// NotifyConfig represents submission event publishing.
type NotifyConfig struct {
	Enabled bool         `yaml:"enabled"`
	URL     string       `yaml:"url,omitempty"`     // NATS server URL, default nats://127.0.0.1:4222
	Subject string       `yaml:"subject,omitempty"` // default docserver.submissions
	Retry   *RetryConfig `yaml:"retry,omitempty"`
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Health  MonitoringHealth  `yaml:"health"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics exposure on the admin server.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringHealth represents health check configuration.
type MonitoringHealth struct {
	Path string `yaml:"path"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load loads a configuration file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate version
	if config.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported configuration version: %s (expected %s)", config.Version, SupportedVersion)
	}

	// Normalization pass (case-fold enumerations, clean paths, early coercions)
	if nres, nerr := NormalizeConfig(&config); nerr != nil {
		return nil, fmt.Errorf("normalize: %w", nerr)
	} else if nres != nil && len(nres.Warnings) > 0 {
		for _, w := range nres.Warnings {
			fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
		}
	}

	// Apply defaults (after normalization so canonical values drive defaults)
	if err := applyDefaults(&config); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	// Validate configuration
	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// applyDefaults applies default values to configuration
func applyDefaults(config *Config) error {
	applier := NewDefaultApplier()
	return applier.ApplyDefaults(config)
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	enabled := true
	exampleConfig := Config{
		Version: SupportedVersion,
		Site: SiteConfig{
			Title:       "Team Documentation",
			Description: "Guides, concepts and reference material",
			BaseURL:     "https://docs.example.com",
		},
		Content: ContentConfig{
			Root:       "./content",
			Categories: []string{"guides", "concepts", "references"},
			Extensions: []string{".md", ".markdown"},
			Cache: CacheConfig{
				Enabled:  &enabled,
				Watch:    &enabled,
				Debounce: "2s",
			},
		},
		Server: ServerConfig{
			DocsPort:  1313,
			AdminPort: 1315,
		},
		Auth: &AuthConfig{
			Enabled:    true,
			UsersFile:  "./users.yaml",
			JWTSecret:  "${DOCSERVER_JWT_SECRET}",
			SessionTTL: "24h",
			CookieName: "docserver_session",
		},
		Store: StoreConfig{
			Path: "./docserver.db",
		},
		Quota: &QuotaConfig{
			Enabled:        true,
			MaxSubmissions: 20,
			Window:         "24h",
		},
		Sync: &SyncConfig{
			Enabled:  false,
			RepoURL:  "https://git.example.com/team/content.git",
			Branch:   "main",
			Schedule: "*/15 * * * *",
			Auth: &GitAuthConfig{
				Type:  GitAuthToken,
				Token: "${DOCSERVER_GIT_TOKEN}",
			},
		},
		Reindex: ReindexConfig{
			Schedule:     "0 * * * *",
			ManifestPath: "./manifest.json",
		},
		Notify: &NotifyConfig{
			Enabled: false,
			URL:     "nats://127.0.0.1:4222",
			Subject: "docserver.submissions",
			Retry: &RetryConfig{
				MaxRetries:   2,
				Backoff:      RetryBackoffExponential,
				InitialDelay: "500ms",
				MaxDelay:     "30s",
			},
		},
		Monitoring: &MonitoringConfig{
			Metrics: MonitoringMetrics{
				Enabled: true,
				Path:    "/metrics",
			},
			Health: MonitoringHealth{
				Path: "/healthz",
			},
			Logging: MonitoringLogging{
				Level:  "info",
				Format: "json",
			},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
