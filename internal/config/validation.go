package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

// newConfigurationValidator creates a comprehensive configuration validator.
func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

// validate performs comprehensive configuration validation using domain-specific methods.
func (cv *configurationValidator) validate() error {
	// Validate in order of dependencies
	if err := cv.validateContent(); err != nil {
		return err
	}
	if err := cv.validateServer(); err != nil {
		return err
	}
	if err := cv.validateAuth(); err != nil {
		return err
	}
	if err := cv.validateQuota(); err != nil {
		return err
	}
	if err := cv.validateSync(); err != nil {
		return err
	}
	if err := cv.validateReindex(); err != nil {
		return err
	}
	if err := cv.validateNotify(); err != nil {
		return err
	}
	return nil
}

// validateContent validates the content tree configuration.
func (cv *configurationValidator) validateContent() error {
	c := cv.config.Content
	if strings.TrimSpace(c.Root) == "" {
		return errors.New("content.root cannot be empty")
	}

	if len(c.Categories) == 0 {
		return errors.New("content.categories cannot be empty")
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat == "" {
			return errors.New("content category names cannot be empty")
		}
		if strings.ContainsAny(cat, "/\\") || cat == "." || cat == ".." {
			return fmt.Errorf("invalid content category %q: must be a single path segment", cat)
		}
		if seen[cat] {
			return fmt.Errorf("duplicate content category: %s", cat)
		}
		seen[cat] = true
	}

	if len(c.Extensions) == 0 {
		return errors.New("content.extensions cannot be empty")
	}
	for _, ext := range c.Extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid content extension %q: must start with a dot", ext)
		}
	}

	if c.Cache.Debounce != "" {
		d, err := time.ParseDuration(c.Cache.Debounce)
		if err != nil {
			return fmt.Errorf("invalid content.cache.debounce: %s: %w", c.Cache.Debounce, err)
		}
		if d <= 0 {
			return fmt.Errorf("content.cache.debounce must be positive, got %s", c.Cache.Debounce)
		}
	}

	return nil
}

// validateServer validates the HTTP listener layout.
func (cv *configurationValidator) validateServer() error {
	s := cv.config.Server
	if s.DocsPort < 1 || s.DocsPort > 65535 {
		return fmt.Errorf("server.docs_port out of range: %d", s.DocsPort)
	}
	if s.AdminPort < 1 || s.AdminPort > 65535 {
		return fmt.Errorf("server.admin_port out of range: %d", s.AdminPort)
	}
	if s.DocsPort == s.AdminPort {
		return fmt.Errorf("server.docs_port and server.admin_port must differ, both are %d", s.DocsPort)
	}
	return nil
}

// validateAuth validates the session auth configuration.
func (cv *configurationValidator) validateAuth() error {
	a := cv.config.Auth
	if a == nil || !a.Enabled {
		return nil
	}
	if strings.TrimSpace(a.UsersFile) == "" {
		return errors.New("auth.users_file is required when auth.enabled is true")
	}
	if strings.TrimSpace(a.JWTSecret) == "" {
		// Empty after env expansion usually means the variable is unset.
		return errors.New("auth.jwt_secret is required when auth.enabled is true (is the environment variable set?)")
	}
	if a.SessionTTL != "" {
		d, err := time.ParseDuration(a.SessionTTL)
		if err != nil {
			return fmt.Errorf("invalid auth.session_ttl: %s: %w", a.SessionTTL, err)
		}
		if d <= 0 {
			return fmt.Errorf("auth.session_ttl must be positive, got %s", a.SessionTTL)
		}
	}
	if strings.ContainsAny(a.CookieName, " ;,") {
		return fmt.Errorf("invalid auth.cookie_name: %q", a.CookieName)
	}
	return nil
}

// validateQuota validates submission quota configuration.
func (cv *configurationValidator) validateQuota() error {
	q := cv.config.Quota
	if q == nil || !q.Enabled {
		return nil
	}
	if q.MaxSubmissions < 1 {
		return fmt.Errorf("quota.max_submissions must be at least 1, got %d", q.MaxSubmissions)
	}
	if q.Window != "" {
		d, err := time.ParseDuration(q.Window)
		if err != nil {
			return fmt.Errorf("invalid quota.window: %s: %w", q.Window, err)
		}
		if d <= 0 {
			return fmt.Errorf("quota.window must be positive, got %s", q.Window)
		}
	}
	return nil
}

// validateSync validates content sync configuration.
func (cv *configurationValidator) validateSync() error {
	s := cv.config.Sync
	if s == nil || !s.Enabled {
		return nil
	}
	if s.RepoURL == "" {
		return errors.New("sync.repo_url is required when sync.enabled is true")
	}
	if err := validateCronSchedule("sync.schedule", s.Schedule); err != nil {
		return err
	}
	if err := cv.validateGitAuth(s.Auth); err != nil {
		return err
	}
	return validateRetrySection("sync.retry", s.Retry)
}

// validateGitAuth validates credentials for the sync remote.
func (cv *configurationValidator) validateGitAuth(auth *GitAuthConfig) error {
	if auth.IsZero() {
		return nil
	}
	switch auth.Type {
	case GitAuthToken:
		if auth.Token == "" {
			return errors.New("sync.auth: token auth requires a token")
		}
	case GitAuthBasic:
		if auth.Username == "" || auth.Password == "" {
			return errors.New("sync.auth: basic auth requires username and password")
		}
	case GitAuthSSH:
		if auth.KeyPath == "" {
			return errors.New("sync.auth: ssh auth requires key_path")
		}
	default:
		return fmt.Errorf("sync.auth: unsupported auth type: %s", auth.Type)
	}
	return nil
}

// validateReindex validates the manifest rebuild schedule.
func (cv *configurationValidator) validateReindex() error {
	return validateCronSchedule("reindex.schedule", cv.config.Reindex.Schedule)
}

// validateNotify validates submission event publishing configuration.
func (cv *configurationValidator) validateNotify() error {
	n := cv.config.Notify
	if n == nil || !n.Enabled {
		return nil
	}
	if n.URL == "" {
		return errors.New("notify.url is required when notify.enabled is true")
	}
	if n.Subject == "" || strings.ContainsAny(n.Subject, " \t") {
		return fmt.Errorf("invalid notify.subject: %q", n.Subject)
	}
	return validateRetrySection("notify.retry", n.Retry)
}

// validateRetrySection validates retry delay durations and their relationship.
func validateRetrySection(section string, r *RetryConfig) error {
	if r == nil {
		return nil
	}
	if r.MaxRetries < 0 {
		return fmt.Errorf("%s.max_retries cannot be negative: %d", section, r.MaxRetries)
	}
	switch r.Backoff {
	case RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential, "":
		// Valid backoff strategies
	default:
		return fmt.Errorf("invalid %s.backoff: %s (allowed: fixed|linear|exponential)", section, r.Backoff)
	}

	initDur, err := time.ParseDuration(r.InitialDelay)
	if err != nil {
		return fmt.Errorf("invalid %s.initial_delay: %s: %w", section, r.InitialDelay, err)
	}
	maxDur, err := time.ParseDuration(r.MaxDelay)
	if err != nil {
		return fmt.Errorf("invalid %s.max_delay: %s: %w", section, r.MaxDelay, err)
	}
	if maxDur < initDur {
		return fmt.Errorf("%s.max_delay (%s) must be >= %s.initial_delay (%s)", section, r.MaxDelay, section, r.InitialDelay)
	}
	return nil
}

// validateCronSchedule checks a standard 5-field cron expression with the
// same parser the scheduler uses, so anything accepted here runs.
func validateCronSchedule(field, schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, schedule, err)
	}
	return nil
}
