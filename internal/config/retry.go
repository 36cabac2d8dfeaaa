package config

import (
	"time"

	"git.home.luguber.info/inful/docserver/internal/foundation/normalization"
)

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer(map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
}, "")

// NormalizeRetryBackoff converts arbitrary user input (case-insensitive) into
// a typed mode, returning empty string for unknown so the normalization pass
// can warn before defaults apply.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	return retryBackoffNormalizer.Normalize(raw)
}

// RetryConfig represents retry tuning for outbound operations (sync pulls and
// notify publishes). Delay fields are duration strings.
type RetryConfig struct {
	MaxRetries   int              `yaml:"max_retries,omitempty"`   // attempts after the first (default 2)
	Backoff      RetryBackoffMode `yaml:"backoff,omitempty"`       // fixed|linear|exponential (default exponential)
	InitialDelay string           `yaml:"initial_delay,omitempty"` // duration string (default 500ms)
	MaxDelay     string           `yaml:"max_delay,omitempty"`     // growth cap (default 30s)
}

// InitialDelayDuration returns the parsed initial delay (default 500ms).
func (r *RetryConfig) InitialDelayDuration() time.Duration {
	if r == nil || r.InitialDelay == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(r.InitialDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// MaxDelayDuration returns the parsed delay cap (default 30s).
func (r *RetryConfig) MaxDelayDuration() time.Duration {
	if r == nil || r.MaxDelay == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(r.MaxDelay)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Attempts returns the configured retry count. Zero means unset and falls
// back to the default of 2.
func (r *RetryConfig) Attempts() int {
	if r == nil || r.MaxRetries <= 0 {
		return 2
	}
	return r.MaxRetries
}
