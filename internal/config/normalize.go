package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizationResult captures adjustments and warnings from the
// normalization pass.
type NormalizationResult struct {
	Warnings []string
}

// NormalizeConfig performs canonicalization on enumerated and bounded fields
// prior to default application. It mutates the provided config in-place and
// returns a result describing any coercions.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}
	normalizeContent(&c.Content, res)
	normalizeServer(&c.Server, res)
	normalizeQuota(c.Quota, res)
	normalizeSync(c.Sync, res)
	normalizeNotify(c.Notify, res)
	normalizeMonitoring(c.Monitoring, res)
	return res, nil
}

func normalizeContent(c *ContentConfig, res *NormalizationResult) {
	if c == nil {
		return
	}
	if c.Root != "" {
		cleaned := filepath.Clean(strings.TrimSpace(c.Root))
		if cleaned != c.Root {
			res.Warnings = append(res.Warnings, warnChanged("content.root", c.Root, cleaned))
			c.Root = cleaned
		}
	}
	// Categories double as URL and directory segments, so case-fold them.
	for i, cat := range c.Categories {
		canonical := strings.ToLower(strings.TrimSpace(cat))
		if canonical != cat {
			res.Warnings = append(res.Warnings, warnChanged(fmt.Sprintf("content.categories[%d]", i), cat, canonical))
			c.Categories[i] = canonical
		}
	}
	for i, ext := range c.Extensions {
		canonical := strings.ToLower(strings.TrimSpace(ext))
		if canonical != "" && !strings.HasPrefix(canonical, ".") {
			canonical = "." + canonical
		}
		if canonical != ext {
			res.Warnings = append(res.Warnings, warnChanged(fmt.Sprintf("content.extensions[%d]", i), ext, canonical))
			c.Extensions[i] = canonical
		}
	}
}

func normalizeServer(s *ServerConfig, res *NormalizationResult) {
	if s == nil {
		return
	}
	if s.DocsPort < 0 {
		res.Warnings = append(res.Warnings, warnChanged("server.docs_port", s.DocsPort, 0))
		s.DocsPort = 0
	}
	if s.AdminPort < 0 {
		res.Warnings = append(res.Warnings, warnChanged("server.admin_port", s.AdminPort, 0))
		s.AdminPort = 0
	}
}

func normalizeQuota(q *QuotaConfig, res *NormalizationResult) {
	if q == nil {
		return
	}
	if q.MaxSubmissions < 0 {
		res.Warnings = append(res.Warnings, warnChanged("quota.max_submissions", q.MaxSubmissions, 0))
		q.MaxSubmissions = 0
	}
}

func normalizeSync(s *SyncConfig, res *NormalizationResult) {
	if s == nil {
		return
	}
	s.RepoURL = strings.TrimSpace(s.RepoURL)
	s.Branch = strings.TrimSpace(s.Branch)
	if s.Auth != nil {
		if at := NormalizeGitAuthType(string(s.Auth.Type)); at != "" {
			if s.Auth.Type != at {
				res.Warnings = append(res.Warnings, warnChanged("sync.auth.type", s.Auth.Type, at))
				s.Auth.Type = at
			}
		} else if strings.TrimSpace(string(s.Auth.Type)) != "" {
			res.Warnings = append(res.Warnings, warnUnknown("sync.auth.type", string(s.Auth.Type), string(GitAuthNone)))
			s.Auth.Type = GitAuthNone
		}
	}
	normalizeRetrySection("sync.retry", s.Retry, res)
}

func normalizeNotify(n *NotifyConfig, res *NormalizationResult) {
	if n == nil {
		return
	}
	n.URL = strings.TrimSpace(n.URL)
	n.Subject = strings.TrimSpace(n.Subject)
	normalizeRetrySection("notify.retry", n.Retry, res)
}

func normalizeRetrySection(section string, r *RetryConfig, res *NormalizationResult) {
	if r == nil {
		return
	}
	if r.MaxRetries < 0 {
		res.Warnings = append(res.Warnings, warnChanged(section+".max_retries", r.MaxRetries, 0))
		r.MaxRetries = 0
	}
	if rb := NormalizeRetryBackoff(string(r.Backoff)); rb != "" {
		if r.Backoff != rb {
			res.Warnings = append(res.Warnings, warnChanged(section+".backoff", r.Backoff, rb))
			r.Backoff = rb
		}
	} else if strings.TrimSpace(string(r.Backoff)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown(section+".backoff", string(r.Backoff), string(RetryBackoffExponential)))
		r.Backoff = RetryBackoffExponential
	}
}

func normalizeMonitoring(m *MonitoringConfig, res *NormalizationResult) {
	if m == nil {
		return
	}
	if lvl := NormalizeLogLevel(string(m.Logging.Level)); lvl != "" {
		if m.Logging.Level != lvl {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.level", m.Logging.Level, lvl))
			m.Logging.Level = lvl
		}
	} else if string(m.Logging.Level) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.level", string(m.Logging.Level), string(LogLevelInfo)))
		m.Logging.Level = LogLevelInfo
	}
	if f := NormalizeLogFormat(string(m.Logging.Format)); f != "" {
		if m.Logging.Format != f {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.format", m.Logging.Format, f))
			m.Logging.Format = f
		}
	} else if string(m.Logging.Format) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.format", string(m.Logging.Format), string(LogFormatText)))
		m.Logging.Format = LogFormatText
	}
}

func warnChanged(field string, from, to interface{}) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
