package config

import (
	"git.home.luguber.info/inful/docserver/internal/foundation/normalization"
)

// GitAuthType enumerates supported Git authentication methods (stringly for
// YAML compatibility).
type GitAuthType string

const (
	GitAuthNone  GitAuthType = "none"
	GitAuthSSH   GitAuthType = "ssh"
	GitAuthToken GitAuthType = "token"
	GitAuthBasic GitAuthType = "basic"
)

var gitAuthNormalizer = normalization.NewNormalizer(map[string]GitAuthType{
	"none":  GitAuthNone,
	"ssh":   GitAuthSSH,
	"token": GitAuthToken,
	"basic": GitAuthBasic,
}, "")

// NormalizeGitAuthType canonicalizes user input, returning empty string for
// unknown methods.
func NormalizeGitAuthType(raw string) GitAuthType {
	return gitAuthNormalizer.Normalize(raw)
}

// GitAuthConfig represents credentials for the content sync remote.
type GitAuthConfig struct {
	Type     GitAuthType `yaml:"type"` // ssh|token|basic|none
	Username string      `yaml:"username,omitempty"`
	Password string      `yaml:"password,omitempty"`
	Token    string      `yaml:"token,omitempty"`
	KeyPath  string      `yaml:"key_path,omitempty"`
}

// IsZero reports whether no auth method is specified.
func (a *GitAuthConfig) IsZero() bool { return a == nil || a.Type == "" || a.Type == GitAuthNone }
