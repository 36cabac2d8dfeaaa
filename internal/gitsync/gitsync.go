// Package gitsync keeps the content root in step with a Git remote:
// clone on first run, pull on each sync tick. A failed pull is logged
// and classified but never fatal; the server keeps serving the tree it
// already has.
package gitsync

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"git.home.luguber.info/inful/docserver/internal/config"
	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/logfields"
	"git.home.luguber.info/inful/docserver/internal/retry"
)

// Syncer clones and pulls the content repository.
type Syncer struct {
	root   string // content root = the repository worktree
	cfg    *config.SyncConfig
	policy retry.Policy
	logger *slog.Logger
}

// NewSyncer builds a syncer for the content root. cfg must be the
// enabled sync section; callers skip construction when sync is off.
func NewSyncer(root string, cfg *config.SyncConfig, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		root:   root,
		cfg:    cfg,
		policy: retry.FromConfig(cfg.Retry),
		logger: logger,
	}
}

// Sync brings the content root up to date: clone when the root is not
// yet a repository, pull otherwise. Pulls are retried per the
// configured policy since remotes flake.
func (s *Syncer) Sync(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(s.root, ".git")); os.IsNotExist(err) {
		return s.clone(ctx)
	}
	return s.pull(ctx)
}

func (s *Syncer) clone(ctx context.Context) error {
	s.logger.Info("Cloning content repository",
		logfields.URL(s.cfg.RepoURL),
		logfields.ContentRoot(s.root))

	auth, err := s.auth()
	if err != nil {
		return err
	}

	cloneOptions := &git.CloneOptions{
		URL:  s.cfg.RepoURL,
		Auth: auth,
	}
	if s.cfg.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + s.cfg.Branch)
		cloneOptions.SingleBranch = true
	}

	repository, err := git.PlainCloneContext(ctx, s.root, false, cloneOptions)
	if err != nil {
		return errors.WrapError(err, errors.CategoryGit, "clone content repository").
			WithContext("url", s.cfg.RepoURL).
			Build()
	}

	if ref, err := repository.Head(); err == nil {
		s.logger.Info("Content repository cloned",
			logfields.URL(s.cfg.RepoURL),
			slog.String("commit", ref.Hash().String()[:8]))
	}
	return nil
}

func (s *Syncer) pull(ctx context.Context) error {
	repository, err := git.PlainOpen(s.root)
	if err != nil {
		return errors.WrapError(err, errors.CategoryGit, "open content repository").
			WithContext("content_root", s.root).
			Build()
	}
	worktree, err := repository.Worktree()
	if err != nil {
		return errors.WrapError(err, errors.CategoryGit, "get worktree").Build()
	}

	auth, err := s.auth()
	if err != nil {
		return err
	}
	pullOptions := &git.PullOptions{
		RemoteName: "origin",
		Auth:       auth,
	}
	if s.cfg.Branch != "" {
		pullOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + s.cfg.Branch)
	}

	err = s.policy.Do(ctx, func() error {
		pullErr := worktree.PullContext(ctx, pullOptions)
		if pullErr != nil && pullErr != git.NoErrAlreadyUpToDate {
			return pullErr
		}
		return nil
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryGit, "pull content repository").
			WithContext("url", s.cfg.RepoURL).
			Retryable().
			Build()
	}

	if ref, err := repository.Head(); err == nil {
		s.logger.Debug("Content repository synced", slog.String("commit", ref.Hash().String()[:8]))
	}
	return nil
}

// auth maps the configured auth method onto a go-git transport.
func (s *Syncer) auth() (transport.AuthMethod, error) {
	a := s.cfg.Auth
	if a.IsZero() {
		return nil, nil // public repository
	}

	switch a.Type {
	case config.GitAuthSSH:
		keyPath := a.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		publicKeys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "load SSH key").
				WithContext("key_path", keyPath).
				Build()
		}
		return publicKeys, nil

	case config.GitAuthToken:
		if a.Token == "" {
			return nil, errors.ConfigError("token authentication requires a token").Build()
		}
		return &http.BasicAuth{
			Username: "token", // GitHub/GitLab use "token" as username
			Password: a.Token,
		}, nil

	case config.GitAuthBasic:
		if a.Username == "" || a.Password == "" {
			return nil, errors.ConfigError("basic authentication requires username and password").Build()
		}
		return &http.BasicAuth{
			Username: a.Username,
			Password: a.Password,
		}, nil

	default:
		return nil, errors.ConfigError("unsupported git authentication type").
			WithContext("type", string(a.Type)).
			Build()
	}
}
