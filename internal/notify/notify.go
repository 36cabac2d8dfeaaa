// Package notify publishes submission events to NATS so downstream
// consumers (chat hooks, search indexers) learn about new documents
// without polling. Publishing is best-effort: a failed publish is
// logged and counted, never propagated into the submission response.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docserver/internal/config"
	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/logfields"
	"git.home.luguber.info/inful/docserver/internal/metrics"
	"git.home.luguber.info/inful/docserver/internal/retry"
)

// DefaultSubject is used when none is configured.
const DefaultSubject = "docserver.submissions"

// Event is the payload published for each accepted submission.
type Event struct {
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Slug        string    `json:"slug"`
	User        string    `json:"user,omitempty"`
	Author      string    `json:"author,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier publishes submission events. A nil *NATSNotifier is a valid
// no-op so callers never branch on whether notification is configured.
type Notifier interface {
	DocumentCreated(ctx context.Context, event Event)
	Close()
}

// publisher is the slice of the NATS connection we use; narrowed for tests.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes events over a NATS core connection.
type NATSNotifier struct {
	conn     *nats.Conn
	pub      publisher
	subject  string
	policy   retry.Policy
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewNATSNotifier connects to the configured NATS server. cfg must be
// the enabled notify section.
func NewNATSNotifier(cfg *config.NotifyConfig, recorder metrics.Recorder, logger *slog.Logger) (*NATSNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	subject := cfg.Subject
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url,
		nats.Name("docserver"),
		nats.Timeout(5*time.Second),
		nats.ReconnectBufSize(1<<20),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "connect to NATS").
			WithContext("url", url).
			Build()
	}

	logger.Info("Submission notifier connected",
		logfields.URL(url),
		logfields.Subject(subject))

	return &NATSNotifier{
		conn:     conn,
		pub:      conn,
		subject:  subject,
		policy:   retry.FromConfig(cfg.Retry),
		recorder: recorder,
		logger:   logger,
	}, nil
}

// DocumentCreated publishes one event, retrying per the configured
// policy. Failures are swallowed after logging; the document is already
// on disk and must not appear to have failed.
func (n *NATSNotifier) DocumentCreated(ctx context.Context, event Event) {
	if n == nil {
		return
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("Marshal submission event", logfields.Error(err))
		n.recorder.IncNotifyResult(metrics.ResultError)
		return
	}

	err = n.policy.Do(ctx, func() error {
		return n.pub.Publish(n.subject, data)
	})
	if err != nil {
		n.logger.Warn("Publish submission event failed",
			logfields.Subject(n.subject),
			logfields.Slug(event.Slug),
			logfields.Error(err))
		n.recorder.IncNotifyResult(metrics.ResultError)
		return
	}

	n.recorder.IncNotifyResult(metrics.ResultSuccess)
	n.logger.Debug("Published submission event",
		logfields.Subject(n.subject),
		logfields.Category(event.Category),
		logfields.Slug(event.Slug))
}

// Close drains the connection. Nil-safe.
func (n *NATSNotifier) Close() {
	if n == nil || n.conn == nil {
		return
	}
	if err := n.conn.Drain(); err != nil {
		n.logger.Warn("Drain NATS connection", logfields.Error(err))
	}
}
