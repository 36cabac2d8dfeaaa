package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/docserver/internal/content"
	"git.home.luguber.info/inful/docserver/internal/docmodel"
	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/frontmatter"
	"git.home.luguber.info/inful/docserver/internal/journal"
	"git.home.luguber.info/inful/docserver/internal/logfields"
	"git.home.luguber.info/inful/docserver/internal/notify"
	"git.home.luguber.info/inful/docserver/internal/quota"
)

// SubmissionInput is one document submission, independent of whether it
// arrived through the HTML form or the JSON API.
type SubmissionInput struct {
	Category    string
	Subcategory string
	Title       string
	Description string
	Body        string
	User        string // authenticated username, quota subject
	Author      string // display name recorded in the document header
}

// Submitter runs the full submission path: quota check, document
// assembly, library create, journal append, event publish. The form and
// API handlers share one instance so both behave identically.
type Submitter struct {
	library  *content.Library
	limiter  *quota.Limiter
	journal  journal.Journal
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewSubmitter wires the submission path. limiter, journal and notifier
// may each be nil when the matching feature is disabled.
func NewSubmitter(library *content.Library, limiter *quota.Limiter, jrnl journal.Journal, notifier notify.Notifier, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		library:  library,
		limiter:  limiter,
		journal:  jrnl,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates and stores one submission. Journal and notify
// failures after a successful create are logged, not returned; the
// document is on disk and must not appear to have failed.
func (s *Submitter) Submit(ctx context.Context, in SubmissionInput) (*content.CreateResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.ValidationError("title is required").Build()
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, errors.ValidationError("body is required").Build()
	}

	if err := s.limiter.Check(ctx, in.User); err != nil {
		return nil, err
	}

	fields := map[string]any{
		docmodel.FieldTitle: title,
		docmodel.FieldDate:  s.now().Format(docmodel.DateFormat),
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		fields[docmodel.FieldDescription] = d
	}
	if a := strings.TrimSpace(in.Author); a != "" {
		fields[docmodel.FieldAuthor] = a
	}

	body := []byte(in.Body)
	if !strings.HasSuffix(in.Body, "\n") {
		body = append(body, '\n')
	}
	doc := frontmatter.Doc{Fields: fields, Body: body, Had: true}
	raw, err := doc.Render()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "assemble document").Build()
	}

	result, err := s.library.Create(ctx, content.CreateRequest{
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Slug:        content.Slugify(title),
		Content:     raw,
	})
	if err != nil {
		return nil, err
	}

	fingerprint, fpErr := docmodel.Fingerprint(fields, body)
	if fpErr != nil {
		fingerprint = ""
	}

	if s.journal != nil {
		_, err := s.journal.Append(ctx, journal.Entry{
			Category:    result.Category,
			Subcategory: result.Subcategory,
			Slug:        result.Slug,
			User:        in.User,
			Author:      in.Author,
			Fingerprint: fingerprint,
			CreatedAt:   s.now(),
		})
		if err != nil {
			s.logger.Error("Journal append failed after create",
				logfields.Category(result.Category),
				logfields.Slug(result.Slug),
				logfields.Error(err))
		}
	}

	if s.notifier != nil {
		s.notifier.DocumentCreated(ctx, notify.Event{
			Category:    result.Category,
			Subcategory: result.Subcategory,
			Slug:        result.Slug,
			User:        in.User,
			Author:      in.Author,
			Fingerprint: fingerprint,
			CreatedAt:   s.now(),
		})
	}

	s.logger.Info("Document submitted",
		logfields.Category(result.Category),
		logfields.Slug(result.Slug),
		logfields.User(in.User))
	return result, nil
}
