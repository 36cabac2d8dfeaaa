package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docserver/internal/docmodel"
	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/logfields"
	"git.home.luguber.info/inful/docserver/internal/metrics"
)

// maxCreateRaces bounds how many times Create will move to the next
// slug after losing an exclusive-link race to a concurrent submission.
const maxCreateRaces = 5

// Create persists a submitted document as a new file and returns the
// slug it was stored under. The proposed slug is canonicalized, then
// collision-probed (slug, slug-1, slug-2, ...) until a free name is
// found; an existing file is never overwritten. The write itself is
// all-or-nothing: content goes to a hidden temp file that is linked
// into place only once fully written, so readers never observe a
// partial document.
//
// Authorization is the caller's responsibility; Create trusts that the
// submission has already passed whatever gate the transport enforces.
func (l *Library) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	res, err := l.create(ctx, req)
	l.recorder.IncSubmission(req.Category, submitResult(err))
	return res, err
}

func submitResult(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.HasCategory(err, errors.CategoryValidation):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

func (l *Library) create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.ensureRoot(); err != nil {
		return nil, err
	}
	base, subcategory, err := l.validateSubmission(req)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(l.cfg.Root, req.Category, filepath.FromSlash(subcategory))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "create category directory").
			WithContext("path", dir).
			Build()
	}

	exists := func(slug string) (bool, error) {
		for _, ext := range l.cfg.Extensions {
			_, err := os.Stat(filepath.Join(dir, slug+ext))
			if err == nil {
				return true, nil
			}
			if !os.IsNotExist(err) {
				return false, errors.WrapError(err, errors.CategoryFileSystem, "probe slug availability").
					WithContext("slug", slug).
					Build()
			}
		}
		return false, nil
	}

	// Probing and linking are not atomic together: a concurrent create
	// can take the probed slug first. The loser re-probes and takes the
	// next free suffix instead of overwriting.
	var slug, path string
	for attempt := 0; ; attempt++ {
		slug, err = FindAvailableSlug(base, exists)
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, slug+l.cfg.Extensions[0])
		err = writeExclusive(dir, path, req.Content)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "write document").
				WithContext("file", path).
				Build()
		}
		if attempt >= maxCreateRaces {
			return nil, errors.FileSystemError("document write kept colliding with concurrent submissions").
				WithContext("slug", base).
				Build()
		}
		l.logger.Warn("Lost slug race to concurrent submission, trying next suffix",
			logfields.Category(req.Category),
			logfields.Slug(slug))
	}

	ref := Ref{Category: req.Category, Subcategory: subcategory, Slug: slug}
	l.InvalidateRef(ref)
	l.logger.Info("Document created",
		logfields.Category(ref.Category),
		logfields.Subcategory(ref.Subcategory),
		logfields.Slug(ref.Slug),
		logfields.Path(path))
	return &CreateResult{Ref: ref, Path: path, Renamed: slug != base}, nil
}

// validateSubmission checks required fields and canonicalizes the slug
// and subcategory. The submitted content must itself parse; a malformed
// header is the submitter's error, reported as validation rather than
// stored and left to break listings later.
func (l *Library) validateSubmission(req CreateRequest) (base, subcategory string, err error) {
	if strings.TrimSpace(req.Category) == "" {
		return "", "", errors.ValidationError("category is required").Build()
	}
	if !l.categories.Has(req.Category) {
		return "", "", errors.ValidationError("unknown category").
			WithContext("category", req.Category).
			Build()
	}
	base = Slugify(req.Slug)
	if base == "" {
		return "", "", errors.ValidationError("slug is required").
			WithContext("slug", req.Slug).
			Build()
	}
	if len(req.Content) == 0 {
		return "", "", errors.ValidationError("content is required").Build()
	}
	if _, err := docmodel.Parse(req.Content); err != nil {
		return "", "", errors.WrapError(err, errors.CategoryValidation, "submitted content does not parse").Build()
	}

	var segments []string
	for _, seg := range strings.Split(normalizeSubcategory(req.Subcategory), "/") {
		if s := Slugify(seg); s != "" {
			segments = append(segments, s)
		}
	}
	return base, strings.Join(segments, "/"), nil
}

// writeExclusive writes content to a hidden temp file in dir and links
// it to target. Linking fails with an exists-error when target already
// has a file, leaving the existing document untouched.
func writeExclusive(dir, target string, content []byte) error {
	tmp, err := os.CreateTemp(dir, ".submit-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Link(tmpPath, target)
}
