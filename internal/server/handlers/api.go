package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"git.home.luguber.info/inful/docserver/internal/auth"
	"git.home.luguber.info/inful/docserver/internal/content"
	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/journal"
	"git.home.luguber.info/inful/docserver/internal/markdown"
	"git.home.luguber.info/inful/docserver/internal/server/responses"
)

// defaultRecentLimit bounds the recent-submissions listing when the
// client does not ask for a specific size.
const defaultRecentLimit = 20

// APIHandlers serves the JSON API under /api/v1 on the docs listener.
type APIHandlers struct {
	library   *content.Library
	md        *markdown.Renderer
	submitter *Submitter
	journal   journal.Journal // nil when the store is disabled
	adapter   *errors.HTTPErrorAdapter
	logger    *slog.Logger
}

// NewAPIHandlers wires the JSON API handlers.
func NewAPIHandlers(library *content.Library, md *markdown.Renderer, submitter *Submitter, jrnl journal.Journal, adapter *errors.HTTPErrorAdapter, logger *slog.Logger) *APIHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandlers{
		library:   library,
		md:        md,
		submitter: submitter,
		journal:   jrnl,
		adapter:   adapter,
		logger:    logger,
	}
}

// HandleListAll answers GET /api/v1/documents.
func (h *APIHandlers) HandleListAll(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.library.ListAll(r.Context())
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	h.writeListing(w, r, summaries)
}

// HandleListCategory answers GET /api/v1/categories/{category}.
func (h *APIHandlers) HandleListCategory(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.library.ListCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	h.writeListing(w, r, summaries)
}

func (h *APIHandlers) writeListing(w http.ResponseWriter, r *http.Request, summaries []content.Summary) {
	resp := responses.ListResponse{Documents: make([]responses.DocumentSummary, 0, len(summaries))}
	for _, s := range summaries {
		resp.Documents = append(resp.Documents, summaryResponse(s))
	}
	resp.Count = len(resp.Documents)
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "write listing response").Build())
	}
}

// HandleResolve answers GET /api/v1/documents/{category}/{slug}.
// ?subcategory= narrows the lookup; ?render=html adds the rendered body.
func (h *APIHandlers) HandleResolve(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	slug := chi.URLParam(r, "slug")
	subcategory := r.URL.Query().Get("subcategory")

	doc, err := h.library.Resolve(r.Context(), category, slug, subcategory)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	resp := responses.DocumentResponse{
		DocumentSummary: summaryResponse(doc.Summary),
		Body:            string(doc.Body),
	}
	if strings.EqualFold(r.URL.Query().Get("render"), "html") {
		rendered, renderErr := h.md.Render(doc.Body)
		if renderErr != nil {
			h.adapter.WriteErrorResponse(w, r, renderErr)
			return
		}
		resp.HTML = string(rendered)
	}

	etag := `"` + doc.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "write document response").Build())
	}
}

// HandleAdjacent answers GET /api/v1/documents/{category}/{slug}/adjacent.
func (h *APIHandlers) HandleAdjacent(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	slug := chi.URLParam(r, "slug")
	subcategory := r.URL.Query().Get("subcategory")

	adj, err := h.library.Adjacent(r.Context(), category, slug, subcategory)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	resp := responses.AdjacentResponse{}
	if adj.Previous != nil {
		s := summaryResponse(*adj.Previous)
		resp.Previous = &s
	}
	if adj.Next != nil {
		s := summaryResponse(*adj.Next)
		resp.Next = &s
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "write adjacency response").Build())
	}
}

// HandleCreate answers POST /api/v1/documents. The auth middleware has
// attached the caller identity when auth is enabled.
func (h *APIHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req responses.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.adapter.WriteErrorResponse(w, r, errors.ValidationError("malformed JSON body").Build())
		return
	}

	in := SubmissionInput{
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
	}
	if identity, ok := auth.IdentityFrom(r.Context()); ok {
		in.User = identity.Username
		in.Author = identity.DisplayName
		if in.Author == "" {
			in.Author = identity.Username
		}
	}

	result, err := h.submitter.Submit(r.Context(), in)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	resp := responses.CreateResponse{
		Category:    result.Category,
		Subcategory: result.Subcategory,
		Slug:        result.Slug,
		Renamed:     result.Renamed,
		URL:         documentURL(result.Category, result.Subcategory, result.Slug),
	}
	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "write create response").Build())
	}
}

// HandleRecent answers GET /api/v1/submissions/recent?limit=N.
func (h *APIHandlers) HandleRecent(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		h.adapter.WriteErrorResponse(w, r, errors.NotFoundError("submission journal is disabled").Build())
		return
	}

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.adapter.WriteErrorResponse(w, r, errors.ValidationError("limit must be a positive integer").Build())
			return
		}
		limit = n
	}

	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	resp := responses.RecentResponse{Submissions: make([]responses.SubmissionEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Submissions = append(resp.Submissions, responses.SubmissionEntry{
			Category:    e.Category,
			Subcategory: e.Subcategory,
			Slug:        e.Slug,
			User:        e.User,
			Author:      e.Author,
			CreatedAt:   e.CreatedAt,
		})
	}
	resp.Count = len(resp.Submissions)
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "write recent response").Build())
	}
}
