package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"git.home.luguber.info/inful/docserver/internal/auth"
	"git.home.luguber.info/inful/docserver/internal/config"
	"git.home.luguber.info/inful/docserver/internal/content"
	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/logfields"
	"git.home.luguber.info/inful/docserver/internal/markdown"
	"git.home.luguber.info/inful/docserver/internal/templates"
)

// PageHandlers serves the HTML side of the docs listener.
type PageHandlers struct {
	library    *content.Library
	md         *markdown.Renderer
	tpl        *templates.Renderer
	submitter  *Submitter
	auth       *auth.Service // nil when auth is disabled
	cookieName string
	site       config.SiteConfig
	version    string
	adapter    *errors.HTTPErrorAdapter
	logger     *slog.Logger
}

// NewPageHandlers wires the HTML page handlers. authService may be nil;
// the login and submit routes are only mounted when it is not.
func NewPageHandlers(
	library *content.Library,
	md *markdown.Renderer,
	tpl *templates.Renderer,
	submitter *Submitter,
	authService *auth.Service,
	cookieName string,
	site config.SiteConfig,
	version string,
	adapter *errors.HTTPErrorAdapter,
	logger *slog.Logger,
) *PageHandlers {
	if cookieName == "" {
		cookieName = auth.DefaultCookieName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PageHandlers{
		library:    library,
		md:         md,
		tpl:        tpl,
		submitter:  submitter,
		auth:       authService,
		cookieName: cookieName,
		site:       site,
		version:    version,
		adapter:    adapter,
		logger:     logger,
	}
}

func (h *PageHandlers) baseData(r *http.Request, title string) templates.BaseData {
	data := templates.BaseData{Title: title, Version: h.version}
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		data.User = id.Username
	}
	return data
}

// htmlError answers a page request with a plain error and the status
// the classification maps to.
func (h *PageHandlers) htmlError(w http.ResponseWriter, r *http.Request, err error) {
	status := h.adapter.StatusCodeFor(err)
	msg := "something went wrong"
	if c, ok := errors.AsClassified(err); ok {
		switch c.Category() {
		case errors.CategoryNotFound:
			msg = "page not found"
		case errors.CategoryValidation:
			msg = c.Message()
		}
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Page request failed",
			logfields.Path(r.URL.Path),
			logfields.Error(err))
	}
	http.Error(w, msg, status)
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tpl.Render(w, page, data); err != nil {
		h.logger.Error("Template render failed",
			logfields.Path(r.URL.Path),
			logfields.Error(err))
	}
}

// HandleIndex serves the category overview.
func (h *PageHandlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.library.ListAll(r.Context())
	if err != nil {
		h.htmlError(w, r, err)
		return
	}

	counts := make(map[string]int)
	for _, s := range summaries {
		counts[s.Category]++
	}

	title := h.site.Title
	if title == "" {
		title = "Documentation"
	}
	data := templates.IndexData{BaseData: h.baseData(r, title)}
	for _, category := range h.library.Categories() {
		data.Categories = append(data.Categories, templates.CategoryCard{
			Name:  category,
			Count: counts[category],
			URL:   "/" + category,
		})
	}
	h.render(w, r, templates.PageIndex, data)
}

// HandleCategory serves one category listing grouped by subcategory.
func (h *PageHandlers) HandleCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	summaries, err := h.library.ListCategory(r.Context(), category)
	if err != nil {
		h.htmlError(w, r, err)
		return
	}

	data := templates.CategoryData{
		BaseData: h.baseData(r, category),
		Category: category,
	}
	// Summaries arrive in display order; group consecutive runs by
	// subcategory without re-sorting.
	var current *templates.SubcategoryGroup
	for _, s := range summaries {
		if current == nil || current.Name != s.Subcategory {
			data.Groups = append(data.Groups, templates.SubcategoryGroup{Name: s.Subcategory})
			current = &data.Groups[len(data.Groups)-1]
		}
		current.Docs = append(current.Docs, docEntry(s))
	}
	h.render(w, r, templates.PageCategory, data)
}

func docEntry(s content.Summary) templates.DocEntry {
	title := s.Meta.Title
	if title == "" {
		title = s.Slug
	}
	return templates.DocEntry{
		Slug:        s.Slug,
		Title:       title,
		Description: s.Meta.Description,
		Subcategory: s.Subcategory,
		Date:        s.Meta.DateString(),
		URL:         documentURL(s.Category, s.Subcategory, s.Slug),
	}
}

// HandleDocument serves one document page. The route is a wildcard
// below the category so subcategory paths of any depth resolve; the
// last path segment is the slug, anything before it is the hint.
func (h *PageHandlers) HandleDocument(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	rest := strings.Trim(chi.URLParam(r, "*"), "/")
	if rest == "" {
		h.htmlError(w, r, errors.NotFoundError("document not found").Build())
		return
	}
	subcategory, slug := "", rest
	if i := strings.LastIndex(rest, "/"); i >= 0 {
		subcategory, slug = rest[:i], rest[i+1:]
	}

	doc, err := h.library.Resolve(r.Context(), category, slug, subcategory)
	if err != nil {
		h.htmlError(w, r, err)
		return
	}

	etag := `"` + doc.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	rendered, toc, err := h.md.RenderWithTOC(doc.Body)
	if err != nil {
		h.htmlError(w, r, err)
		return
	}

	adj, err := h.library.Adjacent(r.Context(), category, slug, doc.Subcategory)
	if err != nil {
		// Navigation is decoration; the document still renders.
		h.logger.Warn("Adjacency lookup failed",
			logfields.Category(category),
			logfields.Slug(slug),
			logfields.Error(err))
		adj = content.Adjacency{}
	}

	title := doc.Meta.Title
	if title == "" {
		title = doc.Slug
	}
	data := templates.DocumentData{
		BaseData:    h.baseData(r, title),
		Category:    doc.Category,
		Subcategory: doc.Subcategory,
		Slug:        doc.Slug,
		DocTitle:    title,
		Description: doc.Meta.Description,
		Author:      doc.Meta.Author,
		Date:        doc.Meta.DateString(),
		Body:        templateHTML(rendered),
		TOC:         toc,
	}
	if adj.Previous != nil {
		e := docEntry(*adj.Previous)
		data.Prev = &e
	}
	if adj.Next != nil {
		e := docEntry(*adj.Next)
		data.Next = &e
	}
	h.render(w, r, templates.PageDocument, data)
}

// HandleLoginForm serves the login page.
func (h *PageHandlers) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, templates.PageLogin, templates.LoginData{
		BaseData: h.baseData(r, "Log in"),
		Next:     safeNext(r.URL.Query().Get("next")),
	})
}

// HandleLogin processes the login form and sets the session cookie.
func (h *PageHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.htmlError(w, r, errors.ValidationError("malformed form").Build())
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	next := safeNext(r.PostFormValue("next"))

	token, expires, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		w.WriteHeader(h.adapter.StatusCodeFor(err))
		h.render(w, r, templates.PageLogin, templates.LoginData{
			BaseData: h.baseData(r, "Log in"),
			Error:    "invalid username or password",
			Next:     next,
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// HandleLogout revokes the session and clears the cookie.
func (h *PageHandlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookieName); err == nil {
		_ = h.auth.Logout(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSubmitForm serves the submission form. The auth middleware has
// already gated access.
func (h *PageHandlers) HandleSubmitForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, templates.PageSubmit, templates.SubmitData{
		BaseData:   h.baseData(r, "Submit a document"),
		Categories: h.library.Categories(),
	})
}

// HandleSubmit processes the submission form.
func (h *PageHandlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.htmlError(w, r, errors.ValidationError("malformed form").Build())
		return
	}

	identity, _ := auth.IdentityFrom(r.Context())
	in := SubmissionInput{
		Category:    r.PostFormValue("category"),
		Subcategory: r.PostFormValue("subcategory"),
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Body:        r.PostFormValue("body"),
	}
	if identity != nil {
		in.User = identity.Username
		in.Author = identity.DisplayName
		if in.Author == "" {
			in.Author = identity.Username
		}
	}

	result, err := h.submitter.Submit(r.Context(), in)
	if err != nil {
		msg := "submission failed"
		if c, ok := errors.AsClassified(err); ok && c.Category() == errors.CategoryValidation {
			msg = c.Message()
		}
		w.WriteHeader(h.adapter.StatusCodeFor(err))
		h.render(w, r, templates.PageSubmit, templates.SubmitData{
			BaseData:   h.baseData(r, "Submit a document"),
			Categories: h.library.Categories(),
			Error:      msg,
		})
		return
	}

	h.render(w, r, templates.PageSubmit, templates.SubmitData{
		BaseData:   h.baseData(r, "Submit a document"),
		Categories: h.library.Categories(),
		Result: &templates.SubmitResult{
			Category: result.Category,
			Slug:     result.Slug,
			URL:      documentURL(result.Category, result.Subcategory, result.Slug),
		},
	})
}
