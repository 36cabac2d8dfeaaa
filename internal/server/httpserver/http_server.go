// Package httpserver runs the two HTTP listeners: the public docs
// server (pages plus JSON API) and the admin server (health, metrics,
// status). Both ports are bound up front so a conflict on either
// surfaces as one aggregate startup error instead of a partial start.
package httpserver

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"git.home.luguber.info/inful/docserver/internal/auth"
	"git.home.luguber.info/inful/docserver/internal/config"
	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/metrics"
	"git.home.luguber.info/inful/docserver/internal/server/handlers"
	"git.home.luguber.info/inful/docserver/internal/server/middleware"
)

// Deps carries everything the routers need. AuthMW and Metrics are nil
// when the matching feature is disabled.
type Deps struct {
	Pages       *handlers.PageHandlers
	API         *handlers.APIHandlers
	Monitoring  *handlers.MonitoringHandlers
	AuthMW      *auth.Middleware
	Metrics     http.Handler
	MetricsPath string
	HealthPath  string
	Recorder    metrics.Recorder
	Adapter     *errors.HTTPErrorAdapter
	Logger      *slog.Logger
}

// Server manages both listeners.
type Server struct {
	cfg         config.ServerConfig
	docsServer  *http.Server
	adminServer *http.Server
	logger      *slog.Logger
}

// New assembles the routers and the (not yet started) servers.
func New(cfg config.ServerConfig, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{cfg: cfg, logger: logger}
	s.docsServer = &http.Server{
		Handler:      s.docsRouter(deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.adminServer = &http.Server{
		Handler:      s.adminRouter(deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// DocsHandler returns the public router without starting a listener.
func (s *Server) DocsHandler() http.Handler { return s.docsServer.Handler }

// AdminHandler returns the admin router without starting a listener.
func (s *Server) AdminHandler() http.Handler { return s.adminServer.Handler }

func (s *Server) docsRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Chain("docs", s.logger, deps.Adapter, deps.Recorder))
	if deps.AuthMW != nil {
		r.Use(deps.AuthMW.Optional)
	}

	healthPath := deps.HealthPath
	if healthPath == "" {
		healthPath = "/healthz"
	}
	r.Get(healthPath, deps.Monitoring.HandleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/documents", deps.API.HandleListAll)
		r.Get("/categories/{category}", deps.API.HandleListCategory)
		r.Get("/documents/{category}/{slug}", deps.API.HandleResolve)
		r.Get("/documents/{category}/{slug}/adjacent", deps.API.HandleAdjacent)
		r.Get("/submissions/recent", deps.API.HandleRecent)
		if deps.AuthMW != nil {
			r.With(deps.AuthMW.Require).Post("/documents", deps.API.HandleCreate)
		} else {
			r.Post("/documents", deps.API.HandleCreate)
		}
	})

	if deps.AuthMW != nil {
		r.Get("/login", deps.Pages.HandleLoginForm)
		r.Post("/login", deps.Pages.HandleLogin)
		r.Get("/logout", deps.Pages.HandleLogout)
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMW.Require)
			r.Get("/submit", deps.Pages.HandleSubmitForm)
			r.Post("/submit", deps.Pages.HandleSubmit)
		})
	} else {
		r.Get("/submit", deps.Pages.HandleSubmitForm)
		r.Post("/submit", deps.Pages.HandleSubmit)
	}

	r.Get("/", deps.Pages.HandleIndex)
	r.Get("/{category}", deps.Pages.HandleCategory)
	r.Get("/{category}/*", deps.Pages.HandleDocument)
	return r
}

func (s *Server) adminRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Chain("admin", s.logger, deps.Adapter, deps.Recorder))

	healthPath := deps.HealthPath
	if healthPath == "" {
		healthPath = "/healthz"
	}
	r.Get(healthPath, deps.Monitoring.HandleHealth)
	r.Get("/health", deps.Monitoring.HandleHealth)
	r.Get("/api/status", deps.Monitoring.HandleStatus)

	if deps.Metrics != nil {
		metricsPath := deps.MetricsPath
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.Method(http.MethodGet, metricsPath, deps.Metrics)
	}
	return r
}

// Start binds both ports and begins serving. Bind failures on either
// port abort the whole start with every failure reported.
func (s *Server) Start(ctx context.Context) error {
	type preBind struct {
		name string
		port int
		ln   net.Listener
	}
	binds := []preBind{
		{name: "docs", port: s.cfg.DocsPort},
		{name: "admin", port: s.cfg.AdminPort},
	}

	var bindErrs []error
	for i := range binds {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", binds[i].port))
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("%s port %d: %w", binds[i].name, binds[i].port, err))
			continue
		}
		binds[i].ln = ln
	}
	if len(bindErrs) > 0 {
		for _, b := range binds {
			if b.ln != nil {
				_ = b.ln.Close()
			}
		}
		return fmt.Errorf("http startup failed: %w", stdErrors.Join(bindErrs...))
	}

	s.serve("docs", s.docsServer, binds[0].ln)
	s.serve("admin", s.adminServer, binds[1].ln)

	s.logger.Info("HTTP servers started",
		slog.Int("docs_port", s.cfg.DocsPort),
		slog.Int("admin_port", s.cfg.AdminPort))
	return nil
}

func (s *Server) serve(name string, srv *http.Server, ln net.Listener) {
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error",
				slog.String("server", name),
				slog.String("error", err.Error()))
		}
	}()
}

// Stop shuts both servers down gracefully, in reverse start order.
func (s *Server) Stop(ctx context.Context) error {
	var errs []error
	if s.adminServer != nil {
		if err := s.adminServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
	}
	if s.docsServer != nil {
		if err := s.docsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("docs server shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return stdErrors.Join(errs...)
	}
	s.logger.Info("HTTP servers stopped")
	return nil
}
