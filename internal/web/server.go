// Package web provides the HTTP server and handlers for document checks.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/tabcheck/internal/config"
	"github.com/JonMunkholm/tabcheck/internal/core"
	"github.com/JonMunkholm/tabcheck/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for stored documents.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	stop context.CancelFunc
}

// NewServer creates a Server. It fails only on invalid trusted proxies.
func NewServer(service *core.Service, cfg *config.Config) (*Server, error) {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() error {
	proxies, err := middleware.ParseTrustedProxies(s.cfg.Security.TrustedProxies)
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(proxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	var ctx context.Context
	ctx, s.stop = context.WithCancel(context.Background())

	general := func(next http.Handler) http.Handler { return next }
	heavy := general
	if s.cfg.Rate.Enabled {
		gl := newIPLimiter(s.cfg.Rate.RequestsPerMinute)
		hl := newIPLimiter(s.cfg.Rate.CheckLimit)
		go gl.run(ctx)
		go hl.run(ctx)
		general, heavy = gl.middleware, hl.middleware
	}

	s.router.Get("/healthz", s.handleHealth)

	// Pages
	s.router.With(general).Get("/documents/{docID}/report", s.handleReportPage)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))
		r.Use(general)

		r.Route("/documents/{docID}", func(r chi.Router) {
			r.Put("/eml", s.handlePutDocument)
			r.Get("/tables", s.handleListTables)
			r.Get("/history", s.handleHistory)

			r.Put("/files/{fileName}", s.handlePutDataFile)
			r.Get("/files/{fileName}/missing-code", s.handleMissingCode)

			r.With(heavy).Post("/files/{fileName}/infer", s.handleInfer)
			r.With(heavy).Post("/check", s.handleCheck)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stop != nil {
		s.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// The report page only uses an inline stylesheet.
				w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes a JSON error response for request validation failures.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
