// ABOUTME: HTTP content server exposing markdown pages as ordered sections
// ABOUTME: Serves the JSON shape that content.HTTPSource consumes

// Package contentsrv serves a directory of markdown pages over HTTP.
package contentsrv

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"scrollspy/content"
)

// Config holds server configuration
type Config struct {
	Addr     string
	AllowAll bool                       // allow all CORS origins
	Logger   middleware.LoggerInterface // request log destination; nil logs to stderr
}

// Library is a swappable set of pages, safe for concurrent use
type Library struct {
	mu    sync.RWMutex
	pages []content.Page
}

// NewLibrary creates a library holding pages
func NewLibrary(pages []content.Page) *Library {
	return &Library{pages: pages}
}

// Pages returns the current pages
func (l *Library) Pages() []content.Page {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.pages
}

// Replace swaps in a freshly loaded page set
func (l *Library) Replace(pages []content.Page) {
	l.mu.Lock()
	l.pages = pages
	l.mu.Unlock()
}

// Server serves a Library over HTTP
type Server struct {
	cfg        Config
	lib        *Library
	router     chi.Router
	debugf     func(string, ...interface{})
	httpServer *http.Server
}

// New creates a server for lib. debugf may be nil.
func New(cfg Config, lib *Library, debugf func(string, ...interface{})) *Server {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	s := &Server{cfg: cfg, lib: lib, debugf: debugf}
	s.router = s.buildRouter()

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.cfg.Logger != nil {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.cfg.Logger, NoColor: true}))
	} else {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/pages", func(r chi.Router) {
		r.Get("/", s.handleListPages)
		r.Get("/{slug}/sections", s.handleSections)
	})

	return r
}

func (s *Server) handleListPages(w http.ResponseWriter, _ *http.Request) {
	pages := s.lib.Pages()

	// Listing omits section bodies
	out := make([]content.Page, len(pages))
	for i, p := range pages {
		out[i] = content.Page{Slug: p.Slug, Title: p.Title}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := content.FindPage(s.lib.Pages(), slug)
	if err != nil {
		s.debugf("[SERVE] %s: %v", slug, err)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "page not found"})

		return
	}

	writeJSON(w, http.StatusOK, page.Sections)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.debugf("[SERVE] listening on %s", s.cfg.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
