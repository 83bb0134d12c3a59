// Package web provides the HTTP server, the dashboard pages and the JSON
// API for hoom.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/logging"
	"github.com/hoomlabs/hoom/internal/promoter"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Options tune the dashboard.
type Options struct {
	// ExcludeTitle is the title text the exclusion filter hides.
	ExcludeTitle string
}

// Server is the web UI and API HTTP server.
type Server struct {
	listings     *listing.Service
	promoters    *promoter.Service
	excludeTitle string
	templates    *template.Template
	router       chi.Router
}

// NewServer creates a web server over the listing and promoter services.
func NewServer(listings *listing.Service, promoters *promoter.Service, opts Options) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	if opts.ExcludeTitle == "" {
		opts.ExcludeTitle = listing.DefaultExcludeTitle
	}

	s := &Server{
		listings:     listings,
		promoters:    promoters,
		excludeTitle: opts.ExcludeTitle,
		templates:    tmpl,
		router:       chi.NewRouter(),
	}

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating static sub-fs: %w", err)
	}

	r := s.router
	r.Use(logging.RequestLogger, middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	r.Get("/health", s.handleHealth)

	r.Get("/", s.handleListings)
	r.Post("/reload", s.handleReload)
	r.Route("/listings/{id}", func(r chi.Router) {
		r.Get("/edit", s.handleListingEditForm)
		r.Post("/", s.handleListingUpdate)
		r.Get("/delete", s.handleListingDeleteConfirm)
		r.Post("/delete", s.handleListingDelete)
		r.Post("/photos/primary", s.handlePhotoPrimary)
		r.Post("/photos/remove", s.handlePhotoRemove)
	})

	r.Get("/promoters", s.handlePromoters)
	r.Post("/promoters", s.handlePromoterSave)
	r.Get("/promoters/{id}/delete", s.handlePromoterDeleteConfirm)
	r.Post("/promoters/{id}/delete", s.handlePromoterDelete)

	r.Route("/api", func(r chi.Router) {
		r.Get("/listings", s.apiListListings)
		r.Post("/listings", s.apiImportListings)
		r.Get("/listings/{id}", s.apiGetListing)
		r.Put("/listings/{id}", s.apiUpdateListing)
		r.Delete("/listings/{id}", s.apiDeleteListing)
		r.Post("/listings/{id}/photos/primary", s.apiPhotoPrimary)
		r.Post("/listings/{id}/photos/remove", s.apiPhotoRemove)
		r.Get("/promoters", s.apiListPromoters)
		r.Post("/promoters", s.apiCreatePromoter)
		r.Put("/promoters/{id}", s.apiUpdatePromoter)
		r.Delete("/promoters/{id}", s.apiDeletePromoter)
		r.Get("/summary", s.apiSummary)
		r.Post("/reload", s.apiReload)
	})

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln. When ctx is cancelled it stops
// accepting and waits for in-flight requests before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting web UI", "addr", ln.Addr().String())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("stopping web UI")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// render executes a page template and writes it with status.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("rendering template", "template", name, "error", err)
		http.Error(w, fmt.Sprintf("Error rendering template: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("writing response", "template", name, "error", err)
	}
}
