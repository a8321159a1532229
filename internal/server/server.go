// Package server exposes the processing engine over HTTP: upload,
// process, pairing, preview, download, and workspace cleanup. The
// server holds no per-request state; every request maps to one engine
// call.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/engine"
)

// Server is the HTTP API over one engine instance.
type Server struct {
	engine        *engine.Engine
	maxUploadMB   int64
	defaultSweep  time.Duration
	allowedOrigin []string
}

// New creates a Server.
func New(eng *engine.Engine, cfg config.ServerConfig) *Server {
	return &Server{
		engine:        eng,
		maxUploadMB:   int64(cfg.MaxUploadMB),
		defaultSweep:  eng.Workspace().Retention(),
		allowedOrigin: cfg.AllowedOrigins,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigin,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/upload", s.handleUpload)
		r.Post("/process", s.handleProcess(false))
		r.Post("/process-combined", s.handleProcess(true))
		r.Post("/pairs", s.handlePairs)
		r.Post("/preview", s.handlePreview)
		r.Get("/download/{name}", s.handleDownload)
		r.Post("/cleanup", s.handleCleanup)
	})

	return r
}

// Addr formats the listen address for a port.
func Addr(port int) string {
	return fmt.Sprintf(":%d", port)
}
