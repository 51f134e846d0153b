package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/pdfdesk/internal/blobstore"
	"github.com/dgallion1/pdfdesk/internal/config"
	"github.com/dgallion1/pdfdesk/internal/layout"
	"github.com/dgallion1/pdfdesk/internal/pdfcheck"
	"github.com/dgallion1/pdfdesk/internal/stats"
	"github.com/dgallion1/pdfdesk/internal/style"
)

// Server is the HTTP API of the document service.
type Server struct {
	router     chi.Router
	store      blobstore.Store
	converter  pdfcheck.Converter
	renderer   *layout.Renderer
	sheet      *style.Sheet
	stats      *stats.Registry
	convertSem chan struct{}
	log        *slog.Logger
	cfg        config.Config
	now        func() time.Time
}

// NewServer creates and configures the HTTP server.
func NewServer(store blobstore.Store, conv pdfcheck.Converter, renderer *layout.Renderer, sheet *style.Sheet, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:      store,
		converter:  conv,
		renderer:   renderer,
		sheet:      sheet,
		stats:      stats.NewRegistry(time.Hour),
		convertSem: make(chan struct{}, max(cfg.MaxConcurrentConvert, 1)),
		log:        log,
		cfg:        cfg,
		now:        time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(CORS)

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Post("/convert", s.handleConvert)
	r.Get("/report", s.handleReportHTML)
	r.Get("/report.docx", s.handleReportDOCX)

	// Endpoints that require the API key when one is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/objects", s.handleListObjects)
		r.Get("/objects/{key}", s.handleGetObject)
		r.Delete("/objects/{key}", s.handleDeleteObject)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
