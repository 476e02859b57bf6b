// Package api serves the collection over a small JSON REST API.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"mspro-labs/tea-buddy/internal/extractor"
	"mspro-labs/tea-buddy/internal/fetcher"
	"mspro-labs/tea-buddy/internal/models"
	"mspro-labs/tea-buddy/internal/shops"
	"mspro-labs/tea-buddy/internal/store"
)

// Server holds the HTTP server dependencies
type Server struct {
	store     store.Store
	directory *shops.Directory
	fetcher   fetcher.Fetcher
	extractor *extractor.Extractor
	log       zerolog.Logger
	router    chi.Router

	// shopMu serializes a directory change with the save that follows it.
	shopMu sync.Mutex
}

// Options configures New.
type Options struct {
	AllowedOrigins []string
	Log            zerolog.Logger
}

// New creates a new API server. directory must hold the shops currently in
// st; the server keeps both in step.
func New(st store.Store, directory *shops.Directory, f fetcher.Fetcher, opts Options) *Server {
	s := &Server{
		store:     st,
		directory: directory,
		fetcher:   f,
		extractor: extractor.New(directory, extractor.WithLogger(opts.Log)),
		log:       opts.Log,
		router:    chi.NewRouter(),
	}

	s.setupMiddleware(opts.AllowedOrigins)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Teas
		r.Get("/teas", s.handleListTeas)
		r.Post("/teas", s.handleCreateTea)
		r.Get("/teas/{id}", s.handleGetTea)
		r.Put("/teas/{id}", s.handleUpdateTea)
		r.Delete("/teas/{id}", s.handleDeleteTea)
		r.Get("/tea-types", s.handleTeaTypes)
		r.Get("/origins", s.handleOrigins)

		// Shop directory
		r.Get("/shops", s.handleListShops)
		r.Post("/shops", s.handleCreateShop)
		r.Get("/shops/find", s.handleFindShop)
		r.Put("/shops/{id}", s.handleUpdateShop)
		r.Delete("/shops/{id}", s.handleDeleteShop)

		// Scraping and backups
		r.Post("/extract", s.handleExtract)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// idParam reads the {id} route parameter.
func idParam(r *http.Request) (models.ID, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return models.ID(n), true
}
