// Package dashboard serves the interactive page, its JSON API and export
// downloads.
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/spacesedan/sentiboard/internal/aggregation"
	"github.com/spacesedan/sentiboard/internal/archive"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/monitoring"
	"github.com/spacesedan/sentiboard/internal/sentiment"
	"github.com/spacesedan/sentiboard/internal/session"
)

const SESSION_COOKIE = "sentiboard_session"

// PostFetcher performs one live acquisition.
type PostFetcher interface {
	Fetch(ctx context.Context, req models.FetchRequest) ([]models.Post, error)
}

type Options struct {
	// Fetcher may be nil when no Reddit credentials are configured; live
	// fetches then fail with an acquisition error and uploads still work.
	Fetcher        PostFetcher
	Labeler        sentiment.Labeler
	Sessions       *session.Manager
	Presets        aggregation.Presets
	Archiver       *archive.Archiver
	Metrics        *monitoring.Metrics
	MaxUploadBytes int64
	AllowedOrigins []string
	SecureCookies  bool
}

type Server struct {
	opts Options
	now  func() time.Time
}

func NewServer(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = monitoring.NewMetrics()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewManager(2 * time.Hour)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if len(opts.Presets.Sectors) == 0 {
		opts.Presets = aggregation.DefaultPresets()
	}
	return &Server{opts: opts, now: time.Now}
}

func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.opts.Metrics))
	if len(s.opts.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", s.health)
	router.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())

	router.Get("/", s.index)
	router.Post("/fetch", s.fetch)
	router.Post("/upload", s.upload)
	router.Post("/session/end", s.endSession)

	router.Route("/api", func(r chi.Router) {
		r.Get("/view", s.view)
		r.Get("/sectors", s.sectors)
		r.Get("/focus", s.focus)
	})
	router.Get("/export/{format}", s.exportView)

	return router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.opts.Sessions.Len(),
		"reddit":   s.opts.Fetcher != nil,
	})
}
