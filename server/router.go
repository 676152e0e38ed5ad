// Package server exposes decks and card sources over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sky-flux/flashcards/deck"
	"github.com/sky-flux/flashcards/store"
	"github.com/sky-flux/flashcards/wanikani"
)

// APIPrefix is where the API is mounted.
const APIPrefix = "/flashcards/api/v1"

// DefaultRequestTimeout bounds each API request.
const DefaultRequestTimeout = 60 * time.Second

// Config holds the router's dependencies.
type Config struct {
	Store          *store.DB
	Service        *deck.Service
	Provider       *wanikani.Provider // nil → cache imports are stored but nothing is invalidated
	Auth           AuthConfig
	RequestTimeout time.Duration // zero → DefaultRequestTimeout
	Logger         *slog.Logger  // nil → slog.Default()
}

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(cfg.Store)
	sourceH := NewSourceHandler(cfg.Store, cfg.Provider, logger)
	deckH := NewDeckHandler(cfg.Store, cfg.Service, logger)

	r.Get("/health", healthH.Health)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(Authenticate(cfg.Auth, cfg.Store, logger))

		r.Route("/sources", func(r chi.Router) {
			r.Get("/", sourceH.List)
			r.Post("/", sourceH.Create)
			r.Put("/", sourceH.Reorder)
			r.Get("/{id}", sourceH.Get)
			r.Put("/{id}", sourceH.Update)
			r.Delete("/{id}", sourceH.Delete)
			r.Put("/{id}/cache", sourceH.ImportCache)
			r.Post("/{id}/{iid}", sourceH.SubmitReview)
		})

		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckH.List)
			r.Post("/", deckH.Create)
			r.Put("/", deckH.Reorder)
			r.Get("/{id}", deckH.Get)
			r.Put("/{id}", deckH.Update)
			r.Delete("/{id}", deckH.Delete)
			r.Get("/{id}/reviews", deckH.Reviews)
			r.Get("/{id}/lessons", deckH.Lessons)
			r.Get("/{id}/overview", deckH.Overview)
			r.Post("/{id}/submit", deckH.Submit)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		Error(w, http.StatusNotFound, errNoRoute)
	})
	return r
}
