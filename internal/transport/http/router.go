package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-feed-nosql/internal/application/feed"
	"github.com/go-feed-nosql/internal/application/interaction"
	"github.com/go-feed-nosql/internal/config"
	"github.com/go-feed-nosql/internal/transport/http/handler"
)

// Deps is the composition root handed to in-process consumers. The feed core
// has no public wire protocol of its own — publish, read and record are
// invoked as Go calls by the services embedding this process — so the router
// only exposes the ops probes.
type Deps struct {
	FeedService        feed.Service
	InteractionService interaction.Service
	Readiness          handler.Readiness
}

// NewRouter builds the ops router: liveness and store readiness.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	health := handler.NewHealthHandler(deps.Readiness)
	r.Get("/health", health.Live)
	r.Get("/ready", health.Ready)

	return r
}
