package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/moodloop/insight-server/internal/cache"
	"github.com/moodloop/insight-server/internal/config"
	"github.com/moodloop/insight-server/internal/db"
	"github.com/moodloop/insight-server/internal/insights"
)

func NewRouter(cfg *config.Config, database *db.DB, service *insights.Service, cacheStore *cache.Store) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)

	handlers := NewHandlers(cfg, database, service, cacheStore)
	requestLimiter := NewRequestLimiter(60, time.Minute)

	// Public endpoints
	r.Get("/health", handlers.Health)

	// API v1 routes (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg))
		r.Use(RequestLimitMiddleware(requestLimiter))
		r.Use(JSONContentType)

		r.Get("/insights", handlers.GetInsights)
		r.Post("/moods", handlers.CreateMood)
		r.Get("/moods", handlers.ListMoods)
		r.Post("/journals", handlers.CreateJournal)
		r.Get("/journals", handlers.ListJournals)
	})

	return r
}
