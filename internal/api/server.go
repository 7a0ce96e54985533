package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/bolao/internal/api/auth"
	"github.com/albapepper/bolao/internal/api/handler"
	"github.com/albapepper/bolao/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, verifier *auth.Verifier, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tournaments", h.ListTournaments)

		r.Route("/seasons/{seasonID}", func(r chi.Router) {
			r.Get("/matches", h.ListSeasonMatches)
			r.Get("/ranking", h.GetRanking)
			r.Get("/standings", h.GetStandings)
			r.Get("/prize-pool", h.GetPrizePool)
		})

		r.Group(func(r chi.Router) {
			r.Use(verifier.Authenticate)
			r.Put("/matches/{matchID}/prediction", h.PutPrediction)
			r.Get("/me/predictions", h.ListMyPredictions)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(verifier.Authenticate)
		r.Use(verifier.RequireAdmin)

		r.Post("/sofascore", h.AdminSofascore)
		r.Patch("/payments/{id}", h.PatchPayment)
		r.Patch("/deposits/{id}", h.PatchDeposit)
	})

	return r
}
