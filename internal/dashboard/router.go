package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Post("/scan", h.Scan)
		r.Post("/alerts/{id}/place", h.PlaceAlert)
		r.Post("/alerts/{id}/dismiss", h.DismissAlert)
		r.Post("/bets/{index}/resolve", h.ResolveBet)
		r.Put("/settings", h.UpdateSettings)
		r.Put("/auto-refresh", h.SetAutoRefresh)
	})
	return r
}
