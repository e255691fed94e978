package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

const (
	APIBasePath     = "/api"
	HealthPath      = APIBasePath + "/health"
	MetricsBasePath = APIBasePath + "/metrics"
)

// NewRouter monte les routes et les middlewares (request id, logs, recover, CORS)
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Logger, middleware.Recoverer)

	r.Get(HealthPath, h.Health)

	r.Route(MetricsBasePath, func(r chi.Router) {
		r.Get("/yoy", h.CustomerYoY)
		r.Get("/yoy/totals", h.CustomerYoYTotals)
		r.Get("/materials/top", h.TopMaterials)
		r.Get("/customers/top", h.TopCustomers)
		r.Get("/budget", h.BudgetVsActual)
		r.Get("/forecast", h.ForecastAccuracy)
		r.Get("/overview", h.Overview)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Accept-Encoding"},
	})
	return c.Handler(r)
}
