package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	analyticsapp "salesinsights/internal/analytics/application"
	"salesinsights/internal/analytics/domain"
)

// DefaultTopN nombre de lignes des classements sans paramètre topN
const DefaultTopN = 10

// Handlers expose le moteur d'agrégation en JSON
type Handlers struct {
	metrics *analyticsapp.MetricsService
	logger  zerolog.Logger
}

// NewHandlers crée les handlers
func NewHandlers(metrics *analyticsapp.MetricsService, logger zerolog.Logger) *Handlers {
	return &Handlers{metrics: metrics, logger: logger}
}

// Health handler pour GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CustomerYoY handler pour GET /api/metrics/yoy?customer=&year=&lastYear=
func (h *Handlers) CustomerYoY(w http.ResponseWriter, r *http.Request) {
	q, err := parseYoYQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.metrics.CustomerYoYByMonth(r.Context(), q)
	h.respond(w, r, resp, err)
}

// CustomerYoYTotals handler pour GET /api/metrics/yoy/totals
func (h *Handlers) CustomerYoYTotals(w http.ResponseWriter, r *http.Request) {
	q, err := parseYoYQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.metrics.CustomerYoYTotals(r.Context(), q)
	h.respond(w, r, resp, err)
}

// TopMaterials handler pour GET /api/metrics/materials/top
func (h *Handlers) TopMaterials(w http.ResponseWriter, r *http.Request) {
	f, topN, err := parseRanking(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.metrics.TopMaterials(r.Context(), f, topN)
	h.respond(w, r, resp, err)
}

// TopCustomers handler pour GET /api/metrics/customers/top
func (h *Handlers) TopCustomers(w http.ResponseWriter, r *http.Request) {
	f, topN, err := parseRanking(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.metrics.TopCustomers(r.Context(), f, topN)
	h.respond(w, r, resp, err)
}

// BudgetVsActual handler pour GET /api/metrics/budget
func (h *Handlers) BudgetVsActual(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.metrics.BudgetVsActual(r.Context(), f)
	h.respond(w, r, resp, err)
}

// ForecastAccuracy handler pour GET /api/metrics/forecast
func (h *Handlers) ForecastAccuracy(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.metrics.ForecastAccuracy(r.Context(), f)
	h.respond(w, r, resp, err)
}

// Overview handler pour GET /api/metrics/overview
func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.metrics.Overview(r.Context(), f)
	h.respond(w, r, resp, err)
}

// ========================================
// Réponses
// ========================================

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, resp any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// fail: ErrInvalidQuery → 400, le reste → 500 (journalisé, message générique)
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidQuery) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.logger.Error().
		Err(err).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("metrics request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// ========================================
// Paramètres
// ========================================

func parseFilter(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	f := domain.Filter{
		Customer: q.Get("customer"),
		Country:  q.Get("country"),
	}

	var err error
	if f.Year, err = intParam(r, "year", 0); err != nil {
		return f, err
	}
	if f.Quarter, err = intParam(r, "quarter", 0); err != nil {
		return f, err
	}
	return f, nil
}

func parseRanking(r *http.Request) (domain.Filter, int, error) {
	f, err := parseFilter(r)
	if err != nil {
		return f, 0, err
	}
	topN, err := intParam(r, "topN", DefaultTopN)
	return f, topN, err
}

func parseYoYQuery(r *http.Request) (domain.YoYQuery, error) {
	q := domain.YoYQuery{Customer: r.URL.Query().Get("customer")}

	var err error
	if q.Year, err = intParam(r, "year", 0); err != nil {
		return q, err
	}
	if q.LastYear, err = intParam(r, "lastYear", 0); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidQuery, name, raw)
	}
	return v, nil
}
