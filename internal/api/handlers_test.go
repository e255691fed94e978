package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"

	analyticsapp "salesinsights/internal/analytics/application"
	"salesinsights/internal/analytics/domain"
	analyticsinfra "salesinsights/internal/analytics/infrastructure"
	"salesinsights/internal/api"
	"salesinsights/internal/testhelpers"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := testhelpers.SeedMemoryStore(t, 1, 42)
	svc := analyticsapp.NewMetricsService(analyticsinfra.NewMemoryQueryRepository(store))
	srv := httptest.NewServer(api.NewRouter(api.NewHandlers(svc, zerolog.Nop())))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	var body map[string]string
	if code := get(t, srv, api.HealthPath, &body); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", code, body)
	}
}

func TestCustomerYoY_JSON(t *testing.T) {
	srv := newServer(t)

	var body domain.YoYResponse
	path := "/api/metrics/yoy?customer=" + url.QueryEscape("Harbor & Co.")
	if code := get(t, srv, path, &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Customer != "Harbor & Co." || len(body.Rows) != 12 || body.DataAsOf != "2025-03-14" {
		t.Errorf("body = %+v", body)
	}
}

func TestTopMaterials_Defaults(t *testing.T) {
	srv := newServer(t)

	var body domain.TopMaterialsResponse
	if code := get(t, srv, "/api/metrics/materials/top?year=2024", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.TopN != api.DefaultTopN || len(body.Rows) != api.DefaultTopN {
		t.Errorf("topN = %d, rows = %d", body.TopN, len(body.Rows))
	}
}

func TestBadRequest(t *testing.T) {
	srv := newServer(t)

	paths := []string{
		"/api/metrics/materials/top?topN=0",
		"/api/metrics/customers/top?topN=abc",
		"/api/metrics/budget?quarter=5",
		"/api/metrics/yoy",
	}
	for _, p := range paths {
		var body map[string]string
		if code := get(t, srv, p, &body); code != http.StatusBadRequest || body["error"] == "" {
			t.Errorf("%s: status = %d body = %v, want 400", p, code, body)
		}
	}
}

// brokenReader simule une panne de stockage
type brokenReader struct {
	analyticsapp.MetricsReader
}

func (brokenReader) LatestDate(ctx context.Context) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("database is down")
}

func TestInternalError(t *testing.T) {
	svc := analyticsapp.NewMetricsService(brokenReader{})
	srv := httptest.NewServer(api.NewRouter(api.NewHandlers(svc, zerolog.Nop())))
	defer srv.Close()

	var body map[string]string
	if code := get(t, srv, "/api/metrics/forecast", &body); code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", code)
	}
	if body["error"] != "internal server error" {
		t.Errorf("message = %q, détail interne exposé", body["error"])
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/metrics/budget", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
