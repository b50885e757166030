package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSONBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	m := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

// TestStatusHandler ensures api handler can provides its status.
func TestStatusHandler(t *testing.T) {
	api, _ := newTestAPIHandler()
	api.stats.started = api.clock.Now().Add(-5 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	api.Status(w, req, httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=UTF-8", w.Header().Get("Content-Type"))

	m := decodeJSONBody(t, w)
	_, ok := m["requestid"]
	assert.True(t, ok)
	assert.Equal(t, "up & running since 5 mins", m["status"])
	assert.Equal(t, "Hello. Library catalog is available. Enjoy :)", m["message"])
}

// TestMaintenanceHandler ensures the maintenance mode can be toggled and
// only affects the public-facing routes.
func TestMaintenanceHandler(t *testing.T) {
	api, _ := newTestAPIHandler(bookDune)
	public, ops := api.MiddlewaresStacks()
	router := httprouter.New()
	api.SetupRoutes(router, &MiddlewareMap{public: public.Chain, ops: ops.Chain})

	serve := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	w := serve("/ops/maintenance?status=enable&msg=catalog%20migration")
	require.Equal(t, http.StatusOK, w.Code)
	m := decodeJSONBody(t, w)
	assert.Equal(t, "Maintenance mode enabled successfully.", m["message"])
	assert.Equal(t, "catalog migration", m["maintenance.message"])
	assert.Equal(t, "Sun, 02 Jul 2023 00:00:00 UTC", m["maintenance.started"])
	assert.Contains(t, scrapeMetrics(t, api), "library_maintenance_enabled 1")

	w = serve("/v1/books")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	m = decodeJSONBody(t, w)
	assert.Equal(t, "service currently unavailable.", m["message"])
	assert.Equal(t, "catalog migration", m["reason"])

	w = serve("/ops/maintenance")
	assert.Equal(t, http.StatusOK, w.Code)
	m = decodeJSONBody(t, w)
	assert.Equal(t, true, m["enabled"])

	w = serve("/ops/maintenance?status=disable")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, scrapeMetrics(t, api), "library_maintenance_enabled 0")

	w = serve("/v1/books")
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestGetStatistics ensures the stats exclude the ops request itself.
func TestGetStatistics(t *testing.T) {
	api, _ := newTestAPIHandler(bookDune)
	public, ops := api.MiddlewaresStacks()
	router := httprouter.New()
	api.SetupRoutes(router, &MiddlewareMap{public: public.Chain, ops: ops.Chain})

	for _, target := range []string{"/v1/books", "/v1/books/0", "/v1/books/3"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ops/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	m := decodeJSONBody(t, w)
	assert.Equal(t, float64(3), m["called"])
	assert.Equal(t, "file", m["storage.driver"])
	status := m["status"].(map[string]interface{})
	assert.Equal(t, float64(2), status["200"])
	assert.Equal(t, float64(1), status["404"])
}

// TestGetConfigs ensures configs are served without secrets.
func TestGetConfigs(t *testing.T) {
	api, _ := newTestAPIHandler()
	api.config.Redis.Password = "secret"
	w := httptest.NewRecorder()
	api.GetConfigs(w, httptest.NewRequest(http.MethodGet, "/ops/configs", nil), httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	m := decodeJSONBody(t, w)
	_, ok := m["configs"]
	assert.True(t, ok)
}

// scrapeMetrics returns the prometheus text exposition of the handler metrics.
func scrapeMetrics(t *testing.T, api *APIHandler) string {
	t.Helper()
	w := httptest.NewRecorder()
	api.metrics.Handler()(w, httptest.NewRequest(http.MethodGet, "/ops/metrics", nil), httprouter.Params{})
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

// TestMetricsEndpoint ensures catalog operations are exposed as prometheus metrics.
func TestMetricsEndpoint(t *testing.T) {
	api, _ := newTestAPIHandler(bookDune)
	cs := NewCatalogService(api.logger, api.clock, &MockCatalogStore{
		LoadFunc: func(ctx context.Context) ([]Book, error) { return []Book{bookDune}, nil },
		SaveFunc: func(ctx context.Context, books []Book) error { return nil },
	}, api.metrics)

	_, err := cs.Borrow(context.Background(), 0, BorrowRequest{})
	require.NoError(t, err)
	_, err = cs.Return(context.Background(), 0)
	assert.ErrorIs(t, err, ErrBookNotBorrowed)

	out := scrapeMetrics(t, api)
	assert.Contains(t, out, `library_catalog_operations_total{operation="borrow"} 1`)
	assert.Contains(t, out, `library_lending_rejected_total{operation="return"} 1`)
	assert.Contains(t, out, "library_maintenance_enabled 0")
}

// TestRuntimeOpsHandlers ensures the memory related endpoints answer.
func TestRuntimeOpsHandlers(t *testing.T) {
	api, _ := newTestAPIHandler()

	w := httptest.NewRecorder()
	api.GetMemStats(w, httptest.NewRequest(http.MethodGet, "/ops/debug/vars", nil), httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines")

	w = httptest.NewRecorder()
	api.RunGC(w, httptest.NewRequest(http.MethodGet, "/ops/debug/gc", nil), httprouter.Params{})
	assert.Equal(t, "go runtime.GC()", decodeJSONBody(t, w)["called"])

	w = httptest.NewRecorder()
	api.FreeOSMemory(w, httptest.NewRequest(http.MethodGet, "/ops/debug/fos", nil), httprouter.Params{})
	assert.Equal(t, "go debug.FreeOSMemory()", decodeJSONBody(t, w)["called"])
}
