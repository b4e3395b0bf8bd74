package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mealtrack/meal-tracker/internal/api/middleware"
	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/mealtrack/meal-tracker/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_RouteLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger.Discard(), collector))
	r.Get("/foods/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(path string) int {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Code
	}

	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusNotFound, serve(fmt.Sprintf("/random-%d", i)))
	}
	for _, id := range []string{"a", "b", "c"} {
		require.Equal(t, http.StatusOK, serve("/foods/"+id))
	}

	count, err := testutil.GatherAndCount(registry, "mealtracker_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	expected := `
# HELP mealtracker_http_requests_total HTTP requests by route pattern, method and status code.
# TYPE mealtracker_http_requests_total counter
mealtracker_http_requests_total{method="GET",route="/foods/{id}",status="200"} 3
mealtracker_http_requests_total{method="GET",route="unmatched",status="404"} 50
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "mealtracker_http_requests_total"))
}
