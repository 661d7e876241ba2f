package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics)
	router.Get("/v1/references/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/v1/references/{id}", "404"))

	req := httptest.NewRequest(http.MethodGet, "/v1/references/42", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/v1/references/{id}", "404"))
	if after-before != 1 {
		t.Errorf("Expected counter to increase by 1, got %v", after-before)
	}
	if testutil.ToFloat64(HTTPRequestInFlight) != 0 {
		t.Error("Expected no request in flight after completion")
	}
}

func TestQueryTotalLabels(t *testing.T) {
	before := testutil.ToFloat64(QueryTotal.WithLabelValues(OutcomeOverride))
	QueryTotal.WithLabelValues(OutcomeOverride).Inc()
	if got := testutil.ToFloat64(QueryTotal.WithLabelValues(OutcomeOverride)); got-before != 1 {
		t.Errorf("Expected override counter to increase, got %v", got-before)
	}
}
