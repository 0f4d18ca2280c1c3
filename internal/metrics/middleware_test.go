package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Middleware)
	router.Get("/api/submissions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/api/submissions/{id}", "418"))
	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/submissions/"+id, nil))
	}
	after := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/api/submissions/{id}", "418"))

	if after-before != 2 {
		t.Fatalf("expected 2 requests under one route label, got %v", after-before)
	}
}
