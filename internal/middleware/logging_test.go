package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/sozercan/ollama-sentiment/internal/metrics"
)

func TestLoggingCountsByRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Logging("test"))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	counter := metrics.RequestsTotal.WithLabelValues("test", http.MethodGet, "/items/{id}", "201")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/items/1", "/items/2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestLoggingDefaultsToOK(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Logging("test"))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	counter := metrics.RequestsTotal.WithLabelValues("test", http.MethodGet, "/", "200")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusNotFound, rw.status)
}
