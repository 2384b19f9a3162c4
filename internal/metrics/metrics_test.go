package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mdnote/internal/apperr"
)

func TestStoreMetrics_ObserveOp(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewStoreMetrics(reg)
	require.NoError(t, err)

	m.ObserveOp("index: get note", time.Millisecond, nil)
	m.ObserveOp("index: get note", time.Millisecond, apperr.NotFound("index: get note", "note", "x"))
	m.ObserveLockWait("index: get note", time.Microsecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.opsTotal.WithLabelValues("get_note", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.opsTotal.WithLabelValues("get_note", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("get_note", "not_found")))

	n, err := testutil.GatherAndCount(reg, "mdnote_store_lock_wait_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreMetrics_UnknownErrorKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewStoreMetrics(reg)
	require.NoError(t, err)

	m.ObserveOp("index: search", time.Millisecond, errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.opsTotal.WithLabelValues("search", "error")))
}

func TestHTTPMetrics_RoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/notes/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notes/"+id, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/notes/{id}", "404")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterClientGauge(reg, func() int { return 3 }))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "mdnote_sse_clients 3"))
}
