package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/studiodesk/pkg/metrics"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/projects/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	expected := `
# HELP studiodesk_http_requests_total Total HTTP requests by method, route pattern and status code.
# TYPE studiodesk_http_requests_total counter
studiodesk_http_requests_total{method="GET",route="/projects/{id}",status="202"} 3
studiodesk_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "studiodesk_http_requests_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "studiodesk_http_request_duration_seconds"))
}

func TestErrorHandlerCountsByCode(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	handle := m.ErrorHandler(nil)

	for _, err := range []error{tenant.ErrTenantRequired, tenant.ErrTenantRequired, tenant.ErrSubscriptionRequired} {
		rec := httptest.NewRecorder()
		handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)
		assert.NotEqual(t, http.StatusOK, rec.Code)
	}

	expected := `
# HELP studiodesk_api_errors_total Error responses by API error code.
# TYPE studiodesk_api_errors_total counter
studiodesk_api_errors_total{code="SUBSCRIPTION_REQUIRED"} 1
studiodesk_api_errors_total{code="TENANT_REQUIRED"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "studiodesk_api_errors_total"))
}

func TestHandlerExposesDefaultRegistry(t *testing.T) {
	t.Parallel()

	m := metrics.New(nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
