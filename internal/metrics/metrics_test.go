// ABOUTME: Tests for the Prometheus collectors and HTTP middleware
// ABOUTME: Uses testutil to read counter and gauge values

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/promptmesh-gateway/internal/auth"
	"github.com/2389/promptmesh-gateway/internal/mcp"
)

var (
	_ auth.AttemptRecorder = (*Metrics)(nil)
	_ mcp.Observer         = (*Metrics)(nil)
	_ mcp.StreamObserver   = (*Metrics)(nil)
)

func TestRecordAuthAttempt(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordAuthAttempt(auth.ResultSuccess)
	m.RecordAuthAttempt(auth.ResultSuccess)
	m.RecordAuthAttempt(auth.ResultInvalid)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authAttempts.WithLabelValues(auth.ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authAttempts.WithLabelValues(auth.ResultInvalid)))
}

func TestObserveRPC(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRPC(mcp.MethodPromptsGet, mcp.OutcomeOK, 5*time.Millisecond)
	m.ObserveRPC(mcp.MethodPromptsGet, mcp.OutcomeDomainError, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues(mcp.MethodPromptsGet, mcp.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues(mcp.MethodPromptsGet, mcp.OutcomeDomainError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.rpcDuration))
}

func TestStreamGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.StreamOpened()
	m.StreamOpened()
	m.StreamClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.streams))
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestMiddleware(t *testing.T) {
	m := New(prometheus.NewRegistry())

	h := m.Middleware("/mcp")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mcp" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))

	for _, path := range []string{"/mcp", "/mcp", "/wp-admin", "/.env"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/mcp", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", otherPath, "404")))
}

func TestMiddleware_CollapsesUnknownMethods(t *testing.T) {
	m := New(prometheus.NewRegistry())

	h := m.Middleware("/mcp")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))

	for _, method := range []string{"BREW", "PROPFIND", "X-RANDOM-1", "DELETE", http.MethodGet} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/mcp", nil))
	}

	assert.Equal(t, 4.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(otherMethod, "/mcp", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/mcp", "200")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.httpRequests))
	assert.Equal(t, 2, testutil.CollectAndCount(m.httpDuration))
}

func TestMiddleware_PreservesFlush(t *testing.T) {
	m := New(prometheus.NewRegistry())

	var flushErr error
	h := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "data: x\n\n")
		flushErr = http.NewResponseController(w).Flush()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	require.NoError(t, flushErr)
	assert.True(t, rec.Flushed)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordAuthAttempt(auth.ResultMissing)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `promptmesh_auth_attempts_total{result="missing"} 1`))
}
