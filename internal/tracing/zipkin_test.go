package tracing

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracer(t *testing.T) *Tracer {
	t.Helper()
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(collector.Close)

	tracer, err := New(strings.TrimPrefix(collector.URL, "http://"), "postgateway-test", 3001, &http.Client{Timeout: time.Second})
	require.NoError(t, err)
	return tracer
}

func TestTracer_ClientPropagatesB3Headers(t *testing.T) {
	tracer := newTestTracer(t)
	defer tracer.Close()

	traceIDs := make(chan string, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceIDs <- r.Header.Get("X-B3-TraceId")
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	req, err := http.NewRequest(http.MethodGet, upstream.URL+"/api/posts", nil)
	require.NoError(t, err)
	resp, err := tracer.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, <-traceIDs)
}

func TestTracer_MiddlewarePassesThrough(t *testing.T) {
	tracer := newTestTracer(t)
	defer tracer.Close()

	h := tracer.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestTracer_Close(t *testing.T) {
	tracer := newTestTracer(t)

	assert.NoError(t, tracer.Close())
}
