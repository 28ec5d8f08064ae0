package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type recordingProvider struct {
	Noop
	routes []string
	codes  []int
}

func (r *recordingProvider) RecordHTTPRequest(_ string, route string, status int, _ time.Duration) {
	r.routes = append(r.routes, route)
	r.codes = append(r.codes, status)
}

func TestGinMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := &recordingProvider{}
	router := gin.New()
	router.Use(GinMiddleware(p))
	router.GET("/api/posts/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	for _, path := range []string{"/api/posts/1", "/nowhere"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
	}

	assert.Equal(t, []string{"/api/posts/:id", "unmatched"}, p.routes)
	assert.Equal(t, []int{http.StatusTeapot, http.StatusNotFound}, p.codes)
}

func TestPrometheusProvider_Counts(t *testing.T) {
	p := NewPrometheusProvider()
	before := testutil.ToFloat64(ImageUploadsTotal.WithLabelValues("true"))

	p.IncrementImageUploads(true)

	assert.Equal(t, before+1, testutil.ToFloat64(ImageUploadsTotal.WithLabelValues("true")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	NewPrometheusProvider().IncrementUpstreamRequests("list_posts", "ok")
	router := gin.New()
	router.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "upstream_requests_total")
}
