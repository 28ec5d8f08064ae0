package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubController struct {
	routes []Route
}

func (s stubController) Routes() []Route {
	return s.routes
}

func marker(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-"+key, "called")
		c.Next()
	}
}

func TestRouter(t *testing.T) {
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.FullPath()) }

	t.Run("controller registration", func(t *testing.T) {
		server := newTestServer()
		server.RegisterControllers(stubController{routes: []Route{
			{Method: http.MethodGet, Path: "/api/posts", Handler: ok},
			{Method: http.MethodPost, Path: "/api/posts", Handler: ok, Middleware: []gin.HandlerFunc{marker("Route")}},
		}})

		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/api/posts", w.Body.String())
		assert.Empty(t, w.Header().Get("X-Route"))

		w = httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/posts", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "called", w.Header().Get("X-Route"))
	})

	t.Run("groups", func(t *testing.T) {
		server := newTestServer()
		server.RegisterGroups(RouterGroup{
			Path:        "/api",
			Middleware:  []gin.HandlerFunc{marker("Group")},
			Controllers: []Controller{stubController{routes: []Route{{Method: http.MethodGet, Path: "/posts/:id", Handler: ok}}}},
		})

		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/7", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/api/posts/:id", w.Body.String())
		assert.Equal(t, "called", w.Header().Get("X-Group"))
	})

	t.Run("static segment wins over parameter", func(t *testing.T) {
		server := newTestServer()
		server.RegisterControllers(stubController{routes: []Route{
			{Method: http.MethodGet, Path: "/api/posts/:id", Handler: ok},
			{Method: http.MethodGet, Path: "/api/posts/related", Handler: ok},
		}})

		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/related", nil))

		assert.Equal(t, "/api/posts/related", w.Body.String())
	})

	t.Run("unknown route", func(t *testing.T) {
		server := newTestServer()

		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
