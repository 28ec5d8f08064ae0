package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/klass-lk/postgateway/internal/metrics"
	"github.com/klass-lk/postgateway/internal/server"
)

// APIGroup mounts the post and related post controllers under /api.
func APIGroup(controllers ...server.Controller) server.RouterGroup {
	return server.RouterGroup{Path: "/api", Controllers: controllers}
}

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

func (c *HealthController) Routes() []server.Route {
	return []server.Route{
		{Method: http.MethodGet, Path: "/healthz", Handler: c.Health},
		{Method: http.MethodGet, Path: "/metrics", Handler: metrics.Handler()},
	}
}

func (c *HealthController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
