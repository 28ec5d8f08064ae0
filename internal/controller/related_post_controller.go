package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/klass-lk/postgateway/internal/model"
	"github.com/klass-lk/postgateway/internal/server"
)

type RelatedPostCreator interface {
	CreateRelated(ctx context.Context, input model.CreateRelatedPostInput) (model.PostDetail, error)
}

type RelatedPostController struct {
	related RelatedPostCreator
	log     *slog.Logger
}

func NewRelatedPostController(related RelatedPostCreator, log *slog.Logger) *RelatedPostController {
	return &RelatedPostController{
		related: related,
		log:     log,
	}
}

// Routes serves creation on both the singular and the plural path under /api.
func (c *RelatedPostController) Routes() []server.Route {
	return []server.Route{
		{Method: http.MethodPost, Path: "/post/related", Handler: c.CreateRelatedPost},
		{Method: http.MethodPost, Path: "/posts/related", Handler: c.CreateRelatedPost},
	}
}

func (c *RelatedPostController) CreateRelatedPost(ctx *gin.Context) {
	input, err := server.BuildRequest[model.CreateRelatedPostInput](ctx)
	if err != nil {
		server.SendError(ctx, c.log, err)
		return
	}

	created, err := c.related.CreateRelated(ctx.Request.Context(), input)
	if err != nil {
		server.SendError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}
