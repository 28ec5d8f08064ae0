package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/klass-lk/postgateway/internal/model"
	"github.com/klass-lk/postgateway/internal/server"
)

const jsonContentType = "application/json; charset=utf-8"

type PostReader interface {
	GetAllPosts(ctx context.Context) (json.RawMessage, error)
	GetRelatedPosts(ctx context.Context) (model.PostList, error)
	GetPostByID(ctx context.Context, id int64) (json.RawMessage, error)
}

type PostController struct {
	posts PostReader
	log   *slog.Logger
}

func NewPostController(posts PostReader, log *slog.Logger) *PostController {
	return &PostController{
		posts: posts,
		log:   log,
	}
}

// Routes are relative to the /api group.
func (c *PostController) Routes() []server.Route {
	return []server.Route{
		{Method: http.MethodGet, Path: "/posts", Handler: c.GetPosts},
		{Method: http.MethodGet, Path: "/posts/related", Handler: c.GetRelatedPosts},
		{Method: http.MethodGet, Path: "/posts/:id", Handler: c.GetPost},
	}
}

func (c *PostController) GetPosts(ctx *gin.Context) {
	posts, err := c.posts.GetAllPosts(ctx.Request.Context())
	if err != nil {
		server.SendError(ctx, c.log, err)
		return
	}

	ctx.Data(http.StatusOK, jsonContentType, posts)
}

func (c *PostController) GetRelatedPosts(ctx *gin.Context) {
	posts, err := c.posts.GetRelatedPosts(ctx.Request.Context())
	if err != nil {
		server.SendError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, posts)
}

func (c *PostController) GetPost(ctx *gin.Context) {
	id, err := server.PathInt64(ctx, "id")
	if err != nil {
		server.SendError(ctx, c.log, err)
		return
	}

	post, err := c.posts.GetPostByID(ctx.Request.Context(), id)
	if err != nil {
		server.SendError(ctx, c.log, err)
		return
	}

	ctx.Data(http.StatusOK, jsonContentType, post)
}
