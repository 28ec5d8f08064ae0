package post

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/klass-lk/postgateway/internal/errorlib"
	"github.com/klass-lk/postgateway/internal/model"
)

type ContentClient interface {
	ListPosts(ctx context.Context) (json.RawMessage, error)
	GetPost(ctx context.Context, id int64) (json.RawMessage, error)
}

type RelatedPostStore interface {
	ListAll(ctx context.Context) ([]model.Post, error)
	GetByID(ctx context.Context, id int64) (model.Post, error)
}

// Resolver answers post reads from the upstream API, falling back to the related post store.
type Resolver struct {
	upstream ContentClient
	store    RelatedPostStore
	log      *slog.Logger
}

func NewResolver(upstream ContentClient, store RelatedPostStore, log *slog.Logger) *Resolver {
	return &Resolver{upstream: upstream, store: store, log: log}
}

// GetAllPosts returns the upstream list body untouched. Related posts are listed separately.
func (r *Resolver) GetAllPosts(ctx context.Context) (json.RawMessage, error) {
	return r.upstream.ListPosts(ctx)
}

func (r *Resolver) GetRelatedPosts(ctx context.Context) (model.PostList, error) {
	posts, err := r.store.ListAll(ctx)
	if err != nil {
		r.log.Error("Failed to list related posts", slog.String("error", err.Error()))
		return model.PostList{}, err
	}
	return model.NewPostList(posts), nil
}

type lookup struct {
	body json.RawMessage
	err  error
}

func (l lookup) ok() bool { return l.err == nil }

// GetPostByID asks the upstream first. When the upstream does not have the post or cannot be
// reached, the related post store is tried; if that fails too the upstream error is returned.
// Upstream bodies are relayed as received; stored posts are rendered as {data, meta}.
func (r *Resolver) GetPostByID(ctx context.Context, id int64) (json.RawMessage, error) {
	primary := r.fromUpstream(ctx, id)
	if primary.ok() {
		return primary.body, nil
	}
	if !fallsBack(primary.err) {
		return nil, primary.err
	}

	fallback := r.fromStore(ctx, id)
	if !fallback.ok() {
		r.log.Debug("Related post fallback failed",
			slog.Int64("id", id),
			slog.String("upstream_error", primary.err.Error()),
			slog.String("store_error", fallback.err.Error()))
		return nil, primary.err
	}

	r.log.Info("Served post from related post store", slog.Int64("id", id))
	return fallback.body, nil
}

func (r *Resolver) fromUpstream(ctx context.Context, id int64) lookup {
	body, err := r.upstream.GetPost(ctx, id)
	return lookup{body: body, err: err}
}

func (r *Resolver) fromStore(ctx context.Context, id int64) lookup {
	post, err := r.store.GetByID(ctx, id)
	if err != nil {
		return lookup{err: err}
	}
	body, err := json.Marshal(model.NewPostDetail(post))
	if err != nil {
		return lookup{err: errorlib.ErrUnknownStorage.New("encode").Wrap(err)}
	}
	return lookup{body: body}
}

func fallsBack(err error) bool {
	return errorlib.Is(err, errorlib.ErrNotFound) || errorlib.Is(err, errorlib.ErrUpstreamUnavailable)
}
