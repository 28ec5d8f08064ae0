package repository

import (
	"context"
	"time"

	"github.com/klass-lk/postgateway/internal/metrics"
	"github.com/klass-lk/postgateway/internal/model"
)

type instrumented struct {
	next    Repository
	backend string
	metrics metrics.Provider
}

// WithMetrics counts and times every call made to next.
func WithMetrics(next Repository, backend string, m metrics.Provider) Repository {
	return &instrumented{next: next, backend: backend, metrics: m}
}

func (r *instrumented) Create(ctx context.Context, post model.Post) (model.Post, error) {
	defer r.observe("create", time.Now())
	created, err := r.next.Create(ctx, post)
	r.metrics.IncrementStoreOperations(r.backend, "create", err == nil)
	return created, err
}

func (r *instrumented) ListAll(ctx context.Context) ([]model.Post, error) {
	defer r.observe("list_all", time.Now())
	posts, err := r.next.ListAll(ctx)
	r.metrics.IncrementStoreOperations(r.backend, "list_all", err == nil)
	return posts, err
}

func (r *instrumented) GetByID(ctx context.Context, id int64) (model.Post, error) {
	defer r.observe("get_by_id", time.Now())
	post, err := r.next.GetByID(ctx, id)
	r.metrics.IncrementStoreOperations(r.backend, "get_by_id", err == nil)
	return post, err
}

func (r *instrumented) observe(operation string, start time.Time) {
	r.metrics.RecordStoreOperationDuration(r.backend, operation, time.Since(start))
}
