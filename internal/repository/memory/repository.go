package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/klass-lk/postgateway/internal/errorlib"
	"github.com/klass-lk/postgateway/internal/model"
	"github.com/klass-lk/postgateway/internal/repository"
)

type entry struct {
	post model.Post
	seq  int64
}

type RelatedPostRepository struct {
	log     *slog.Logger
	mu      sync.RWMutex
	entries []entry
	nextSeq int64
	now     func() time.Time
}

func NewRelatedPostRepository(log *slog.Logger) *RelatedPostRepository {
	return &RelatedPostRepository{
		log:     log,
		nextSeq: 1,
		now:     time.Now,
	}
}

func (r *RelatedPostRepository) Create(ctx context.Context, post model.Post) (model.Post, error) {
	post = repository.AssignID(post, r.now())

	r.mu.Lock()
	r.entries = append(r.entries, entry{post: post, seq: r.nextSeq})
	r.nextSeq++
	r.mu.Unlock()

	r.log.Debug("Created related post (memory impl)", slog.Int64("id", post.ID), slog.String("title", post.Attributes.Title))
	return post, nil
}

func (r *RelatedPostRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	r.mu.RLock()
	entries := make([]entry, len(r.entries))
	copy(entries, r.entries)
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].post.ID != entries[j].post.ID {
			return entries[i].post.ID > entries[j].post.ID
		}
		return entries[i].seq > entries[j].seq
	})

	posts := make([]model.Post, len(entries))
	for i, e := range entries {
		posts[i] = e.post
	}
	return posts, nil
}

func (r *RelatedPostRepository) GetByID(ctx context.Context, id int64) (model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].post.ID == id {
			return r.entries[i].post, nil
		}
	}

	r.log.Debug("Related post not found by id", slog.Int64("id", id))
	return model.Post{}, errorlib.ErrRelatedPostNotFound.New(id)
}
