package repository

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/klass-lk/postgateway/internal/model"
)

// Repository persists related posts. Records are never updated or deleted;
// lookups by a reused id return the latest write.
type Repository interface {
	Create(ctx context.Context, post model.Post) (model.Post, error)
	ListAll(ctx context.Context) ([]model.Post, error)
	GetByID(ctx context.Context, id int64) (model.Post, error)
}

const (
	// Collection is the document collection (Mongo) name.
	Collection = "relatedPosts"

	SingleItemTimeout = 5 * time.Second
	ScanTimeout       = 10 * time.Second
)

// AssignID gives a post without an id the current time in Unix milliseconds.
func AssignID(post model.Post, now time.Time) model.Post {
	if post.ID == 0 {
		post.ID = now.UnixMilli()
	}
	return post
}

// Key is the document key of a post id.
func Key(id int64) string {
	return strconv.FormatInt(id, 10)
}

// SortNewestFirst orders posts by id descending, keeping the incoming order for equal ids.
func SortNewestFirst(posts []model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].ID > posts[j].ID
	})
}
