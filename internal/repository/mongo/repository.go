package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/klass-lk/postgateway/internal/document"
	"github.com/klass-lk/postgateway/internal/errorlib"
	"github.com/klass-lk/postgateway/internal/model"
	"github.com/klass-lk/postgateway/internal/repository"
)

// Unauthorized
const codeUnauthorized = 13

type relatedPostDocument struct {
	ID         string               `bson:"_id"`
	Attributes model.PostAttributes `bson:"attributes"`
}

type RelatedPostRepository struct {
	collection *mongo.Collection
	log        *slog.Logger
	now        func() time.Time
}

func NewRelatedPostRepository(db *mongo.Database, log *slog.Logger) *RelatedPostRepository {
	return &RelatedPostRepository{
		collection: db.Collection(repository.Collection),
		log:        log,
		now:        time.Now,
	}
}

func (r *RelatedPostRepository) Create(ctx context.Context, post model.Post) (model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.SingleItemTimeout)
	defer cancel()

	post = repository.AssignID(post, r.now())
	attributes, err := document.FromValue(post.Attributes)
	if err != nil {
		return model.Post{}, errorlib.ErrUnknownStorage.New("create").Wrap(err)
	}

	key := repository.Key(post.ID)
	_, err = r.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		bson.M{"_id": key, "attributes": attributes},
		options.Replace().SetUpsert(true))
	if err != nil {
		r.log.Error("Failed to write related post", slog.Int64("id", post.ID), slog.String("error", err.Error()))
		return model.Post{}, classify("create", err)
	}
	return post, nil
}

func (r *RelatedPostRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.ScanTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, classify("list", err)
	}
	defer cursor.Close(ctx)

	var docs []relatedPostDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, classify("list", err)
	}

	posts := make([]model.Post, 0, len(docs))
	for _, doc := range docs {
		post, err := doc.toPost()
		if err != nil {
			r.log.Warn("Skipping related post with non-numeric key", slog.String("key", doc.ID))
			continue
		}
		posts = append(posts, post)
	}
	repository.SortNewestFirst(posts)
	return posts, nil
}

func (r *RelatedPostRepository) GetByID(ctx context.Context, id int64) (model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.SingleItemTimeout)
	defer cancel()

	var doc relatedPostDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": repository.Key(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.log.Debug("Related post not found by id", slog.Int64("id", id))
		return model.Post{}, errorlib.ErrRelatedPostNotFound.New(id)
	}
	if err != nil {
		return model.Post{}, classify("get", err)
	}
	return doc.toPost()
}

func (d relatedPostDocument) toPost() (model.Post, error) {
	id, err := strconv.ParseInt(d.ID, 10, 64)
	if err != nil {
		return model.Post{}, errorlib.ErrUnknownStorage.New("decode").Wrap(fmt.Errorf("invalid key %q: %w", d.ID, err))
	}
	return model.Post{ID: id, Attributes: d.Attributes}, nil
}

func classify(operation string, err error) error {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorCode(codeUnauthorized) {
		return errorlib.ErrStoragePermissionDenied.New(operation).Wrap(err)
	}
	return errorlib.ErrUnknownStorage.New(operation).Wrap(err)
}
