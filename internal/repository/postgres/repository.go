package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/klass-lk/postgateway/internal/document"
	"github.com/klass-lk/postgateway/internal/errorlib"
	"github.com/klass-lk/postgateway/internal/model"
	"github.com/klass-lk/postgateway/internal/repository"
)

const (
	tableName = "related_posts"

	// insufficient_privilege
	codeInsufficientPrivilege = "42501"
)

const createTableQuery = `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
	id         BIGINT PRIMARY KEY,
	attributes JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type RelatedPostRepository struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// NewRelatedPostRepository makes sure the related_posts table exists.
func NewRelatedPostRepository(ctx context.Context, db *sql.DB, log *slog.Logger) (*RelatedPostRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.ScanTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, createTableQuery); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return &RelatedPostRepository{db: db, log: log, now: time.Now}, nil
}

func (r *RelatedPostRepository) Create(ctx context.Context, post model.Post) (model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.SingleItemTimeout)
	defer cancel()

	now := r.now()
	post = repository.AssignID(post, now)
	attributes, err := document.FromValue(post.Attributes)
	if err != nil {
		return model.Post{}, errorlib.ErrUnknownStorage.New("create").Wrap(err)
	}
	raw, err := json.Marshal(attributes)
	if err != nil {
		return model.Post{}, errorlib.ErrUnknownStorage.New("create").Wrap(err)
	}

	query := `INSERT INTO ` + tableName + ` (id, attributes, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET attributes = EXCLUDED.attributes, created_at = EXCLUDED.created_at`
	if _, err := r.db.ExecContext(ctx, query, post.ID, raw, now.UTC()); err != nil {
		r.log.Error("Failed to write related post", slog.Int64("id", post.ID), slog.String("error", err.Error()))
		return model.Post{}, classify("create", err)
	}
	return post, nil
}

func (r *RelatedPostRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.ScanTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, attributes FROM `+tableName+` ORDER BY id DESC`)
	if err != nil {
		return nil, classify("list", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, errorlib.ErrUnknownStorage.New("list").Wrap(err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list", err)
	}
	return posts, nil
}

func (r *RelatedPostRepository) GetByID(ctx context.Context, id int64) (model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.SingleItemTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT id, attributes FROM `+tableName+` WHERE id = $1`, id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		r.log.Debug("Related post not found by id", slog.Int64("id", id))
		return model.Post{}, errorlib.ErrRelatedPostNotFound.New(id)
	}
	if err != nil {
		return model.Post{}, classify("get", err)
	}
	return post, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (model.Post, error) {
	var (
		post model.Post
		raw  []byte
	)
	if err := s.Scan(&post.ID, &raw); err != nil {
		return model.Post{}, err
	}
	if err := json.Unmarshal(raw, &post.Attributes); err != nil {
		return model.Post{}, err
	}
	return post, nil
}

func classify(operation string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeInsufficientPrivilege {
		return errorlib.ErrStoragePermissionDenied.New(operation).Wrap(err)
	}
	return errorlib.ErrUnknownStorage.New(operation).Wrap(err)
}
