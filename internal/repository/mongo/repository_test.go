package mongo

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/klass-lk/postgateway/internal/errorlib"
	"github.com/klass-lk/postgateway/internal/logger"
	"github.com/klass-lk/postgateway/internal/model"
	"github.com/klass-lk/postgateway/internal/repository"
)

func setupTestContainer(t *testing.T) (testcontainers.Container, *Config, error) {
	ctx := context.Background()

	mongoPort := "27017/tcp"
	natPort := nat.Port(mongoPort)

	req := testcontainers.ContainerRequest{
		Image:        "mongo:6",
		ExposedPorts: []string{mongoPort},
		WaitingFor: wait.ForAll(
			wait.ForLog("Waiting for connections"),
			wait.ForListeningPort(natPort),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start container: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, natPort)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get container external port: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get container host: %v", err)
	}

	config := NewMongoConfig().WithHost(host, mappedPort.Int()).WithDatabase("test_db")
	return container, config, nil
}

func samplePost(id int64, title string) model.Post {
	return model.Post{
		ID: id,
		Attributes: model.PostAttributes{
			Title:       title,
			Topic:       "Diversity & Inclusion",
			Author:      "John Doe",
			ReadTime:    10,
			Body:        "body",
			CreatedAt:   "2024-10-15T12:00:00.000Z",
			UpdatedAt:   "2024-10-15T12:00:00.000Z",
			PublishedAt: "2024-10-15T12:00:00.000Z",
			CoverImg: model.CoverImg{Data: &model.CoverImgData{
				ID:         id,
				Attributes: model.CoverImgAttributes{Name: "custom-related-cover.png", URL: "https://x/y.png"},
			}},
		},
	}
}

func TestRelatedPostRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping MongoDB integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	container, config, err := setupTestContainer(t)
	require.NoError(t, err)
	defer container.Terminate(context.Background())

	db, err := config.Connect(context.Background())
	require.NoError(t, err)
	defer db.Client().Disconnect(context.Background())

	repo := NewRelatedPostRepository(db, logger.Discard())
	ctx := context.Background()

	t.Run("Create and GetByID round trip", func(t *testing.T) {
		in := samplePost(1729000000001, "Round trip")
		created, err := repo.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, in, created)

		got, err := repo.GetByID(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, in.Attributes, got.Attributes)
		assert.Equal(t, in.ID, got.ID)
	})

	t.Run("Document shape", func(t *testing.T) {
		var raw bson.M
		err := db.Collection(repository.Collection).FindOne(ctx, bson.M{"_id": "1729000000001"}).Decode(&raw)
		require.NoError(t, err)
		attrs := raw["attributes"].(bson.M)
		assert.Nil(t, attrs["subtitle"])
		assert.Contains(t, attrs, "subtitle")
	})

	t.Run("GetByID missing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 404)
		assert.True(t, errorlib.Is(err, errorlib.ErrNotFound))
	})

	t.Run("ListAll orders by id descending", func(t *testing.T) {
		_, err := db.Collection(repository.Collection).DeleteMany(ctx, bson.M{})
		require.NoError(t, err)
		for _, id := range []int64{3, 1, 2} {
			_, err := repo.Create(ctx, samplePost(id, fmt.Sprintf("post %d", id)))
			require.NoError(t, err)
		}

		posts, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, []int64{3, 2, 1}, []int64{posts[0].ID, posts[1].ID, posts[2].ID})
	})
}
