package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/klass-lk/postgateway/internal/config"
	"github.com/klass-lk/postgateway/internal/controller"
	"github.com/klass-lk/postgateway/internal/logger"
	"github.com/klass-lk/postgateway/internal/metrics"
	"github.com/klass-lk/postgateway/internal/repository"
	"github.com/klass-lk/postgateway/internal/repository/dynamo"
	"github.com/klass-lk/postgateway/internal/repository/memory"
	"github.com/klass-lk/postgateway/internal/repository/mongo"
	"github.com/klass-lk/postgateway/internal/repository/postgres"
	"github.com/klass-lk/postgateway/internal/server"
	"github.com/klass-lk/postgateway/internal/service/post"
	"github.com/klass-lk/postgateway/internal/service/related"
	"github.com/klass-lk/postgateway/internal/storage"
	"github.com/klass-lk/postgateway/internal/tracing"
	"github.com/klass-lk/postgateway/internal/upstream"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	m := metrics.NewPrometheusProvider()

	var doer upstream.Doer = upstream.NewHTTPClient(cfg.Upstream.Timeout)
	var tracer *tracing.Tracer
	if cfg.Zipkin.Address != "" {
		var err error
		tracer, err = tracing.New(cfg.Zipkin.Address, cfg.Zipkin.ServiceName, cfg.Port, upstream.NewHTTPClient(cfg.Upstream.Timeout))
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer tracer.Close()
		doer = tracer.Client()
		log.Info("Zipkin tracing enabled", slog.String("address", cfg.Zipkin.Address))
	}
	client := upstream.NewClient(cfg.Upstream.BaseURL, doer, log, m)

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("related post store: %w", err)
	}
	defer closeStore()
	store = repository.WithMetrics(store, cfg.Store.Backend, m)

	files, err := openFileService(ctx, cfg, log, m)
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}

	resolver := post.NewResolver(client, store, log)
	relatedService := related.NewService(store, files, cfg.TemplatePath, log)

	srv := server.New(server.Runtime(cfg.Runtime), log).
		Use(metrics.GinMiddleware(m)).
		CORSForOrigins(cfg.CORS.AllowedOrigins)
	if tracer != nil {
		srv.WrapHandler(tracer.Middleware())
	}
	srv.RegisterControllers(controller.NewHealthController())
	srv.RegisterGroups(controller.APIGroup(
		controller.NewPostController(resolver, log),
		controller.NewRelatedPostController(relatedService, log),
	))

	log.Info("Post gateway configured",
		slog.String("env", cfg.Env),
		slog.String("runtime", cfg.Runtime),
		slog.String("store_backend", cfg.Store.Backend),
		slog.String("upstream", cfg.Upstream.BaseURL),
		slog.Bool("object_storage", files != nil))

	return srv.Start(ctx, cfg.Port)
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.Repository, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendMongo:
		mongoConfig := mongo.NewMongoConfig().
			WithURI(cfg.Mongo.URI).
			WithHost(cfg.Mongo.Host, cfg.Mongo.Port).
			WithCredentials(cfg.Mongo.User, cfg.Mongo.Password).
			WithDatabase(cfg.Mongo.Database)
		if cfg.Mongo.AuthSource != "" {
			mongoConfig.WithOption("authSource", cfg.Mongo.AuthSource)
		}
		db, err := mongoConfig.Connect(ctx)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				log.Warn("Failed to disconnect from MongoDB", slog.String("error", err.Error()))
			}
		}
		return mongo.NewRelatedPostRepository(db, log), closeFn, nil

	case config.BackendDynamoDB:
		client, err := dynamo.NewDynamoDBClient(ctx, cfg.AWS.Region, cfg.AWS.EndpointURL)
		if err != nil {
			return nil, noop, err
		}
		repo, err := dynamo.NewRelatedPostRepository(ctx, client,
			dynamo.NewDynamoDBConfig().
				WithTableName(cfg.DynamoDB.Table).
				WithSkipTableCreation(cfg.DynamoDB.SkipTableCreation),
			log)
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	case config.BackendPostgres:
		db, err := postgres.NewSQLConfig().
			WithHost(cfg.Postgres.Host, cfg.Postgres.Port).
			WithCredentials(cfg.Postgres.User, cfg.Postgres.Password).
			WithDatabase(cfg.Postgres.DB).
			WithSSLMode(cfg.Postgres.SSLMode).
			Connect(ctx)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				log.Warn("Failed to close PostgreSQL pool", slog.String("error", err.Error()))
			}
		}
		repo, err := postgres.NewRelatedPostRepository(ctx, db, log)
		if err != nil {
			closeFn()
			return nil, noop, err
		}
		return repo, closeFn, nil

	default:
		return memory.NewRelatedPostRepository(log), noop, nil
	}
}

// openFileService returns nil when no bucket is configured; inline images are then rejected.
func openFileService(ctx context.Context, cfg *config.Config, log *slog.Logger, m metrics.Provider) (storage.FileService, error) {
	if cfg.S3.Bucket == "" {
		log.Warn("S3_BUCKET is not set; inline cover images will be rejected")
		return nil, nil
	}
	client, err := storage.NewS3Client(ctx, cfg.AWS.Region, cfg.AWS.EndpointURL)
	if err != nil {
		return nil, err
	}
	return storage.NewS3FileService(client, cfg.S3.Bucket, cfg.S3.PublicBaseURL, log, m), nil
}
