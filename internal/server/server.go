package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Runtime string

const (
	RuntimeLambda Runtime = "lambda"
	RuntimeHTTP   Runtime = "http"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	engine            *gin.Engine
	runtime           Runtime
	log               *slog.Logger
	handlerMiddleware []func(http.Handler) http.Handler
}

// New returns a gin engine with recovery, request ids and access logging installed.
func New(runtime Runtime, log *slog.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), AccessLog(log))

	return &Server{
		engine:  engine,
		runtime: runtime,
		log:     log,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Use(middleware ...gin.HandlerFunc) *Server {
	s.engine.Use(middleware...)
	return s
}

// WrapHandler installs net/http middleware around the whole engine, e.g. tracing.
func (s *Server) WrapHandler(mw func(http.Handler) http.Handler) *Server {
	if mw != nil {
		s.handlerMiddleware = append(s.handlerMiddleware, mw)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.engine
	for i := len(s.handlerMiddleware) - 1; i >= 0; i-- {
		h = s.handlerMiddleware[i](h)
	}
	return h
}

// Start serves until ctx is cancelled. In the lambda runtime it hands control to the Lambda loop.
func (s *Server) Start(ctx context.Context, port int) error {
	if s.runtime == RuntimeLambda {
		return s.startLambda()
	}
	return s.startHTTP(ctx, port)
}

func (s *Server) startHTTP(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", slog.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) startLambda() error {
	s.log.Info("Starting Lambda handler")
	lambda.Start(s.LambdaHandler())
	return nil
}

// LambdaHandler proxies API Gateway events through Handler, so wrapped middleware runs too.
func (s *Server) LambdaHandler() func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	adapter := httpadapter.New(s.Handler())
	return adapter.ProxyWithContext
}

func (s *Server) WithCORS(config *cors.Config) *Server {
	s.engine.Use(cors.New(*config))
	return s
}

// DefaultCORS reflects any request origin and allows credentials.
func (s *Server) DefaultCORS() *Server {
	config := baseCORS()
	config.AllowOriginFunc = func(string) bool { return true }
	return s.WithCORS(&config)
}

// CORSForOrigins falls back to DefaultCORS when origins is empty.
func (s *Server) CORSForOrigins(origins []string) *Server {
	if len(origins) == 0 {
		return s.DefaultCORS()
	}
	config := baseCORS()
	config.AllowOrigins = origins
	return s.WithCORS(&config)
}

func baseCORS() cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", RequestIDHeader}
	config.ExposeHeaders = []string{RequestIDHeader}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour
	return config
}
