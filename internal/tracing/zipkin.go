package tracing

import (
	"fmt"
	"net/http"

	"github.com/openzipkin/zipkin-go"
	zipkinhttp "github.com/openzipkin/zipkin-go/middleware/http"
	"github.com/openzipkin/zipkin-go/reporter"
	httpreporter "github.com/openzipkin/zipkin-go/reporter/http"
)

type Tracer struct {
	reporter   reporter.Reporter
	client     *zipkinhttp.Client
	middleware func(http.Handler) http.Handler
}

// New reports spans to the collector at address (host:port). base is the client the traced
// client wraps, so timeouts and transport tuning survive.
func New(address, serviceName string, port int, base *http.Client) (*Tracer, error) {
	rep := httpreporter.NewReporter("http://" + address + "/api/v2/spans")

	endpoint, err := zipkin.NewEndpoint(serviceName, fmt.Sprintf("localhost:%d", port))
	if err != nil {
		_ = rep.Close()
		return nil, fmt.Errorf("unable to create local endpoint: %w", err)
	}

	tracer, err := zipkin.NewTracer(rep, zipkin.WithLocalEndpoint(endpoint))
	if err != nil {
		_ = rep.Close()
		return nil, fmt.Errorf("unable to create tracer: %w", err)
	}

	client, err := zipkinhttp.NewClient(tracer, zipkinhttp.WithClient(base), zipkinhttp.ClientTrace(true))
	if err != nil {
		_ = rep.Close()
		return nil, fmt.Errorf("unable to create client: %w", err)
	}

	return &Tracer{
		reporter:   rep,
		client:     client,
		middleware: zipkinhttp.NewServerMiddleware(tracer, zipkinhttp.TagResponseSize(true)),
	}, nil
}

func (t *Tracer) Client() *zipkinhttp.Client {
	return t.client
}

func (t *Tracer) Middleware() func(http.Handler) http.Handler {
	return t.middleware
}

// Close flushes pending spans.
func (t *Tracer) Close() error {
	return t.reporter.Close()
}
