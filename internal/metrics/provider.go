package metrics

import (
	"strconv"
	"time"
)

type Provider interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	IncrementUpstreamRequests(operation, outcome string)
	IncrementStoreOperations(backend, operation string, success bool)
	RecordStoreOperationDuration(backend, operation string, duration time.Duration)
	IncrementImageUploads(success bool)
}

type PrometheusProvider struct{}

func NewPrometheusProvider() *PrometheusProvider {
	return &PrometheusProvider{}
}

func (p *PrometheusProvider) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *PrometheusProvider) IncrementUpstreamRequests(operation, outcome string) {
	UpstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

func (p *PrometheusProvider) IncrementStoreOperations(backend, operation string, success bool) {
	RelatedStoreOperationsTotal.WithLabelValues(backend, operation, strconv.FormatBool(success)).Inc()
}

func (p *PrometheusProvider) RecordStoreOperationDuration(backend, operation string, duration time.Duration) {
	RelatedStoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

func (p *PrometheusProvider) IncrementImageUploads(success bool) {
	ImageUploadsTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// Noop discards every measurement.
type Noop struct{}

func (Noop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Noop) IncrementUpstreamRequests(string, string) {}
func (Noop) IncrementStoreOperations(string, string, bool) {}
func (Noop) RecordStoreOperationDuration(string, string, time.Duration) {}
func (Noop) IncrementImageUploads(bool) {}
