package metrics

import "time"

// HTTPMetrics provides observability for the static HTTP adapter.
//
// The adapter, the connection handler and the worker pool all report through
// this interface. If no collector is provided, NewNoopHTTPMetrics is used and
// every call is free.
//
// Example usage:
//
//	m := prometheus.NewHTTPMetrics() // from pkg/metrics/prometheus
//	adapter := httpd.New(config, m)
type HTTPMetrics interface {
	// RecordRequest records a finished request with its response status
	// (200, 404, 500) and how long the handler took. Connections closed
	// before a request line was read use status 0.
	RecordRequest(status int, duration time.Duration)

	// RecordBytesSent records response body bytes written to a client.
	RecordBytesSent(bytes int64)

	// SetActiveConnections updates the number of connections being handled.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the closed connections counter.
	RecordConnectionClosed()

	// RecordAcceptError increments the failed accept counter.
	RecordAcceptError()

	// SetQueueDepth reports how many tasks are waiting for a worker.
	SetQueueDepth(depth int)
}

// NewNoopHTTPMetrics returns an HTTPMetrics that discards everything.
func NewNoopHTTPMetrics() HTTPMetrics {
	return noopHTTPMetrics{}
}

type noopHTTPMetrics struct{}

func (noopHTTPMetrics) RecordRequest(status int, duration time.Duration) {}
func (noopHTTPMetrics) RecordBytesSent(bytes int64)                      {}
func (noopHTTPMetrics) SetActiveConnections(count int32)                 {}
func (noopHTTPMetrics) RecordConnectionAccepted()                        {}
func (noopHTTPMetrics) RecordConnectionClosed()                          {}
func (noopHTTPMetrics) RecordAcceptError()                               {}
func (noopHTTPMetrics) SetQueueDepth(depth int)                          {}
