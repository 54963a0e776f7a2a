package prometheus

import (
	"strconv"
	"time"

	"github.com/marmos91/staticd/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// httpMetrics is the Prometheus implementation of metrics.HTTPMetrics.
type httpMetrics struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	bytesSent           prometheus.Counter
	activeConnections   prometheus.Gauge
	connectionsAccepted prometheus.Counter
	connectionsClosed   prometheus.Counter
	acceptErrors        prometheus.Counter
	queueDepth          prometheus.Gauge
}

// NewHTTPMetrics creates a Prometheus-backed HTTPMetrics registered on the
// global registry.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewHTTPMetrics() metrics.HTTPMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopHTTPMetrics()
	}
	return newHTTPMetrics(metrics.GetRegistry())
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	return &httpMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "staticd_http_requests_total",
				Help: "Total number of HTTP requests by response status",
			},
			[]string{"status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "staticd_http_request_duration_seconds",
				Help: "Time spent handling a connection, from first read to close",
				Buckets: []float64{
					0.0005, // 500us
					0.001,  // 1ms
					0.005,  // 5ms
					0.025,  // 25ms
					0.1,    // 100ms
					0.5,    // 500ms
					2.5,    // 2.5s
					10.0,   // 10s
				},
			},
			[]string{"status"},
		),
		bytesSent: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "staticd_http_body_bytes_sent_total",
				Help: "Total response body bytes written to clients",
			},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "staticd_http_active_connections",
				Help: "Current number of connections being handled",
			},
		),
		connectionsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "staticd_http_connections_accepted_total",
				Help: "Total number of connections accepted",
			},
		),
		connectionsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "staticd_http_connections_closed_total",
				Help: "Total number of connections closed",
			},
		),
		acceptErrors: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "staticd_http_accept_errors_total",
				Help: "Total number of failed accept calls",
			},
		),
		queueDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "staticd_http_queue_depth",
				Help: "Connections queued and waiting for a worker",
			},
		),
	}
}

func (m *httpMetrics) RecordRequest(status int, duration time.Duration) {
	label := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(label).Inc()
	m.requestDuration.WithLabelValues(label).Observe(duration.Seconds())
}

func (m *httpMetrics) RecordBytesSent(bytes int64) {
	if bytes > 0 {
		m.bytesSent.Add(float64(bytes))
	}
}

func (m *httpMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *httpMetrics) RecordConnectionAccepted() {
	m.connectionsAccepted.Inc()
}

func (m *httpMetrics) RecordConnectionClosed() {
	m.connectionsClosed.Inc()
}

func (m *httpMetrics) RecordAcceptError() {
	m.acceptErrors.Inc()
}

func (m *httpMetrics) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}
