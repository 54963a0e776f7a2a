package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_RecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newHTTPMetrics(reg)

	m.RecordRequest(200, 3*time.Millisecond)
	m.RecordRequest(200, 1*time.Millisecond)
	m.RecordRequest(404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("500")))
}

func TestHTTPMetrics_Gauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newHTTPMetrics(reg)

	m.SetActiveConnections(3)
	m.SetQueueDepth(7)
	m.RecordConnectionAccepted()
	m.RecordConnectionClosed()
	m.RecordAcceptError()
	m.RecordBytesSent(1024)
	m.RecordBytesSent(-1)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeConnections))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.queueDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionsAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionsClosed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.acceptErrors))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.bytesSent))
}

func TestHTTPMetrics_RegisteredNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newHTTPMetrics(reg)
	m.RecordRequest(200, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["staticd_http_requests_total"])
	assert.True(t, names["staticd_http_request_duration_seconds"])
	assert.True(t, names["staticd_http_active_connections"])
}
