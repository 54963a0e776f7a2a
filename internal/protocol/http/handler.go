package http

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/staticd/internal/logger"
	"github.com/marmos91/staticd/pkg/content"
	"github.com/marmos91/staticd/pkg/metrics"
)

// DefaultReadBufferSize is the size of the request buffer. The last byte is
// kept free, so a single read takes at most DefaultReadBufferSize-1 bytes.
const DefaultReadBufferSize = 4096

// Handler serves one static file request per connection. It is shared by
// every dispatcher and holds no per-connection state, so Handle may be called
// from any number of goroutines at once.
type Handler struct {
	root       *content.Root
	bufferSize int
	metrics    metrics.HTTPMetrics

	active atomic.Int32
}

// NewHandler creates a handler serving files from root.
//
// bufferSize <= 0 uses DefaultReadBufferSize. A nil collector disables metrics.
//
// Panics if root is nil.
func NewHandler(root *content.Root, bufferSize int, m metrics.HTTPMetrics) *Handler {
	if root == nil {
		panic("content root cannot be nil")
	}
	if bufferSize <= 0 {
		bufferSize = DefaultReadBufferSize
	}
	if m == nil {
		m = metrics.NewNoopHTTPMetrics()
	}

	return &Handler{
		root:       root,
		bufferSize: bufferSize,
		metrics:    m,
	}
}

// Handle reads one request from conn, answers it and closes conn.
//
// The connection is closed exactly once, on every return path, and a panic
// while serving is logged instead of taking the process down.
func (h *Handler) Handle(conn net.Conn) {
	start := time.Now()
	status := StatusNone
	remote := remoteAddr(conn)

	h.metrics.SetActiveConnections(h.active.Add(1))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in connection handler from %s: %v", remote, r)
		}
		_ = conn.Close()

		h.metrics.RecordConnectionClosed()
		h.metrics.SetActiveConnections(h.active.Add(-1))
		h.metrics.RecordRequest(status, time.Since(start))
	}()

	buf := readBuffers.Get(h.bufferSize)
	defer readBuffers.Put(buf)

	raw, err := ReadRequest(conn, buf[:readLimit(len(buf))])
	if err != nil {
		logger.Debug("Empty request from %s: %v", remote, err)
		return
	}

	line := ParseRequestLine(raw)
	path := ResolvePath(line.Path)

	var requestID string
	if logger.Enabled(logger.LevelDebug) {
		requestID = uuid.NewString()
		logger.Debug("[%s] %s %s %q -> %s", requestID, remote, line.Method, line.Path, path)
	}

	result := ServeFile(conn, h.root, path)
	status = result.Status
	h.metrics.RecordBytesSent(result.BytesSent)

	if result.Status == StatusOK && result.Err != nil {
		logger.Warn("Transfer of %s to %s aborted after %d/%d bytes: %v",
			path, remote, result.BytesSent, result.ContentLength, result.Err)
	}

	if requestID != "" {
		logger.Debug("[%s] %d %s (%d bytes in %v)",
			requestID, result.Status, path, result.BytesSent, time.Since(start))
	}
}

// Active returns the number of connections currently inside Handle.
func (h *Handler) Active() int32 {
	return h.active.Load()
}

// readLimit is how many bytes of a size-byte buffer one read may fill.
func readLimit(size int) int {
	if size <= 1 {
		return 1
	}
	return size - 1
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
