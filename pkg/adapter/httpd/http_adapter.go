package httpd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/staticd/internal/logger"
	protohttp "github.com/marmos91/staticd/internal/protocol/http"
	"github.com/marmos91/staticd/internal/ratelimiter"
	"github.com/marmos91/staticd/pkg/content"
	"github.com/marmos91/staticd/pkg/dispatch"
	"github.com/marmos91/staticd/pkg/metrics"
)

// HTTPAdapter implements the adapter.Adapter interface for the static file
// HTTP server.
//
// The adapter owns the listening socket and the accept loop. Accepted
// connections are handed to a dispatch.Dispatcher (inline or pooled) which
// runs the shared connection handler.
//
// Shutdown flow:
//  1. Context cancelled, Close() or Stop() called
//  2. Listener closed (Accept fails, the loop exits)
//  3. Dispatcher drained: every connection already accepted is served
//  4. Run returns nil and Stop's waiters are released
//
// Thread safety:
// All methods are safe for concurrent use. Close uses sync.Once, so it may be
// called any number of times, before Start or after Run.
type HTTPAdapter struct {
	config  HTTPConfig
	metrics metrics.HTTPMetrics
	root    *content.Root
	limiter *ratelimiter.RateLimiter

	// mu guards listener, handler and dispatcher, which Start sets once.
	mu         sync.Mutex
	listener   net.Listener
	handler    *protohttp.Handler
	dispatcher dispatch.Dispatcher

	running atomic.Bool

	shutdownOnce sync.Once
	shutdown     chan struct{}

	// done is closed when Run has drained the dispatcher and returned.
	done chan struct{}
}

// HTTPConfig holds configuration parameters for the HTTP adapter.
//
// Default values (applied by New if zero):
//   - Backlog: 100
//   - Dispatcher: pooled
//   - Workers: 8 (pooled only)
//   - ReadBufferSize: 4096
//
// Port 0 asks the kernel for an ephemeral port; Port() reports the one bound.
type HTTPConfig struct {
	// Enabled controls whether the HTTP adapter is active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the TCP port to listen on. 0 picks an ephemeral port.
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// Backlog is the accept queue length passed to listen(2).
	Backlog int `mapstructure:"backlog" validate:"min=0" yaml:"backlog"`

	// Dispatcher selects the concurrency policy: "inline" handles each
	// connection on the accept goroutine, "pooled" hands it to a worker.
	Dispatcher string `mapstructure:"dispatcher" validate:"omitempty,oneof=inline pooled" yaml:"dispatcher"`

	// Workers is the size of the worker pool. Pooled only.
	Workers int `mapstructure:"workers" validate:"min=0" yaml:"workers"`

	// QueueSize bounds the pending connection queue. 0 means unbounded:
	// the accept loop never blocks on a busy pool.
	QueueSize int `mapstructure:"queue_size" validate:"min=0" yaml:"queue_size"`

	// ReadBufferSize is the request buffer size. The single read each
	// request gets fills at most ReadBufferSize-1 bytes; the rest is dropped.
	ReadBufferSize int `mapstructure:"read_buffer_size" validate:"min=0" yaml:"read_buffer_size"`

	// AcceptRate limits accepted connections per second. 0 disables limiting.
	AcceptRate uint `mapstructure:"accept_rate" yaml:"accept_rate"`

	// AcceptBurst is the token bucket size for AcceptRate. 0 means 1.
	AcceptBurst uint `mapstructure:"accept_burst" yaml:"accept_burst"`

	// MetricsLogInterval is how often active connection and queue counts are
	// logged at INFO. 0 disables the log line.
	MetricsLogInterval time.Duration `mapstructure:"metrics_log_interval" validate:"min=0" yaml:"metrics_log_interval"`
}

const (
	DefaultBacklog = 100
	DefaultWorkers = 8
)

// applyDefaults fills in zero values with sensible defaults.
func (c *HTTPConfig) applyDefaults() {
	// Note: Enabled and Port defaults are handled in pkg/config/defaults.go
	// so that explicit values from configuration files survive.

	if c.Backlog <= 0 {
		c.Backlog = DefaultBacklog
	}
	if c.Dispatcher == "" {
		c.Dispatcher = dispatch.KindPooled
	}
	if c.Dispatcher == dispatch.KindPooled && c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = protohttp.DefaultReadBufferSize
	}
}

// validate checks that the configuration is usable.
func (c *HTTPConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 0-65535", c.Port)
	}
	if c.Backlog < 0 {
		return fmt.Errorf("invalid backlog %d: must be >= 0", c.Backlog)
	}
	switch c.Dispatcher {
	case dispatch.KindInline, dispatch.KindPooled:
	default:
		return fmt.Errorf("invalid dispatcher %q: must be %s or %s", c.Dispatcher, dispatch.KindInline, dispatch.KindPooled)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d: must be >= 0", c.Workers)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("invalid queue size %d: must be >= 0", c.QueueSize)
	}
	if c.MetricsLogInterval < 0 {
		return fmt.Errorf("invalid metrics log interval %v: must be >= 0", c.MetricsLogInterval)
	}
	return nil
}

// New creates a new HTTPAdapter with the specified configuration.
//
// The adapter is created in a stopped state. Call SetContent() to inject the
// content root, then Serve() (or Start() followed by Run()).
//
// Panics if config validation fails.
func New(config HTTPConfig, httpMetrics metrics.HTTPMetrics) *HTTPAdapter {
	config.applyDefaults()

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("invalid HTTP config: %v", err))
	}

	if httpMetrics == nil {
		httpMetrics = metrics.NewNoopHTTPMetrics()
	}

	limiter := ratelimiter.New(config.AcceptRate, config.AcceptBurst)
	if limiter != nil {
		logger.Debug("HTTP accept rate limit: %d/s (burst %d)", config.AcceptRate, config.AcceptBurst)
	}

	return &HTTPAdapter{
		config:   config,
		metrics:  httpMetrics,
		limiter:  limiter,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// SetContent injects the content root. Called once before Start or Serve.
//
// Panics if root is nil.
func (s *HTTPAdapter) SetContent(root *content.Root) {
	if root == nil {
		panic("content root cannot be nil")
	}
	s.root = root
	logger.Debug("HTTP content root configured: %s", root.Dir())
}

// Start binds the listening socket and builds the dispatcher.
//
// Failures are fatal for the adapter: a *StartError names the failing stage
// (socket, bind or listen).
func (s *HTTPAdapter) Start() error {
	if s.root == nil {
		return ErrNoContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return errors.New("http listener already started")
	}

	ln, err := listen(s.config.Port, s.config.Backlog)
	if err != nil {
		return err
	}

	handler := protohttp.NewHandler(s.root, s.config.ReadBufferSize, s.metrics)
	d, err := dispatch.New(handler, dispatch.Options{
		Kind:      s.config.Dispatcher,
		Workers:   s.config.Workers,
		QueueSize: s.config.QueueSize,
		Metrics:   s.metrics,
	})
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("create dispatcher: %w", err)
	}

	s.listener = ln
	s.handler = handler
	s.dispatcher = d

	logger.Info("HTTP server listening on port %d", s.boundPort())
	logger.Debug("HTTP config: dispatcher=%s workers=%d queue_size=%d backlog=%d read_buffer=%d",
		s.config.Dispatcher, s.config.Workers, s.config.QueueSize, s.config.Backlog, s.config.ReadBufferSize)
	return nil
}

// Run accepts connections until ctx is cancelled or Close is called, then
// drains the dispatcher and returns nil.
//
// Accept errors are logged and counted; the loop keeps going. A connection
// the dispatcher refuses is closed here.
func (s *HTTPAdapter) Run(ctx context.Context) error {
	s.mu.Lock()
	ln, d := s.listener, s.dispatcher
	s.mu.Unlock()

	if ln == nil {
		return ErrNotStarted
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)

	// Monitor context cancellation so the accept loop only has to watch
	// for listener errors.
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("HTTP shutdown signal received: %v", ctx.Err())
			_ = s.Close()
		case <-s.shutdown:
		}
	}()

	if s.config.MetricsLogInterval > 0 {
		go s.logMetrics(ctx, d)
	}

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				break
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if s.isShuttingDown() {
				break
			}
			s.metrics.RecordAcceptError()
			logger.Warn("Error accepting HTTP connection: %v", err)
			continue
		}

		s.metrics.RecordConnectionAccepted()
		logger.Debug("HTTP connection accepted from %s", conn.RemoteAddr())

		if err := d.Dispatch(conn); err != nil {
			logger.Warn("Dropping HTTP connection from %s: %v", conn.RemoteAddr(), err)
			_ = conn.Close()
		}
	}

	logger.Info("HTTP graceful shutdown: draining %s dispatcher", d.Name())
	d.Shutdown()
	logger.Info("HTTP graceful shutdown complete")
	return nil
}

// logMetrics logs load counters every MetricsLogInterval until the context
// is cancelled or the adapter shuts down.
func (s *HTTPAdapter) logMetrics(ctx context.Context, d dispatch.Dispatcher) {
	ticker := time.NewTicker(s.config.MetricsLogInterval)
	defer ticker.Stop()

	pending, _ := d.(interface{ Pending() int })

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case <-ticker.C:
			queued := 0
			if pending != nil {
				queued = pending.Pending()
			}
			logger.Info("HTTP metrics: active_connections=%d queued=%d", s.ActiveConnections(), queued)
		}
	}
}

// Close closes the listening socket, which makes Run return after draining.
// Safe to call multiple times, and before Start.
func (s *HTTPAdapter) Close() error {
	var err error
	s.shutdownOnce.Do(func() {
		logger.Debug("HTTP shutdown initiated")
		close(s.shutdown)

		s.mu.Lock()
		ln := s.listener
		s.mu.Unlock()

		if ln != nil {
			err = ln.Close()
		}
	})
	return err
}

func (s *HTTPAdapter) isShuttingDown() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}

// Serve starts the listener if needed and runs the accept loop until ctx is
// cancelled.
func (s *HTTPAdapter) Serve(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil
	s.mu.Unlock()

	if !started {
		if err := s.Start(); err != nil {
			return err
		}
	}
	return s.Run(ctx)
}

// Stop closes the listener and waits until every accepted connection has been
// served, or until ctx is done.
func (s *HTTPAdapter) Stop(ctx context.Context) error {
	if err := s.Close(); err != nil {
		logger.Debug("Error closing HTTP listener: %v", err)
	}

	if !s.running.Load() {
		// Run never started: nothing was accepted, but a started dispatcher
		// still owns worker goroutines.
		s.mu.Lock()
		d := s.dispatcher
		s.mu.Unlock()
		if d != nil {
			d.Shutdown()
		}
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		logger.Warn("HTTP shutdown context cancelled with %d connection(s) still active: %v",
			s.ActiveConnections(), ctx.Err())
		return ctx.Err()
	}
}

// ActiveConnections returns the number of connections being handled.
func (s *HTTPAdapter) ActiveConnections() int32 {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()

	if h == nil {
		return 0
	}
	return h.Active()
}

// Port returns the bound port once started, the configured port before.
func (s *HTTPAdapter) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundPort()
}

func (s *HTTPAdapter) boundPort() int {
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.config.Port
}

// Protocol returns "HTTP" as the protocol identifier.
func (s *HTTPAdapter) Protocol() string {
	return "HTTP"
}
