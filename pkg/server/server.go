package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/staticd/internal/logger"
	"github.com/marmos91/staticd/pkg/adapter"
	"github.com/marmos91/staticd/pkg/content"
)

// ErrAlreadyServed is returned by a second call to Serve.
var ErrAlreadyServed = errors.New("server already served")

// DefaultStopTimeout bounds how long stopAllAdapters waits on adapter Stop
// calls. Adapters keep draining after it expires; Serve still waits for them.
const DefaultStopTimeout = 30 * time.Second

// StaticServer manages the lifecycle of protocol adapters that serve files
// from one shared content root.
//
// Lifecycle:
//  1. Creation: New() with the content root
//  2. Registration: AddAdapter() for each listener
//  3. Startup: Serve() starts all adapters concurrently
//  4. Shutdown: context cancellation or the first adapter failure stops
//     every adapter in reverse registration order
//
// Thread safety:
// StaticServer is safe for concurrent use. AddAdapter() may be called
// concurrently with other methods. Serve() runs at most once.
//
// Example usage:
//
//	srv := server.New(root)
//	if err := srv.AddAdapter(httpd.New(httpConfig, httpMetrics)); err != nil {
//	    return err
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    return err
//	}
type StaticServer struct {
	root        *content.Root
	stopTimeout time.Duration

	// mu protects adapters and served.
	mu       sync.RWMutex
	adapters []adapter.Adapter
	served   bool
}

// New creates a StaticServer serving from root.
//
// Panics if root is nil.
func New(root *content.Root) *StaticServer {
	if root == nil {
		panic("content root cannot be nil")
	}

	return &StaticServer{
		root:        root,
		stopTimeout: DefaultStopTimeout,
		adapters:    make([]adapter.Adapter, 0, 2),
	}
}

// SetStopTimeout overrides DefaultStopTimeout. Call before Serve.
func (s *StaticServer) SetStopTimeout(d time.Duration) {
	if d > 0 {
		s.stopTimeout = d
	}
}

// AddAdapter registers a protocol adapter and injects the content root.
//
// Duplicate protocols and port conflicts are rejected. Port 0 (ephemeral) never
// conflicts.
//
// Panics if a is nil or Serve() has already been called.
func (s *StaticServer) AddAdapter(a adapter.Adapter) error {
	if a == nil {
		panic("adapter cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.served {
		panic("cannot add adapter after Serve() has been called")
	}

	protocol := a.Protocol()
	port := a.Port()

	for _, existing := range s.adapters {
		if existing.Protocol() == protocol {
			return fmt.Errorf("adapter for protocol %s already registered", protocol)
		}
		if port != 0 && existing.Port() == port {
			return fmt.Errorf("port %d already in use by %s adapter", port, existing.Protocol())
		}
	}

	a.SetContent(s.root)
	s.adapters = append(s.adapters, a)

	logger.Info("Registered %s adapter on port %d", protocol, port)
	return nil
}

// Serve starts all registered adapters and blocks until the context is
// cancelled or an adapter fails.
//
// Returns:
//   - ctx.Err() after a shutdown triggered by the context
//   - the wrapped adapter error if an adapter failed
//   - ErrAlreadyServed on a second call
func (s *StaticServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.served {
		s.mu.Unlock()
		return ErrAlreadyServed
	}
	s.served = true

	if len(s.adapters) == 0 {
		s.mu.Unlock()
		return errors.New("no adapters registered; call AddAdapter() before Serve()")
	}
	adapters := make([]adapter.Adapter, len(s.adapters))
	copy(adapters, s.adapters)
	s.mu.Unlock()

	logger.Info("Starting staticd with %d adapter(s), content root %s", len(adapters), s.root.Dir())

	// Buffered so failing adapters never block on report.
	errChan := make(chan adapterError, len(adapters))

	var wg sync.WaitGroup
	for _, adp := range adapters {
		wg.Add(1)
		go func(a adapter.Adapter) {
			defer wg.Done()

			protocol := a.Protocol()
			logger.Debug("Starting %s adapter", protocol)

			if err := a.Serve(ctx); err != nil {
				if !errors.Is(err, context.Canceled) && ctx.Err() == nil {
					logger.Error("%s adapter failed: %v", protocol, err)
					errChan <- adapterError{protocol: protocol, err: err}
				} else {
					logger.Debug("%s adapter stopped gracefully", protocol)
				}
			} else {
				logger.Info("%s adapter stopped", protocol)
			}
		}(adp)
	}

	var shutdownErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received (reason: %v)", ctx.Err())
		shutdownErr = ctx.Err()

	case adapterErr := <-errChan:
		logger.Error("Adapter %s failed: %v - initiating shutdown of all adapters",
			adapterErr.protocol, adapterErr.err)
		shutdownErr = fmt.Errorf("%s adapter error: %w", adapterErr.protocol, adapterErr.err)
	}
	s.stopAllAdapters(adapters)

	logger.Debug("Waiting for all adapters to complete shutdown")
	wg.Wait()

	logger.Info("staticd stopped gracefully")
	return shutdownErr
}

type adapterError struct {
	protocol string
	err      error
}

// stopAllAdapters stops adapters in reverse registration order. Errors are
// logged and do not prevent the remaining adapters from stopping.
func (s *StaticServer) stopAllAdapters(adapters []adapter.Adapter) {
	ctx, cancel := context.WithTimeout(context.Background(), s.stopTimeout)
	defer cancel()

	logger.Info("Initiating graceful shutdown of %d adapter(s)", len(adapters))

	for i := len(adapters) - 1; i >= 0; i-- {
		adp := adapters[i]
		protocol := adp.Protocol()

		logger.Debug("Stopping %s adapter (port %d)", protocol, adp.Port())

		if err := adp.Stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Error stopping %s adapter: %v", protocol, err)
		} else {
			logger.Debug("%s adapter stopped", protocol)
		}
	}
}

// Adapters returns a snapshot of the registered adapters.
func (s *StaticServer) Adapters() []adapter.Adapter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	adapters := make([]adapter.Adapter, len(s.adapters))
	copy(adapters, s.adapters)
	return adapters
}

// Root returns the shared content root.
func (s *StaticServer) Root() *content.Root {
	return s.root
}
