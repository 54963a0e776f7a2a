// Package dispatch decides which goroutine handles an accepted connection.
//
// Two policies share one contract:
//
//   - Inline: the accept loop calls the handler itself. Requests are fully
//     serialized and a slow client stalls every other one.
//   - Pool: a fixed set of workers drains a FIFO Queue. The accept loop only
//     enqueues. Shutdown drains everything already queued.
//
// Ownership of the connection moves to the dispatcher when Dispatch returns
// nil. When Dispatch returns an error the caller still owns the connection
// and must close it.
package dispatch

import (
	"fmt"
	"net"

	"github.com/marmos91/staticd/pkg/metrics"
)

// Dispatcher policy names, as used in configuration.
const (
	KindInline = "inline"
	KindPooled = "pooled"
)

// ConnHandler serves a single connection and closes it before returning.
type ConnHandler interface {
	Handle(conn net.Conn)
}

// HandlerFunc adapts a plain function to ConnHandler.
type HandlerFunc func(conn net.Conn)

func (f HandlerFunc) Handle(conn net.Conn) { f(conn) }

// Dispatcher hands accepted connections to a handler.
type Dispatcher interface {
	// Dispatch schedules conn for handling. A nil error transfers ownership
	// of conn to the dispatcher.
	Dispatch(conn net.Conn) error

	// Shutdown stops accepting work and returns once everything already
	// dispatched has finished. Safe to call more than once.
	Shutdown()

	// Name returns the policy name (KindInline or KindPooled).
	Name() string
}

// Options configure New.
type Options struct {
	// Kind selects the policy: KindInline or KindPooled.
	Kind string

	// Workers is the pool size. Pooled only, must be > 0.
	Workers int

	// QueueSize bounds the pending task queue. 0 means unbounded. Pooled only.
	QueueSize int

	// Metrics receives queue depth updates. Optional.
	Metrics metrics.HTTPMetrics
}

// New builds the dispatcher selected by opts.Kind.
func New(handler ConnHandler, opts Options) (Dispatcher, error) {
	switch opts.Kind {
	case KindInline:
		return NewInline(handler), nil
	case KindPooled:
		if opts.Workers <= 0 {
			return nil, fmt.Errorf("pooled dispatcher needs at least one worker, got %d", opts.Workers)
		}
		if opts.QueueSize < 0 {
			return nil, fmt.Errorf("invalid queue size %d: must be >= 0", opts.QueueSize)
		}
		return NewPool(handler, opts.Workers, opts.QueueSize, opts.Metrics), nil
	default:
		return nil, fmt.Errorf("unknown dispatcher %q (want %s or %s)", opts.Kind, KindInline, KindPooled)
	}
}

// Inline runs the handler on the caller's goroutine. It has no state.
type Inline struct {
	handler ConnHandler
}

// NewInline creates an inline dispatcher. Panics if handler is nil.
func NewInline(handler ConnHandler) *Inline {
	if handler == nil {
		panic("handler cannot be nil")
	}
	return &Inline{handler: handler}
}

// Dispatch handles conn synchronously and always returns nil.
func (d *Inline) Dispatch(conn net.Conn) error {
	d.handler.Handle(conn)
	return nil
}

// Shutdown is a no-op: by the time it can be called nothing is in flight.
func (d *Inline) Shutdown() {}

func (d *Inline) Name() string { return KindInline }
