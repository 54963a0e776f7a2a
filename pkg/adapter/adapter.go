package adapter

import (
	"context"

	"github.com/marmos91/staticd/pkg/content"
)

// Adapter represents a protocol-specific server adapter that can be managed
// by StaticServer.
//
// Each adapter owns a listening socket and serves files from the content root
// shared by every adapter of the server.
//
// Lifecycle:
//  1. Creation: Adapter is created with protocol-specific configuration
//  2. Content injection: SetContent() provides the shared content root
//  3. Startup: Serve() binds, accepts and blocks until shutdown
//  4. Shutdown: Stop() closes the listener and waits for in-flight work
//
// Thread safety:
// Implementations must be safe for concurrent use. SetContent() is called
// once before Serve(), but Stop() may be called concurrently with Serve().
type Adapter interface {
	// Serve starts the protocol server and blocks until the context is
	// cancelled or an unrecoverable error occurs.
	//
	// When the context is cancelled, Serve must:
	//   - Stop accepting new connections
	//   - Finish every connection already handed to it
	//   - Return nil
	//
	// If Serve returns before context cancellation, StaticServer treats it as
	// a fatal error and stops all other adapters.
	Serve(ctx context.Context) error

	// SetContent injects the content root files are served from.
	//
	// Called exactly once by StaticServer before Serve().
	SetContent(root *content.Root)

	// Stop initiates graceful shutdown of the protocol server.
	//
	// Implementations must be idempotent and safe to call concurrently with
	// Serve(). The context bounds how long Stop waits for in-flight work;
	// the work itself is never cancelled.
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logging.
	Protocol() string

	// Port returns the TCP port the adapter is listening on, or the
	// configured port if it has not bound yet.
	Port() int
}
