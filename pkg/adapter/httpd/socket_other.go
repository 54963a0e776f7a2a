//go:build !unix

package httpd

import (
	"context"
	"fmt"
	"net"
)

// listen falls back to the net package where raw sockets are unavailable.
// The backlog is left to the OS and every failure is reported as a bind
// failure.
func listen(port, backlog int) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp4", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return nil, &StartError{Stage: StageBind, Port: port, Err: err}
	}
	return ln, nil
}
