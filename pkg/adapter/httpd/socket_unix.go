//go:build unix

package httpd

import (
	"fmt"
	"net"
	"os"

	"github.com/marmos91/staticd/internal/logger"
	"golang.org/x/sys/unix"
)

// setReuseAddr enables SO_REUSEADDR on fd. Replaced in tests.
var setReuseAddr = func(fd int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}

// listen opens an IPv4 TCP socket bound to 0.0.0.0:port with SO_REUSEADDR
// and the given accept backlog.
//
// Socket creation, bind and listen each map to their own StartError stage.
// Failing to set SO_REUSEADDR is only logged. The raw descriptor is handed to
// the net package once listening, so the runtime poller drives Accept.
func listen(port, backlog int) (net.Listener, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, &StartError{Stage: StageSocket, Port: port, Err: err}
	}
	unix.CloseOnExec(fd)

	if err := setReuseAddr(fd); err != nil {
		logger.Warn("HTTP setsockopt SO_REUSEADDR failed on port %d: %v", port, err)
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		_ = unix.Close(fd)
		return nil, &StartError{Stage: StageBind, Port: port, Err: err}
	}

	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, &StartError{Stage: StageListen, Port: port, Err: err}
	}

	// FileListener dups the descriptor; the original is closed with f.
	f := os.NewFile(uintptr(fd), fmt.Sprintf("tcp4:0.0.0.0:%d", port))
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, &StartError{Stage: StageListen, Port: port, Err: err}
	}
	return ln, nil
}
