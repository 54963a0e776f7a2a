package httpd

import (
	"errors"
	"fmt"
)

var (
	// ErrNotStarted is returned by Run when Start has not succeeded.
	ErrNotStarted = errors.New("http listener not started")

	// ErrAlreadyRunning is returned by a second concurrent or repeated Run.
	ErrAlreadyRunning = errors.New("http listener already running")

	// ErrNoContent is returned by Start when no content root was injected.
	ErrNoContent = errors.New("http adapter has no content root")
)

// Stage identifies which step of listener setup failed.
type Stage string

const (
	StageSocket Stage = "socket"
	StageBind   Stage = "bind"
	StageListen Stage = "listen"
)

// StartError reports a listener setup failure. Callers tell the stages apart
// with errors.As:
//
//	var se *httpd.StartError
//	if errors.As(err, &se) && se.Stage == httpd.StageBind { ... }
type StartError struct {
	Stage Stage
	Port  int
	Err   error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("%s failed on port %d: %v", e.Stage, e.Port, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}
