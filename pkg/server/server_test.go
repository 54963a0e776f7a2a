package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/staticd/pkg/content"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter blocks in Serve until the context is cancelled or Stop is
// called, or fails right away when serveErr is set.
type fakeAdapter struct {
	protocol string
	port     int
	serveErr error

	mu       sync.Mutex
	root     *content.Root
	stopped  bool
	stopSeq  *[]string
	stopOnce sync.Once
	stopCh   chan struct{}
}

func newFake(protocol string, port int, seq *[]string) *fakeAdapter {
	return &fakeAdapter{protocol: protocol, port: port, stopSeq: seq, stopCh: make(chan struct{})}
}

func (f *fakeAdapter) Serve(ctx context.Context) error {
	if f.serveErr != nil {
		return f.serveErr
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.stopCh:
		return nil
	}
}

func (f *fakeAdapter) SetContent(root *content.Root) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.root = root
}

func (f *fakeAdapter) Stop(ctx context.Context) error {
	f.mu.Lock()
	f.stopped = true
	if f.stopSeq != nil {
		*f.stopSeq = append(*f.stopSeq, f.protocol)
	}
	f.mu.Unlock()
	f.stopOnce.Do(func() { close(f.stopCh) })
	return nil
}

func (f *fakeAdapter) Protocol() string { return f.protocol }
func (f *fakeAdapter) Port() int        { return f.port }

func testRoot() *content.Root {
	return content.NewFromFs(afero.NewMemMapFs(), "/srv")
}

func TestAddAdapter(t *testing.T) {
	srv := New(testRoot())

	a := newFake("HTTP", 8080, nil)
	require.NoError(t, srv.AddAdapter(a))
	assert.Same(t, srv.Root(), a.root, "content root must be injected")

	assert.Error(t, srv.AddAdapter(newFake("HTTP", 8081, nil)), "duplicate protocol")
	assert.Error(t, srv.AddAdapter(newFake("HTTPS", 8080, nil)), "duplicate port")

	require.NoError(t, srv.AddAdapter(newFake("EPHEMERAL-A", 0, nil)))
	require.NoError(t, srv.AddAdapter(newFake("EPHEMERAL-B", 0, nil)))

	assert.Len(t, srv.Adapters(), 3)
}

func TestNew_NilRoot(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

func TestServe_NoAdapters(t *testing.T) {
	srv := New(testRoot())
	assert.Error(t, srv.Serve(context.Background()))
}

func TestServe_StopsInReverseOrderOnCancel(t *testing.T) {
	var seq []string
	srv := New(testRoot())
	require.NoError(t, srv.AddAdapter(newFake("A", 1, &seq)))
	require.NoError(t, srv.AddAdapter(newFake("B", 2, &seq)))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.Equal(t, []string{"B", "A"}, seq)

	assert.ErrorIs(t, srv.Serve(context.Background()), ErrAlreadyServed)
	assert.Panics(t, func() { _ = srv.AddAdapter(newFake("C", 3, nil)) })
}

func TestServe_AdapterFailureStopsOthers(t *testing.T) {
	srv := New(testRoot())

	healthy := newFake("HEALTHY", 1, nil)
	broken := newFake("BROKEN", 2, nil)
	broken.serveErr = errors.New("bind failed")

	require.NoError(t, srv.AddAdapter(healthy))
	require.NoError(t, srv.AddAdapter(broken))

	err := srv.Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BROKEN adapter error")
	assert.ErrorIs(t, err, broken.serveErr)

	healthy.mu.Lock()
	defer healthy.mu.Unlock()
	assert.True(t, healthy.stopped)
}
