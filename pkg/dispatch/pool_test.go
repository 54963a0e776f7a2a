package dispatch

import (
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type depthRecorder struct {
	noopMetrics
	max  atomic.Int64
	last atomic.Int64
}

func (d *depthRecorder) SetQueueDepth(depth int) {
	d.last.Store(int64(depth))
	for {
		cur := d.max.Load()
		if int64(depth) <= cur || d.max.CompareAndSwap(cur, int64(depth)) {
			return
		}
	}
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(int, time.Duration) {}
func (noopMetrics) RecordBytesSent(int64)            {}
func (noopMetrics) SetActiveConnections(int32)       {}
func (noopMetrics) RecordConnectionAccepted()        {}
func (noopMetrics) RecordConnectionClosed()          {}
func (noopMetrics) RecordAcceptError()               {}
func (noopMetrics) SetQueueDepth(int)                {}

func closingHandler() HandlerFunc {
	return func(conn net.Conn) { _ = conn.Close() }
}

func TestPool_DrainsQueuedTasks(t *testing.T) {
	for _, size := range []int{0, 128} {
		p := NewPool(closingHandler(), 2, size, nil)

		release := make(chan struct{})
		var ran atomic.Int32

		// Occupy both workers so the rest stays queued.
		for i := 0; i < 2; i++ {
			require.NoError(t, p.Submit(func() {
				<-release
				ran.Add(1)
			}))
		}
		const queued = 20
		for i := 0; i < queued; i++ {
			require.NoError(t, p.Submit(func() { ran.Add(1) }))
		}

		done := make(chan struct{})
		go func() {
			p.Shutdown()
			close(done)
		}()

		select {
		case <-done:
			t.Fatal("shutdown returned while tasks were still running")
		case <-time.After(50 * time.Millisecond):
		}

		close(release)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("shutdown did not return")
		}
		assert.EqualValues(t, queued+2, ran.Load(), "size=%d", size)
		assert.Equal(t, 0, p.Pending())
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := NewPool(closingHandler(), 1, 0, nil)
	p.Shutdown()
	p.Shutdown()

	assert.ErrorIs(t, p.Submit(func() {}), ErrStopped)

	client, server := net.Pipe()
	defer client.Close()
	err := p.Dispatch(server)
	assert.ErrorIs(t, err, ErrStopped)
	_ = server.Close()
}

func TestPool_EachTaskRunsOnce(t *testing.T) {
	p := NewPool(closingHandler(), 4, 0, nil)

	const n = 500
	var mu sync.Mutex
	counts := make(map[int]int, n)
	for i := 0; i < n; i++ {
		i := i
		require.NoError(t, p.Submit(func() {
			mu.Lock()
			counts[i]++
			mu.Unlock()
		}))
	}
	p.Shutdown()

	require.Len(t, counts, n)
	for i, c := range counts {
		assert.Equal(t, 1, c, "task %d", i)
	}
}

func TestPool_SingleWorkerKeepsOrder(t *testing.T) {
	p := NewPool(closingHandler(), 1, 0, nil)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		require.NoError(t, p.Submit(func() { got = append(got, i) }))
	}
	p.Shutdown()

	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestPool_PanickingTaskKeepsWorker(t *testing.T) {
	p := NewPool(closingHandler(), 1, 0, nil)

	var ran atomic.Bool
	require.NoError(t, p.Submit(func() { panic("boom") }))
	require.NoError(t, p.Submit(func() { ran.Store(true) }))
	p.Shutdown()

	assert.True(t, ran.Load())
}

func TestPool_DispatchHandlesConn(t *testing.T) {
	handled := make(chan struct{}, 1)
	p := NewPool(HandlerFunc(func(conn net.Conn) {
		_ = conn.Close()
		handled <- struct{}{}
	}), 2, 0, nil)
	defer p.Shutdown()

	client, server := net.Pipe()
	defer client.Close()
	require.NoError(t, p.Dispatch(server))

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("connection was not handled")
	}
}

func TestPool_ReportsQueueDepth(t *testing.T) {
	rec := &depthRecorder{}
	p := NewPool(closingHandler(), 1, 0, rec)

	release := make(chan struct{})
	require.NoError(t, p.Submit(func() { <-release }))
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(func() {}))
	}
	close(release)
	p.Shutdown()

	assert.Greater(t, rec.max.Load(), int64(0))
}

func TestPool_SubmitPublishesCurrentDepth(t *testing.T) {
	for _, size := range []int{0, 16} {
		rec := &depthRecorder{}
		p := NewPool(closingHandler(), 1, size, rec)

		started := make(chan struct{})
		release := make(chan struct{})
		require.NoError(t, p.Submit(func() {
			close(started)
			<-release
		}))
		<-started
		require.Eventually(t, func() bool { return p.Pending() == 0 }, time.Second, time.Millisecond)

		for i := 1; i <= 5; i++ {
			require.NoError(t, p.Submit(func() {}))
			assert.EqualValues(t, i, rec.last.Load(), "queue size %d", size)
		}

		close(release)
		p.Shutdown()
	}
}

func TestNewPool_Panics(t *testing.T) {
	assert.Panics(t, func() { NewPool(nil, 1, 0, nil) })
	assert.Panics(t, func() { NewPool(closingHandler(), 0, 0, nil) })
}
