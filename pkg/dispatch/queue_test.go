package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	for _, size := range []int{0, 64} {
		q := NewQueue(size)

		var got []int
		for i := 0; i < 50; i++ {
			i := i
			require.NoError(t, q.Push(func() { got = append(got, i) }))
		}
		q.Close()

		for task := range q.Tasks() {
			task()
		}

		require.Len(t, got, 50, "size=%d", size)
		for i, v := range got {
			assert.Equal(t, i, v, "size=%d", size)
		}
	}
}

func TestQueue_PushAfterClose(t *testing.T) {
	for _, size := range []int{0, 4} {
		q := NewQueue(size)
		q.Close()
		q.Close()

		assert.True(t, q.Stopped())
		assert.ErrorIs(t, q.Push(func() {}), ErrStopped)

		_, ok := <-q.Tasks()
		assert.False(t, ok, "tasks channel must be closed once drained")
	}
}

func TestQueue_NilTask(t *testing.T) {
	q := NewQueue(0)
	defer q.Close()
	assert.Error(t, q.Push(nil))
}

func TestQueue_UnboundedNeverBlocks(t *testing.T) {
	q := NewQueue(0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = q.Push(func() {})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("push blocked on an unbounded queue with no consumer")
	}

	assert.Equal(t, 1000, q.Len())
	q.Close()

	n := 0
	for range q.Tasks() {
		n++
	}
	assert.Equal(t, 1000, n)
}

func TestQueue_LenCountsPushedTasks(t *testing.T) {
	q := NewQueue(0)

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Push(func() {}))
		assert.Equal(t, i, q.Len())
	}

	<-q.Tasks()
	assert.Eventually(t, func() bool { return q.Len() == 2 }, time.Second, time.Millisecond)

	q.Close()
	for range q.Tasks() {
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_BoundedBlocks(t *testing.T) {
	q := NewQueue(2)
	require.NoError(t, q.Push(func() {}))
	require.NoError(t, q.Push(func() {}))
	assert.Equal(t, 2, q.Len())

	pushed := make(chan struct{})
	go func() {
		_ = q.Push(func() {})
		close(pushed)
	}()

	select {
	case <-pushed:
		t.Fatal("push should block while the queue is full")
	case <-time.After(50 * time.Millisecond):
	}

	<-q.Tasks()
	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push did not resume after a slot freed up")
	}
	q.Close()
}

func TestQueue_ConcurrentPushAndClose(t *testing.T) {
	q := NewQueue(0)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if q.Push(func() {}) == nil {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}()
	}

	time.Sleep(time.Millisecond)
	q.Close()
	wg.Wait()

	received := 0
	for range q.Tasks() {
		received++
	}
	assert.Equal(t, accepted, received, "every accepted task must be delivered")
}
