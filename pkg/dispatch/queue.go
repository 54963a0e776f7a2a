package dispatch

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStopped is returned when work is submitted after Close/Shutdown.
var ErrStopped = errors.New("dispatch: queue stopped")

// Task is one unit of deferred work, typically "handle this connection".
type Task func()

// Queue is a FIFO of tasks with one explicit stop signal.
//
// Producers call Push; consumers range over Tasks(). Close stops new pushes,
// and Tasks() is closed only after every task pushed before Close has been
// received, so consumers that range until the channel closes drain the queue.
//
// In unbounded mode (size 0) a pump goroutine buffers tasks in a slice and
// Push never blocks. In bounded mode Push blocks while size tasks are waiting.
type Queue struct {
	// mu guards stopped against Close racing a Push: pushes hold the read
	// lock while sending, Close takes the write lock before closing in.
	mu      sync.RWMutex
	stopped bool

	in  chan Task
	out chan Task

	bounded bool
	// depth counts unbounded-mode tasks: incremented by Push, decremented
	// by the pump when a consumer takes one.
	depth atomic.Int64
}

// NewQueue creates a queue. size 0 is unbounded, size > 0 bounds it.
func NewQueue(size int) *Queue {
	if size > 0 {
		ch := make(chan Task, size)
		return &Queue{in: ch, out: ch, bounded: true}
	}

	q := &Queue{
		in:  make(chan Task),
		out: make(chan Task),
	}
	go q.pump()
	return q
}

// Push appends t to the queue. Returns ErrStopped after Close.
func (q *Queue) Push(t Task) error {
	if t == nil {
		return errors.New("dispatch: nil task")
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return ErrStopped
	}
	if !q.bounded {
		q.depth.Add(1)
	}
	q.in <- t
	return nil
}

// Tasks returns the consumer side of the queue.
func (q *Queue) Tasks() <-chan Task {
	return q.out
}

// Close sends the stop signal. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	q.stopped = true
	close(q.in)
}

// Stopped reports whether Close has been called.
func (q *Queue) Stopped() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.stopped
}

// Len returns the number of tasks waiting to be received. A task counts from
// the moment Push accepts it until a consumer receives it.
func (q *Queue) Len() int {
	if q.bounded {
		return len(q.out)
	}
	return int(q.depth.Load())
}

// pump moves tasks from in to out through an unbounded slice, preserving
// order. It closes out once in is closed and the slice is empty.
func (q *Queue) pump() {
	defer close(q.out)

	var pending []Task
	in := q.in

	for in != nil || len(pending) > 0 {
		var out chan Task
		var next Task
		if len(pending) > 0 {
			out = q.out
			next = pending[0]
		}

		select {
		case t, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			pending = append(pending, t)
		case out <- next:
			pending[0] = nil
			pending = pending[1:]
			q.depth.Add(-1)
		}
	}
}
