package dispatch

import (
	"fmt"
	"net"
	"sync"

	"github.com/marmos91/staticd/internal/logger"
	"github.com/marmos91/staticd/pkg/metrics"
)

// Pool is a fixed set of worker goroutines fed by a Queue.
//
// Tasks are dequeued in submission order; completion order across workers is
// not defined. Each task runs on exactly one worker, exactly once. There is no
// cancellation: Shutdown waits for the queue to drain.
type Pool struct {
	handler ConnHandler
	queue   *Queue
	workers int
	metrics metrics.HTTPMetrics

	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewPool starts workers goroutines consuming a queue of queueSize (0 for
// unbounded). m may be nil.
//
// Panics if handler is nil or workers <= 0.
func NewPool(handler ConnHandler, workers, queueSize int, m metrics.HTTPMetrics) *Pool {
	if handler == nil {
		panic("handler cannot be nil")
	}
	if workers <= 0 {
		panic(fmt.Sprintf("worker count must be positive, got %d", workers))
	}
	if m == nil {
		m = metrics.NewNoopHTTPMetrics()
	}

	p := &Pool{
		handler: handler,
		queue:   NewQueue(queueSize),
		workers: workers,
		metrics: m,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work(i)
	}
	logger.Debug("Worker pool started: workers=%d queue_size=%d", workers, queueSize)

	return p
}

func (p *Pool) work(id int) {
	defer p.wg.Done()

	for task := range p.queue.Tasks() {
		p.metrics.SetQueueDepth(p.queue.Len())
		p.run(id, task)
	}
	logger.Debug("Worker %d exiting", id)
}

// run executes one task, keeping the worker alive if it panics.
func (p *Pool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in worker %d: %v", id, r)
		}
	}()
	task()
}

// Dispatch queues conn for a worker. Returns ErrStopped after Shutdown, in
// which case the caller keeps ownership of conn.
func (p *Pool) Dispatch(conn net.Conn) error {
	return p.Submit(func() { p.handler.Handle(conn) })
}

// Submit queues an arbitrary task. Returns ErrStopped after Shutdown.
func (p *Pool) Submit(task Task) error {
	if err := p.queue.Push(task); err != nil {
		return err
	}
	p.metrics.SetQueueDepth(p.queue.Len())
	return nil
}

// Shutdown stops the queue, lets the workers finish every queued task and
// waits for all of them to exit. Concurrent and repeated calls block until
// the first one has completed.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		logger.Debug("Worker pool shutting down: %d task(s) queued", p.queue.Len())
		p.queue.Close()
		p.wg.Wait()
		p.metrics.SetQueueDepth(0)
		logger.Debug("Worker pool drained")
	})
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// Pending returns the number of queued tasks not yet picked up by a worker.
func (p *Pool) Pending() int { return p.queue.Len() }

func (p *Pool) Name() string { return KindPooled }
