// Package jobs runs per-frame work as a graph of dependent tasks on a
// work-stealing goroutine pool.
package jobs

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines pulling work from per-worker queues.
//
// Submit never blocks: queues are unbounded so tasks running on a worker can
// release their dependents without waiting on a full channel. Idle workers
// steal from the other queues before going to sleep.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []*workQueue

	// next picks the queue for the next submission (round-robin).
	next atomic.Uint32

	mu     sync.Mutex
	cond   *sync.Cond
	queued int // items pushed but not yet claimed by a worker
	closed bool

	wg sync.WaitGroup
}

type workQueue struct {
	mu    sync.Mutex
	items []func()
}

func (q *workQueue) push(fn func()) {
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()
}

// pop takes from the back (LIFO) for the owning worker.
func (q *workQueue) pop() func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	if n == 0 {
		return nil
	}
	fn := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return fn
}

// steal takes from the front (FIFO) for other workers.
func (q *workQueue) steal() func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	fn := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return fn
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		queues:  make([]*workQueue, workers),
	}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		p.queues[i] = &workQueue{}
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// Submit queues fn for execution. It panics if the pool is closed.
func (p *WorkerPool) Submit(fn func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("jobs: submit on closed worker pool")
	}
	id := int(p.next.Add(1)-1) % p.workers
	p.queues[id].push(fn)
	p.queued++
	p.mu.Unlock()
	p.cond.Signal()
}

// Close stops the workers after the queued work has drained.
// Calling Close more than once is a no-op.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.queued == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.queued == 0 {
			p.mu.Unlock()
			return
		}
		p.queued--
		p.mu.Unlock()

		// A claimed item is guaranteed to be sitting in some queue.
		work := p.take(id)
		work()
	}
}

func (p *WorkerPool) take(id int) func() {
	for {
		if fn := p.queues[id].pop(); fn != nil {
			return fn
		}
		for i := 1; i < p.workers; i++ {
			if fn := p.queues[(id+i)%p.workers].steal(); fn != nil {
				return fn
			}
		}
		runtime.Gosched()
	}
}
