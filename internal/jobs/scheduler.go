package jobs

import (
	"sync"
	"sync/atomic"
)

// DefaultBatchSize is the number of indices handed to a worker at a time for
// vertex loops.
const DefaultBatchSize = 2048

// Scheduler builds task graphs on top of a WorkerPool.
//
// Tasks declare their predecessors as Handles. A task is handed to the pool
// only when every predecessor has completed, so workers never block waiting
// on dependencies. The only blocking call is Handle.Complete.
type Scheduler struct {
	pool *WorkerPool
}

// NewScheduler creates a scheduler backed by a new pool with the given number
// of workers (0 = GOMAXPROCS).
func NewScheduler(workers int) *Scheduler {
	return &Scheduler{pool: NewWorkerPool(workers)}
}

// Workers returns the number of pool workers.
func (s *Scheduler) Workers() int {
	return s.pool.Workers()
}

// Close shuts the pool down. Outstanding handles must be completed first.
func (s *Scheduler) Close() {
	s.pool.Close()
}

// Handle tracks completion of a scheduled task. The zero Handle is already
// complete.
type Handle struct {
	t *task
}

// IsCompleted reports whether the task has finished.
func (h Handle) IsCompleted() bool {
	if h.t == nil {
		return true
	}
	select {
	case <-h.t.done:
		return true
	default:
		return false
	}
}

// Complete blocks until the task has finished.
func (h Handle) Complete() {
	if h.t == nil {
		return
	}
	<-h.t.done
}

// CompleteAll blocks until every handle has finished.
func CompleteAll(handles []Handle) {
	for _, h := range handles {
		h.Complete()
	}
}

type task struct {
	// chunks is the number of pieces the body is split into.
	chunks int
	body   func(chunk int)

	// pending counts unfinished predecessors plus one registration guard.
	pending atomic.Int32
	// remaining counts chunks still running.
	remaining atomic.Int32

	mu         sync.Mutex
	finished   bool
	dependents []*task
	done       chan struct{}
}

// Schedule runs fn once after every dependency has completed.
func (s *Scheduler) Schedule(fn func(), deps ...Handle) Handle {
	return s.schedule(1, func(int) { fn() }, deps)
}

// ScheduleParallel runs fn over [0, n) split into batches of batchSize
// indices, after every dependency has completed. fn receives half-open
// ranges [start, end) and may be called concurrently for disjoint ranges.
func (s *Scheduler) ScheduleParallel(n, batchSize int, fn func(start, end int), deps ...Handle) Handle {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	chunks := (n + batchSize - 1) / batchSize
	return s.schedule(chunks, func(chunk int) {
		start := chunk * batchSize
		end := min(start+batchSize, n)
		fn(start, end)
	}, deps)
}

// Combine returns a handle that completes once all handles have completed.
func (s *Scheduler) Combine(handles ...Handle) Handle {
	return s.schedule(0, nil, handles)
}

func (s *Scheduler) schedule(chunks int, body func(int), deps []Handle) Handle {
	t := &task{
		chunks: chunks,
		body:   body,
		done:   make(chan struct{}),
	}
	t.pending.Store(int32(len(deps)) + 1)

	for _, dep := range deps {
		d := dep.t
		if d == nil {
			t.pending.Add(-1)
			continue
		}
		d.mu.Lock()
		if d.finished {
			d.mu.Unlock()
			t.pending.Add(-1)
			continue
		}
		d.dependents = append(d.dependents, t)
		d.mu.Unlock()
	}

	// Drop the registration guard; if every dependency was already done the
	// task is released here.
	if t.pending.Add(-1) == 0 {
		s.release(t)
	}
	return Handle{t: t}
}

// release hands a ready task to the pool.
func (s *Scheduler) release(t *task) {
	if t.chunks == 0 {
		s.finish(t)
		return
	}
	t.remaining.Store(int32(t.chunks))
	for c := 0; c < t.chunks; c++ {
		chunk := c
		s.pool.Submit(func() {
			t.body(chunk)
			if t.remaining.Add(-1) == 0 {
				s.finish(t)
			}
		})
	}
}

func (s *Scheduler) finish(t *task) {
	t.mu.Lock()
	t.finished = true
	dependents := t.dependents
	t.dependents = nil
	t.mu.Unlock()

	close(t.done)
	for _, d := range dependents {
		if d.pending.Add(-1) == 0 {
			s.release(d)
		}
	}
}
