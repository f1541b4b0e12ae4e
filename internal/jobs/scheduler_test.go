package jobs

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestZeroHandleIsComplete(t *testing.T) {
	var h Handle
	if !h.IsCompleted() {
		t.Error("zero Handle should be complete")
	}
	h.Complete()
}

func TestScheduleParallelCoversEveryIndex(t *testing.T) {
	s := NewScheduler(4)
	defer s.Close()

	const n = 10_000
	hits := make([]int32, n)
	h := s.ScheduleParallel(n, 64, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})
	h.Complete()

	for i, c := range hits {
		if c != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, c)
		}
	}
}

func TestScheduleParallelEmptyRange(t *testing.T) {
	s := NewScheduler(2)
	defer s.Close()

	called := false
	s.ScheduleParallel(0, 16, func(int, int) { called = true }).Complete()
	if called {
		t.Error("empty range should not invoke the body")
	}
}

func TestDependencyOrdering(t *testing.T) {
	s := NewScheduler(4)
	defer s.Close()

	// Each link appends its index; if ordering holds the slice is sorted.
	var mu sync.Mutex
	var order []int
	var h Handle
	for i := 0; i < 50; i++ {
		i := i
		h = s.ScheduleParallel(8, 1, func(start, end int) {
			if start == 0 {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
			}
		}, h)
	}
	h.Complete()

	if len(order) != 50 {
		t.Fatalf("got %d links, want 50", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d, chain ran out of order", i, v)
		}
	}
}

func TestCombineWaitsForAll(t *testing.T) {
	s := NewScheduler(4)
	defer s.Close()

	var count atomic.Int32
	handles := make([]Handle, 16)
	for i := range handles {
		handles[i] = s.ScheduleParallel(100, 10, func(start, end int) {
			count.Add(int32(end - start))
		})
	}

	var seen int32
	merge := s.Schedule(func() {
		seen = count.Load()
	}, s.Combine(handles...))
	merge.Complete()

	if seen != 1600 {
		t.Errorf("merge saw %d, want 1600", seen)
	}
}

func TestDiamondGraph(t *testing.T) {
	s := NewScheduler(3)
	defer s.Close()

	var a, b, c int
	root := s.Schedule(func() { a = 1 })
	left := s.Schedule(func() { b = a + 1 }, root)
	right := s.Schedule(func() { c = a + 2 }, root)

	var sum int
	s.Schedule(func() { sum = b + c }, left, right).Complete()

	if sum != 5 {
		t.Errorf("sum = %d, want 5", sum)
	}
}

func TestScheduleAfterCompletedDependency(t *testing.T) {
	s := NewScheduler(1)
	defer s.Close()

	first := s.Schedule(func() {})
	first.Complete()

	ran := false
	s.Schedule(func() { ran = true }, first).Complete()
	if !ran {
		t.Error("task depending on a finished handle should still run")
	}
}

func TestWorkerPoolCloseIsIdempotent(t *testing.T) {
	p := NewWorkerPool(0)
	if p.Workers() <= 0 {
		t.Fatalf("Workers() = %d, want GOMAXPROCS", p.Workers())
	}
	p.Close()
	p.Close()
}

func TestSubmitOnClosedPoolLeavesQueuesEmpty(t *testing.T) {
	p := NewWorkerPool(2)
	p.Close()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Submit on a closed pool should panic")
			}
		}()
		p.Submit(func() {})
	}()

	for i, q := range p.queues {
		if n := len(q.items); n != 0 {
			t.Errorf("queue %d holds %d items after a rejected Submit", i, n)
		}
	}
	if p.queued != 0 {
		t.Errorf("queued = %d, want 0", p.queued)
	}
}
