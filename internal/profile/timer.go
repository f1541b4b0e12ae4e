// Package profile accumulates named section timings per frame and reports
// running averages as a share of the frame budget.
package profile

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Timer collects section timings. A nil *Timer is valid and records
// nothing, so callers can leave profiling off without branching.
type Timer struct {
	mu     sync.Mutex
	budget time.Duration
	every  int
	log    *zap.Logger
	now    func() time.Time

	order    []string
	frame    map[string]time.Duration
	total    map[string]time.Duration
	samples  map[string]int
	frames   int
	sinceLog int
}

// New returns a timer reporting every reportEvery frames against a budget
// of one frame at frameRate. reportEvery <= 0 never reports.
func New(frameRate int, reportEvery int, log *zap.Logger) *Timer {
	if frameRate <= 0 {
		frameRate = 60
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Timer{
		budget:  time.Second / time.Duration(frameRate),
		every:   reportEvery,
		log:     log,
		now:     time.Now,
		frame:   make(map[string]time.Duration),
		total:   make(map[string]time.Duration),
		samples: make(map[string]int),
	}
}

// Start begins timing name and returns the func that stops it. Repeated
// sections within a frame add up.
func (t *Timer) Start(name string) func() {
	if t == nil {
		return func() {}
	}
	start := t.now()
	return func() {
		t.Add(name, t.now().Sub(start))
	}
}

// Add records d against name for the current frame.
func (t *Timer) Add(name string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.total[name]; !ok {
		t.order = append(t.order, name)
		t.total[name] = 0
	}
	t.frame[name] += d
}

// EndFrame folds the current frame into the averages and logs them when a
// report is due.
func (t *Timer) EndFrame() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for name, d := range t.frame {
		t.total[name] += d
		t.samples[name]++
	}
	clear(t.frame)
	t.frames++
	t.sinceLog++

	if t.every > 0 && t.sinceLog >= t.every {
		t.sinceLog = 0
		t.reportLocked()
	}
}

// Average returns the mean time per recorded frame for name.
func (t *Timer) Average(name string) time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.samples[name]
	if n == 0 {
		return 0
	}
	return t.total[name] / time.Duration(n)
}

// Frames returns the number of completed frames.
func (t *Timer) Frames() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// Sections returns section names in first-seen order.
func (t *Timer) Sections() []string {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}

// BudgetShare returns d as a percentage of the frame budget.
func (t *Timer) BudgetShare(d time.Duration) float64 {
	return float64(d) / float64(t.budget) * 100
}

func (t *Timer) reportLocked() {
	for _, name := range t.order {
		n := t.samples[name]
		if n == 0 {
			continue
		}
		avg := t.total[name] / time.Duration(n)
		t.log.Info("section timing",
			zap.String("section", name),
			zap.Duration("average", avg),
			zap.String("budget", fmt.Sprintf("%.1f%%", t.BudgetShare(avg))),
		)
	}
}
