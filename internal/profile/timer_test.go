package profile

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAverages(t *testing.T) {
	tm := New(60, 0, nil)

	tm.Add("bake", 2*time.Millisecond)
	tm.Add("bake", 1*time.Millisecond)
	tm.Add("deform", 4*time.Millisecond)
	tm.EndFrame()

	tm.Add("bake", 5*time.Millisecond)
	tm.EndFrame()

	if got := tm.Average("bake"); got != 4*time.Millisecond {
		t.Errorf("bake average = %v, want 4ms", got)
	}
	if got := tm.Average("deform"); got != 4*time.Millisecond {
		t.Errorf("deform average = %v, want 4ms (one sample)", got)
	}
	if got := tm.Average("missing"); got != 0 {
		t.Errorf("missing average = %v, want 0", got)
	}
	if tm.Frames() != 2 {
		t.Errorf("frames = %d, want 2", tm.Frames())
	}
	sections := tm.Sections()
	if len(sections) != 2 || sections[0] != "bake" || sections[1] != "deform" {
		t.Errorf("sections = %v", sections)
	}
}

func TestStartUsesClock(t *testing.T) {
	tm := New(60, 0, nil)
	now := time.Unix(0, 0)
	tm.now = func() time.Time { return now }

	stop := tm.Start("commit")
	now = now.Add(3 * time.Millisecond)
	stop()
	tm.EndFrame()

	if got := tm.Average("commit"); got != 3*time.Millisecond {
		t.Errorf("commit average = %v, want 3ms", got)
	}
}

func TestReportEvery(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tm := New(100, 2, zap.New(core))

	tm.Add("bake", 5*time.Millisecond)
	tm.EndFrame()
	if logs.Len() != 0 {
		t.Fatalf("reported after one frame")
	}
	tm.Add("bake", 5*time.Millisecond)
	tm.EndFrame()

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["budget"]; got != "50.0%" {
		t.Errorf("budget = %v, want 50.0%%", got)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Start("x")()
	tm.Add("x", time.Second)
	tm.EndFrame()
	if tm.Average("x") != 0 || tm.Frames() != 0 || tm.Sections() != nil {
		t.Error("nil timer recorded data")
	}
}
