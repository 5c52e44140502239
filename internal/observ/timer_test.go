package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerConcurrentPhases(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx := tm.Begin("unit")
			tm.End(idx, "ok")
		}()
	}
	wg.Wait()

	report := tm.Report()
	if len(report.Phases) != 8 {
		t.Fatalf("phases = %d, want 8", len(report.Phases))
	}
	if report.WallMS < 0 {
		t.Fatalf("negative wall time %f", report.WallMS)
	}
	if s := tm.Summary(); !strings.Contains(s, "// ok") || !strings.Contains(s, "wall") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("unexpected phases %v", r.Phases)
	}
}
