package ui

import (
	"errors"
	"strings"
	"testing"

	"mirc/internal/buildpipeline"
)

func TestProgressTracksUnits(t *testing.T) {
	events := make(chan buildpipeline.Event)
	m := NewProgressModel("mirc build", []string{"core", "app"}, events).(*progressModel)

	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageLoad, Status: buildpipeline.StatusWorking})
	if m.stageLabel != "loading" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	m.applyEvent(buildpipeline.Event{Unit: "core", Stage: buildpipeline.StageTranslate, Status: buildpipeline.StatusWorking})
	if m.items[0].status != "translating" {
		t.Fatalf("core status = %q", m.items[0].status)
	}
	m.applyEvent(buildpipeline.Event{Unit: "core", Stage: buildpipeline.StageTranslate, Status: buildpipeline.StatusDone})
	if got := m.fraction(); got != 0.5 {
		t.Fatalf("fraction = %v, want 0.5", got)
	}
	m.applyEvent(buildpipeline.Event{Unit: "app", Stage: buildpipeline.StageTranslate, Status: buildpipeline.StatusError, Err: errors.New("BUG: bad switch")})
	if got := m.fraction(); got != 1 {
		t.Fatalf("fraction = %v, want 1", got)
	}
	m.applyEvent(buildpipeline.Event{Unit: "ghost", Stage: buildpipeline.StageTranslate, Status: buildpipeline.StatusDone})

	view := m.View()
	for _, want := range []string{"core", "app", "done", "error", "BUG: bad switch"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("translation", 8); got != "trans..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("core", 8); got != "core" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestProgressSummaryLine(t *testing.T) {
	events := make(chan buildpipeline.Event)
	m := NewProgressModel("mirc build", []string{"a", "b", "c"}, events).(*progressModel)
	m.applyEvent(buildpipeline.Event{Unit: "a", Stage: buildpipeline.StageTranslate, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{Unit: "b", Stage: buildpipeline.StageTranslate, Status: buildpipeline.StatusError, Err: errors.New("boom")})
	if view := m.View(); !strings.Contains(view, "2/3 units, 1 failed") {
		t.Fatalf("summary missing:\n%s", view)
	}
	if cmd := m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageLoad, Status: "paused"}); cmd != nil || m.stageLabel != "" {
		t.Fatal("unknown status changed the header")
	}
}
