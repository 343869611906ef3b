package navigation

import (
	"testing"

	"github.com/dgnsrekt/trail_agent/internal/urlnorm"
)

var norm = urlnorm.New(nil, nil)

func TestShouldHandleNavigationNewPath(t *testing.T) {
	state := NewState(norm, "https://example.com/page1")

	d := ShouldHandleNavigation(norm, state, "https://example.com/page2")
	if !d.ShouldHandle {
		t.Fatal("transition to unseen path should be handled")
	}
	if d.State.CurrentPath != "https://example.com/page2" {
		t.Errorf("CurrentPath = %q", d.State.CurrentPath)
	}
	if !d.State.Visited("https://example.com/page2") {
		t.Error("new path missing from visited set")
	}
	if d.State.LastKnownURL != "https://example.com/page2" {
		t.Errorf("LastKnownURL = %q", d.State.LastKnownURL)
	}
}

func TestShouldHandleNavigationSamePath(t *testing.T) {
	state := NewState(norm, "https://example.com/page1")

	d := ShouldHandleNavigation(norm, state, "https://example.com/page1")
	if d.ShouldHandle {
		t.Fatal("same path must not be handled")
	}
	if d.State.CurrentPath != state.CurrentPath || d.State.LastKnownURL != state.LastKnownURL {
		t.Error("state should be unchanged for same-path signal")
	}
}

func TestShouldHandleNavigationTrackingNoiseIsSamePath(t *testing.T) {
	state := NewState(norm, "https://example.com/page1")

	// A pushState that only adds tracking noise is not a navigation.
	d := ShouldHandleNavigation(norm, state, "https://example.com/page1?utm_source=x")
	if d.ShouldHandle {
		t.Fatal("tracking-only change must not be handled")
	}
}

func TestShouldHandleNavigationRevisitSuppression(t *testing.T) {
	state := NewState(norm, "https://example.com/page1")

	d := ShouldHandleNavigation(norm, state, "https://example.com/page2")
	if !d.ShouldHandle {
		t.Fatal("first visit to page2 should be handled")
	}

	// Back to page1: path tracking updates but no visit fires.
	back := ShouldHandleNavigation(norm, d.State, "https://example.com/page1")
	if back.ShouldHandle {
		t.Fatal("revisit of page1 must be suppressed")
	}
	if back.State.CurrentPath != "https://example.com/page1" {
		t.Errorf("CurrentPath after back = %q", back.State.CurrentPath)
	}
	if back.State.LastKnownURL != "https://example.com/page1" {
		t.Errorf("LastKnownURL after back = %q", back.State.LastKnownURL)
	}

	// Forward to page2 again: also suppressed.
	fwd := ShouldHandleNavigation(norm, back.State, "https://example.com/page2")
	if fwd.ShouldHandle {
		t.Fatal("revisit of page2 must be suppressed")
	}
}

func TestStateUpdatesAreImmutable(t *testing.T) {
	state := NewState(norm, "https://example.com/page1")

	d := ShouldHandleNavigation(norm, state, "https://example.com/page2")

	if state.Visited("https://example.com/page2") {
		t.Error("original state's visited set was mutated")
	}
	if state.VisitedCount() != 1 {
		t.Errorf("original VisitedCount = %d; want 1", state.VisitedCount())
	}
	if d.State.VisitedCount() != 2 {
		t.Errorf("new VisitedCount = %d; want 2", d.State.VisitedCount())
	}
	if state.CurrentPath != "https://example.com/page1" {
		t.Errorf("original CurrentPath changed: %q", state.CurrentPath)
	}
}

func TestNewStateInvariant(t *testing.T) {
	state := NewState(norm, "https://example.com/start?gclid=1")
	if !state.Visited(state.CurrentPath) {
		t.Error("CurrentPath must be a member of the visited set")
	}
	if state.CurrentPath != "https://example.com/start" {
		t.Errorf("CurrentPath = %q; want normalized form", state.CurrentPath)
	}
	if state.LastKnownURL != "https://example.com/start?gclid=1" {
		t.Errorf("LastKnownURL = %q; want raw form", state.LastKnownURL)
	}
}
