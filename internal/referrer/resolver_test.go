package referrer

import (
	"testing"
	"time"

	"github.com/dgnsrekt/trail_agent/internal/tabhistory"
)

func TestResolveAboutBlankUsesOpener(t *testing.T) {
	opened := time.Now().Add(-time.Minute)
	history := tabhistory.TabHistory{
		PreviousURL: "about:blank",
		CurrentURL:  "https://target",
		OpenerTabID: "59",
		GroupID:     "g1",
	}
	opener := tabhistory.TabHistory{
		CurrentURL: "https://source",
		Timestamp:  opened,
	}

	info := Resolve(history, opener, "60")

	if info.Referrer != "https://source" {
		t.Errorf("Referrer = %q; want opener's current url", info.Referrer)
	}
	if info.ReferrerTimestamp != opened.UnixMilli() {
		t.Errorf("ReferrerTimestamp = %d; want opener's %d", info.ReferrerTimestamp, opened.UnixMilli())
	}
	if info.OpenerTabID != "59" || info.GroupID != "g1" || info.TabID != "60" {
		t.Errorf("ids not passed through: %+v", info)
	}
}

func TestResolveAbsentPreviousUsesOpener(t *testing.T) {
	history := tabhistory.TabHistory{
		CurrentURL:  "https://target",
		OpenerTabID: "59",
	}
	opener := tabhistory.TabHistory{CurrentURL: "https://source", Timestamp: time.Now()}

	info := Resolve(history, opener, "60")
	if info.Referrer != "https://source" {
		t.Errorf("Referrer = %q", info.Referrer)
	}
}

func TestResolveRealPreviousBeatsOpener(t *testing.T) {
	prevAt := time.Now().Add(-time.Hour)
	history := tabhistory.TabHistory{
		PreviousURL:          "https://first-page",
		PreviousURLTimestamp: prevAt,
		CurrentURL:           "https://second-page",
		OpenerTabID:          "59",
		GroupID:              "g1",
	}
	opener := tabhistory.TabHistory{CurrentURL: "https://source", Timestamp: time.Now()}

	info := Resolve(history, opener, "60")

	if info.Referrer != "https://first-page" {
		t.Errorf("Referrer = %q; a real previous url must win", info.Referrer)
	}
	if info.ReferrerTimestamp != prevAt.UnixMilli() {
		t.Errorf("ReferrerTimestamp = %d", info.ReferrerTimestamp)
	}
	if info.GroupID != "g1" || info.OpenerTabID != "59" {
		t.Errorf("ids not passed through: %+v", info)
	}
}

func TestResolveNoOpenerNoPrevious(t *testing.T) {
	history := tabhistory.TabHistory{CurrentURL: "https://root"}

	before := time.Now().UnixMilli()
	info := Resolve(history, tabhistory.TabHistory{}, "1")
	after := time.Now().UnixMilli()

	if info.Referrer != "" {
		t.Errorf("Referrer = %q; want empty for root tab", info.Referrer)
	}
	if info.ReferrerTimestamp < before || info.ReferrerTimestamp > after {
		t.Errorf("absent previous timestamp should fall back to now, got %d", info.ReferrerTimestamp)
	}
}

func TestResolveOpenerWithoutCurrentURLFallsThrough(t *testing.T) {
	history := tabhistory.TabHistory{
		PreviousURL: "about:blank",
		CurrentURL:  "https://target",
		OpenerTabID: "59",
	}

	// Opener already closed or never recorded.
	info := Resolve(history, tabhistory.TabHistory{}, "60")

	if info.Referrer != "about:blank" {
		t.Errorf("Referrer = %q; want the default branch's previous url", info.Referrer)
	}
}
