package cdp

import (
	"testing"

	"github.com/chromedp/cdproto/target"
	"github.com/dgnsrekt/trail_agent/internal/config"
	"github.com/dgnsrekt/trail_agent/internal/tabhistory"
	"github.com/dgnsrekt/trail_agent/internal/types"
	"github.com/dgnsrekt/trail_agent/internal/urlnorm"
)

func newTestClient(t *testing.T) (*Client, *[]types.VisitPayload) {
	t.Helper()
	visits := &[]types.VisitPayload{}
	c := NewClient(
		&config.Config{},
		urlnorm.New(nil, nil),
		tabhistory.NewHolder(),
		func(v types.VisitPayload) { *visits = append(*visits, v) },
	)
	return c, visits
}

func TestRecordNavigationBuildsReferrerChain(t *testing.T) {
	c, visits := newTestClient(t)
	id := target.ID("tab-1")

	c.recordNavigation(id, "https://example.com/", "load")
	c.recordNavigation(id, "https://www.iana.org/domains", "load")
	c.recordNavigation(id, "https://github.com/", "load")

	if len(*visits) != 3 {
		t.Fatalf("expected 3 visits, got %d", len(*visits))
	}

	if (*visits)[0].Referrer != "" {
		t.Errorf("first visit referrer = %q, want empty", (*visits)[0].Referrer)
	}
	if (*visits)[1].Referrer != "https://example.com/" {
		t.Errorf("second visit referrer = %q, want example.com", (*visits)[1].Referrer)
	}
	if (*visits)[2].Referrer != "https://www.iana.org/domains" {
		t.Errorf("third visit referrer = %q, want iana.org", (*visits)[2].Referrer)
	}

	group := (*visits)[0].GroupID
	if group == "" {
		t.Fatal("expected a group id on the first visit")
	}
	for i, v := range *visits {
		if v.GroupID != group {
			t.Errorf("visit %d group = %q, want %q", i, v.GroupID, group)
		}
		if v.TabID != "tab-1" {
			t.Errorf("visit %d tab id = %q", i, v.TabID)
		}
	}
}

func TestOpenedTabInheritsReferrerFromOpener(t *testing.T) {
	c, visits := newTestClient(t)
	opener := target.ID("tab-opener")
	child := target.ID("tab-child")

	c.seedTab(opener, "https://example.com/", "")
	c.recordNavigation(opener, "https://example.com/", "load")

	// Ctrl-click: the new target appears at about:blank with an opener.
	c.seedTab(child, "", opener)
	c.recordNavigation(child, "https://github.com/", "load")

	last := (*visits)[len(*visits)-1]
	if last.Referrer != "https://example.com/" {
		t.Errorf("child referrer = %q, want opener's current url", last.Referrer)
	}
	if last.OpenerTabID != string(opener) {
		t.Errorf("opener tab id = %q, want %q", last.OpenerTabID, opener)
	}
	if last.GroupID != (*visits)[0].GroupID {
		t.Errorf("child group = %q, want inherited %q", last.GroupID, (*visits)[0].GroupID)
	}

	// Once the child has real history its own chain takes over.
	c.recordNavigation(child, "https://github.com/explore", "load")
	next := (*visits)[len(*visits)-1]
	if next.Referrer != "https://github.com/" {
		t.Errorf("second child referrer = %q, want github.com", next.Referrer)
	}
}

func TestSeedTabRootAtAboutBlankRecordsNothing(t *testing.T) {
	c, _ := newTestClient(t)
	c.seedTab(target.ID("tab-9"), "about:blank", "")

	if n := c.tabs.Load().Len(); n != 0 {
		t.Errorf("store length = %d, want 0", n)
	}
}

func TestSeedTabIsIdempotent(t *testing.T) {
	c, _ := newTestClient(t)
	id := target.ID("tab-5")

	c.seedTab(id, "https://example.com/", "")
	before, _ := c.tabs.Load().Get(tabhistory.TabID(id))
	c.seedTab(id, "https://other.example/", "")
	after, _ := c.tabs.Load().Get(tabhistory.TabID(id))

	if after != before {
		t.Error("re-seeding an existing tab should not change its record")
	}
}

func TestNonWebURLsProduceNoVisits(t *testing.T) {
	c, visits := newTestClient(t)
	id := target.ID("tab-2")

	c.recordNavigation(id, "chrome://newtab/", "load")
	c.recordNavigation(id, "about:blank", "load")
	if len(*visits) != 0 {
		t.Fatalf("expected no visits, got %d", len(*visits))
	}

	// The history still advances so the next real page has a referrer.
	c.recordNavigation(id, "https://example.com/", "load")
	if len(*visits) != 1 {
		t.Fatalf("expected 1 visit, got %d", len(*visits))
	}
}

func TestTargetDestroyedRemovesHistory(t *testing.T) {
	c, _ := newTestClient(t)
	id := target.ID("tab-3")

	c.recordNavigation(id, "https://example.com/", "load")
	if _, ok := c.tabs.Load().Get(tabhistory.TabID(id)); !ok {
		t.Fatal("expected history record before close")
	}

	c.handleTargetDestroyed(id)
	if _, ok := c.tabs.Load().Get(tabhistory.TabID(id)); ok {
		t.Error("expected history record removed after close")
	}
}

func TestMatchesTabURL(t *testing.T) {
	c, _ := newTestClient(t)
	if !c.matchesTabURL("https://anything.example/") {
		t.Error("empty filter should match everything")
	}

	c.cfg.TabURLFilter = "example.com"
	if !c.matchesTabURL("https://EXAMPLE.com/page") {
		t.Error("filter match should be case-insensitive")
	}
	if c.matchesTabURL("https://other.net/") {
		t.Error("non-matching url should be filtered")
	}
}

func TestShortTabID(t *testing.T) {
	if got := ShortTabID("ABCDEFGH1234"); got != "ABCDEFGH" {
		t.Errorf("ShortTabID = %q", got)
	}
	if got := ShortTabID("AB"); got != "AB" {
		t.Errorf("ShortTabID short input = %q", got)
	}
}
