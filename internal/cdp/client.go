// Package cdp attaches to a running Chromium over the DevTools Protocol and
// turns its target and page events, plus signals from the injected navigation
// hook, into tab-history updates and visit records.
package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/dgnsrekt/trail_agent/internal/config"
	"github.com/dgnsrekt/trail_agent/internal/navigation"
	"github.com/dgnsrekt/trail_agent/internal/referrer"
	"github.com/dgnsrekt/trail_agent/internal/tabhistory"
	"github.com/dgnsrekt/trail_agent/internal/types"
	"github.com/dgnsrekt/trail_agent/internal/urlnorm"
)

// VisitFunc receives each accepted visit record.
type VisitFunc func(types.VisitPayload)

// Client manages CDP connections to browser tabs.
type Client struct {
	cfg     *config.Config
	norm    *urlnorm.Normalizer
	tabs    *tabhistory.Holder
	onVisit VisitFunc

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	tabsMu  sync.RWMutex
	tabCtxs map[target.ID]*tabContext
}

// tabContext pairs a per-tab chromedp context with the tab's navigation
// state. The mutex serializes hook signals against full-navigation resets;
// the tab-history store has its own lock in the Holder.
type tabContext struct {
	id     target.ID
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	dispatcher *navigation.Dispatcher
	state      navigation.State
}

// NewClient wires the tracker's CDP layer. onVisit may be nil.
func NewClient(cfg *config.Config, norm *urlnorm.Normalizer, tabs *tabhistory.Holder, onVisit VisitFunc) *Client {
	return &Client{
		cfg:     cfg,
		norm:    norm,
		tabs:    tabs,
		onVisit: onVisit,
		tabCtxs: make(map[target.ID]*tabContext),
	}
}

// Connect dials the browser, starts listening for tab lifecycle events, and
// attaches to every already-open page target.
func (c *Client) Connect(ctx context.Context) error {
	cdpURL := c.cfg.GetCDPURL()
	slog.Info("Connecting to Chromium", "url", cdpURL)

	c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(ctx, cdpURL)
	c.browserCtx, c.browserCancel = chromedp.NewContext(c.allocCtx)

	if err := chromedp.Run(c.browserCtx); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	chromedp.ListenBrowser(c.browserCtx, c.browserEventHandler)

	targets, err := chromedp.Targets(c.browserCtx)
	if err != nil {
		return fmt.Errorf("failed to enumerate targets: %w", err)
	}
	slog.Info("Found browser targets", "count", len(targets))

	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		if !c.matchesTabURL(t.URL) {
			slog.Debug("Skipping tab (url filter)", "url", t.URL)
			continue
		}
		c.seedTab(t.TargetID, t.URL, t.OpenerID)
		if err := c.attachToTab(t.TargetID, t.URL); err != nil {
			slog.Error("Failed to attach to tab", "target_id", t.TargetID, "url", truncateURL(t.URL), "error", err)
		}
	}

	slog.Info("Attached to tabs", "count", c.GetTabCount())
	return nil
}

// browserEventHandler reacts to browser-wide tab lifecycle events.
func (c *Client) browserEventHandler(ev interface{}) {
	switch e := ev.(type) {
	case *target.EventTargetCreated:
		c.handleTargetCreated(e.TargetInfo)
	case *target.EventTargetDestroyed:
		c.handleTargetDestroyed(e.TargetID)
	}
}

func (c *Client) handleTargetCreated(info *target.Info) {
	if info.Type != "page" {
		return
	}
	if info.URL != "" && !c.matchesTabURL(info.URL) {
		return
	}

	c.seedTab(info.TargetID, info.URL, info.OpenerID)
	if err := c.attachToTab(info.TargetID, info.URL); err != nil {
		slog.Error("Failed to attach to new tab", "target_id", info.TargetID, "error", err)
	}
}

// seedTab records a tab's first history entry. A root tab still sitting at
// about:blank gets no record yet (its first real navigation creates one), but
// a tab with an opener needs the placeholder record immediately so the opener
// linkage and group id survive until the target URL loads.
func (c *Client) seedTab(id target.ID, url string, openerID target.ID) {
	tabID := tabhistory.TabID(id)

	c.tabs.Mutate(func(store tabhistory.Store) tabhistory.Store {
		if _, exists := store.Get(tabID); exists {
			return store
		}

		opener := tabhistory.TabID(openerID)
		openerGroup := ""
		if opener != "" {
			if oh, ok := store.Get(opener); ok {
				openerGroup = oh.GroupID
			}
		}

		if url == "" || url == "about:blank" {
			if opener == "" {
				return store
			}
			url = "about:blank"
		}

		return store.Add(tabID, tabhistory.New(url, opener, nil, openerGroup))
	})
}

func (c *Client) handleTargetDestroyed(id target.ID) {
	c.tabsMu.Lock()
	tab, ok := c.tabCtxs[id]
	if ok {
		delete(c.tabCtxs, id)
	}
	c.tabsMu.Unlock()

	if ok {
		tab.cancel()
	}

	// Last write wins: a closed tab has no further legitimate navigations.
	c.tabs.Mutate(func(store tabhistory.Store) tabhistory.Store {
		return store.Remove(tabhistory.TabID(id))
	})
	if ok {
		slog.Info("Tab closed", "tab_id", ShortTabID(string(id)))
	}
}

// attachToTab opens a session on the target, installs the navigation hook,
// and starts handling its page and binding events.
func (c *Client) attachToTab(id target.ID, url string) error {
	c.tabsMu.Lock()
	if _, exists := c.tabCtxs[id]; exists {
		c.tabsMu.Unlock()
		return nil
	}
	c.tabsMu.Unlock()

	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx, chromedp.WithTargetID(id))

	tab := &tabContext{id: id, ctx: tabCtx, cancel: tabCancel}
	if url != "" {
		tab.state = navigation.NewState(c.norm, url)
	}
	tab.dispatcher = navigation.NewDispatcher(c.norm, navigation.Hooks{
		GetState:    func() navigation.State { return tab.state },
		UpdateState: func(s navigation.State) { tab.state = s },
		OnNewNavigation: func(rawURL, source string) {
			c.recordNavigation(id, rawURL, source)
		},
	})

	install := chromedp.ActionFunc(func(ctx context.Context) error {
		if _, err := page.AddScriptToEvaluateOnNewDocument(navHookScript).Do(ctx); err != nil {
			return err
		}
		return nil
	})
	if err := chromedp.Run(tabCtx,
		page.Enable(),
		runtime.Enable(),
		runtime.AddBinding(navBinding),
		install,
		chromedp.Evaluate(navHookScript, nil),
	); err != nil {
		tabCancel()
		return fmt.Errorf("failed to install navigation hook: %w", err)
	}

	c.tabsMu.Lock()
	c.tabCtxs[id] = tab
	c.tabsMu.Unlock()

	chromedp.ListenTarget(tabCtx, c.createEventHandler(tab))
	slog.Info("Attached to tab", "tab_id", ShortTabID(string(id)))
	return nil
}

func (c *Client) createEventHandler(tab *tabContext) func(ev interface{}) {
	return func(ev interface{}) {
		switch e := ev.(type) {
		case *page.EventFrameNavigated:
			if e.Frame.ParentID == "" {
				c.handleFullNavigation(tab, e.Frame.URL)
			}
		case *page.EventNavigatedWithinDocument:
			// Redundant with the in-page detectors, which is fine: it goes
			// through the same catch-all source and the decision function
			// absorbs duplicates.
			tab.mu.Lock()
			tab.dispatcher.Dispatch(navigation.Signal{
				Source:   navigation.SourceMutation,
				Location: e.URL,
			})
			tab.mu.Unlock()
		case *runtime.EventBindingCalled:
			if e.Name == navBinding {
				c.handleHookSignal(tab, e.Payload)
			}
		}
	}
}

// handleFullNavigation resets the tab's page-context state (a full load tears
// the old document down) and records the visit.
func (c *Client) handleFullNavigation(tab *tabContext, url string) {
	tab.mu.Lock()
	tab.state = navigation.NewState(c.norm, url)
	tab.mu.Unlock()

	slog.Info("Tab navigated (full)", "tab_id", ShortTabID(string(tab.id)), "url", truncateURL(url))
	c.recordNavigation(tab.id, url, "load")
}

func (c *Client) handleHookSignal(tab *tabContext, payload string) {
	var sig navigation.Signal
	if err := json.Unmarshal([]byte(payload), &sig); err != nil {
		slog.Debug("malformed hook signal dropped", "error", err)
		return
	}

	tab.mu.Lock()
	tab.dispatcher.Dispatch(sig)
	tab.mu.Unlock()
}

// recordNavigation folds one accepted navigation into the tab-history store
// and emits the visit record. The store mutation is a single atomic
// read-modify-write; the referrer is resolved from the records captured
// inside it.
func (c *Client) recordNavigation(id target.ID, url, source string) {
	tabID := tabhistory.TabID(id)

	var updated, opener tabhistory.TabHistory
	c.tabs.Mutate(func(store tabhistory.Store) tabhistory.Store {
		current, _ := store.Get(tabID)
		updated = tabhistory.Update(current, url, "")
		if updated.OpenerTabID != "" {
			opener, _ = store.Get(updated.OpenerTabID)
		}
		return store.Add(tabID, updated)
	})

	if !isTrackable(url) {
		return
	}

	info := referrer.Resolve(updated, opener, tabID)
	visit := types.VisitPayload{
		URL:               url,
		PageLoadedAt:      time.Now().UTC().Format(time.RFC3339),
		Referrer:          info.Referrer,
		ReferrerTimestamp: info.ReferrerTimestamp,
		TabID:             string(tabID),
		GroupID:           info.GroupID,
		OpenerTabID:       info.OpenerTabID,
	}

	slog.Info("Visit recorded",
		"tab_id", ShortTabID(string(id)),
		"source", source,
		"url", truncateURL(url),
		"referrer", truncateURL(info.Referrer),
		"group_id", info.GroupID,
	)

	if c.onVisit != nil {
		c.onVisit(visit)
	}
}

// Close tears down all tab sessions and the browser connection.
func (c *Client) Close() error {
	c.tabsMu.Lock()
	for _, tab := range c.tabCtxs {
		tab.cancel()
	}
	c.tabCtxs = make(map[target.ID]*tabContext)
	c.tabsMu.Unlock()

	if c.browserCancel != nil {
		c.browserCancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}

	slog.Info("CDP client closed")
	return nil
}

// GetTabCount returns the number of attached tabs.
func (c *Client) GetTabCount() int {
	c.tabsMu.RLock()
	defer c.tabsMu.RUnlock()
	return len(c.tabCtxs)
}

func (c *Client) matchesTabURL(url string) bool {
	if c.cfg.TabURLFilter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(url), strings.ToLower(c.cfg.TabURLFilter))
}

// isTrackable filters out the browser's own surfaces; only web pages become
// visit records.
func isTrackable(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// ShortTabID returns the first 8 chars of a CDP target ID for log lines.
func ShortTabID(targetID string) string {
	if len(targetID) >= 8 {
		return targetID[:8]
	}
	return targetID
}

func truncateURL(url string) string {
	if len(url) > 120 {
		return url[:120] + "..."
	}
	return url
}
