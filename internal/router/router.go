// Package router dispatches the three runtime message kinds between the
// page-side event sources and the background-side tab-history store and
// referrer resolver.
package router

import (
	"context"
	"log/slog"

	"github.com/dgnsrekt/trail_agent/internal/referrer"
	"github.com/dgnsrekt/trail_agent/internal/tabhistory"
	"github.com/dgnsrekt/trail_agent/internal/types"
)

// Sender forwards a payload to the PKM ingestion host. Transport mechanics
// (native messaging, HTTP fallback) live behind this interface.
type Sender interface {
	Send(ctx context.Context, endpoint string, data any, baseURL string) error
}

// Router holds no per-request state; the only long-lived state is the
// tab-history holder it shares with the CDP layer.
type Router struct {
	tabs   *tabhistory.Holder
	sender Sender
}

// New builds a Router over the shared tab-history holder. sender may be nil
// when outbound forwarding is disabled.
func New(tabs *tabhistory.Holder, sender Sender) *Router {
	return &Router{tabs: tabs, sender: sender}
}

// GetReferrer resolves the referrer for tabID. A tab with no record resolves
// to an empty referrer rather than an error; only a missing tab id (a message
// that arrived without sender context) is a routed error.
func (r *Router) GetReferrer(tabID tabhistory.TabID) (types.ReferrerInfo, error) {
	if tabID == "" {
		return types.ReferrerInfo{}, newError(CodeNoTabID, "no tab ID", nil)
	}

	store := r.tabs.Load()
	history, _ := store.Get(tabID)

	var opener tabhistory.TabHistory
	if history.HasOpener() {
		opener, _ = store.Get(history.OpenerTabID)
	}

	info := referrer.Resolve(history, opener, tabID)
	slog.Debug("referrer resolved",
		"tab_id", tabID,
		"referrer", info.Referrer,
		"group_id", info.GroupID,
		"opener_tab_id", info.OpenerTabID,
	)
	return info, nil
}

// SPANavigation folds a client-side navigation, invisible to the background's
// own tab events, into the per-tab history used for referrer resolution. The
// update tolerates a tab that was never created (first record on first use).
func (r *Router) SPANavigation(tabID tabhistory.TabID, url string) error {
	if tabID == "" {
		return newError(CodeNoTabID, "no tab ID", nil)
	}
	if url == "" {
		return newError(CodeMissingField, "spaNavigation requires a url", nil)
	}

	r.tabs.Mutate(func(store tabhistory.Store) tabhistory.Store {
		current, _ := store.Get(tabID)
		return store.Add(tabID, tabhistory.Update(current, url, ""))
	})

	slog.Debug("spa navigation recorded", "tab_id", tabID, "url", url)
	return nil
}

// SendToServer forwards payload data to the ingestion host.
func (r *Router) SendToServer(ctx context.Context, endpoint string, data any, baseURL string) error {
	if r.sender == nil {
		return newError(CodeSendFailed, "no outbound transport configured", nil)
	}
	if err := r.sender.Send(ctx, endpoint, data, baseURL); err != nil {
		return newError(CodeSendFailed, "forward to ingestion host failed", err)
	}
	return nil
}

// HandleMessage routes one action-keyed message. The result is the body to
// return to the caller; failures come back as CodedErrors, never panics.
func (r *Router) HandleMessage(ctx context.Context, tabID tabhistory.TabID, msg types.Message) (any, error) {
	switch msg.Action {
	case types.ActionGetReferrer:
		return r.GetReferrer(tabID)

	case types.ActionSPANavigation:
		if err := r.SPANavigation(tabID, msg.URL); err != nil {
			return nil, err
		}
		return statusBody{Status: "ok"}, nil

	case types.ActionSendToServer:
		if msg.Endpoint == "" {
			return nil, newError(CodeMissingField, "sendToPKMServer requires an endpoint", nil)
		}
		if err := r.SendToServer(ctx, msg.Endpoint, msg.Data, msg.APIBaseURL); err != nil {
			return nil, err
		}
		return statusBody{Status: "sent"}, nil

	default:
		return nil, newError(CodeUnknownAction, "unknown action: "+msg.Action, nil)
	}
}

type statusBody struct {
	Status string `json:"status"`
}
