// Package tabhistory tracks per-tab navigation records for referrer
// resolution. The Store is updated immutably: every mutation returns a new
// value, so concurrent readers never observe a partially-updated structure.
package tabhistory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TabID identifies a browser tab. With CDP attached this is the target ID.
type TabID string

// TabHistory is the navigation record of one open tab. Empty strings and zero
// times mean "absent" (a brand-new tab has no previous URL).
//
// OpenerTabID and GroupID are sticky: once set they survive every subsequent
// update for the tab's lifetime.
type TabHistory struct {
	PreviousURL          string    `json:"previous_url,omitempty"`
	CurrentURL           string    `json:"current_url,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
	PreviousURLTimestamp time.Time `json:"previous_url_timestamp,omitzero"`
	OpenerTabID          TabID     `json:"opener_tab_id,omitempty"`
	GroupID              string    `json:"group_id,omitempty"`
}

// HasOpener reports whether this tab was spawned by another tab.
func (h TabHistory) HasOpener() bool {
	return h.OpenerTabID != ""
}

// New builds the first record for a tab. The group id is resolved in order:
// the opener's group id, then the group id of a previous record, then a fresh
// one. previous may be nil.
func New(url string, openerTabID TabID, previous *TabHistory, openerGroupID string) TabHistory {
	groupID := openerGroupID
	if groupID == "" && previous != nil {
		groupID = previous.GroupID
	}
	if groupID == "" {
		groupID = NewGroupID()
	}

	return TabHistory{
		CurrentURL:  url,
		Timestamp:   time.Now(),
		OpenerTabID: openerTabID,
		GroupID:     groupID,
	}
}

// Update applies a navigation to newURL on top of current. The current URL
// shifts into PreviousURL when the record has no previous URL yet or the URL
// actually changed; otherwise only the timestamp refreshes. A zero-value
// current is tolerated and synthesizes a sensible first record, so updating a
// tab that was never created is not an error.
//
// openerTabID is used only when current carries no opener of its own.
func Update(current TabHistory, newURL string, openerTabID TabID) TabHistory {
	next := TabHistory{
		PreviousURL:          current.PreviousURL,
		PreviousURLTimestamp: current.PreviousURLTimestamp,
		CurrentURL:           newURL,
		Timestamp:            time.Now(),
		OpenerTabID:          current.OpenerTabID,
		GroupID:              current.GroupID,
	}

	if current.CurrentURL != "" && (current.PreviousURL == "" || current.CurrentURL != newURL) {
		next.PreviousURL = current.CurrentURL
		next.PreviousURLTimestamp = current.Timestamp
	}

	if next.OpenerTabID == "" {
		next.OpenerTabID = openerTabID
	}
	if next.GroupID == "" {
		next.GroupID = NewGroupID()
	}

	return next
}

// NewGroupID generates a session/lineage identifier. A clock component plus a
// random fragment keeps ids unique without coordination and roughly sortable
// by creation time.
func NewGroupID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
