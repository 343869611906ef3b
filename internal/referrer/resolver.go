// Package referrer computes the effective referrer for a tab from its history
// record and, when the tab was opened from another tab, the opener's record.
package referrer

import (
	"time"

	"github.com/dgnsrekt/trail_agent/internal/tabhistory"
	"github.com/dgnsrekt/trail_agent/internal/types"
)

// aboutBlank is the placeholder URL a browser gives a freshly spawned tab
// before it navigates to its real target.
const aboutBlank = "about:blank"

// Resolve computes the ReferrerInfo for a tab.
//
// When the tab has an opener and its own previous URL is still the
// about:blank placeholder (or absent), the referrer is the opener tab's
// current URL. Without this, a link opened in a new tab would look like its
// own referrer once the tab navigates. In every other case the referrer is
// the tab's previous URL, empty when there is none.
//
// Group and opener ids pass through from history regardless of which branch
// fired. openerHistory is ignored unless the special case applies; pass the
// zero value when the tab has no opener.
func Resolve(history, openerHistory tabhistory.TabHistory, tabID tabhistory.TabID) types.ReferrerInfo {
	info := types.ReferrerInfo{
		TabID:       string(tabID),
		GroupID:     history.GroupID,
		OpenerTabID: string(history.OpenerTabID),
	}

	if history.HasOpener() && blankPrevious(history.PreviousURL) && openerHistory.CurrentURL != "" {
		info.Referrer = openerHistory.CurrentURL
		info.ReferrerTimestamp = timestampMillis(openerHistory.Timestamp)
		return info
	}

	info.Referrer = history.PreviousURL
	info.ReferrerTimestamp = timestampMillis(history.PreviousURLTimestamp)
	return info
}

func blankPrevious(url string) bool {
	return url == "" || url == aboutBlank
}

// timestampMillis falls back to "now" for absent timestamps so downstream
// consumers always get a usable value.
func timestampMillis(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().UnixMilli()
	}
	return t.UnixMilli()
}
