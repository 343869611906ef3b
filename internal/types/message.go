package types

import "encoding/json"

// Message actions accepted by the router. These mirror the browser-side
// runtime messaging contract.
const (
	ActionGetReferrer   = "getReferrer"
	ActionSPANavigation = "spaNavigation"
	ActionSendToServer  = "sendToPKMServer"
)

// Message is the action-keyed envelope for inbound runtime messages.
// Only the fields relevant to the given action are populated.
type Message struct {
	Action string `json:"action"`

	// spaNavigation fields.
	URL               string `json:"url,omitempty"`
	PageLoadedAt      string `json:"page_loaded_at,omitempty"`
	Referrer          string `json:"referrer,omitempty"`
	ReferrerTimestamp int64  `json:"referrer_timestamp,omitempty"`

	// sendToPKMServer fields.
	Endpoint   string          `json:"endpoint,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	APIBaseURL string          `json:"api_base_url,omitempty"`
}

// ReferrerInfo is the transient result of referrer resolution. It is computed
// on demand and never persisted.
type ReferrerInfo struct {
	Referrer          string `json:"referrer"`
	ReferrerTimestamp int64  `json:"referrer_timestamp,omitempty"`
	TabID             string `json:"tab_id,omitempty"`
	GroupID           string `json:"group_id,omitempty"`
	OpenerTabID       string `json:"opener_tab_id,omitempty"`
}
