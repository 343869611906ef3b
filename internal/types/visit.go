package types

// VisitPayload is the outbound record produced for each accepted navigation
// and consumed by the PKM ingestion host.
type VisitPayload struct {
	URL          string `json:"url"`
	PageLoadedAt string `json:"page_loaded_at"`
	Referrer     string `json:"referrer"`
	// Content is opaque, externally compressed page content. Daemon-observed
	// navigations leave it empty; it is filled by clients that capture the
	// page themselves and submit through the sendToPKMServer path.
	Content           string `json:"content"`
	ReferrerTimestamp int64  `json:"referrer_timestamp,omitempty"`
	TabID             string `json:"tab_id,omitempty"`
	GroupID           string `json:"group_id,omitempty"`
	OpenerTabID       string `json:"opener_tab_id,omitempty"`
}
