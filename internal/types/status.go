package types

// StatusInfo is the tracker's runtime status as reported by the API.
type StatusInfo struct {
	Status       string `json:"status"`
	AttachedTabs int    `json:"attached_tabs"`
	TrackedTabs  int    `json:"tracked_tabs"`
	Transport    string `json:"transport"`
	Subscribers  int    `json:"subscribers"`
}
