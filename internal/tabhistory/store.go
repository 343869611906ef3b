package tabhistory

import "log/slog"

// Store maps tab ids to their history records. All operations are pure:
// mutations return a new Store and never touch the receiver, which makes the
// read-modify-write discipline of the event loop explicit and testable. The
// owner replaces its reference wholesale under a single lock; readers that
// grabbed an older value see a complete, consistent snapshot.
type Store map[TabID]TabHistory

// NewStore returns an empty store.
func NewStore() Store {
	return Store{}
}

// Add returns a store with id mapped to history. Records carrying neither a
// current nor a previous URL are rejected (the store invariant is that every
// entry has at least one), returning the receiver unchanged.
func (s Store) Add(id TabID, history TabHistory) Store {
	if history.CurrentURL == "" && history.PreviousURL == "" {
		slog.Debug("tab history rejected, no urls", "tab_id", id)
		return s
	}

	next := make(Store, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	next[id] = history
	return next
}

// Remove returns a store without id. Removing an absent id is a no-op.
func (s Store) Remove(id TabID) Store {
	if _, ok := s[id]; !ok {
		return s
	}

	next := make(Store, len(s))
	for k, v := range s {
		if k != id {
			next[k] = v
		}
	}
	return next
}

// Get looks up the record for id.
func (s Store) Get(id TabID) (TabHistory, bool) {
	h, ok := s[id]
	return h, ok
}

// Len returns the number of tracked tabs.
func (s Store) Len() int {
	return len(s)
}
