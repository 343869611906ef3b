package tabhistory

import "sync"

// Holder owns the live Store value and serializes mutations. Each Mutate call
// is one atomic read-modify-write: the function receives the current store and
// returns the replacement, with no suspension point in between, so interleaved
// events for the same tab can never cause a lost update. Readers get whatever
// complete snapshot was current when they called Load.
type Holder struct {
	mu    sync.Mutex
	store Store
}

// NewHolder creates a Holder around an empty store.
func NewHolder() *Holder {
	return &Holder{store: NewStore()}
}

// Load returns the current store snapshot.
func (h *Holder) Load() Store {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store
}

// Mutate replaces the store with fn's result. fn must not block; it runs
// under the holder's lock.
func (h *Holder) Mutate(fn func(Store) Store) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.store = fn(h.store)
}
