// Package navigation decides whether an observed URL change in a page context
// is a genuine new navigation or noise. Four independent detectors (history
// pushState/replaceState hooks, popstate, DOM mutation) feed one decision
// function, which absorbs duplicate and out-of-order signals by tracking the
// canonical current path and the set of paths already visited in this page
// context. The package is pure; it has no browser or CDP dependencies.
package navigation

import "github.com/dgnsrekt/trail_agent/internal/urlnorm"

// State is the navigation state of one live page context. Values are updated
// immutably: every accepted transition produces a new State, so a reader
// holding an old value never observes a half-applied change.
type State struct {
	// CurrentPath is the canonical URL of the active location.
	CurrentPath string
	// LastKnownURL is the raw URL last observed, used by the mutation
	// detector to skip unrelated DOM churn.
	LastKnownURL string

	visited map[string]struct{}
}

// NewState initializes state for a page context at initialURL. The invariant
// that CurrentPath is a member of the visited set holds from the start.
func NewState(norm *urlnorm.Normalizer, initialURL string) State {
	path := norm.Normalize(initialURL)
	return State{
		CurrentPath:  path,
		LastKnownURL: initialURL,
		visited:      map[string]struct{}{path: {}},
	}
}

// Visited reports whether the canonical path was already seen in this page
// context's lifetime.
func (s State) Visited(path string) bool {
	_, ok := s.visited[path]
	return ok
}

// VisitedCount returns the number of distinct canonical paths seen.
func (s State) VisitedCount() int {
	return len(s.visited)
}

func (s State) withPath(path, rawURL string) State {
	next := s
	next.CurrentPath = path
	next.LastKnownURL = rawURL
	return next
}

func (s State) withVisit(path, rawURL string) State {
	visited := make(map[string]struct{}, len(s.visited)+1)
	for p := range s.visited {
		visited[p] = struct{}{}
	}
	visited[path] = struct{}{}

	next := s.withPath(path, rawURL)
	next.visited = visited
	return next
}

// Decision is the outcome of evaluating one observed URL change.
type Decision struct {
	// ShouldHandle is true when the change is a brand-new navigation that
	// should produce a visit record.
	ShouldHandle bool
	// State is the (possibly unchanged) state after the evaluation.
	State State
}

// ShouldHandleNavigation evaluates newURL against state. Three outcomes:
//
//   - same canonical path: not a navigation (duplicate signal or tracking
//     noise); state is returned unchanged.
//   - different path already in the visited set: a back/forward revisit;
//     path tracking updates but no visit fires.
//   - unseen path: a new navigation; the path joins the visited set and
//     ShouldHandle is true.
//
// All four event sources share this function, so the semantics are the same
// regardless of which browser mechanism detected the change.
func ShouldHandleNavigation(norm *urlnorm.Normalizer, state State, newURL string) Decision {
	newPath := norm.Normalize(newURL)

	if newPath == state.CurrentPath {
		return Decision{ShouldHandle: false, State: state}
	}

	if state.Visited(newPath) {
		return Decision{ShouldHandle: false, State: state.withPath(newPath, newURL)}
	}

	return Decision{ShouldHandle: true, State: state.withVisit(newPath, newURL)}
}
