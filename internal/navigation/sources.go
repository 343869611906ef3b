package navigation

import (
	"log/slog"

	"github.com/dgnsrekt/trail_agent/internal/urlnorm"
)

// Source labels. These match the "source" field emitted by the injected page
// hook and are carried through to visit logging.
const (
	SourcePushState    = "pushState"
	SourceReplaceState = "replaceState"
	SourcePopState     = "popstate"
	SourceMutation     = "mutation"
)

// Signal is one raw "the URL may have changed" observation from a page.
//
// URL is the target the history call was invoked with and may be empty (a
// pushState call can omit it, and popstate carries no URL at all). Location
// is the page's location after the change, which every detector can supply.
type Signal struct {
	Source   string `json:"source"`
	URL      string `json:"url"`
	Location string `json:"location"`
}

// Hooks are the closures a Dispatcher shares with its owner. The owner
// decides how state is stored; the sources only read, replace, and notify.
type Hooks struct {
	GetState        func() State
	UpdateState     func(State)
	OnNewNavigation func(rawURL, source string)
}

// source evaluates one kind of navigation signal.
type source interface {
	label() string
	observe(sig Signal, norm *urlnorm.Normalizer, hooks Hooks)
}

// Dispatcher fans signals from all four detectors into the shared decision
// function. No single browser mechanism fires reliably across SPA frameworks;
// layering the detectors is safe because ShouldHandleNavigation absorbs
// redundant triggers for the same transition.
type Dispatcher struct {
	norm    *urlnorm.Normalizer
	hooks   Hooks
	sources map[string]source
}

// NewDispatcher builds a Dispatcher with all four standard sources installed.
func NewDispatcher(norm *urlnorm.Normalizer, hooks Hooks) *Dispatcher {
	return &Dispatcher{
		norm:  norm,
		hooks: hooks,
		sources: map[string]source{
			SourcePushState:    historySource{name: SourcePushState},
			SourceReplaceState: historySource{name: SourceReplaceState},
			SourcePopState:     popStateSource{},
			SourceMutation:     mutationSource{},
		},
	}
}

// Dispatch routes a signal to its source. Unknown sources are logged and
// dropped rather than guessed at.
func (d *Dispatcher) Dispatch(sig Signal) {
	src, ok := d.sources[sig.Source]
	if !ok {
		slog.Debug("navigation signal from unknown source dropped", "source", sig.Source)
		return
	}
	src.observe(sig, d.norm, d.hooks)
}

// evaluate runs the decision function for rawURL and applies the outcome.
func evaluate(rawURL, label string, norm *urlnorm.Normalizer, hooks Hooks) {
	decision := ShouldHandleNavigation(norm, hooks.GetState(), rawURL)
	hooks.UpdateState(decision.State)
	if decision.ShouldHandle {
		slog.Debug("navigation accepted", "source", label, "url", rawURL)
		hooks.OnNewNavigation(rawURL, label)
	}
}

// historySource handles the pushState and replaceState interceptors. The
// injected hook calls through to the original history method before
// signalling, so browser behavior is preserved; here we only extract the
// target URL, falling back to the post-call location when the history call
// omitted one.
type historySource struct {
	name string
}

func (h historySource) label() string { return h.name }

func (h historySource) observe(sig Signal, norm *urlnorm.Normalizer, hooks Hooks) {
	rawURL := sig.URL
	if rawURL == "" {
		rawURL = sig.Location
	}
	if rawURL == "" {
		return
	}
	evaluate(rawURL, h.name, norm, hooks)
}

// popStateSource handles the browser back/forward event, which carries no URL
// itself; the URL is re-derived from the current location.
type popStateSource struct{}

func (popStateSource) label() string { return SourcePopState }

func (popStateSource) observe(sig Signal, norm *urlnorm.Normalizer, hooks Hooks) {
	if sig.Location == "" {
		return
	}
	evaluate(sig.Location, SourcePopState, norm, hooks)
}

// mutationSource is the catch-all for SPA frameworks that change the URL
// without the instrumented history methods or popstate. DOM mutations fire
// constantly, so the location is compared against the last known URL before
// the decision function is even consulted.
type mutationSource struct{}

func (mutationSource) label() string { return SourceMutation }

func (mutationSource) observe(sig Signal, norm *urlnorm.Normalizer, hooks Hooks) {
	if sig.Location == "" || sig.Location == hooks.GetState().LastKnownURL {
		return
	}
	evaluate(sig.Location, SourceMutation, norm, hooks)
}
