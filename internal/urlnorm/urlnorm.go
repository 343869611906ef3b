// Package urlnorm computes canonical URL identity strings by stripping known
// tracking query parameters. Two URLs denote the same navigation target iff
// their normalized forms are equal.
package urlnorm

import (
	"net/url"
	"strings"
)

// Normalizer strips tracking parameters from URLs. The zero value is not
// usable; construct with New.
type Normalizer struct {
	strip map[string]struct{}
}

// New builds a Normalizer from the default tracking-parameter set, adding
// every name in extra and rescuing every name in keep. Both lists exist
// because the default set contains deliberately aggressive generic entries
// (id, sid, pid) that can collide with legitimate application parameters.
func New(extra, keep []string) *Normalizer {
	strip := make(map[string]struct{}, len(defaultTrackingParams)+len(extra))
	for _, p := range defaultTrackingParams {
		strip[p] = struct{}{}
	}
	for _, p := range extra {
		if p != "" {
			strip[strings.ToLower(p)] = struct{}{}
		}
	}
	for _, p := range keep {
		delete(strip, strings.ToLower(p))
	}
	return &Normalizer{strip: strip}
}

var defaultNormalizer = New(nil, nil)

// Normalize applies the default Normalizer.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// Normalize returns the canonical form of raw: origin + path, the non-tracking
// query parameters serialized in sorted key order, and the fragment verbatim.
// It never fails; unparseable input goes through a best-effort string split
// that still removes tracking parameters. Normalize is idempotent.
func (n *Normalizer) Normalize(raw string) string {
	base, frag, hasFrag := strings.Cut(raw, "#")

	u, err := url.Parse(base)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return n.fallback(base, frag, hasFrag)
	}

	q := u.Query()
	for name := range q {
		if n.isTracking(name) {
			delete(q, name)
		}
	}

	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Host)
	b.WriteString(u.EscapedPath())
	if enc := q.Encode(); enc != "" {
		b.WriteByte('?')
		b.WriteString(enc)
	}
	if hasFrag {
		b.WriteByte('#')
		b.WriteString(frag)
	}
	return b.String()
}

// fallback handles relative or malformed input by splitting on the first '?'
// and filtering the query pairs in place, preserving their original order.
func (n *Normalizer) fallback(base, frag string, hasFrag bool) string {
	path, query, hasQuery := strings.Cut(base, "?")

	var b strings.Builder
	b.WriteString(path)
	if hasQuery {
		kept := make([]string, 0, 4)
		for _, pair := range strings.Split(query, "&") {
			name, _, _ := strings.Cut(pair, "=")
			if pair == "" || n.isTracking(name) {
				continue
			}
			kept = append(kept, pair)
		}
		if len(kept) > 0 {
			b.WriteByte('?')
			b.WriteString(strings.Join(kept, "&"))
		}
	}
	if hasFrag {
		b.WriteByte('#')
		b.WriteString(frag)
	}
	return b.String()
}

func (n *Normalizer) isTracking(name string) bool {
	_, ok := n.strip[strings.ToLower(name)]
	return ok
}
