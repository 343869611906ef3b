package urlnorm

import (
	"strings"
	"testing"
)

func TestNormalizeStripsTrackingParams(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "utm params removed",
			in:   "https://example.com/page?utm_source=news&utm_medium=email",
			want: "https://example.com/page",
		},
		{
			name: "mixed tracking and real params",
			in:   "https://example.com/search?q=hello&gclid=abc123&fbclid=def",
			want: "https://example.com/search?q=hello",
		},
		{
			name: "clean url unchanged",
			in:   "https://example.com/page",
			want: "https://example.com/page",
		},
		{
			name: "fragment preserved",
			in:   "https://example.com/page?utm_source=test#section",
			want: "https://example.com/page#section",
		},
		{
			name: "fragment preserved without query",
			in:   "https://example.com/docs#install",
			want: "https://example.com/docs#install",
		},
		{
			name: "path and port preserved",
			in:   "http://localhost:8080/a/b?mc_eid=1&page=2",
			want: "http://localhost:8080/a/b?page=2",
		},
		{
			name: "all params tracking leaves bare path",
			in:   "https://example.com/page?gclid=1&msclkid=2&twclid=3",
			want: "https://example.com/page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://example.com/page?utm_source=a&b=1&a=2#frag",
		"https://example.com/",
		"https://example.com/path?z=1&a=2&m=3",
		"not-a-url",
		"/relative/path?utm_campaign=x&q=1",
		"https://example.com/page?q=caf%C3%A9",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizeTrackingParamInvariance(t *testing.T) {
	base := "https://example.com/page?q=1"
	want := Normalize(base)
	for _, p := range []string{"utm_source", "gclid", "fbclid", "mc_eid", "sid"} {
		got := Normalize(base + "&" + p + "=x")
		if got != want {
			t.Errorf("Normalize with %s=x = %q; want %q", p, got, want)
		}
	}
}

func TestNormalizeMalformedInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"not-a-url", "not-a-url"},
		{"", ""},
		{"/relative?utm_source=x&keep=1", "/relative?keep=1"},
		{"weird?gclid=1#h", "weird#h"},
		{"://bad", "://bad"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewExtraAndKeep(t *testing.T) {
	n := New([]string{"custom_tracker"}, []string{"id"})

	got := n.Normalize("https://example.com/item?custom_tracker=1&id=42")
	if got != "https://example.com/item?id=42" {
		t.Errorf("extra/keep adjustment: got %q", got)
	}

	// Default set still strips id.
	got = Normalize("https://example.com/item?id=42")
	if got != "https://example.com/item" {
		t.Errorf("default set should strip id: got %q", got)
	}
}

func TestNormalizeSortsRemainingQuery(t *testing.T) {
	got := Normalize("https://example.com/p?z=3&a=1&m=2")
	if got != "https://example.com/p?a=1&m=2&z=3" {
		t.Errorf("query not deterministically serialized: %q", got)
	}
	if !strings.HasPrefix(got, "https://example.com/p?") {
		t.Errorf("origin/path mangled: %q", got)
	}
}
