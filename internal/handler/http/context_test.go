package http

import (
	"net/http"
	"testing"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		remoteAddr string
		want       string
	}{
		{"10.0.0.5:51234", "10.0.0.5"},
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"10.0.0.5", "10.0.0.5"}, // already bare, e.g. behind a test client
	}
	for _, c := range cases {
		r := &http.Request{RemoteAddr: c.remoteAddr}
		if got := clientIP(r); got != c.want {
			t.Errorf("clientIP(%q) = %q, want %q", c.remoteAddr, got, c.want)
		}
	}
}

func TestClientIPStableAcrossConnections(t *testing.T) {
	// Two requests from the same host arrive on distinct ephemeral ports;
	// the stored capture IP must match so same-day grouping can associate them.
	a := clientIP(&http.Request{RemoteAddr: "10.0.0.5:51234"})
	b := clientIP(&http.Request{RemoteAddr: "10.0.0.5:52871"})
	if a != b {
		t.Errorf("clientIP differs across connections from one host: %q vs %q", a, b)
	}
}

func TestParseIntQuery(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"42", 42},
		{"abc", 0},
	}
	for _, c := range cases {
		if got := parseIntQuery(c.input); got != c.want {
			t.Errorf("parseIntQuery(%q) = %d, want %d", c.input, got, c.want)
		}
	}
}
