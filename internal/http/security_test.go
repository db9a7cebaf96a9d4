package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct connection", "203.0.113.7:4711", nil, "203.0.113.7"},
		{"trusted proxy with forwarded-for", "127.0.0.1:80",
			map[string]string{"X-Forwarded-For": "198.51.100.9, 10.0.0.1"}, "198.51.100.9"},
		{"trusted proxy with real-ip", "10.0.0.5:80",
			map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"untrusted peer cannot spoof", "203.0.113.7:4711",
			map[string]string{"X-Forwarded-For": "198.51.100.9"}, "203.0.113.7"},
		{"garbage forwarded value falls back", "127.0.0.1:80",
			map[string]string{"X-Forwarded-For": "not-an-ip"}, "127.0.0.1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
			r.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			if got := extractClientIP(r); got != tc.want {
				t.Fatalf("extractClientIP() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSuspicionReason(t *testing.T) {
	cases := []struct {
		name   string
		target string
		setup  func(*http.Request)
		want   string
	}{
		{"clean api request", "/api/summary?type=expense", nil, ""},
		{"path traversal", "/api/../etc/passwd", nil, "path"},
		{"injection in query", "/api/summary?q=eval(alert)", nil, "query"},
		{"scanner user agent", "/api/summary", func(r *http.Request) {
			r.Header.Set("User-Agent", "sqlmap/1.7")
		}, "user_agent"},
		{"long forwarded chain", "/api/summary", func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "1.1.1.1,2.2.2.2,3.3.3.3,4.4.4.4,5.5.5.5,6.6.6.6,7.7.7.7")
		}, "forwarded_chain"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.setup != nil {
				tc.setup(r)
			}
			if got := suspicionReason(r); got != tc.want {
				t.Fatalf("suspicionReason() = %q, want %q", got, tc.want)
			}
		})
	}
}
