package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsHostAllowed(t *testing.T) {
	tests := []struct {
		host    string
		allowed []string
		want    bool
	}{
		{"example.com", nil, true},
		{"example.com:8080", []string{"example.com:8080"}, true},
		{"example.com", []string{"example.com:8080"}, true},
		{"example.com:8080", []string{"example.com"}, true},
		{"localhost:3000", []string{"localhost"}, true},
		{"[::1]:8080", []string{"[::1]:8080"}, true},
		{"::1", []string{"[::1]:8080"}, true},
		{"[::1]:8080", []string{"::1"}, true},
		{"[2001:db8::7334]:443", []string{"2001:db8::7334"}, true},
		{"[fe80::1%lo0]:8080", []string{"fe80::1%lo0"}, true},
		{"Spend.Example:8080", []string{"spend.example"}, true},
		{"  spend.example:8080  ", []string{"spend.example"}, true},
		{"spend.example", []string{"  spend.example  "}, true},
		{"api.spend.example", []string{"spend.example", "api.spend.example"}, true},

		{"evil.com", []string{"spend.example", "api.spend.example"}, false},
		{"sub.spend.example", []string{"spend.example"}, false},
		{"[::2]:8080", []string{"[::1]:8080"}, false},
	}

	for _, tt := range tests {
		if got := IsHostAllowed(tt.host, tt.allowed); got != tt.want {
			t.Errorf("IsHostAllowed(%q, %v) = %v, want %v", tt.host, tt.allowed, got, tt.want)
		}
	}
}

func TestRequireHTTPS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireHTTPS([]string{"example.com"})(next)

	tests := []struct {
		name     string
		host     string
		proto    string
		wantCode int
		wantLoc  string
	}{
		{name: "plain http redirects", host: "example.com", wantCode: http.StatusMovedPermanently, wantLoc: "https://example.com/records"},
		{name: "http port dropped", host: "example.com:80", wantCode: http.StatusMovedPermanently, wantLoc: "https://example.com/records"},
		{name: "forwarded https passes", host: "example.com", proto: "https", wantCode: http.StatusOK},
		{name: "unknown host rejected", host: "evil.com", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/records", nil)
			req.Host = tt.host
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantLoc != "" {
				if got := rr.Header().Get("Location"); got != tt.wantLoc {
					t.Errorf("Location = %q, want %q", got, tt.wantLoc)
				}
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := HSTS(SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
	} {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}
