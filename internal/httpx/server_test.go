package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMaintenanceMode(t *testing.T) {
	mw := Maintenance(true, "admin@example.com")(okHandler())

	tests := []struct {
		name      string
		path      string
		principal string
		wantCode  int
	}{
		{"public blocked", "/api/checkout", "", http.StatusServiceUnavailable},
		{"webhook exempt", "/api/webhooks/pakasir", "", http.StatusOK},
		{"admin subtree exempt", "/api/admin/products", "", http.StatusOK},
		{"healthz exempt", "/healthz", "", http.StatusOK},
		{"admin principal exempt", "/api/checkout", "admin@example.com", http.StatusOK},
		{"non-admin principal blocked", "/api/checkout", "user@example.com", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.principal != "" {
				req.Header.Set("X-Authenticated-Email", tt.principal)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestMaintenanceDisabledPassesAll(t *testing.T) {
	mw := Maintenance(false, "admin@example.com")(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/checkout", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", rec.Code)
	}
}

func TestClientInfo(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		wantIP     string
	}{
		{"ipv4 with port", "203.0.113.9:44123", "203.0.113.9"},
		{"ipv6 with port", "[2001:db8::1]:44123", "2001:db8::1"},
		{"bare ipv6 stays intact", "2001:db8::1", "2001:db8::1"},
		{"bare ipv4", "203.0.113.9", "203.0.113.9"},
		{"empty", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("User-Agent", "Mozilla/5.0")
			ip, ua := clientInfo(req)
			if ip != tt.wantIP {
				t.Errorf("ip = %q, want %q", ip, tt.wantIP)
			}
			if ua != "Mozilla/5.0" {
				t.Errorf("ua = %q", ua)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ""
	req.Header.Del("User-Agent")
	if _, ua := clientInfo(req); ua != "unknown" {
		t.Errorf("ua fallback = %q", ua)
	}
}
