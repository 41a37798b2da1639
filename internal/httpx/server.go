package httpx

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fpedia/fpedia-backend/internal/auth"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// principal: email hasil autentikasi layanan auth di depan (reverse proxy
// memverifikasi session lalu meneruskan emailnya di header ini).
func principal(r *http.Request) string {
	return r.Header.Get("X-Authenticated-Email")
}

// RequireAdmin: satu-satunya pintu cek admin, dipasang di subtree /api/admin.
func RequireAdmin(adminEmail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.IsAdmin(principal(r), adminEmail) {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Maintenance menutup endpoint publik; webhook pembayaran dan admin tetap
// dilayani supaya order yang sudah jalan tidak nyangkut.
func Maintenance(enabled bool, adminEmail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled ||
				strings.HasPrefix(r.URL.Path, "/api/webhooks/") ||
				strings.HasPrefix(r.URL.Path, "/api/admin/") ||
				r.URL.Path == "/healthz" ||
				auth.IsAdmin(principal(r), adminEmail) {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusServiceUnavailable, "Sedang maintenance, coba lagi nanti")
		})
	}
}

// clientKey: ip + user-agent utk rate limit.
func clientInfo(r *http.Request) (ip, ua string) {
	// RemoteAddr tanpa port (mis. IPv6 polos) dipakai apa adanya;
	// LastIndex(":") akan memotong alamat IPv6 di tempat yang salah.
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || ip == "" {
		ip = r.RemoteAddr
	}
	if ip == "" {
		ip = "unknown"
	}
	ua = r.Header.Get("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	return ip, ua
}
