package middleware

import (
	"net"
	"net/http"
	"strings"

	pnet "grantwise/internal/platform/net"
)

// IdentityPort resolves the identifier a request's quota is counted against
type IdentityPort interface {
	Identify(r *http.Request) string
}

// IdentityFunc adapts a function to IdentityPort
type IdentityFunc func(r *http.Request) string

// Identify implements IdentityPort
func (f IdentityFunc) Identify(r *http.Request) string { return f(r) }

// KeyOrIP identifies callers by the X-API-Key header when present, else by
// client IP (run after RealIP)
var KeyOrIP IdentityFunc = func(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("X-API-Key")); k != "" {
		return "key:" + k
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// Identify stores the caller identifier on the request context. A nil port uses KeyOrIP
func Identify(p IdentityPort) func(http.Handler) http.Handler {
	if p == nil {
		p = KeyOrIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := pnet.WithRequest(r.Context(), "", p.Identify(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
