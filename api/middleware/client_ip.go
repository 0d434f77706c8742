package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the originating address for rate limiting. The first
// X-Forwarded-For hop wins when a proxy fronts the service.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
