// Package clientip resolves the address the per-IP limiter keys on.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// FromRequest returns the caller's IP address. It trusts r.RemoteAddr only:
// the API serves traffic directly, with no proxy tier in front, so forwarding
// headers are caller-controlled and never consulted.
func FromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port (some test clients do this)
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
