// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects industry-standard headers on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • Content-Security-Policy   –  self-only policy, see DefaultCSP
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP; handlers may replace any of
//   them, and nothing can be added once the body is written.
// • Editor widgets emit an inline <script> and, with extra CSS, an inline
//   <style>, so DefaultCSP allows 'unsafe-inline' for both.  Hosts serving
//   CodeMirror from a CDN pass their own policy.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

// DefaultCSP is the policy used by Security when none is given.
const DefaultCSP = "default-src 'self'; img-src 'self' data:; object-src 'none'; " +
	"script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; " +
	"base-uri 'self'; frame-ancestors 'none'"

// Security returns a middleware setting security headers on every response.
// An empty csp selects DefaultCSP.  hsts is skipped when false so plain-HTTP
// development hosts are not pinned to HTTPS.
func Security(csp string, hsts bool) func(http.Handler) http.Handler {
	if csp == "" {
		csp = DefaultCSP
	}
	const (
		stsValue = "max-age=63072000; includeSubDomains; preload"
		xfo      = "DENY"
		nosn     = "nosniff"
		refer    = "strict-origin-when-cross-origin"
		perm     = "geolocation=(), microphone=(), camera=()"
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if hsts {
				h.Set("Strict-Transport-Security", stsValue)
			}
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Frame-Options", xfo)
			h.Set("X-Content-Type-Options", nosn)
			h.Set("Referrer-Policy", refer)
			h.Set("Permissions-Policy", perm)

			next.ServeHTTP(w, r)
		})
	}
}
