package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, X-Requested-With, " + RequestIDHeader
)

// CORSMiddleware handles Cross-Origin Resource Sharing headers for the dashboard
type CORSMiddleware struct {
	allowedOrigins []string
	allowAll       bool
}

// NewCORSMiddleware creates a new CORS middleware.
// No origins, or an origin of "*", allows every origin.
func NewCORSMiddleware(allowedOrigins ...string) *CORSMiddleware {
	c := &CORSMiddleware{allowAll: len(allowedOrigins) == 0}
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			c.allowAll = true
		default:
			c.allowedOrigins = append(c.allowedOrigins, o)
		}
	}
	return c
}

// Wrap wraps an http.Handler with CORS headers
func (c *CORSMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && (c.allowAll || c.isAllowedOrigin(origin))

		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.Header().Add("Vary", "Origin")
		}

		// Preflight requests never reach the API
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed {
				w.WriteHeader(http.StatusNoContent)
			} else {
				w.WriteHeader(http.StatusForbidden)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AllowsOrigin reports whether a request carrying this Origin header may be
// served. Requests without an Origin header are not cross-origin.
func (c *CORSMiddleware) AllowsOrigin(origin string) bool {
	return origin == "" || c.allowAll || c.isAllowedOrigin(strings.TrimRight(origin, "/"))
}

func (c *CORSMiddleware) isAllowedOrigin(origin string) bool {
	for _, allowed := range c.allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
