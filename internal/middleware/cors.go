package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"test",
}

// Cors allows the app url, the local dev origins and origin-less tools.
func Cors(appURL string) func(next http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(defaultAllowedOrigins)+1)
	for _, o := range defaultAllowedOrigins {
		allowedOrigins[o] = true
	}
	if appURL != "" {
		allowedOrigins[strings.TrimRight(appURL, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			userAgent := r.Header.Get("User-Agent")

			switch {
			case
				allowedOrigins[origin],
				strings.HasPrefix(userAgent, "curl/"),
				strings.HasPrefix(userAgent, "test-agent"),
				// MCP clients often send no Origin
				strings.HasPrefix(r.URL.Path, "/mcp"),
				// same-origin requests from the ops CLI and probes
				origin == "" && strings.HasPrefix(userAgent, "fittrackctl/"):
				{
					allowOrigin := origin
					if allowOrigin == "" {
						allowOrigin = "*"
					}
					w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
					w.Header().Set("Access-Control-Allow-Headers",
						"Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, Sec-CH-Prefers-Color-Scheme, MCP-Protocol-Version",
					)
					w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT")
					if allowOrigin != "*" {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
				}
			default:
				log.Warnf("CORS: origin not allowed for path [%s] and origin [%s]", r.URL.Path, origin)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
