package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogRequest logs one line per request. Server errors are logged at warn
// level so they show up without debug logging.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			resp := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(resp, r)

			entry := log.WithFields(log.Fields{
				"method": r.Method,
				"route":  routeTemplate(r),
				"path":   r.URL.Path,
				"status": resp.statusCode,
				"ua":     r.Header.Get("User-Agent"),
				"took":   time.Since(start).String(),
			})
			if resp.statusCode >= http.StatusInternalServerError {
				entry.Warn("request failed")
				return
			}
			entry.Debug("request")
		})
	}
}
