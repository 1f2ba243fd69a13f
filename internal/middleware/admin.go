package middleware

import (
	"crypto/subtle"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/pkg"
)

// AdminBasicAuth guards the admin routes with a single user whose
// password is stored as a bcrypt hash. With no user configured every
// admin request is refused.
func AdminBasicAuth(username, passwordHash string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if username == "" || passwordHash == "" {
				http.Error(w, "admin disabled", http.StatusForbidden)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
				!pkg.CheckPasswordHash(pass, passwordHash) {
				reqIP, _ := pkg.ReadUserIP(r)
				log.Warnf("admin auth failed for [%s] from %s", r.URL.Path, reqIP)
				w.Header().Set("WWW-Authenticate", `Basic realm="fittrack-admin"`)
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
