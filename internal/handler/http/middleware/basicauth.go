package middleware

import (
	"crypto/subtle"
	"net/http"

	"feedgate/internal/config"
)

// BasicAuth gates every request behind a single HTTP Basic credential
// pair, per spec.md §6's `{auth?: {username, password}}` config block.
// A nil cfg disables auth entirely.
func BasicAuth(cfg *config.BasicAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !credentialsMatch(user, pass, cfg) {
				w.Header().Set("WWW-Authenticate", `Basic realm="feedgate"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func credentialsMatch(user, pass string, cfg *config.BasicAuthConfig) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.Password)) == 1
	return userOK && passOK
}
