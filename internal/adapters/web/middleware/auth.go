package middleware

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const realm = `Basic realm="wguard"`

// BasicAuth checks HTTP basic credentials against a bcrypt hash.
// An empty hash disables the check.
func BasicAuth(user, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if passwordHash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || !checkCredentials(user, passwordHash, u, p) {
				w.Header().Set("WWW-Authenticate", realm)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkCredentials(user, hash, gotUser, gotPassword string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(gotUser)) == 1
	// bcrypt runs even when the user does not match.
	passOK := bcrypt.CompareHashAndPassword([]byte(hash), []byte(gotPassword)) == nil
	return userOK && passOK
}
