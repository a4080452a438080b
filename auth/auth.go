// Package auth provides optional token and password authentication for the
// notelab API. When neither is configured every request is allowed, which is
// the mode integration tests run in.
package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"notelab/logging"

	"golang.org/x/crypto/bcrypt"
)

// Middleware guards the API when a token or a bcrypt password hash is
// configured. A request is authorized by "Authorization: token <value>"
// (or ?token=) matching the token, or by HTTP basic auth whose password
// verifies against the hash. With neither configured every request passes.
func Middleware(token, passwordHash string, next http.Handler) http.Handler {
	if token == "" && passwordHash == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			supplied := requestToken(r)
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
		}
		if passwordHash != "" {
			if _, password, ok := r.BasicAuth(); ok && VerifyPassword(passwordHash, password) {
				next.ServeHTTP(w, r)
				return
			}
		}

		logging.Logger.Warn("Rejected unauthenticated request",
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Forbidden"}`)
	})
}

// requestToken extracts the token from the Authorization header or the
// ?token= query parameter.
func requestToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "token ") {
		return strings.TrimPrefix(header, "token ")
	}
	return r.URL.Query().Get("token")
}

// HashPassword returns a bcrypt hash suitable for the password_hash config
// field.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
