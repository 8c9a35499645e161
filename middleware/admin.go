package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// AdminAuthMiddleware protects /metrics and the repair endpoints with
// basic auth against a bcrypt password hash from the environment.
func AdminAuthMiddleware(adminUser, passwordHash string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()

		if !ok || passwordHash == "" || user != adminUser ||
			bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(pass)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="Admin"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
