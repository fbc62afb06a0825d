package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/maartenverheul/Trek/internal/auth"
)

// Auth validates the signed session cookie and adds the user ID to the
// request context.
func Auth(manager *auth.Manager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(auth.CookieName)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := manager.ValidateCookie(cookie.Value)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), auth.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isPublicEndpoint(path string) bool {
	exactPaths := []string{"/", "/api/signin", "/api/layers"}
	for _, p := range exactPaths {
		if path == p {
			return true
		}
	}
	prefixPaths := []string{"/static/", "/mcp"}
	for _, p := range prefixPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
