package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskloft/taskloft-be/internal/apperr"
	"github.com/taskloft/taskloft-be/internal/models"
)

type contextKey string

const userContextKey = contextKey("authUser")

// UserFromContext returns the user resolved by Middleware for this request.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// WithUser stores a resolved user on the context. Exposed for handler tests.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Middleware creates a middleware for protecting routes. The token comes
// from the Authorization header, with a cookie fallback for browser clients.
func Middleware(strategy TokenStrategy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, "Bearer ")
				if len(parts) == 2 {
					tokenStr = parts[1]
				}
			}

			if tokenStr == "" {
				cookie, err := r.Cookie("token")
				if err != nil {
					http.Error(w, "Missing auth token", http.StatusUnauthorized)
					return
				}
				tokenStr = cookie.Value
			}

			if tokenStr == "" {
				http.Error(w, "Missing auth token", http.StatusUnauthorized)
				return
			}

			user, err := strategy.Resolve(r.Context(), tokenStr)
			if err != nil {
				if apperr.IsStorage(err) {
					http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "Invalid auth token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
