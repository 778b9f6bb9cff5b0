package middleware

import (
	"context"
	"net/http"
	"strings"

	"sweetmap/services"
	"sweetmap/utils/errors"
)

type contextKey string

const roleKey contextKey = "role"

// JWTMiddleware admits requests carrying a valid admin bearer token.
func JWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				WriteError(w, errors.ErrUnauthorized)
				return
			}
			role, err := services.ParseAdminToken(strings.TrimPrefix(authHeader, "Bearer "), jwtSecret)
			if err != nil {
				WriteError(w, errors.ErrUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleFromContext returns the role set by JWTMiddleware.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok
}
