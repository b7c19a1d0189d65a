package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmynk/splitweek/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// DisplayNameKey is the context key for the caller's display name.
	DisplayNameKey contextKey = "display_name"
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetDisplayName extracts the caller's display name from the context.
// Returns empty string if not found.
func GetDisplayName(ctx context.Context) string {
	name, _ := ctx.Value(DisplayNameKey).(string)
	return name
}

// RequireAuth returns middleware that validates bearer tokens and requires
// authentication. It extracts the token from the Authorization header,
// validates it, and adds the caller's ID and display name to the request
// context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := claimsFromRequest(jwtManager, r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth returns middleware that validates bearer tokens if present
// but allows unauthenticated requests through. Useful for read endpoints
// that behave the same either way.
func OptionalAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := claimsFromRequest(jwtManager, r); err == nil {
				r = r.WithContext(withClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func claimsFromRequest(jwtManager *auth.JWTManager, r *http.Request) (*auth.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, auth.ErrMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}
	return jwtManager.Validate(parts[1])
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	return context.WithValue(ctx, DisplayNameKey, claims.DisplayName)
}
