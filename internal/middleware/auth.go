package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/http/respond"
)

type contextKey string

const identityKey contextKey = "identity"

// BearerAuth verifies the Authorization header and stores the caller
// identity on the request context. A missing credential and a rejected one
// map to different statuses, and the cause is kept apart in the logs.
func BearerAuth(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			log.Printf("auth: %s %s rejected: no bearer token", r.Method, r.URL.Path)
			respond.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		identity, err := tokens.VerifySession(token)
		if err != nil {
			log.Printf("auth: %s %s rejected: %v", r.Method, r.URL.Path, err)
			respond.Error(w, http.StatusForbidden, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFrom extracts the verified caller identity set by BearerAuth.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}
