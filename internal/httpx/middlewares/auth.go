// Package middlewares holds the HTTP middleware for orderd.
package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/livekart/orderflow/internal/identity"
)

// contextKey is unexported so no other package can collide with our keys.
type contextKey string

const claimsKey contextKey = "identity-claims"

// RequireAuth verifies the Authorization bearer token with the given
// verifier and stores the resulting claims in the request context. Requests
// without a valid token are rejected with 401.
func RequireAuth(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if errors.Is(err, identity.ErrInvalidToken) {
				unauthorized(w, "invalid or expired token")
				return
			}
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   "identity_unavailable",
					"message": "could not verify session, retry later",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// ContextWithClaims returns ctx with the verified claims attached.
func ContextWithClaims(ctx context.Context, claims identity.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext extracts the verified claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (identity.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(identity.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) || len(auth) == len(prefix) {
		return "", false
	}
	return auth[len(prefix):], true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "unauthenticated",
		"message": msg,
	})
}
