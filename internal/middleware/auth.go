// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/helpmesh/support-platform/internal/model"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// PrincipalKey is the context key for the authenticated principal.
	PrincipalKey ContextKey = "principal"
)

// Validator validates a bearer token and returns the caller's principal.
type Validator interface {
	Validate(tokenString string) (model.Principal, error)
}

// Auth creates bearer-token authentication middleware. The resolved
// principal is stored in the request context for handlers to read.
func Auth(validator Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				unauthorized(w, "invalid authorization header format")
				return
			}

			principal, err := validator.Validate(parts[1])
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal gets the authenticated principal from context. The second
// return is false on unauthenticated (public) requests.
func GetPrincipal(ctx context.Context) (model.Principal, bool) {
	if v := ctx.Value(PrincipalKey); v != nil {
		p, ok := v.(model.Principal)
		return p, ok
	}
	return model.Principal{}, false
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"status":false,"message":"` + message + `","result":null}`))
}
