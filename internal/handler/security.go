package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/mizanhq/mizan/internal/domain/auth"
	"github.com/mizanhq/mizan/internal/domain/user"
)

// claimsKey is the context key for the authenticated session claims.
type claimsKey struct{}

// ClaimsFromContext extracts the session claims, if the request carried a
// valid token.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// authenticate parses an optional Authorization: Bearer token and, when
// valid, stores its claims in the request context. Invalid tokens are
// treated as absent; route guards decide whether auth is required.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(raw) > len(prefix) && strings.EqualFold(raw[:len(prefix)], prefix) {
			if claims, err := h.tokens.Verify(raw[len(prefix):]); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth guards a route: without valid claims the request gets 401.
func requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			writeError(w, r, http.StatusUnauthorized, "error.unauthorized")
			return
		}
		next(w, r)
	}
}

// requireAdmin guards a route: valid claims with the admin role, or 401/403.
func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "error.unauthorized")
			return
		}
		if claims.Role != string(user.RoleAdmin) {
			writeError(w, r, http.StatusForbidden, "error.forbidden")
			return
		}
		next(w, r)
	}
}
