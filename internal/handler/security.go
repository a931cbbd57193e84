package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/xenking/storefront/internal/auth"
)

// claimsKey is the context key for the authenticated identity.
type claimsKey struct{}

// claimsFrom extracts the verified token claims stored by requireUser.
func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

// requireUser authenticates the request from its Bearer token and stores the
// claims in the request context.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respondError(w, r, http.StatusUnauthorized, "not authorized, no token")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, r, http.StatusUnauthorized, "invalid token format")
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			respondError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin rejects requests whose token does not carry the admin role.
// Must run after requireUser.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil || !claims.IsAdmin() {
			respondError(w, r, http.StatusForbidden, "admin access only")
			return
		}
		next.ServeHTTP(w, r)
	})
}
