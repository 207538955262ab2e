package api

import (
	"net/http"
	"strings"

	"github.com/emeraldservers/killfeed/internal/auth"
)

// requireAdmin is middleware that validates the JWT bearer token and
// checks the admin flag before calling the handler.
func (r *Router) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		claims := r.getAuthClaims(req)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !claims.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, req)
	}
}

// getAuthClaims extracts and validates the JWT from the Authorization
// header. Returns nil when the header is absent or the token invalid.
func (r *Router) getAuthClaims(req *http.Request) *auth.Claims {
	header := req.Header.Get("Authorization")
	if header == "" {
		return nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil
	}
	claims, err := r.auth.ValidateToken(token)
	if err != nil {
		return nil
	}
	return claims
}
