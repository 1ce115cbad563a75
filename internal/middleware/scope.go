package middleware

import (
	"net/http"

	"github.com/penshort/linkstats/internal/auth"
	"github.com/penshort/linkstats/internal/model"
)

// RequireScope rejects requests whose key lacks the scope. Admin keys pass
// every check. Must run after Auth.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}
			if !authCtx.HasScope(scope) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions. Required scope: "+scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRead guards report endpoints.
func RequireRead() func(http.Handler) http.Handler { return RequireScope(model.ScopeRead) }

// RequireWrite guards click ingestion.
func RequireWrite() func(http.Handler) http.Handler { return RequireScope(model.ScopeWrite) }
