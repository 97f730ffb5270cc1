package middleware

import (
	"net/http"

	"github.com/orderdeskhq/orderdesk-backend/api/responses"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/logger"
)

// RequireAdmin rejects requests whose token does not carry the admin flag.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdminFromContext(r.Context()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAbility rejects requests whose token lacks the named ability.
// The wildcard ability satisfies every check.
func RequireAbility(ability string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasAbility(AbilitiesFromContext(r.Context()), ability) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "missing ability"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasAbility(abilities []string, ability string) bool {
	for _, have := range abilities {
		if have == "*" || have == ability {
			return true
		}
	}
	return false
}
