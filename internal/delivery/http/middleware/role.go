package middleware

import (
	"log/slog"
	"net/http"

	h "eventconcierge/internal/delivery/http/helpers"
	"eventconcierge/internal/domain"
)

// RequireRole returns a wrapper that rejects requests whose authenticated user
// does not hold the given role code. It must run after RequireAuth.
func RequireRole(roleRepo domain.RoleRepository, code string, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
				return
			}
			roles, err := roleRepo.ListByUserID(r.Context(), userID)
			if err != nil {
				logger.ErrorContext(r.Context(), "role lookup failed", "user_id", userID, "err", err)
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "role lookup failed")
				return
			}
			for _, role := range roles {
				if role.Code == code {
					next(w, r)
					return
				}
			}
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "missing required role: "+code)
		}
	}
}
