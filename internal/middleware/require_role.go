package middleware

import (
	"fmt"
	"net/http"

	"fleetops/vanlist/internal/auth"
	"fleetops/vanlist/internal/constants"
)

// RequireRole gates a route group behind a minimum role level
// (admin > operator > readonly). Must run after AuthMiddleware.
func RequireRole(min constants.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.GetCurrentUser(r.Context())
			if user == nil {
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			if !user.Role.AtLeast(min) {
				http.Error(w,
					fmt.Sprintf("Requires '%s' role or higher. Your role: '%s'", min, user.Role),
					http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
