package middleware

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"fleetops/vanlist/internal/auth"
	models "fleetops/vanlist/internal/models/gorm"
)

// AuthMiddleware resolves the JWT (cookie or bearer) to a live user row and
// stores it on the request context. The user is re-read on every request so
// deactivation and role changes take effect immediately.
func AuthMiddleware(db *gorm.DB, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractToken(r)
			if token == "" {
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseAccessToken(secret, token)
			if err != nil || claims.Subject == "" {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			var user models.User
			err = db.WithContext(r.Context()).
				Where("username = ?", claims.Subject).
				First(&user).Error
			if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.Active) {
				http.Error(w, "User not found or inactive", http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, "Authentication lookup failed", http.StatusInternalServerError)
				return
			}

			ctx := auth.SetCurrentUser(r.Context(), &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
