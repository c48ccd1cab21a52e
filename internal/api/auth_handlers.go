package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fleetops/vanlist/internal/auth"
	"fleetops/vanlist/internal/common"
	"fleetops/vanlist/internal/models/dtos"
	"fleetops/vanlist/internal/services"
)

// LoginHandler handles POST /api/auth/login. On success the token goes out
// both in the body and as an httponly cookie for the page routes.
func LoginHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
			common.RespondError(w, initTime, err, "Invalid login payload", http.StatusBadRequest)
			return
		}

		user, token, err := deps.Services.User.Login(r.Context(), req)
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			common.RespondError(w, initTime, err, "", http.StatusUnauthorized)
			return
		case errors.Is(err, services.ErrAccountDisabled):
			common.RespondError(w, initTime, err, "", http.StatusForbidden)
			return
		case err != nil:
			common.RespondServiceError(w, initTime, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(deps.Services.User.TokenExpiry().Seconds()),
		})
		common.RespondSuccess(w, initTime, "Logged in", dtos.LoginResponse{
			AccessToken: token,
			TokenType:   "bearer",
			User:        user,
		})
	}
}

// LogoutHandler handles POST /api/auth/logout.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		http.SetCookie(w, &http.Cookie{
			Name:     auth.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
		common.RespondSuccess(w, initTime, "Logged out", nil)
	}
}

// MeHandler handles GET /api/auth/me.
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "Current user", auth.GetCurrentUser(r.Context()))
	}
}

// ChangePasswordHandler handles PUT /api/auth/change-password.
func ChangePasswordHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := deps.Services.User.ChangePassword(r.Context(), auth.GetCurrentUser(r.Context()), req); err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Password changed successfully", nil)
	}
}

// ListUsersHandler handles GET /api/auth/users (admin).
func ListUsersHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		users, err := deps.Services.User.List(r.Context())
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Users fetched", users)
	}
}

// CreateUserHandler handles POST /api/auth/users (admin).
func CreateUserHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.UserCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
			common.RespondError(w, initTime, err, "Invalid user payload", http.StatusBadRequest)
			return
		}
		user, err := deps.Services.User.Create(r.Context(), auth.GetCurrentUser(r.Context()), req)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "User created", user, http.StatusCreated)
	}
}

// UpdateUserHandler handles PUT /api/auth/users/{userID} (admin).
func UpdateUserHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := uintURLParam(r, "userID")
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid user id", http.StatusBadRequest)
			return
		}
		var req dtos.UserUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		user, err := deps.Services.User.Update(r.Context(), auth.GetCurrentUser(r.Context()), id, req)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "User updated", user)
	}
}
