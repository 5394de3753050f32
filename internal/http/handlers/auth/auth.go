// Package auth contains the HTTP handlers for accounts: login,
// registration and password changes. There are no sessions: a
// successful login returns the account, and protected routes take HTTP
// Basic credentials on every request.
package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Gun2717/StudentManagement/internal/service"
	"github.com/Gun2717/StudentManagement/internal/utils/request"
	"github.com/Gun2717/StudentManagement/internal/utils/response"
)

// One validator for the request forms below; it is safe for concurrent use.
var validate = validator.New()

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the body of PUT /api/auth/password.
type ChangePasswordRequest struct {
	Username    string `json:"username"     validate:"required"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Login handles POST /api/auth/login.
//
//	200 OK           - the account (never its password hash)
//	400 Bad Request  - missing fields
//	401 Unauthorized - unknown user or wrong password
//	403 Forbidden    - account locked
func Login(svc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := request.DecodeJSON(w, r, &req); err != nil {
			response.Error(w, r, err)
			return
		}
		if err := validate.Struct(req); err != nil {
			response.Error(w, r, err)
			return
		}

		u, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, u)
	}
}

// Register handles POST /api/auth/register: 201 with the new account,
// 400 for bad input or a taken username.
func Register(svc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.RegisterRequest
		if err := request.DecodeJSON(w, r, &req); err != nil {
			response.Error(w, r, err)
			return
		}

		slog.Info("registering a user", slog.String("username", req.Username))

		u, err := svc.Register(r.Context(), req)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusCreated, u)
	}
}

// ChangePassword handles PUT /api/auth/password.
func ChangePassword(svc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChangePasswordRequest
		if err := request.DecodeJSON(w, r, &req); err != nil {
			response.Error(w, r, err)
			return
		}
		if err := validate.Struct(req); err != nil {
			response.Error(w, r, err)
			return
		}

		if err := svc.ChangePassword(r.Context(), req.Username, req.OldPassword, req.NewPassword); err != nil {
			response.Error(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, response.OK())
	}
}
