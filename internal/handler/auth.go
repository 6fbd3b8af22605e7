// Package handler is the HTTP layer: it decodes requests, calls a service
// and encodes the result. No business rule lives here.
//
// Each handler depends on a small interface listing just the service
// methods it calls, so tests can hand it a fake.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/yellowipe/internal/apperror"
	"github.com/sakif/yellowipe/internal/auth"
	"github.com/sakif/yellowipe/internal/model"
	"github.com/sakif/yellowipe/internal/service"
)

// Accounts is the part of service.AuthService the HTTP layer uses.
type Accounts interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	GetProfile(ctx context.Context, userID string) (model.PublicUser, error)
	GetPublicUser(ctx context.Context, id string) (model.UserSummary, error)
	UpdateProfile(ctx context.Context, userID string, in service.ProfileInput) (model.PublicUser, error)
}

var _ Accounts = (*service.AuthService)(nil)

// AuthResponse is the body of a successful register or login.
type AuthResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

// UserResponse is the body of a successful profile update.
type UserResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

// AuthHandler serves /auth/* and /users/*.
type AuthHandler struct {
	accounts Accounts
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts Accounts, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// HandleRegister creates an account.
//
// HTTP: POST /api/auth/register
// REQUEST BODY: {"name": "Ana", "email": "ana@example.com", "password": "secret1"}
// RESPONSE: 201 {"message", "token", "user"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "user created successfully",
		Token:   res.Token,
		User:    res.User,
	})
}

// HandleLogin exchanges credentials for a token.
//
// HTTP: POST /api/auth/login
// REQUEST BODY: {"email": "ana@example.com", "password": "secret1"}
// RESPONSE: 200 {"message", "token", "user"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "login successful",
		Token:   res.Token,
		User:    res.User,
	})
}

// HandleProfile returns the caller's own account.
//
// HTTP: GET /api/auth/profile (bearer token required)
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("access token required"))
		return
	}

	user, err := h.accounts.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile changes the caller's name and/or bio.
//
// HTTP: PUT /api/users/profile (bearer token required)
// REQUEST BODY: {"name"?: "...", "bio"?: "..."}
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("access token required"))
		return
	}

	var in service.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		Message: "profile updated successfully",
		User:    user,
	})
}

// HandleGetUser returns another user's public account (no email).
//
// HTTP: GET /api/users/{id}
func (h *AuthHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetPublicUser(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// callerID reads the user id that auth.RequireAuth put in the context.
func callerID(r *http.Request) (string, bool) {
	return auth.UserIDFromContext(r.Context())
}
