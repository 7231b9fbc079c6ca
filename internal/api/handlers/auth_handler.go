package handlers

import (
	"context"
	"net/http"

	"github.com/wrenchwise/backend/internal/api/middleware"
	"github.com/wrenchwise/backend/internal/application/services"
	"github.com/wrenchwise/backend/internal/domain/entities"
)

// AuthService is the account and session API used by AuthHandler
type AuthService interface {
	SignUp(ctx context.Context, req services.SignUpRequest) (entities.Session, error)
	SignIn(ctx context.Context, req services.SignInRequest) (entities.Session, error)
	SignOut(ctx context.Context, token string) (entities.Session, error)
	GetCurrentUser(ctx context.Context, token string) (*entities.User, error)
}

// AuthHandler handles sign up, sign in and session requests
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	session, err := h.auth.SignUp(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, session)
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req services.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	session, err := h.auth.SignIn(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

// SignOut handles POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.SignOut(r.Context(), middleware.BearerToken(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

// Me handles GET /api/auth/me. An anonymous or expired session yields a null user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.GetCurrentUser(r.Context(), middleware.BearerToken(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": user != nil,
		"user":          user,
	})
}
