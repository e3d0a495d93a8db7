package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/penblog/penblog/internal/handler/dto"
	"github.com/penblog/penblog/internal/service"
)

// AuthService is the account logic the auth handler needs.
type AuthService interface {
	Signup(ctx context.Context, input service.SignupInput) (*service.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (*service.AuthResult, error)
}

// AuthHandler handles signup and login.
type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Signup(r.Context(), service.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Bio:       req.Bio,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_signed_up", "user_id", result.User.ID)

	writeJSON(w, r, http.StatusCreated, dto.TokenResponse{Token: result.Token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Login(r.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", result.User.ID)

	writeJSON(w, r, http.StatusOK, dto.TokenResponse{Token: result.Token})
}
