package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/carbook/internal/domain"
	"github.com/yourorg/carbook/internal/featureflags"
	"github.com/yourorg/carbook/internal/security/audit"
	"github.com/yourorg/carbook/internal/service"
)

// AuthHandler serves the credential endpoints.
type AuthHandler struct {
	authService *service.AuthService
	auditLog    *audit.Logger
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, auditLog *audit.Logger, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		auditLog:    auditLog,
		logger:      logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if featureflags.Enabled("signup_disabled") {
		respondError(w, http.StatusServiceUnavailable, "signup is temporarily disabled")
		return
	}

	// A null or structurally broken body decodes to empty fields and is
	// rejected by the same validation as explicit empty strings.
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode signup request", slog.String("error", err.Error()))
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			respondError(w, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, domain.ErrUsernameTaken):
			h.auditLog.LogSignup(r.Context(), "", "conflict")
			respondError(w, http.StatusConflict, "username already taken")
		default:
			respondError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	h.auditLog.LogSignup(r.Context(), result.UserID, "success")
	respondData(w, http.StatusCreated, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			respondError(w, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			// Unknown username and wrong password share this branch.
			h.auditLog.LogLogin(r.Context(), "", "rejected")
			respondError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			respondError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	h.auditLog.LogLogin(r.Context(), req.Username, "success")
	respondData(w, http.StatusOK, result)
}
