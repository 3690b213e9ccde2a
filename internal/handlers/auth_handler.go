package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/qudsystem/storybook-backend/internal/services"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register creates a new user account and issues a token pair.
	//
	// If the email is already registered, services.ErrEmailTaken will be returned.
	// If some error occurs during account creation, the error will be returned together with "nil" values.
	Register(ctx context.Context, email, password, displayName string) (*models.User, *models.TokenPair, error)
	// Method Login verifies the credentials and issues a token pair.
	//
	// If the email is unknown or the password does not match, services.ErrInvalidCredentials will be returned.
	Login(ctx context.Context, email, password string) (*models.User, *models.TokenPair, error)
	// Method Refresh exchanges a valid refresh token for a new token pair.
	// The presented refresh token is revoked, each token can be used once.
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	// Method Logout revokes the refresh token.
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	BaseHandler
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
	})
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User   *models.User      `json:"user"`
	Tokens *models.TokenPair `json:"tokens"`
}

// Register handles POST /api/v1/auth/register
// @Summary Register a new account
// @Description Create a user account and return an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "Registration data"
// @Success 201 {object} authResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, tokens, err := h.service.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			h.respondError(w, http.StatusConflict, "email is already registered")
			return
		}
		h.logger.Error("failed to register user", zap.Error(err))
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Description Verify credentials and return an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} authResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.respondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("failed to log in user", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	h.respondJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

// Refresh handles POST /api/v1/auth/refresh
// @Summary Refresh tokens
// @Description Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh token"
// @Success 200 {object} models.TokenPair
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	h.respondJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /api/v1/auth/logout
// @Summary Log out
// @Description Revoke the refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh token"
// @Success 204
// @Failure 400 {object} map[string]string
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Warn("failed to revoke refresh token", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}
