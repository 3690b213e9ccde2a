package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"github.com/qudsystem/storybook-backend/internal/repositories"
	"github.com/qudsystem/storybook-backend/internal/services"
	"go.uber.org/zap"
)

// maxAvatarSize bounds uploaded avatar images
const maxAvatarSize = 5 << 20

// ProfileService is the interface that wraps methods for profile business logic.
type ProfileService interface {
	// Method GetProfile retrieve the user's account data together with gems,
	// streak and achievement status.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	GetProfile(ctx context.Context, userID int) (*services.ProfileView, error)
	// Method UpdateDisplayName changes the display name.
	UpdateDisplayName(ctx context.Context, userID int, displayName string) error
	// Method UpdateLanguage changes the interface language ("en" or "ar").
	UpdateLanguage(ctx context.Context, userID int, language string) error
	// Method SelectAvatar sets an owned store avatar as the active one.
	SelectAvatar(ctx context.Context, userID int, itemID string) error
	// Method UploadAvatar stores a custom avatar image and returns its URL.
	UploadAvatar(ctx context.Context, userID int, image []byte) (string, error)
}

// ProfileHandler handles HTTP requests for the user profile
type ProfileHandler struct {
	BaseHandler
	service ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(svc ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Put("/display-name", h.UpdateDisplayName)
		r.Put("/language", h.UpdateLanguage)
		r.Put("/avatar", h.SelectAvatar)
		r.Post("/avatar/upload", h.UploadAvatar)
	})
}

type displayNameRequest struct {
	DisplayName string `json:"displayName"`
}

type languageRequest struct {
	Language string `json:"language"`
}

type selectAvatarRequest struct {
	ItemID string `json:"itemId"`
}

type avatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// GetProfile handles GET /api/v1/profile
// @Summary Get the profile
// @Description Get account data, gems, streak and achievement status
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.ProfileView
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get profile", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	h.respondJSON(w, http.StatusOK, profile)
}

// UpdateDisplayName handles PUT /api/v1/profile/display-name
// @Summary Update display name
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body displayNameRequest true "New display name"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/profile/display-name [put]
func (h *ProfileHandler) UpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req displayNameRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateDisplayName(r.Context(), userID, req.DisplayName); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateLanguage handles PUT /api/v1/profile/language
// @Summary Update interface language
// @Description Switch the interface language between English and Arabic
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body languageRequest true "Language code: en or ar"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/profile/language [put]
func (h *ProfileHandler) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req languageRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateLanguage(r.Context(), userID, req.Language); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SelectAvatar handles PUT /api/v1/profile/avatar
// @Summary Select an avatar
// @Description Set an owned store avatar as the active one
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body selectAvatarRequest true "Store item ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/profile/avatar [put]
func (h *ProfileHandler) SelectAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req selectAvatarRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SelectAvatar(r.Context(), userID, req.ItemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "avatar not found")
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar handles POST /api/v1/profile/avatar/upload
// @Summary Upload a custom avatar
// @Description Upload an avatar image as multipart form data under the "avatar" field
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} avatarResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/profile/avatar/upload [post]
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxAvatarSize))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read avatar file")
		return
	}

	url, err := h.service.UploadAvatar(r.Context(), userID, image)
	if err != nil {
		h.logger.Error("failed to upload avatar", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to upload avatar")
		return
	}

	h.respondJSON(w, http.StatusOK, avatarResponse{AvatarURL: url})
}
