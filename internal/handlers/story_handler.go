package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"github.com/qudsystem/storybook-backend/internal/models"
	"go.uber.org/zap"
)

// StoryService is the interface that wraps methods for story creation business logic.
type StoryService interface {
	// Method CreateStory generates a new illustrated story from the child's
	// prompt, saves it to the library and triggers the creation reward.
	//
	// If the prompt is empty or generation fails, the error will be returned together with "nil" values.
	CreateStory(ctx context.Context, userID int, prompt string) (*models.Book, *models.RewardResult, error)
}

// StoryHandler handles HTTP requests for story creation
type StoryHandler struct {
	BaseHandler
	service StoryService
}

// NewStoryHandler creates a new story handler
func NewStoryHandler(svc StoryService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all story handler routes
func (h *StoryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/stories", h.CreateStory)
}

type createStoryRequest struct {
	Prompt string `json:"prompt"`
}

type createStoryResponse struct {
	Book   *models.Book         `json:"book"`
	Reward *models.RewardResult `json:"reward,omitempty"`
}

// CreateStory handles POST /api/v1/stories
// @Summary Create a story
// @Description Generate an illustrated story from a prompt and add it to the library
// @Tags stories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createStoryRequest true "Story idea"
// @Success 201 {object} createStoryResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/stories [post]
func (h *StoryHandler) CreateStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createStoryRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		h.respondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	book, reward, err := h.service.CreateStory(r.Context(), userID, req.Prompt)
	if err != nil {
		h.logger.Error("failed to create story", zap.Error(err))
		h.respondError(w, http.StatusBadGateway, "failed to create story")
		return
	}

	h.respondJSON(w, http.StatusCreated, createStoryResponse{Book: book, Reward: reward})
}
