package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/qudsystem/storybook-backend/internal/repositories"
	"github.com/qudsystem/storybook-backend/internal/services"
	"go.uber.org/zap"
)

// QuizService is the interface that wraps methods for quiz business logic.
type QuizService interface {
	// Method GetOrGenerateQuiz returns the book's quiz, generating and
	// persisting one when the book has none.
	//
	// If the book has no quiz and none can be generated, services.ErrNoQuiz will be returned.
	GetOrGenerateQuiz(ctx context.Context, userID int, bookID string) (*models.Quiz, error)
	// Method SubmitQuiz grades the submitted answers, records the attempt
	// and triggers the score-tiered reward.
	SubmitQuiz(ctx context.Context, userID int, bookID string, submission services.QuizSubmission) (*services.QuizScore, error)
}

// QuizHandler handles HTTP requests for quizzes
type QuizHandler struct {
	BaseHandler
	service QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(svc QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all quiz handler routes
func (h *QuizHandler) RegisterRoutes(r chi.Router) {
	r.Route("/books/{id}/quiz", func(r chi.Router) {
		r.Get("/", h.GetQuiz)
		r.Post("/submit", h.SubmitQuiz)
	})
}

// GetQuiz handles GET /api/v1/books/{id}/quiz
// @Summary Get a book's quiz
// @Description Get the quiz for a book, generating one on first request
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Success 200 {object} models.Quiz
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{id}/quiz [get]
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	quiz, err := h.service.GetOrGenerateQuiz(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "book not found")
		case errors.Is(err, services.ErrNoQuiz):
			h.respondError(w, http.StatusNotFound, "no quiz is available for this book")
		default:
			h.logger.Error("failed to get quiz", zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, "failed to get quiz")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, quiz)
}

// SubmitQuiz handles POST /api/v1/books/{id}/quiz/submit
// @Summary Submit quiz answers
// @Description Grade the answers, record the attempt and grant a score-tiered gem reward
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Param request body services.QuizSubmission true "Chosen answers, one per question"
// @Success 200 {object} services.QuizScore
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{id}/quiz/submit [post]
func (h *QuizHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var submission services.QuizSubmission
	if err := h.decodeJSON(r, &submission); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	score, err := h.service.SubmitQuiz(r.Context(), userID, chi.URLParam(r, "id"), submission)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "book not found")
		case errors.Is(err, services.ErrNoQuiz):
			h.respondError(w, http.StatusNotFound, "no quiz is available for this book")
		default:
			h.respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.respondJSON(w, http.StatusOK, score)
}
