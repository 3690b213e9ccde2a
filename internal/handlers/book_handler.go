package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/qudsystem/storybook-backend/internal/repositories"
	"go.uber.org/zap"
)

// BookService is the interface that wraps methods for library business logic.
type BookService interface {
	// Method ListLibrary retrieve the user's library, seeding the starter
	// books on first access.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	ListLibrary(ctx context.Context, userID int) ([]models.Book, error)
	// Method GetBook retrieve one book owned by the user.
	//
	// If the book does not exist, repositories.ErrNotFound will be returned.
	GetBook(ctx context.Context, userID int, bookID string) (*models.Book, error)
	// Method UpdateReadingPosition stores the last read page and, when the
	// book is finished for the first time, triggers the reading reward.
	// The returned reward is "nil" when no reward was granted.
	UpdateReadingPosition(ctx context.Context, userID int, bookID string, lastReadPage int) (*models.Book, *models.RewardResult, error)
	// Method RateBook stores a 1-5 star rating for the book.
	RateBook(ctx context.Context, userID int, bookID string, rating int) error
	// Method SetBookmark toggles the bookmark flag on the book.
	SetBookmark(ctx context.Context, userID int, bookID string, bookmarked bool) error
}

// BookHandler handles HTTP requests for the library
type BookHandler struct {
	BaseHandler
	service BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(svc BookService, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all book handler routes
func (h *BookHandler) RegisterRoutes(r chi.Router) {
	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.ListLibrary)
		r.Get("/{id}", h.GetBook)
		r.Put("/{id}/position", h.UpdateReadingPosition)
		r.Put("/{id}/rating", h.RateBook)
		r.Put("/{id}/bookmark", h.SetBookmark)
	})
}

type positionRequest struct {
	LastReadPage int `json:"lastReadPage"`
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

type bookmarkRequest struct {
	Bookmarked bool `json:"bookmarked"`
}

type readingProgressResponse struct {
	Book   *models.Book         `json:"book"`
	Reward *models.RewardResult `json:"reward,omitempty"`
}

// ListLibrary handles GET /api/v1/books
// @Summary Get the library
// @Description Get all books in the user's library, seeding starter books on first access
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Book
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books [get]
func (h *BookHandler) ListLibrary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	books, err := h.service.ListLibrary(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list library", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get library")
		return
	}

	h.respondJSON(w, http.StatusOK, books)
}

// GetBook handles GET /api/v1/books/{id}
// @Summary Get a book
// @Description Get one book with its pages, quiz and reading state
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Success 200 {object} models.Book
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	book, err := h.service.GetBook(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("failed to get book", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get book")
		return
	}

	h.respondJSON(w, http.StatusOK, book)
}

// UpdateReadingPosition handles PUT /api/v1/books/{id}/position
// @Summary Update reading position
// @Description Store the last read page; finishing the book for the first time grants gems
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Param request body positionRequest true "Reading position"
// @Success 200 {object} readingProgressResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/books/{id}/position [put]
func (h *BookHandler) UpdateReadingPosition(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req positionRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	book, reward, err := h.service.UpdateReadingPosition(r.Context(), userID, chi.URLParam(r, "id"), req.LastReadPage)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("failed to update reading position", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to update reading position")
		return
	}

	h.respondJSON(w, http.StatusOK, readingProgressResponse{Book: book, Reward: reward})
}

// RateBook handles PUT /api/v1/books/{id}/rating
// @Summary Rate a book
// @Description Store a 1-5 star rating
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Param request body ratingRequest true "Rating"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/books/{id}/rating [put]
func (h *BookHandler) RateBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ratingRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RateBook(r.Context(), userID, chi.URLParam(r, "id"), req.Rating); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "book not found")
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetBookmark handles PUT /api/v1/books/{id}/bookmark
// @Summary Bookmark a book
// @Description Toggle the bookmark flag
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Param request body bookmarkRequest true "Bookmark flag"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/books/{id}/bookmark [put]
func (h *BookHandler) SetBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req bookmarkRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SetBookmark(r.Context(), userID, chi.URLParam(r, "id"), req.Bookmarked); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("failed to set bookmark", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to set bookmark")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
