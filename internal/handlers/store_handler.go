package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"github.com/qudsystem/storybook-backend/internal/models"
	"github.com/qudsystem/storybook-backend/internal/services"
	"go.uber.org/zap"
)

// StoreService is the interface that wraps methods for store business logic.
type StoreService interface {
	// Method ListItems retrieve the avatar catalog with an ownership flag
	// per item.
	//
	// If some error occurs during data retrieval, the error will be returned together with "nil" value.
	ListItems(ctx context.Context, userID int) ([]services.StoreItemView, error)
	// Method PurchaseItem spends gems on a store avatar. Insufficient funds
	// and repeat purchases are reported in the result, not as errors.
	PurchaseItem(ctx context.Context, userID int, itemID string) (*models.PurchaseResult, error)
}

// StoreHandler handles HTTP requests for the avatar store
type StoreHandler struct {
	BaseHandler
	service StoreService
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(svc StoreService, logger *zap.Logger) *StoreHandler {
	return &StoreHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all store handler routes
func (h *StoreHandler) RegisterRoutes(r chi.Router) {
	r.Route("/store", func(r chi.Router) {
		r.Get("/items", h.ListItems)
		r.Post("/items/{id}/purchase", h.PurchaseItem)
	})
}

// ListItems handles GET /api/v1/store/items
// @Summary Get the store catalog
// @Description Get all store avatars with prices and ownership status
// @Tags store
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.StoreItemView
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/store/items [get]
func (h *StoreHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := h.service.ListItems(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list store items", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get store items")
		return
	}

	h.respondJSON(w, http.StatusOK, items)
}

// PurchaseItem handles POST /api/v1/store/items/{id}/purchase
// @Summary Purchase an avatar
// @Description Spend gems on a store avatar; the outcome reports insufficient funds or repeat purchases
// @Tags store
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store item ID"
// @Success 200 {object} models.PurchaseResult
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/store/items/{id}/purchase [post]
func (h *StoreHandler) PurchaseItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.service.PurchaseItem(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusNotFound, "store item not found")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
