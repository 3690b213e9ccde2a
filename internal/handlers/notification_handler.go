package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"github.com/qudsystem/storybook-backend/internal/services"
	"go.uber.org/zap"
)

// NotificationHandler handles HTTP requests for reward notifications
type NotificationHandler struct {
	BaseHandler
	notifier *services.Notifier
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifier *services.Notifier, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifier:    notifier,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all notification handler routes
func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.Pending)
		r.Delete("/{id}", h.Dismiss)
	})
}

// Pending handles GET /api/v1/notifications
// @Summary Get pending notifications
// @Description Get reward notifications that have not expired yet; each lives for four seconds
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Failure 401 {object} map[string]string
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) Pending(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.respondJSON(w, http.StatusOK, h.notifier.Pending(userID))
}

// Dismiss handles DELETE /api/v1/notifications/{id}
// @Summary Dismiss a notification
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Router /api/v1/notifications/{id} [delete]
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.notifier.Dismiss(userID, chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
