package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"github.com/qudsystem/storybook-backend/internal/navigation"
	"go.uber.org/zap"
)

// validScreens are the screens a client may navigate to directly. Book
// reading and quizzes go through their dedicated endpoints so the
// transient state is recorded alongside the navigation.
var validScreens = map[navigation.Screen]bool{
	navigation.ScreenCreateStory: true,
	navigation.ScreenStore:       true,
	navigation.ScreenProgress:    true,
	navigation.ScreenSettings:    true,
	navigation.ScreenPlayground:  true,
}

// tabScreens are the bottom tab bar destinations. Switching tabs replaces the
// history instead of growing it, so navigating back never walks through old
// tabs.
var tabScreens = map[navigation.Screen]bool{
	navigation.ScreenLibrary:     true,
	navigation.ScreenCreateStory: true,
	navigation.ScreenStore:       true,
	navigation.ScreenProgress:    true,
	navigation.ScreenSettings:    true,
	navigation.ScreenPlayground:  true,
}

// SessionHandler handles HTTP requests for navigation sessions
type SessionHandler struct {
	BaseHandler
	sessions *navigation.Manager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *navigation.Manager, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all session handler routes
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Post("/push", h.Push)
			r.Post("/pop", h.Pop)
			r.Post("/switch-tab", h.SwitchTab)
			r.Post("/open-book", h.OpenBook)
			r.Post("/start-quiz", h.StartQuiz)
			r.Post("/home", h.Home)
			r.Delete("/", h.Drop)
		})
	})
}

type sessionView struct {
	ID      string              `json:"id"`
	Screens []navigation.Screen `json:"screens"`
	Current navigation.Screen   `json:"current"`
	State   navigation.State    `json:"state"`
}

type pushRequest struct {
	Screen navigation.Screen `json:"screen"`
}

type openBookRequest struct {
	BookID string                   `json:"bookId"`
	Action navigation.InitialAction `json:"action"`
}

type startQuizRequest struct {
	BookID string `json:"bookId"`
}

func snapshot(id string, stack *navigation.Stack) sessionView {
	return sessionView{
		ID:      id,
		Screens: stack.Screens(),
		Current: stack.Current(),
		State:   stack.State(),
	}
}

// withSession runs fn against the session stack and responds with the
// resulting navigation snapshot.
func (h *SessionHandler) withSession(w http.ResponseWriter, r *http.Request, fn func(*navigation.Stack)) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID := chi.URLParam(r, "id")

	var view sessionView
	err := h.sessions.With(sessionID, userID, func(stack *navigation.Stack) {
		fn(stack)
		view = snapshot(sessionID, stack)
	})
	if err != nil {
		if errors.Is(err, navigation.ErrSessionNotFound) {
			h.respondError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Error("session access failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "session access failed")
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// Create handles POST /api/v1/sessions
// @Summary Start a navigation session
// @Description Create a session rooted at the library screen
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} sessionView
// @Failure 401 {object} map[string]string
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	session := h.sessions.Create(userID)
	h.respondJSON(w, http.StatusCreated, snapshot(session.ID, session.Stack))
}

// Get handles GET /api/v1/sessions/{id}
// @Summary Get the navigation state
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} sessionView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(*navigation.Stack) {})
}

// Push handles POST /api/v1/sessions/{id}/push
// @Summary Navigate to a screen
// @Description Push a screen onto the navigation stack
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body pushRequest true "Destination screen"
// @Success 200 {object} sessionView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/push [post]
func (h *SessionHandler) Push(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !validScreens[req.Screen] {
		h.respondError(w, http.StatusBadRequest, "invalid screen")
		return
	}

	h.withSession(w, r, func(stack *navigation.Stack) {
		stack.Push(req.Screen)
	})
}

// Pop handles POST /api/v1/sessions/{id}/pop
// @Summary Navigate back
// @Description Pop the top screen; transient reading state is cleared when the destination no longer needs it
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} sessionView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/pop [post]
func (h *SessionHandler) Pop(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(stack *navigation.Stack) {
		stack.Pop()
	})
}

// SwitchTab handles POST /api/v1/sessions/{id}/switch-tab
// @Summary Switch to a tab
// @Description Replace the navigation history with the chosen tab screen and clear transient state
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body pushRequest true "Destination tab"
// @Success 200 {object} sessionView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/switch-tab [post]
func (h *SessionHandler) SwitchTab(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !tabScreens[req.Screen] {
		h.respondError(w, http.StatusBadRequest, "invalid screen")
		return
	}

	h.withSession(w, r, func(stack *navigation.Stack) {
		stack.ResetTo(req.Screen)
	})
}

// OpenBook handles POST /api/v1/sessions/{id}/open-book
// @Summary Open a book
// @Description Record the selected book and push the reader screen
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body openBookRequest true "Book and initial action (read or listen)"
// @Success 200 {object} sessionView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/open-book [post]
func (h *SessionHandler) OpenBook(w http.ResponseWriter, r *http.Request) {
	var req openBookRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.BookID == "" {
		h.respondError(w, http.StatusBadRequest, "bookId is required")
		return
	}
	if req.Action != navigation.ActionNone && req.Action != navigation.ActionRead && req.Action != navigation.ActionListen {
		h.respondError(w, http.StatusBadRequest, "invalid action")
		return
	}

	h.withSession(w, r, func(stack *navigation.Stack) {
		stack.SelectBook(req.BookID, req.Action)
		stack.Push(navigation.ScreenReadBook)
	})
}

// StartQuiz handles POST /api/v1/sessions/{id}/start-quiz
// @Summary Start a quiz
// @Description Record the quizzed book and push the quiz screen
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body startQuizRequest true "Book to quiz"
// @Success 200 {object} sessionView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/start-quiz [post]
func (h *SessionHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	var req startQuizRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.BookID == "" {
		h.respondError(w, http.StatusBadRequest, "bookId is required")
		return
	}

	h.withSession(w, r, func(stack *navigation.Stack) {
		stack.StartQuiz(req.BookID)
		stack.Push(navigation.ScreenTakeQuiz)
	})
}

// Home handles POST /api/v1/sessions/{id}/home
// @Summary Return to the library
// @Description Collapse the stack to the library and clear all transient state
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} sessionView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/sessions/{id}/home [post]
func (h *SessionHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(stack *navigation.Stack) {
		stack.ReturnToLibrary()
	})
}

// Drop handles DELETE /api/v1/sessions/{id}
// @Summary End a navigation session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Router /api/v1/sessions/{id} [delete]
func (h *SessionHandler) Drop(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.sessions.Drop(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
