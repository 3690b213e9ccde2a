package handlers

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/qudsystem/storybook-backend/internal/genai"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"go.uber.org/zap"
)

// maxPlaygroundImage bounds uploaded playground images
const maxPlaygroundImage = 10 << 20

// PlaygroundHandler exposes the creative playground: image generation and
// editing, video generation, grounded search and a chat buddy.
type PlaygroundHandler struct {
	BaseHandler
	client *genai.Client

	mu    sync.Mutex
	chats map[string]*genai.Chat
}

// NewPlaygroundHandler creates a new playground handler
func NewPlaygroundHandler(client *genai.Client, logger *zap.Logger) *PlaygroundHandler {
	return &PlaygroundHandler{
		client:      client,
		chats:       make(map[string]*genai.Chat),
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all playground handler routes
func (h *PlaygroundHandler) RegisterRoutes(r chi.Router) {
	r.Route("/playground", func(r chi.Router) {
		r.Post("/image", h.GenerateImage)
		r.Post("/image/edit", h.EditImage)
		r.Post("/image/analyze", h.AnalyzeImage)
		r.Post("/video", h.GenerateVideo)
		r.Post("/search", h.Search)
		r.Post("/places", h.Places)
		r.Post("/chat", h.Chat)
		r.Post("/think", h.Think)
	})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type questionRequest struct {
	Question string `json:"question"`
}

type chatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

type videoResponse struct {
	VideoURL string `json:"videoUrl"`
}

// respondGenAIError maps generation failures to HTTP statuses
func (h *PlaygroundHandler) respondGenAIError(w http.ResponseWriter, err error, action string) {
	if errors.Is(err, genai.ErrNotConfigured) {
		h.respondError(w, http.StatusServiceUnavailable, "generative features are not configured, set GEMINI_API_KEY")
		return
	}
	h.logger.Error("playground request failed", zap.String("action", action), zap.Error(err))
	h.respondError(w, http.StatusBadGateway, "failed to "+action)
}

// readImageForm extracts the uploaded image and its MIME type from a
// multipart form
func (h *PlaygroundHandler) readImageForm(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(maxPlaygroundImage); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, "", false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "image file is required")
		return nil, "", false
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxPlaygroundImage))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read image file")
		return nil, "", false
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	return image, mimeType, true
}

// GenerateImage handles POST /api/v1/playground/image
// @Summary Generate an image
// @Description Generate an illustration from a prompt; the response body is the image itself
// @Tags playground
// @Accept json
// @Produce png
// @Security BearerAuth
// @Param request body promptRequest true "Image prompt"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/playground/image [post]
func (h *PlaygroundHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req promptRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		h.respondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	image, mimeType, err := h.client.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		h.respondGenAIError(w, err, "generate image")
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.WriteHeader(http.StatusOK)
	w.Write(image)
}

// EditImage handles POST /api/v1/playground/image/edit
// @Summary Edit an image
// @Description Apply an instruction to an uploaded image; the response body is the edited image
// @Tags playground
// @Accept multipart/form-data
// @Produce png
// @Security BearerAuth
// @Param image formData file true "Source image"
// @Param instruction formData string true "Edit instruction"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/playground/image/edit [post]
func (h *PlaygroundHandler) EditImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	image, mimeType, ok := h.readImageForm(w, r)
	if !ok {
		return
	}

	instruction := r.FormValue("instruction")
	if instruction == "" {
		h.respondError(w, http.StatusBadRequest, "instruction is required")
		return
	}

	edited, editedType, err := h.client.EditImage(r.Context(), image, mimeType, instruction)
	if err != nil {
		h.respondGenAIError(w, err, "edit image")
		return
	}

	w.Header().Set("Content-Type", editedType)
	w.WriteHeader(http.StatusOK)
	w.Write(edited)
}

// AnalyzeImage handles POST /api/v1/playground/image/analyze
// @Summary Ask about an image
// @Description Answer a question about an uploaded image
// @Tags playground
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image to analyze"
// @Param question formData string true "Question about the image"
// @Success 200 {object} answerResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/playground/image/analyze [post]
func (h *PlaygroundHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	image, mimeType, ok := h.readImageForm(w, r)
	if !ok {
		return
	}

	question := r.FormValue("question")
	if question == "" {
		h.respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.client.AnalyzeImage(r.Context(), image, mimeType, question)
	if err != nil {
		h.respondGenAIError(w, err, "analyze image")
		return
	}

	h.respondJSON(w, http.StatusOK, answerResponse{Answer: answer})
}

// GenerateVideo handles POST /api/v1/playground/video
// @Summary Generate a video
// @Description Generate a short video from a prompt; polls the long-running operation until the video is ready
// @Tags playground
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body promptRequest true "Video prompt"
// @Success 200 {object} videoResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/playground/video [post]
func (h *PlaygroundHandler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req promptRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		h.respondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	url, err := h.client.GenerateVideo(r.Context(), req.Prompt)
	if err != nil {
		h.respondGenAIError(w, err, "generate video")
		return
	}

	h.respondJSON(w, http.StatusOK, videoResponse{VideoURL: url})
}

// Search handles POST /api/v1/playground/search
// @Summary Grounded web search
// @Description Answer a question grounded in web search results, with source links
// @Tags playground
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body queryRequest true "Search query"
// @Success 200 {object} genai.GroundedAnswer
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/playground/search [post]
func (h *PlaygroundHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req queryRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Query == "" {
		h.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := h.client.GroundedSearch(r.Context(), req.Query)
	if err != nil {
		h.respondGenAIError(w, err, "search")
		return
	}

	h.respondJSON(w, http.StatusOK, answer)
}

// Places handles POST /api/v1/playground/places
// @Summary Grounded places search
// @Description Answer a question grounded in map data, with source links
// @Tags playground
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body queryRequest true "Places query"
// @Success 200 {object} genai.GroundedAnswer
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/playground/places [post]
func (h *PlaygroundHandler) Places(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req queryRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Query == "" {
		h.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := h.client.GroundedMapsSearch(r.Context(), req.Query)
	if err != nil {
		h.respondGenAIError(w, err, "search places")
		return
	}

	h.respondJSON(w, http.StatusOK, answer)
}

// Chat handles POST /api/v1/playground/chat
// @Summary Chat with the reading buddy
// @Description Send a message to the reading buddy; omit sessionId to start a new conversation
// @Tags playground
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body chatRequest true "Chat message"
// @Success 200 {object} chatResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/playground/chat [post]
func (h *PlaygroundHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req chatRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Message == "" {
		h.respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := req.SessionID
	h.mu.Lock()
	if sessionID == "" {
		sessionID = uuid.NewString()
		h.chats[sessionID] = h.client.NewChat()
	}
	chat, ok := h.chats[sessionID]
	h.mu.Unlock()

	if !ok {
		h.respondError(w, http.StatusNotFound, "chat session not found")
		return
	}

	reply, err := chat.Send(r.Context(), req.Message)
	if err != nil {
		h.respondGenAIError(w, err, "chat")
		return
	}

	h.respondJSON(w, http.StatusOK, chatResponse{SessionID: sessionID, Reply: reply})
}

// Think handles POST /api/v1/playground/think
// @Summary Ask a hard question
// @Description Answer a question with extended reasoning enabled
// @Tags playground
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body questionRequest true "Question"
// @Success 200 {object} answerResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/playground/think [post]
func (h *PlaygroundHandler) Think(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req questionRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Question == "" {
		h.respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.client.Think(r.Context(), req.Question)
	if err != nil {
		h.respondGenAIError(w, err, "think")
		return
	}

	h.respondJSON(w, http.StatusOK, answerResponse{Answer: answer})
}
