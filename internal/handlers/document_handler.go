package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/qudsystem/storybook-backend/internal/genai"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"github.com/qudsystem/storybook-backend/internal/pdfdoc"
	"go.uber.org/zap"
)

const (
	// maxDocumentSize bounds uploaded PDF files
	maxDocumentSize = 20 << 20
	// maxDocumentPromptChars bounds how much extracted text is handed to
	// the model when answering questions about a document
	maxDocumentPromptChars = 30000
)

// DocumentHandler handles uploaded PDF documents: text extraction, a
// heuristic outline, and question answering over the extracted text.
type DocumentHandler struct {
	BaseHandler
	client *genai.Client
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(client *genai.Client, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		client:      client,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all document handler routes
func (h *DocumentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/extract", h.Extract)
		r.Post("/ask", h.Ask)
	})
}

type documentResponse struct {
	Name      string                `json:"name"`
	PageCount int                   `json:"pageCount"`
	Pages     []string              `json:"pages"`
	Outline   []pdfdoc.OutlineEntry `json:"outline"`
}

// readDocumentForm extracts the uploaded PDF from a multipart form
func (h *DocumentHandler) readDocumentForm(w http.ResponseWriter, r *http.Request) (*pdfdoc.Document, bool) {
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, false
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "document file is required")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDocumentSize))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read document file")
		return nil, false
	}

	doc, err := pdfdoc.Parse(data, header.Filename)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "failed to parse PDF document")
		return nil, false
	}

	return doc, true
}

// Extract handles POST /api/v1/documents/extract
// @Summary Extract text from a PDF
// @Description Extract per-page text and a heuristic outline from an uploaded PDF
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file true "PDF file"
// @Success 200 {object} documentResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/documents/extract [post]
func (h *DocumentHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	doc, ok := h.readDocumentForm(w, r)
	if !ok {
		return
	}

	h.respondJSON(w, http.StatusOK, documentResponse{
		Name:      doc.Name,
		PageCount: doc.PageCount,
		Pages:     doc.Pages,
		Outline:   doc.Outline(),
	})
}

// truncateOnRuneBoundary cuts s to at most max bytes without splitting a
// UTF-8 sequence.
func truncateOnRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// Ask handles POST /api/v1/documents/ask
// @Summary Ask about a PDF
// @Description Answer a question about an uploaded PDF using its extracted text
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file true "PDF file"
// @Param question formData string true "Question about the document"
// @Success 200 {object} answerResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/documents/ask [post]
func (h *DocumentHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	doc, ok := h.readDocumentForm(w, r)
	if !ok {
		return
	}

	question := r.FormValue("question")
	if question == "" {
		h.respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	text := truncateOnRuneBoundary(strings.Join(doc.Pages, "\n\n"), maxDocumentPromptChars)

	prompt := fmt.Sprintf("Answer the question using only this document.\n\nDocument %q:\n%s\n\nQuestion: %s", doc.Name, text, question)

	answer, err := h.client.Think(r.Context(), prompt)
	if err != nil {
		if errors.Is(err, genai.ErrNotConfigured) {
			h.respondError(w, http.StatusServiceUnavailable, "generative features are not configured, set GEMINI_API_KEY")
			return
		}
		h.logger.Error("failed to answer document question", zap.Error(err))
		h.respondError(w, http.StatusBadGateway, "failed to answer question")
		return
	}

	h.respondJSON(w, http.StatusOK, answerResponse{Answer: answer})
}
