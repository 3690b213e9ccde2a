package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/qudsystem/storybook-backend/internal/middleware"
	"github.com/qudsystem/storybook-backend/internal/narration"
	"github.com/qudsystem/storybook-backend/internal/repositories"
	"go.uber.org/zap"
)

const narrationWriteTimeout = 10 * time.Second

// NarrationHandler streams read-aloud narration over a WebSocket. The client
// drives it with small JSON control messages; the server answers with JSON
// events and binary WAV frames, each announced by an "audio" event carrying
// its position on the playback timeline.
type NarrationHandler struct {
	BaseHandler
	books    BookService
	synth    narration.Synthesizer
	upgrader websocket.Upgrader
}

// NewNarrationHandler creates a new narration handler
func NewNarrationHandler(books BookService, synth narration.Synthesizer, logger *zap.Logger) *NarrationHandler {
	return &NarrationHandler{
		books: books,
		synth: synth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API already restricts origins through CORS; the socket
			// is authenticated per user.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all narration handler routes
func (h *NarrationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/books/{id}/narration", h.Stream)
}

type narrationCommand struct {
	Action string `json:"action"`
	Page   int    `json:"page"`
}

type audioFrameHeader struct {
	Type     string        `json:"type"`
	StartAt  time.Duration `json:"startAt"`
	Duration time.Duration `json:"duration"`
}

// wsWriter serializes writes to one WebSocket connection.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(narrationWriteTimeout))
	return w.conn.WriteJSON(v)
}

func (w *wsWriter) writeBinary(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(narrationWriteTimeout))
	return w.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Stream handles GET /api/v1/books/{id}/narration
// @Summary Stream book narration
// @Description Upgrade to a WebSocket. Send {"action":"start","page":N} to begin narration and {"action":"stop"} to halt it. The server sends narration events as JSON text frames and sentence audio as WAV binary frames, each preceded by an audio header event.
// @Tags narration
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Success 101
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/books/{id}/narration [get]
func (h *NarrationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	book, err := h.books.GetBook(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("failed to load book for narration", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to load book")
		return
	}

	pages := make([]string, len(book.Pages))
	for i, page := range book.Pages {
		pages[i] = page.Text
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	writer := &wsWriter{conn: conn}

	sink := narration.NewStreamSink(func(audio narration.Audio, start time.Duration) error {
		header := audioFrameHeader{Type: "audio", StartAt: start, Duration: audio.Duration()}
		if err := writer.writeJSON(header); err != nil {
			return err
		}
		return writer.writeBinary(narration.PCMToWAV(audio.PCM, audio.SampleRate, 1, 16))
	})

	narrator := narration.NewNarrator(h.synth, sink, h.logger)
	defer narrator.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var forward sync.WaitGroup
	defer forward.Wait()

	for {
		var cmd narrationCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}

		switch cmd.Action {
		case "start":
			if cmd.Page < 0 || cmd.Page >= len(pages) {
				if err := writer.writeJSON(narration.Event{Type: narration.EventError, Message: "page out of range"}); err != nil {
					return
				}
				continue
			}

			events := narrator.Start(ctx, pages, cmd.Page)
			forward.Add(1)
			go func() {
				defer forward.Done()
				for event := range events {
					if err := writer.writeJSON(event); err != nil {
						narrator.Stop()
						return
					}
				}
			}()
		case "stop":
			narrator.Stop()
		default:
			if err := writer.writeJSON(narration.Event{Type: narration.EventError, Message: "unknown action"}); err != nil {
				return
			}
		}
	}
}
