package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
}

// textHandler serves a generateContent response whose single part is the given
// text.
func textHandler(t *testing.T, text string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		body := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(Config{})

	assert.False(t, client.Configured())

	_, err := client.GenerateStory(context.Background(), "a brave fox")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.GenerateQuiz(context.Background(), "title", []string{"text"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_GenerateStory(t *testing.T) {
	story := "```json\n" + `{
		"title": "  The Brave Fox  ",
		"pages": [
			{"text": "The fox set out at dawn.", "imagePrompt": "a fox at sunrise"},
			{"text": "   ", "imagePrompt": "dropped page"},
			{"text": "She came home happy.", "imagePrompt": "a fox by a den"}
		]
	}` + "\n```"

	client := newTestClient(t, textHandler(t, story))

	draft, err := client.GenerateStory(context.Background(), "a brave fox")
	require.NoError(t, err)

	assert.Equal(t, "The Brave Fox", draft.Title)
	require.Len(t, draft.Pages, 2)
	assert.Equal(t, "The fox set out at dawn.", draft.Pages[0].Text)
	assert.Equal(t, "a fox at sunrise", draft.Pages[0].ImagePrompt)
}

func TestClient_GenerateStory_InvalidReply(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "not JSON at all",
			text: "Once upon a time there was no JSON.",
		},
		{
			name: "missing title",
			text: `{"pages": [{"text": "a page", "imagePrompt": "p"}]}`,
		},
		{
			name: "no usable pages",
			text: `{"title": "Empty", "pages": [{"text": "  ", "imagePrompt": "p"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, textHandler(t, tt.text))

			_, err := client.GenerateStory(context.Background(), "a brave fox")
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestClient_GenerateStory_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.GenerateStory(context.Background(), "a brave fox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=429")
}

func validQuizJSON() string {
	return `{"questions": [
		{"question": "q1", "options": ["a", "b", "c", "d"], "correctAnswer": "a"},
		{"question": "q2", "options": ["a", "b", "c", "d"], "correctAnswer": "b"},
		{"question": "q3", "options": ["a", "b", "c", "d"], "correctAnswer": "c"}
	]}`
}

func TestClient_GenerateQuiz(t *testing.T) {
	client := newTestClient(t, textHandler(t, validQuizJSON()))

	quiz, err := client.GenerateQuiz(context.Background(), "The Brave Fox", []string{"page one", "page two"})
	require.NoError(t, err)

	require.Len(t, quiz.Questions, 3)
	assert.Equal(t, "q1", quiz.Questions[0].Question)
	assert.True(t, quiz.Valid())
}

func TestClient_GenerateQuiz_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "wrong question count",
			text: `{"questions": [{"question": "q", "options": ["a", "b", "c", "d"], "correctAnswer": "a"}]}`,
		},
		{
			name: "wrong option count",
			text: `{"questions": [
				{"question": "q1", "options": ["a", "b"], "correctAnswer": "a"},
				{"question": "q2", "options": ["a", "b", "c", "d"], "correctAnswer": "a"},
				{"question": "q3", "options": ["a", "b", "c", "d"], "correctAnswer": "a"}
			]}`,
		},
		{
			name: "correct answer not among options",
			text: `{"questions": [
				{"question": "q1", "options": ["a", "b", "c", "d"], "correctAnswer": "z"},
				{"question": "q2", "options": ["a", "b", "c", "d"], "correctAnswer": "a"},
				{"question": "q3", "options": ["a", "b", "c", "d"], "correctAnswer": "a"}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, textHandler(t, tt.text))

			_, err := client.GenerateQuiz(context.Background(), "title", []string{"text"})
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestExtractJSONPayload(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "bare JSON",
			text:     `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "fenced JSON",
			text:     "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "prose around JSON",
			text:     `Here you go: {"a": 1} hope it helps`,
			expected: `{"a": 1}`,
		},
		{
			name:     "empty",
			text:     "   ",
			expected: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONPayload(tt.text))
		})
	}
}
