// Package genai is a REST client for the Gemini generative API: structured
// story and quiz generation, image work, video, grounded search, chat and
// speech.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotConfigured is returned when the client has no API key.
	ErrNotConfigured = errors.New("generative provider not configured")
	// ErrInvalidResponse is returned when the provider output cannot be parsed
	// into the expected shape.
	ErrInvalidResponse = errors.New("invalid provider response")
)

// Config configures the client. Zero values fall back to defaults; only the
// API key is required for the client to be usable.
type Config struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	ImageModel  string
	SpeechModel string
	VideoModel  string
	Timeout     time.Duration
}

// Client calls the generative API over plain HTTP.
type Client struct {
	apiKey      string
	baseURL     string
	textModel   string
	imageModel  string
	speechModel string
	videoModel  string
	timeout     time.Duration
	httpClient  *http.Client
}

// NewClient creates a client. A missing API key is not an error here; every
// call will report ErrNotConfigured instead, so the server can boot without
// credentials and the player sees an actionable message.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	textModel := strings.TrimSpace(cfg.TextModel)
	if textModel == "" {
		textModel = "gemini-2.5-flash"
	}
	imageModel := strings.TrimSpace(cfg.ImageModel)
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}
	speechModel := strings.TrimSpace(cfg.SpeechModel)
	if speechModel == "" {
		speechModel = "gemini-2.5-flash-preview-tts"
	}
	videoModel := strings.TrimSpace(cfg.VideoModel)
	if videoModel == "" {
		videoModel = "veo-3.0-generate-001"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     strings.TrimRight(baseURL, "/"),
		textModel:   textModel,
		imageModel:  imageModel,
		speechModel: speechModel,
		videoModel:  videoModel,
		timeout:     timeout,
		httpClient:  &http.Client{},
	}
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// doJSON posts a JSON payload and returns the raw response body.
func (c *Client) doJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("api key missing: %w", ErrNotConfigured)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider request failed, status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// doGet fetches a JSON resource, used for long-running operation polling.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("api key missing: %w", ErrNotConfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider request failed, status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// Wire shapes shared by the generateContent endpoints.

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content           content `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// firstText returns the concatenated text parts of the first candidate.
func (r *generateResponse) firstText() (string, error) {
	if len(r.Candidates) == 0 {
		return "", ErrInvalidResponse
	}
	var parts []string
	for _, p := range r.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	if len(parts) == 0 {
		return "", ErrInvalidResponse
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// firstInline returns the first inline data part of the first candidate.
func (r *generateResponse) firstInline() (*inlineData, error) {
	if len(r.Candidates) == 0 {
		return nil, ErrInvalidResponse
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return p.InlineData, nil
		}
	}
	return nil, ErrInvalidResponse
}

// generate posts to the text model's generateContent endpoint.
func (c *Client) generate(ctx context.Context, model string, payload map[string]any) (*generateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.doJSON(ctx, fmt.Sprintf("/v1beta/models/%s:generateContent", model), payload)
	if err != nil {
		return nil, err
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// extractJSONPayload strips markdown fences and surrounding prose from a
// model reply that is supposed to be a JSON document.
func extractJSONPayload(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "{}"
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end >= start {
		return trimmed[start : end+1]
	}
	return trimmed
}

func userContent(text string) []content {
	return []content{{Role: "user", Parts: []part{{Text: text}}}}
}
