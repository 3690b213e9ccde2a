package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qudsystem/storybook-backend/internal/narration"
)

const playHTBaseURL = "https://api.play.ht/api/v2"

// defaultPlayHTVoice is a warm storytelling voice suitable for children's
// books.
const defaultPlayHTVoice = "s3://voice-cloning-zero-shot/f3c22a65-87e8-441f-aea5-10a1c201e522/original/manifest.json"

// PlayHT is the secondary speech provider: a plain HTTP API returning raw
// PCM.
type PlayHT struct {
	apiKey string
	userID string
	voice  string
	client *http.Client
}

// NewPlayHT creates a PlayHT provider. Empty credentials produce a provider
// that reports ErrNotConfigured instead of failing requests.
func NewPlayHT(apiKey, userID string) *PlayHT {
	return &PlayHT{
		apiKey: apiKey,
		userID: userID,
		voice:  defaultPlayHTVoice,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Name identifies the provider
func (p *PlayHT) Name() string {
	return "playht"
}

type playHTRequest struct {
	Text         string `json:"text"`
	Voice        string `json:"voice"`
	OutputFormat string `json:"output_format"`
	SampleRate   int    `json:"sample_rate"`
	VoiceEngine  string `json:"voice_engine"`
}

// Synthesize converts text to 24 kHz mono PCM via the streaming endpoint.
func (p *PlayHT) Synthesize(ctx context.Context, text string) (narration.Audio, error) {
	if p.apiKey == "" || p.userID == "" {
		return narration.Audio{}, fmt.Errorf("playht credentials missing: %w", ErrNotConfigured)
	}

	body, err := json.Marshal(playHTRequest{
		Text:         text,
		Voice:        p.voice,
		OutputFormat: "raw",
		SampleRate:   narration.SampleRate,
		VoiceEngine:  "PlayHT2.0",
	})
	if err != nil {
		return narration.Audio{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, playHTBaseURL+"/tts/stream", bytes.NewReader(body))
	if err != nil {
		return narration.Audio{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/basic")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("X-USER-ID", p.userID)

	resp, err := p.client.Do(req)
	if err != nil {
		return narration.Audio{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return narration.Audio{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return narration.Audio{}, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(pcm) == 0 {
		return narration.Audio{}, fmt.Errorf("provider returned no audio")
	}

	return narration.Audio{PCM: pcm, SampleRate: narration.SampleRate}, nil
}
