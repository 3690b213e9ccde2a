package tts

import (
	"context"
	"errors"
	"fmt"

	"github.com/qudsystem/storybook-backend/internal/genai"
	"github.com/qudsystem/storybook-backend/internal/narration"
)

// Gemini adapts the generative client's speech synthesis to the provider
// chain. It is the primary narration voice.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates the primary provider
func NewGemini(client *genai.Client) *Gemini {
	return &Gemini{client: client}
}

// Name identifies the provider
func (g *Gemini) Name() string {
	return "gemini"
}

// Synthesize converts text to 24 kHz mono PCM.
func (g *Gemini) Synthesize(ctx context.Context, text string) (narration.Audio, error) {
	pcm, err := g.client.SynthesizeSpeech(ctx, text)
	if err != nil {
		if errors.Is(err, genai.ErrNotConfigured) {
			return narration.Audio{}, fmt.Errorf("gemini speech: %w", ErrNotConfigured)
		}
		return narration.Audio{}, err
	}

	return narration.Audio{PCM: pcm, SampleRate: narration.SampleRate}, nil
}
