// Package tts synthesizes speech through an ordered chain of providers.
package tts

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/qudsystem/storybook-backend/internal/narration"
)

// ErrNotConfigured marks a provider that is missing credentials. The chain
// distinguishes "every provider failed" from "no provider was ever set up" so
// the player sees an actionable message in the second case.
var ErrNotConfigured = errors.New("provider not configured")

// Provider is one speech backend. Synthesize returns 16-bit mono PCM.
type Provider interface {
	// Name identifies the provider in logs and error messages.
	Name() string
	// Synthesize converts text to audio.
	//
	// Returns ErrNotConfigured (possibly wrapped) when the provider has no
	// credentials; any other error is a synthesis failure.
	Synthesize(ctx context.Context, text string) (narration.Audio, error)
}

// Chain tries providers in order and returns the first success. Failures are
// logged per provider and aggregated into the final error when every provider
// fails.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

// NewChain creates a provider chain
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger,
	}
}

// Synthesize runs the chain.
func (c *Chain) Synthesize(ctx context.Context, text string) (narration.Audio, error) {
	if len(c.providers) == 0 {
		return narration.Audio{}, fmt.Errorf("no speech providers: %w", ErrNotConfigured)
	}

	var errs []error
	allUnconfigured := true
	for _, provider := range c.providers {
		audio, err := provider.Synthesize(ctx, text)
		if err == nil {
			return audio, nil
		}
		if ctx.Err() != nil {
			return narration.Audio{}, ctx.Err()
		}

		if errors.Is(err, ErrNotConfigured) {
			c.logger.Debug("tts: provider not configured", zap.String("provider", provider.Name()))
		} else {
			allUnconfigured = false
			c.logger.Warn("tts: provider failed", zap.String("provider", provider.Name()), zap.Error(err))
		}
		errs = append(errs, fmt.Errorf("%s: %w", provider.Name(), err))
	}

	if allUnconfigured {
		return narration.Audio{}, fmt.Errorf("no speech provider is configured, set credentials for at least one: %w", errors.Join(errs...))
	}
	return narration.Audio{}, fmt.Errorf("all speech providers failed: %w", errors.Join(errs...))
}
