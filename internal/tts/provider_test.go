package tts

import (
	"context"
	"errors"
	"testing"

	"github.com/qudsystem/storybook-backend/internal/narration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider is a mock implementation of Provider
type fakeProvider struct {
	name  string
	audio narration.Audio
	err   error
	calls int
}

func (f *fakeProvider) Name() string {
	return f.name
}

func (f *fakeProvider) Synthesize(ctx context.Context, text string) (narration.Audio, error) {
	f.calls++
	if f.err != nil {
		return narration.Audio{}, f.err
	}
	return f.audio, nil
}

func TestChain_FirstProviderWins(t *testing.T) {
	primary := &fakeProvider{name: "primary", audio: narration.Audio{PCM: []byte{1, 2}}}
	fallback := &fakeProvider{name: "fallback"}
	chain := NewChain(zap.NewNop(), primary, fallback)

	audio, err := chain.Synthesize(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 2}, audio.PCM)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, fallback.calls)
}

func TestChain_FallsBackOnFailure(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("upstream error")}
	fallback := &fakeProvider{name: "fallback", audio: narration.Audio{PCM: []byte{3}}}
	chain := NewChain(zap.NewNop(), primary, fallback)

	audio, err := chain.Synthesize(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, []byte{3}, audio.PCM)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestChain_AllProvidersFail(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("upstream error")}
	fallback := &fakeProvider{name: "fallback", err: errors.New("quota exceeded")}
	chain := NewChain(zap.NewNop(), primary, fallback)

	_, err := chain.Synthesize(context.Background(), "hello")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "all speech providers failed")
	assert.Contains(t, err.Error(), "primary")
	assert.Contains(t, err.Error(), "fallback")
}

func TestChain_AllUnconfigured(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: ErrNotConfigured}
	fallback := &fakeProvider{name: "fallback", err: ErrNotConfigured}
	chain := NewChain(zap.NewNop(), primary, fallback)

	_, err := chain.Synthesize(context.Background(), "hello")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "no speech provider is configured")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestChain_UnconfiguredThenWorking(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: ErrNotConfigured}
	fallback := &fakeProvider{name: "fallback", audio: narration.Audio{PCM: []byte{7}}}
	chain := NewChain(zap.NewNop(), primary, fallback)

	audio, err := chain.Synthesize(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, audio.PCM)
}

func TestChain_NoProviders(t *testing.T) {
	chain := NewChain(zap.NewNop())

	_, err := chain.Synthesize(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestChain_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &fakeProvider{name: "primary", err: errors.New("upstream error")}
	fallback := &fakeProvider{name: "fallback", audio: narration.Audio{PCM: []byte{1}}}
	chain := NewChain(zap.NewNop(), primary, fallback)

	_, err := chain.Synthesize(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fallback.calls)
}
