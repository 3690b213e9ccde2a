package narration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSynth returns a fixed half second of audio per sentence, failing on
// sentences that contain the failOn marker.
type fakeSynth struct {
	mu     sync.Mutex
	failOn string
	calls  []string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string) (Audio, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return Audio{}, errors.New("synthesis failed")
	}
	return Audio{PCM: make([]byte, SampleRate), SampleRate: SampleRate}, nil
}

// blockingSynth never returns until the context is canceled.
type blockingSynth struct{}

func (blockingSynth) Synthesize(ctx context.Context, text string) (Audio, error) {
	<-ctx.Done()
	return Audio{}, ctx.Err()
}

type scheduled struct {
	audio Audio
	start time.Duration
}

// fakeSink accepts every buffer immediately and reports playback position 0,
// so scheduling decisions come purely from buffer durations.
type fakeSink struct {
	mu        sync.Mutex
	scheduled []scheduled
	stopped   bool
	released  bool
}

func (f *fakeSink) Now() time.Duration { return 0 }

func (f *fakeSink) Schedule(audio Audio, start time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, scheduled{audio: audio, start: start})
	return nil
}

func (f *fakeSink) After(t time.Duration) <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (f *fakeSink) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeSink) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = true
}

func collectEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()

	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, event)
		case <-timeout:
			t.Fatal("timed out waiting for narration events")
		}
	}
}

func TestNarrator_ReadsBookToCompletion(t *testing.T) {
	sink := &fakeSink{}
	narrator := NewNarrator(&fakeSynth{}, sink, zap.NewNop())

	events := collectEvents(t, narrator.Start(context.Background(), []string{
		"The fox ran. The bear slept.",
		"Morning came.",
	}, 0))

	var types []EventType
	for _, event := range events {
		types = append(types, event.Type)
	}
	assert.Equal(t, []EventType{
		EventPageStarted, EventHighlight, EventHighlight, EventPageComplete,
		EventPageStarted, EventHighlight, EventPageComplete,
		EventBookComplete,
	}, types)

	assert.Equal(t, "The fox ran.", events[1].Text)
	assert.Equal(t, 0, events[1].Sentence)
	assert.Equal(t, 1, events[2].Sentence)
	assert.Equal(t, 1, events[4].Page)
}

func TestNarrator_SchedulesBackToBack(t *testing.T) {
	sink := &fakeSink{}
	narrator := NewNarrator(&fakeSynth{}, sink, zap.NewNop())

	collectEvents(t, narrator.Start(context.Background(), []string{
		"One. Two. Three.",
	}, 0))

	require.Len(t, sink.scheduled, 3)
	assert.Equal(t, time.Duration(0), sink.scheduled[0].start)
	assert.Equal(t, sink.scheduled[0].audio.Duration(), sink.scheduled[1].start)
	assert.Equal(t, sink.scheduled[1].start+sink.scheduled[1].audio.Duration(), sink.scheduled[2].start)
}

func TestNarrator_StartsMidBook(t *testing.T) {
	narrator := NewNarrator(&fakeSynth{}, &fakeSink{}, zap.NewNop())

	events := collectEvents(t, narrator.Start(context.Background(), []string{
		"Page one.", "Page two.", "Page three.",
	}, 2))

	require.NotEmpty(t, events)
	assert.Equal(t, EventPageStarted, events[0].Type)
	assert.Equal(t, 2, events[0].Page)
	assert.Equal(t, EventBookComplete, events[len(events)-1].Type)
}

func TestNarrator_SynthesisFailureAborts(t *testing.T) {
	sink := &fakeSink{}
	narrator := NewNarrator(&fakeSynth{failOn: "broken"}, sink, zap.NewNop())

	events := collectEvents(t, narrator.Start(context.Background(), []string{
		"A fine start. A broken middle. Never reached.",
	}, 0))

	last := events[len(events)-1]
	assert.Equal(t, EventError, last.Type)
	assert.Equal(t, 1, last.Sentence)
	assert.True(t, sink.stopped)

	for _, event := range events {
		assert.NotEqual(t, EventBookComplete, event.Type)
	}
}

func TestNarrator_Stop(t *testing.T) {
	sink := &fakeSink{}
	narrator := NewNarrator(blockingSynth{}, sink, zap.NewNop())

	events := narrator.Start(context.Background(), []string{"Never finishes."}, 0)
	narrator.Stop()

	// The event channel closes once the pipeline unwinds.
	collectEvents(t, events)
	assert.True(t, sink.stopped)

	// Stopping again is a no-op.
	narrator.Stop()
}

func TestNarrator_Release(t *testing.T) {
	sink := &fakeSink{}
	narrator := NewNarrator(&fakeSynth{}, sink, zap.NewNop())

	collectEvents(t, narrator.Start(context.Background(), []string{"One."}, 0))
	narrator.Release()

	assert.True(t, sink.released)
}
