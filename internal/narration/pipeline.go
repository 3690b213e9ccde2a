package narration

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SampleRate is the PCM sample rate the synthesis providers produce: 24 kHz
// mono, 16-bit samples.
const SampleRate = 24000

// queueDepth bounds the sentence prefetch queue: synthesis runs at most this
// many sentences ahead of playback.
const queueDepth = 3

// Audio is one synthesized sentence: raw 16-bit mono PCM.
type Audio struct {
	PCM        []byte
	SampleRate int
}

// Duration returns the playback length of the audio.
func (a Audio) Duration() time.Duration {
	rate := a.SampleRate
	if rate <= 0 {
		rate = SampleRate
	}
	samples := len(a.PCM) / 2
	return time.Duration(samples) * time.Second / time.Duration(rate)
}

// Synthesizer turns a sentence into audio. The provider chain behind it
// already handles fallback.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}

// Sink is the playback target. Its clock is the audio timeline, not wall
// time: Now reports the playback position and After fires when the position
// passes t. Schedule returns once the buffer is accepted, not when it ends.
type Sink interface {
	Now() time.Duration
	Schedule(audio Audio, start time.Duration) error
	After(t time.Duration) <-chan struct{}
	Stop()
	Release()
}

// EventType tags narrator events.
type EventType string

const (
	EventPageStarted  EventType = "page_started"
	EventHighlight    EventType = "highlight"
	EventPageComplete EventType = "page_complete"
	EventBookComplete EventType = "book_complete"
	EventStopped      EventType = "stopped"
	EventError        EventType = "error"
)

// Event is one narrator state change, delivered in order on the event
// channel.
type Event struct {
	Type     EventType     `json:"type"`
	Page     int           `json:"page"`
	Sentence int           `json:"sentence,omitempty"`
	Text     string        `json:"text,omitempty"`
	StartAt  time.Duration `json:"startAt,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// Narrator reads a book aloud page by page: a producer synthesizes sentences
// a few ahead of playback, a consumer schedules them back to back on the
// sink's audio clock, and finished pages advance automatically.
type Narrator struct {
	synth  Synthesizer
	sink   Sink
	logger *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	cacheMu sync.Mutex
	cache   map[int][]Audio
}

// NewNarrator creates a narrator for one reading session
func NewNarrator(synth Synthesizer, sink Sink, logger *zap.Logger) *Narrator {
	return &Narrator{
		synth:  synth,
		sink:   sink,
		logger: logger,
		cache:  make(map[int][]Audio),
	}
}

// Start begins narration at startPage and returns the event channel. A
// narration already in flight is stopped first. The channel closes when the
// book ends, narration is stopped, or both providers fail on a sentence.
func (n *Narrator) Start(ctx context.Context, pages []string, startPage int) <-chan Event {
	n.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	events := make(chan Event, 16)

	n.mu.Lock()
	n.cancel = cancel
	n.done = done
	n.mu.Unlock()

	go func() {
		defer close(done)
		defer close(events)
		n.run(runCtx, pages, startPage, events)
	}()

	return events
}

// Stop halts narration immediately, mid-sentence if needed. Safe to call at
// any time, any number of times; stopping an idle narrator does nothing.
func (n *Narrator) Stop() {
	n.mu.Lock()
	cancel, done := n.cancel, n.done
	n.cancel, n.done = nil, nil
	n.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	n.sink.Stop()
	<-done
}

// Release stops narration and frees the sink.
func (n *Narrator) Release() {
	n.Stop()
	n.sink.Release()
}

func (n *Narrator) run(ctx context.Context, pages []string, startPage int, events chan<- Event) {
	for page := startPage; page < len(pages); page++ {
		emit(ctx, events, Event{Type: EventPageStarted, Page: page})

		if page+1 < len(pages) {
			go n.prefetchPage(ctx, page+1, pages[page+1])
		}

		if !n.playPage(ctx, page, pages[page], events) {
			return
		}

		emit(ctx, events, Event{Type: EventPageComplete, Page: page})
	}

	emit(ctx, events, Event{Type: EventBookComplete, Page: len(pages) - 1})
}

type queued struct {
	index int
	text  string
	audio Audio
	err   error
}

// playPage narrates one page. The producer goroutine stays at most queueDepth
// sentences ahead; the consumer schedules each buffer at
// max(nextStart, sink.Now()) and moves nextStart forward by the buffer's
// duration, so sentences play gapless even when synthesis is bursty.
func (n *Narrator) playPage(ctx context.Context, page int, text string, events chan<- Event) bool {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return true
	}

	cached := n.cachedPage(page)
	queue := make(chan queued, queueDepth)

	go func() {
		defer close(queue)
		for i, sentence := range sentences {
			var audio Audio
			var err error
			if cached != nil && i < len(cached) {
				audio = cached[i]
			} else {
				audio, err = n.synth.Synthesize(ctx, sentence)
			}

			select {
			case queue <- queued{index: i, text: sentence, audio: audio, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	nextStart := n.sink.Now()
	for item := range queue {
		if item.err != nil {
			if ctx.Err() == nil {
				n.logger.Error("narration: synthesis failed",
					zap.Int("page", page), zap.Int("sentence", item.index), zap.Error(item.err))
				emit(ctx, events, Event{Type: EventError, Page: page, Sentence: item.index, Message: item.err.Error()})
			}
			n.sink.Stop()
			return false
		}

		start := nextStart
		if now := n.sink.Now(); now > start {
			start = now
		}

		if err := n.sink.Schedule(item.audio, start); err != nil {
			n.logger.Error("narration: failed to schedule audio", zap.Int("page", page), zap.Error(err))
			return false
		}

		emit(ctx, events, Event{
			Type:     EventHighlight,
			Page:     page,
			Sentence: item.index,
			Text:     item.text,
			StartAt:  start,
		})

		nextStart = start + item.audio.Duration()

		select {
		case <-ctx.Done():
			return false
		default:
		}
	}

	// Let the tail of the page finish playing.
	select {
	case <-n.sink.After(nextStart):
		return true
	case <-ctx.Done():
		return false
	}
}

// prefetchPage synthesizes a whole page into the cache ahead of playback so
// the page turn does not wait on the first sentence. The cache only grows
// within a session; the session going away frees it.
func (n *Narrator) prefetchPage(ctx context.Context, page int, text string) {
	if n.cachedPage(page) != nil {
		return
	}

	sentences := SplitSentences(text)
	audios := make([]Audio, 0, len(sentences))
	for _, sentence := range sentences {
		audio, err := n.synth.Synthesize(ctx, sentence)
		if err != nil {
			// Playback will retry when it reaches this page.
			return
		}
		audios = append(audios, audio)
	}

	n.cacheMu.Lock()
	n.cache[page] = audios
	n.cacheMu.Unlock()
}

func (n *Narrator) cachedPage(page int) []Audio {
	n.cacheMu.Lock()
	defer n.cacheMu.Unlock()
	return n.cache[page]
}

func emit(ctx context.Context, events chan<- Event, event Event) {
	select {
	case events <- event:
	case <-ctx.Done():
	}
}
