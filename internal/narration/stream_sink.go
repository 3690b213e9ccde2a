package narration

import (
	"sync"
	"time"
)

// SendFunc delivers one scheduled audio frame to the client along with its
// start position on the playback timeline.
type SendFunc func(audio Audio, start time.Duration) error

// StreamSink is a Sink that forwards scheduled buffers to a client stream.
// The playback clock is wall time since the sink was created; the client
// schedules each frame at its carried start position, so frames can be
// delivered as soon as they are synthesized.
type StreamSink struct {
	send SendFunc

	mu    sync.Mutex
	epoch time.Time
}

// NewStreamSink creates a sink that delivers frames through send
func NewStreamSink(send SendFunc) *StreamSink {
	return &StreamSink{
		send:  send,
		epoch: time.Now(),
	}
}

// Now returns the playback clock position.
func (s *StreamSink) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.epoch)
}

// Schedule forwards the buffer to the client.
func (s *StreamSink) Schedule(audio Audio, start time.Duration) error {
	return s.send(audio, start)
}

// After returns a channel that closes once the playback clock reaches t.
func (s *StreamSink) After(t time.Duration) <-chan struct{} {
	ch := make(chan struct{})
	remaining := t - s.Now()
	if remaining <= 0 {
		close(ch)
		return ch
	}

	go func() {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		<-timer.C
		close(ch)
	}()

	return ch
}

// Stop restarts the playback clock. The owning stream tells the client to
// halt; frames scheduled after a stop land on the fresh timeline.
func (s *StreamSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch = time.Now()
}

// Release is a no-op; the stream's lifetime is managed by its connection.
func (s *StreamSink) Release() {}
