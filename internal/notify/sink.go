package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/truthlie/internal/model"
)

// Sink receives user-visible outcomes from the services
type Sink interface {
	Notify(ctx context.Context, event model.Event)
}

// LogSink writes every event to a structured logger
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs events at info level
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Notify logs the event
func (s *LogSink) Notify(ctx context.Context, event model.Event) {
	attrs := []any{
		slog.String("type", string(event.Type)),
		slog.String("title", event.Title),
	}
	if event.RoundID != "" {
		attrs = append(attrs, slog.String("round_id", string(event.RoundID)))
	}
	if event.SessionCode != "" {
		attrs = append(attrs, slog.String("session_code", string(event.SessionCode)))
	}
	if event.PlayerID != "" {
		attrs = append(attrs, slog.String("player_id", string(event.PlayerID)))
	}
	s.logger.InfoContext(ctx, event.Message, attrs...)
}

// Recorder keeps every event it receives, for tests and for callers
// that render outcomes after an operation returns
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify records the event
func (r *Recorder) Notify(ctx context.Context, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]model.Event, len(r.events))
	copy(result, r.events)
	return result
}

// Types returns the recorded event types in order
func (r *Recorder) Types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]model.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// Drain returns the recorded events and forgets them
func (r *Recorder) Drain() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.events
	r.events = nil
	return events
}

// Multi fans each event out to several sinks
type Multi []Sink

// Notify forwards the event to every sink
func (m Multi) Notify(ctx context.Context, event model.Event) {
	for _, s := range m {
		s.Notify(ctx, event)
	}
}

// Discard drops every event
type Discard struct{}

// Notify does nothing
func (Discard) Notify(ctx context.Context, event model.Event) {}
