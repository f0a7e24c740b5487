package pipeline

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"campaignflow/internal/domain"
	"campaignflow/internal/infra"
)

// EventSink receives pipeline events in emission order. The orchestrator is
// the sole writer; sinks only observe.
type EventSink interface {
	Emit(ev domain.PipelineEvent)
}

// Emitter writes newline-delimited JSON event frames to a client connection.
// Emission is serialized, so the stream order matches the orchestrator's
// stage order exactly. Write failures (client disconnect) are swallowed: the
// server-side run completes to its terminal state regardless.
type Emitter struct {
	mu      sync.Mutex
	enc     *json.Encoder
	flusher http.Flusher
	logger  infra.Logger
}

// NewEmitter wraps w. When w also implements http.Flusher every frame is
// flushed immediately so the client sees progress as it happens.
func NewEmitter(w io.Writer, logger infra.Logger) *Emitter {
	e := &Emitter{enc: json.NewEncoder(w), logger: logger}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

// Emit implements EventSink.
func (e *Emitter) Emit(ev domain.PipelineEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(ev); err != nil {
		e.logger.Debug().Err(err).Str("step", ev.Step).Msg("pipeline: event write failed, client likely gone")
		return
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
}

var _ EventSink = (*Emitter)(nil)

// LogSink records events on the service log only. Used by the non-streaming
// campaign endpoint, where the caller receives the final aggregate instead of
// a frame stream.
type LogSink struct {
	Logger infra.Logger
}

// Emit implements EventSink.
func (s LogSink) Emit(ev domain.PipelineEvent) {
	s.Logger.Info().
		Str("step", ev.Step).
		Str("status", ev.Status).
		Msg("pipeline: event")
}

var _ EventSink = LogSink{}
