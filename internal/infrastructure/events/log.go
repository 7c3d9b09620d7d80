package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink escribe los eventos en el log; útil en desarrollo sin broker.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink { return &LogSink{log: log} }

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(_ context.Context, env Envelope) error {
	s.log.Info().
		Str("event", env.Event).
		Str("event_id", env.ID).
		Str("key", env.Key).
		RawJSON("payload", env.Payload).
		Msg("evento de inventario")
	return nil
}

func (s *LogSink) Close() error { return nil }

// NopSink descarta todo (EVENTS_DRIVER=none).
type NopSink struct{}

func (NopSink) Name() string                         { return "none" }
func (NopSink) Send(context.Context, Envelope) error { return nil }
func (NopSink) Close() error                         { return nil }
