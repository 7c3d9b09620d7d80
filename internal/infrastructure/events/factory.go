package events

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/jhoicas/ispstock-api/pkg/config"
)

// NewSink elige el destino según EVENTS_DRIVER.
func NewSink(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Sink, error) {
	switch cfg.Events.Driver {
	case "kafka":
		return NewKafkaSink(cfg.Kafka)
	case "redis":
		return NewRedisSink(ctx, cfg.Redis)
	case "log", "":
		return NewLogSink(log), nil
	case "none":
		return NopSink{}, nil
	default:
		return nil, fmt.Errorf("events: driver desconocido %q", cfg.Events.Driver)
	}
}
