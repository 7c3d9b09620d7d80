// Package events entrega los eventos de inventario al canal de notificaciones
// (Kafka, Redis pub/sub o log) fuera del camino de la petición.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/jhoicas/ispstock-api/internal/application/ports"
)

var _ ports.EventPublisher = (*Dispatcher)(nil)

// ErrClosed el dispatcher ya no acepta eventos.
var ErrClosed = errors.New("events: dispatcher cerrado")

// Envelope formato en el cable de cada evento.
type Envelope struct {
	ID         string          `json:"id"`
	Event      string          `json:"event"`
	OccurredAt time.Time       `json:"occurred_at"`
	Key        string          `json:"-"`
	Payload    json.RawMessage `json:"payload"`
}

// Sink destino final de los eventos.
type Sink interface {
	Name() string
	Send(ctx context.Context, env Envelope) error
	Close() error
}

// DropCounter recibe los eventos descartados por cola llena o error de envío.
type DropCounter interface {
	EventDropped(event, reason string)
}

// Dispatcher cola acotada con un worker. Publish nunca bloquea: si la cola está llena el evento se descarta.
type Dispatcher struct {
	sink        Sink
	log         zerolog.Logger
	drops       DropCounter
	sendTimeout time.Duration
	now         func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan Envelope
	done   chan struct{}
}

// NewDispatcher arranca el worker. buffer <= 0 usa 256.
func NewDispatcher(sink Sink, buffer int, log zerolog.Logger, drops DropCounter) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	d := &Dispatcher{
		sink:        sink,
		log:         log,
		drops:       drops,
		sendTimeout: 5 * time.Second,
		now:         time.Now,
		queue:       make(chan Envelope, buffer),
		done:        make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish encola el evento. Se llama después del commit; los errores solo se registran.
func (d *Dispatcher) Publish(_ context.Context, event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		d.log.Error().Err(err).Str("event", event).Msg("no se pudo serializar el evento")
		d.drop(event, "encode")
		return
	}
	env := Envelope{
		ID:         uuid.NewString(),
		Event:      event,
		OccurredAt: d.now().UTC(),
		Key:        partitionKey(payload),
		Payload:    body,
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(event, "closed")
		return
	}
	select {
	case d.queue <- env:
	default:
		d.log.Warn().Str("event", event).Str("sink", d.sink.Name()).Msg("cola de eventos llena, evento descartado")
		d.drop(event, "queue_full")
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for env := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err := d.sink.Send(ctx, env)
		cancel()
		if err != nil {
			d.log.Error().Err(err).Str("event", env.Event).Str("event_id", env.ID).Str("sink", d.sink.Name()).Msg("fallo al entregar evento")
			d.drop(env.Event, "send")
			continue
		}
		d.log.Debug().Str("event", env.Event).Str("event_id", env.ID).Str("sink", d.sink.Name()).Msg("evento entregado")
	}
}

// Close deja de aceptar eventos, vacía la cola y cierra el sink.
// Si ctx vence antes de vaciar la cola devuelve ctx.Err() sin cerrar el sink.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return d.sink.Close()
}

func (d *Dispatcher) drop(event, reason string) {
	if d.drops != nil {
		d.drops.EventDropped(event, reason)
	}
}

// partitionKey agrupa por ítem para conservar el orden por ítem en Kafka.
func partitionKey(payload any) string {
	switch p := payload.(type) {
	case ports.InventoryUpdate:
		return p.ItemID
	case *ports.InventoryUpdate:
		if p != nil {
			return p.ItemID
		}
	case ports.GoodsOutUpdate:
		if p.Request != nil {
			return p.Request.ItemID
		}
	case *ports.GoodsOutUpdate:
		if p != nil && p.Request != nil {
			return p.Request.ItemID
		}
	}
	return ""
}
