// Package testutil helpers compartidos por los tests de aplicación e interfaces.
package testutil

import (
	"context"
	"sync"
)

// PublishedEvent evento capturado por Recorder.
type PublishedEvent struct {
	Name    string
	Payload any
}

// Recorder implementa ports.EventPublisher y ports.MetricsRecorder guardando todo en memoria.
type Recorder struct {
	mu          sync.Mutex
	Events      []PublishedEvent
	Movements   map[string]int64
	Rejections  map[string]int
	Transitions map[string]int
}

// NewRecorder crea un recorder vacío.
func NewRecorder() *Recorder {
	return &Recorder{
		Movements:   map[string]int64{},
		Rejections:  map[string]int{},
		Transitions: map[string]int{},
	}
}

func (r *Recorder) Publish(_ context.Context, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, PublishedEvent{Name: event, Payload: payload})
}

func (r *Recorder) StockMovement(movementType string, quantity int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Movements[movementType] += quantity
}

func (r *Recorder) StockRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rejections[reason]++
}

func (r *Recorder) GoodsOutTransition(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Transitions[status]++
}

// Names nombres de los eventos publicados, en orden.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Name)
	}
	return out
}

// Reset olvida lo registrado.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = nil
	r.Movements = map[string]int64{}
	r.Rejections = map[string]int{}
	r.Transitions = map[string]int{}
}
