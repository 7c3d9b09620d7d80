// Package metrics contadores Prometheus del inventario y de la API HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/jhoicas/ispstock-api/internal/application/ports"
	"github.com/jhoicas/ispstock-api/internal/infrastructure/events"
)

const namespace = "ispstock"

var (
	_ ports.MetricsRecorder = (*Metrics)(nil)
	_ events.DropCounter    = (*Metrics)(nil)
)

// Metrics colectores registrados en un registry propio (no el global) para poder aislarlos en tests.
type Metrics struct {
	registry *prometheus.Registry

	movementsTotal  *prometheus.CounterVec
	movedUnitsTotal *prometheus.CounterVec
	rejectedTotal   *prometheus.CounterVec
	goodsOutTotal   *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New crea el registry con los colectores de proceso y Go más los del dominio.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		movementsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Movimientos registrados en el ledger por tipo",
		}, []string{"type"}),
		movedUnitsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_moved_units_total",
			Help:      "Unidades movidas (valor absoluto del delta) por tipo",
		}, []string{"type"}),
		rejectedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_rejections_total",
			Help:      "Ajustes de stock rechazados por motivo",
		}, []string{"reason"}),
		goodsOutTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "goods_out_transitions_total",
			Help:      "Transiciones de solicitudes de salida por estado destino",
		}, []string{"status"}),
		eventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Eventos de notificación descartados",
		}, []string{"event", "reason"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry expone el registry (tests y /metrics).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) StockMovement(movementType string, quantity int64) {
	m.movementsTotal.WithLabelValues(movementType).Inc()
	if quantity < 0 {
		quantity = -quantity
	}
	m.movedUnitsTotal.WithLabelValues(movementType).Add(float64(quantity))
}

func (m *Metrics) StockRejected(reason string) {
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) GoodsOutTransition(status string) {
	m.goodsOutTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) EventDropped(event, reason string) {
	m.eventsDropped.WithLabelValues(event, reason).Inc()
}

// Handler endpoint /metrics para Fiber.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware mide cada petición usando la ruta registrada (no la URL) para acotar la cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < http.StatusBadRequest {
				status = http.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
