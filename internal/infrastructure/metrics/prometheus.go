// Package metrics expone las métricas del libro de movimientos en formato Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

var _ inventory.Metrics = (*Ledger)(nil)

// Ledger métricas del coordinador y de la API HTTP.
type Ledger struct {
	registry     *prometheus.Registry
	movements    *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	conflicts    prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// New registra los colectores en un registro propio (varios en paralelo no chocan).
func New(namespace string) *Ledger {
	reg := prometheus.NewRegistry()
	m := &Ledger{
		registry: reg,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_total",
			Help:      "Movimientos procesados por tipo y resultado",
		}, []string{"tipo", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "movement_duration_seconds",
			Help:      "Duración de la unidad atómica de cada movimiento",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tipo"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movement_conflict_retries_total",
			Help:      "Reintentos por conflicto de concurrencia",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests HTTP por método, ruta y status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de requests HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.movements, m.latency, m.conflicts, m.httpRequests, m.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveMovement implementa inventory.Metrics.
func (m *Ledger) ObserveMovement(tipo entity.MovementType, outcome string, elapsed time.Duration) {
	m.movements.WithLabelValues(string(tipo), outcome).Inc()
	if outcome == inventory.OutcomeApplied {
		m.latency.WithLabelValues(string(tipo)).Observe(elapsed.Seconds())
	}
}

// IncConflictRetry implementa inventory.Metrics.
func (m *Ledger) IncConflictRetry() {
	m.conflicts.Inc()
}

// Registry registro subyacente (pruebas).
func (m *Ledger) Registry() *prometheus.Registry {
	return m.registry
}

// Handler handler HTTP de /metrics.
func (m *Ledger) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware cuenta requests por ruta registrada (no por path crudo, para acotar cardinalidad).
func (m *Ledger) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpLatency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
