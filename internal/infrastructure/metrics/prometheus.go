// Package metrics expone métricas Prometheus del motor de asignación y del servidor HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
)

var _ appalloc.Observer = (*Collector)(nil)

// Collector agrupa las métricas en un registro propio (sin el registro global).
type Collector struct {
	registry *prometheus.Registry

	strategyRuns     *prometheus.CounterVec
	strategyDuration *prometheus.HistogramVec
	recommendations  *prometheus.CounterVec
	infeasible       prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewCollector registra las métricas bajo namespace (p. ej. "batch_allocation").
func NewCollector(namespace string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.strategyRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "strategy_runs_total",
		Help: "Ejecuciones de estrategia por resultado de asignación y cumplimiento.",
	}, []string{"strategy", "status", "compliant"})
	c.strategyDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "strategy_duration_seconds",
		Help:    "Duración de una ejecución de estrategia.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"strategy"})
	c.recommendations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "recommendations_total",
		Help: "Estrategia recomendada por optimización.",
	}, []string{"strategy"})
	c.infeasible = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "infeasible_total",
		Help: "Optimizaciones en las que ninguna estrategia cubre la cantidad.",
	})
	c.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "http_requests_total",
		Help: "Solicitudes HTTP por ruta y código.",
	}, []string{"method", "route", "code"})
	c.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds",
		Help:    "Duración de solicitudes HTTP.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	c.registry.MustRegister(
		c.strategyRuns, c.strategyDuration, c.recommendations, c.infeasible,
		c.httpRequests, c.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry registro interno (pruebas y exportadores adicionales).
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveStrategyRun implementa allocation.Observer.
func (c *Collector) ObserveStrategyRun(strategy, status string, compliant bool, elapsed time.Duration) {
	c.strategyRuns.WithLabelValues(strategy, status, strconv.FormatBool(compliant)).Inc()
	c.strategyDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// ObserveOptimization implementa allocation.Observer.
func (c *Collector) ObserveOptimization(recommended string, infeasible bool) {
	c.recommendations.WithLabelValues(recommended).Inc()
	if infeasible {
		c.infeasible.Inc()
	}
}

// Handler expone el registro en formato de exposición Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Middleware cuenta solicitudes HTTP por ruta registrada (no por URL, para acotar cardinalidad).
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		code := ctx.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		}
		route := ctx.Route().Path
		c.httpRequests.WithLabelValues(ctx.Method(), route, strconv.Itoa(code)).Inc()
		c.httpDuration.WithLabelValues(ctx.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
