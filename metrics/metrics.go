// Package metrics provides Prometheus metrics for argument pipelines.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Azhovan/reqargs"
)

// Collector records pipeline invocations. It implements reqargs.Observer.
type Collector struct {
	Invocations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	FieldErrors *prometheus.CounterVec
}

var _ reqargs.Observer = (*Collector)(nil)

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reqargs",
				Name:      "invocations_total",
				Help:      "Total number of pipeline invocations by final state",
			},
			[]string{"operation", "state", "failure"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "reqargs",
				Name:      "invocation_duration_seconds",
				Help:      "Time spent resolving and validating arguments",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "state"},
		),
		FieldErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reqargs",
				Name:      "field_errors_total",
				Help:      "Total number of field validation failures by code",
			},
			[]string{"operation", "code"},
		),
	}
}

// Observe records one finished invocation.
func (c *Collector) Observe(_ context.Context, ev reqargs.Event) {
	c.Invocations.WithLabelValues(ev.Operation, ev.State.String(), ev.Failure.String()).Inc()
	c.Duration.WithLabelValues(ev.Operation, ev.State.String()).Observe(ev.Duration.Seconds())
	for _, fe := range ev.FieldErrors {
		c.FieldErrors.WithLabelValues(ev.Operation, fe.Code).Inc()
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
