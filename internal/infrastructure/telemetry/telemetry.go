// Package telemetry exports sell engine activity as prometheus metrics.
package telemetry

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"automarket/internal/domain/entity"
	"automarket/internal/domain/service/sell"
)

const namespace = "automarket"

type Metrics struct {
	registry *prometheus.Registry

	batches       prometheus.Counter
	listedUnits   prometheus.Counter
	revenue       prometheus.Counter
	outcomes      *prometheus.CounterVec
	pollExhausted *prometheus.CounterVec
	runs          *prometheus.CounterVec
	running       prometheus.Gauge
}

var _ sell.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_listed_total",
			Help:      "Listing batches submitted to the market.",
		}),
		listedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listed_units_total",
			Help:      "Units put up for sale.",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimated_revenue_total",
			Help:      "Sum of price times quantity over every listed batch.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_outcomes_total",
			Help:      "Items settled by the scheduler, by outcome.",
		}, []string{"status", "agent"}),
		pollExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_exhausted_total",
			Help:      "Readiness polls that ran out of attempts, by surface.",
		}, []string{"surface"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished sell runs, by result.",
		}, []string{"result"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_in_progress",
			Help:      "1 while a sell run is executing.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.batches,
		m.listedUnits,
		m.revenue,
		m.outcomes,
		m.pollExhausted,
		m.runs,
		m.running,
	)

	return m
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) BatchListed(_ context.Context, _ *entity.StockItem, quantity int, price int64) {
	m.batches.Inc()
	m.listedUnits.Add(float64(quantity))
	m.revenue.Add(float64(price * int64(quantity)))
}

func (m *Metrics) ItemSettled(_ context.Context, outcome entity.ItemOutcome) {
	m.outcomes.WithLabelValues(string(outcome.Status), strconv.Itoa(outcome.Agent)).Inc()
}

func (m *Metrics) PollExhausted(_ context.Context, surface sell.Surface) {
	m.pollExhausted.WithLabelValues(surface.String()).Inc()
}

func (m *Metrics) RunStarted() {
	m.running.Set(1)
}

// RunFinished records the result label: "completed", "cancelled" or "failed".
func (m *Metrics) RunFinished(result string) {
	m.running.Set(0)
	m.runs.WithLabelValues(result).Inc()
}
