// Package metrics exposes check outcomes of repeated runs to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/resolverqa/assessment/internal/assessment"
	"github.com/resolverqa/assessment/internal/report"
)

// Collector records run summaries in its own registry.
type Collector struct {
	registry *prometheus.Registry

	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	passing    *prometheus.GaugeVec
	lastRun    prometheus.Gauge
	runSeconds prometheus.Histogram
}

// NewCollector creates a collector with a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assess_check_runs_total",
			Help: "Check executions by outcome",
		}, []string{"check", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assess_check_duration_seconds",
			Help:    "Duration of a single check including browser setup",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"check"}),
		passing: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "assess_check_passing",
			Help: "1 when the latest execution of the check passed, 0 otherwise",
		}, []string{"check"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "assess_last_run_timestamp_seconds",
			Help: "Unix time the latest run finished",
		}),
		runSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assess_run_duration_seconds",
			Help:    "Duration of a whole run",
			Buckets: prometheus.ExponentialBuckets(5, 2, 7),
		}),
	}
}

// Observe records every outcome of s.
func (c *Collector) Observe(s assessment.Summary) {
	for _, o := range s.Outcomes {
		c.runs.WithLabelValues(o.Check.ID, o.Status).Inc()
		c.duration.WithLabelValues(o.Check.ID).Observe(o.Duration.Seconds())
		if o.Status == report.StatusPassed {
			c.passing.WithLabelValues(o.Check.ID).Set(1)
		} else {
			c.passing.WithLabelValues(o.Check.ID).Set(0)
		}
	}
	c.runSeconds.Observe(s.Duration.Seconds())
	c.lastRun.SetToCurrentTime()
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collected metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
