// Package metrics records the outcome of a run as Prometheus metrics and
// writes them in the text exposition format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chis/uptag/internal/update"
)

// Metrics collects per-run counts. It is safe for concurrent use.
type Metrics struct {
	gatherer prometheus.Gatherer

	checked    prometheus.Gauge   // Images checked during the run.
	compatible prometheus.Gauge   // Images with a compatible update.
	breaking   prometheus.Gauge   // Images with a breaking update.
	failures   prometheus.Gauge   // Images that failed or whose tag was not encountered.
	examined   prometheus.Counter // Tags pulled from registries.
}

// New creates metrics registered on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m, err := NewWithRegistry(registry, registry)
	if err != nil {
		// a fresh registry cannot hold duplicates
		panic(err)
	}
	return m
}

// NewWithRegistry creates metrics registered on registerer and gathered from gatherer.
func NewWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer) (*Metrics, error) {
	m := &Metrics{
		gatherer: gatherer,
		checked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "uptag_images_checked",
			Help: "Number of images checked during the last run",
		}),
		compatible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "uptag_compatible_updates",
			Help: "Number of images with a compatible update during the last run",
		}),
		breaking: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "uptag_breaking_updates",
			Help: "Number of images with a breaking update during the last run",
		}),
		failures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "uptag_failures",
			Help: "Number of images that could not be checked completely during the last run",
		}),
		examined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uptag_tags_examined_total",
			Help: "Number of tags examined while searching for updates",
		}),
	}

	collectors := []prometheus.Collector{m.checked, m.compatible, m.breaking, m.failures, m.examined}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// ObserveCheck records the outcome of one check.
func (m *Metrics) ObserveCheck(c update.Check) {
	m.checked.Inc()
	m.examined.Add(float64(c.Result.Examined))

	if c.Err != nil {
		m.failures.Inc()
		return
	}
	if c.Result.Outcome.Compatible != nil {
		m.compatible.Inc()
	}
	if c.Result.Outcome.Breaking != nil {
		m.breaking.Inc()
	}
	if !c.Result.Status.Found {
		m.failures.Inc()
	}
}

// WriteFile writes the gathered metrics to path in the Prometheus text format.
// The file is replaced atomically.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
