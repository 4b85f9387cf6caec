// Package metrics exports tag cache activity as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/Keksclan/goRawrCache/tagcache"
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements [tagcache.Metrics] with Prometheus counters.
type Prometheus struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	sets          prometheus.Counter
	revalidations prometheus.Counter
	revalidated   prometheus.Counter
}

var _ tagcache.Metrics = (*Prometheus)(nil)

// NewPrometheus creates the cache counters under namespace and registers them
// with reg. A nil reg registers with prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      name,
			Help:      help,
		})
	}
	p := &Prometheus{
		hits:          counter("hits_total", "Cache lookups that found an entry."),
		misses:        counter("misses_total", "Cache lookups that found nothing."),
		sets:          counter("sets_total", "Entries written to the cache."),
		revalidations: counter("revalidations_total", "Tag revalidation calls."),
		revalidated:   counter("revalidated_entries_total", "Entries removed by tag revalidation."),
	}
	for _, c := range []prometheus.Collector{p.hits, p.misses, p.sets, p.revalidations, p.revalidated} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register cache counter: %w", err)
		}
	}
	return p, nil
}

func (p *Prometheus) Hit()  { p.hits.Inc() }
func (p *Prometheus) Miss() { p.misses.Inc() }
func (p *Prometheus) Set()  { p.sets.Inc() }

func (p *Prometheus) Revalidate(removed int) {
	p.revalidations.Inc()
	p.revalidated.Add(float64(removed))
}

// RegisterEntries registers a gauge reporting the current entry count, read
// from size on every scrape.
func RegisterEntries(reg prometheus.Registerer, namespace string, size func() int) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Entries currently held by the cache.",
	}, func() float64 { return float64(size()) })
	if err := reg.Register(g); err != nil {
		return fmt.Errorf("metrics: register entries gauge: %w", err)
	}
	return nil
}
