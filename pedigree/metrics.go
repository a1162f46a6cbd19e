package pedigree

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts builder activity. A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	individuals  prometheus.Counter
	countries    prometheus.Counter
	inconsistent prometheus.Counter
	removed      prometheus.Counter
	edges        *prometheus.CounterVec
	places       *prometheus.CounterVec
	triples      prometheus.Gauge
}

// NewMetrics creates the builder metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		individuals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pedigraph",
			Name:      "individuals_mapped_total",
			Help:      "Individuals mapped to person entities.",
		}),
		countries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pedigraph",
			Name:      "countries_created_total",
			Help:      "Country entities minted.",
		}),
		inconsistent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pedigraph",
			Name:      "country_lookups_inconsistent_total",
			Help:      "Country label lookups that found an inconsistent graph.",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pedigraph",
			Name:      "denylist_triples_removed_total",
			Help:      "Vocabulary statements removed by the denylist.",
		}),
		edges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pedigraph",
			Name:      "kinship_edges_total",
			Help:      "Kinship edges added, by kind.",
		}, []string{"kind"}),
		places: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pedigraph",
			Name:      "place_resolutions_total",
			Help:      "Birthplace resolutions, by matching tier.",
		}, []string{"tier"}),
		triples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pedigraph",
			Name:      "graph_triples",
			Help:      "Triples in the graph after the last ingestion pass.",
		}),
	}
	m.registry.MustRegister(m.individuals, m.countries, m.inconsistent, m.removed, m.edges, m.places, m.triples)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the Prometheus text format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// ObserveResolution counts a place resolution. An empty tier is a miss.
func (m *Metrics) ObserveResolution(tier string) {
	if m == nil {
		return
	}
	if tier == "" {
		tier = "none"
	}
	m.places.WithLabelValues(tier).Inc()
}

func (m *Metrics) incIndividuals() {
	if m != nil {
		m.individuals.Inc()
	}
}

func (m *Metrics) incCountries() {
	if m != nil {
		m.countries.Inc()
	}
}

func (m *Metrics) incInconsistent() {
	if m != nil {
		m.inconsistent.Inc()
	}
}

func (m *Metrics) addRemoved(n int) {
	if m != nil {
		m.removed.Add(float64(n))
	}
}

func (m *Metrics) incEdge(kind string) {
	if m != nil {
		m.edges.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) setTriples(n int) {
	if m != nil {
		m.triples.Set(float64(n))
	}
}
