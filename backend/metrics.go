package main

import (
	"net/http"

	"github.com/inarow/inarow/engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors on a private registry. A nil
// *Metrics records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	moves         *prometheus.CounterVec
	decideSeconds *prometheus.HistogramVec
	searchNodes   *prometheus.HistogramVec
	decideErrors  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inarow",
			Name:      "moves_total",
			Help:      "Moves applied to the current match.",
		}, []string{"player", "kind"}),
		decideSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "inarow",
			Name:      "decide_seconds",
			Help:      "Wall time of one AI decision.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"difficulty"}),
		searchNodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "inarow",
			Name:      "search_nodes",
			Help:      "Nodes visited by one AI decision.",
			Buckets:   prometheus.ExponentialBuckets(1, 8, 8),
		}, []string{"difficulty"}),
		decideErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inarow",
			Name:      "decide_errors_total",
			Help:      "AI decisions that returned an error.",
		}, []string{"difficulty"}),
	}
	m.registry.MustRegister(m.moves, m.decideSeconds, m.searchNodes, m.decideErrors)
	return m
}

// RegisterCache exposes the AI seats' cache snapshot as gauges.
func (m *Metrics) RegisterCache(stats func() engine.CacheStats) {
	gauge := func(name, help string, value func(engine.CacheStats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "inarow",
			Subsystem: "cache",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats()) })
	}
	m.registry.MustRegister(
		gauge("entries", "Entries held by the AI transposition caches.", func(s engine.CacheStats) float64 { return float64(s.Size) }),
		gauge("hits", "Cache probes whose entry the search used.", func(s engine.CacheStats) float64 { return float64(s.Hits) }),
		gauge("rejected", "Cached entries found but outside the search window.", func(s engine.CacheStats) float64 { return float64(s.Rejected) }),
		gauge("misses", "Cache probes not answered since the seats were created.", func(s engine.CacheStats) float64 { return float64(s.Misses) }),
		gauge("evictions", "Entries evicted since the seats were created.", func(s engine.CacheStats) float64 { return float64(s.Evictions) }),
	)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveMove(player engine.Symbol, isAi bool) {
	if m == nil {
		return
	}
	kind := "human"
	if isAi {
		kind = "ai"
	}
	m.moves.WithLabelValues(player.String(), kind).Inc()
}

func (m *Metrics) ObserveDecide(difficulty engine.Difficulty, result aiResult) {
	if m == nil {
		return
	}
	label := difficulty.String()
	if result.err != nil {
		m.decideErrors.WithLabelValues(label).Inc()
		return
	}
	m.decideSeconds.WithLabelValues(label).Observe(result.elapsed.Seconds())
	m.searchNodes.WithLabelValues(label).Observe(float64(result.stats.Nodes))
}
