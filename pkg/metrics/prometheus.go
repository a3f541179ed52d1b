package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	refreshTotal  *prometheus.CounterVec
	feedErrors    *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	fetchDuration *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		refreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dragonveins_refresh_cycles_total",
				Help: "Total number of market refresh cycles by outcome",
			},
			[]string{"outcome"},
		),
		feedErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dragonveins_feed_errors_total",
				Help: "Total number of upstream feed errors by kind",
			},
			[]string{"kind"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dragonveins_last_price",
				Help: "Last observed price for the selected symbol",
			},
			[]string{"symbol"},
		),
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dragonveins_fetch_duration_seconds",
				Help:    "Duration of upstream fetch operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRefresh records a completed refresh cycle by outcome (ok/error/discarded).
func (r *Recorder) RecordRefresh(outcome string) {
	r.refreshTotal.WithLabelValues(outcome).Inc()
}

// RecordFeedError records an upstream error occurrence.
func (r *Recorder) RecordFeedError(kind string) {
	r.feedErrors.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordFetchDuration records upstream fetch latency in seconds.
func (r *Recorder) RecordFetchDuration(op string, seconds float64) {
	r.fetchDuration.WithLabelValues(op).Observe(seconds)
}
