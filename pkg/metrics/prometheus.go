package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	forecastsTotal  *prometheus.CounterVec
	forecastSeconds *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	cacheHits       *prometheus.CounterVec
	upstreamSeconds *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		forecastsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_forecasts_total",
				Help: "Total number of forecasts issued",
			},
			[]string{"coin", "outcome"},
		),
		forecastSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinpulse_forecast_duration_seconds",
				Help:    "End-to-end forecast duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"coin"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinpulse_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_cache_requests_total",
				Help: "Cache lookups by result",
			},
			[]string{"scope", "result"},
		),
		upstreamSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinpulse_upstream_duration_seconds",
				Help:    "Upstream API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
}

// RecordForecast records an issued forecast and its duration.
func (r *Recorder) RecordForecast(coin, outcome string, seconds float64) {
	r.forecastsTotal.WithLabelValues(coin, outcome).Inc()
	if outcome == "ok" {
		r.forecastSeconds.WithLabelValues(coin).Observe(seconds)
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordCache records a cache lookup result for a scope (live, history, news).
func (r *Recorder) RecordCache(scope string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheHits.WithLabelValues(scope, result).Inc()
}

// RecordUpstream records upstream call latency in seconds.
func (r *Recorder) RecordUpstream(endpoint string, seconds float64) {
	r.upstreamSeconds.WithLabelValues(endpoint).Observe(seconds)
}
