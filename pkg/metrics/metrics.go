// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// AggregationDuration observes how long one full portfolio aggregation
	// takes, fan-out to fan-in.
	AggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cryptovision_aggregation_duration_seconds",
		Help:    "Duration of full portfolio aggregations.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	// ExchangeFetches counts balance fetches per exchange and outcome.
	ExchangeFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cryptovision_exchange_fetches_total",
		Help: "Balance fetch attempts by exchange and outcome.",
	}, []string{"exchange", "outcome"})

	// BotUpdates counts processed Telegram updates.
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cryptovision_bot_updates_total",
		Help: "Telegram updates processed.",
	})

	// AdvisorRequests counts advisory calls by outcome.
	AdvisorRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cryptovision_advisor_requests_total",
		Help: "Advisory model calls by outcome.",
	}, []string{"outcome"})
)

// MustRegisterMetrics registers all collectors with the default registry.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		AggregationDuration,
		ExchangeFetches,
		BotUpdates,
		AdvisorRequests,
	)
}
