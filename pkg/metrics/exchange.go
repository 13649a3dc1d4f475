package metrics

import "github.com/prometheus/client_golang/prometheus"

var ExchangeCallDurationMetrics = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "exnonce_exchange_call_duration_seconds",
		Help:    "signed exchange call duration in seconds, all attempts included",
		Buckets: prometheus.ExponentialBuckets(0.01, 2.0, 12),
	}, []string{"exchange"})

var ExchangeCallErrorMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "exnonce_exchange_call_errors_total",
		Help: "exhausted or fatal exchange call errors, by failure kind",
	}, []string{"exchange", "kind"})

var ExchangeCallRetryMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "exnonce_exchange_call_retries_total",
		Help: "retried exchange call attempts, by the failure kind that triggered the retry",
	}, []string{"exchange", "kind"})

func init() {
	prometheus.MustRegister(
		ExchangeCallDurationMetrics,
		ExchangeCallErrorMetrics,
		ExchangeCallRetryMetrics,
	)
}
