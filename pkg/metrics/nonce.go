package metrics

import "github.com/prometheus/client_golang/prometheus"

var NonceIssuedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "exnonce_nonce_issued_total",
		Help: "number of nonces issued, by issue mode (store or fallback)",
	}, []string{"exchange", "mode"})

var NonceFallbackMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "exnonce_nonce_fallback_total",
		Help: "number of nonces issued from the local fallback path while the counter store was unavailable",
	}, []string{"exchange"})

var ResyncMarkedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "exnonce_resync_marked_total",
		Help: "number of times a nonce key entered resync mode after an invalid nonce rejection",
	}, []string{"exchange"})

var ResyncClearedMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "exnonce_resync_cleared_total",
		Help: "number of times a nonce key left resync mode after a successful call",
	}, []string{"exchange"})

var StoreErrorMetrics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "exnonce_store_errors_total",
		Help: "counter store errors, by operation",
	}, []string{"op"})

var ClockOffsetMetrics = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "exnonce_clock_offset_milliseconds",
		Help: "last known exchange clock offset in milliseconds",
	}, []string{"exchange"})

func init() {
	prometheus.MustRegister(
		NonceIssuedMetrics,
		NonceFallbackMetrics,
		ResyncMarkedMetrics,
		ResyncClearedMetrics,
		StoreErrorMetrics,
		ClockOffsetMetrics,
	)
}
