// Package observability exposes Prometheus metrics for the planner engine.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	remoteFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weekplan",
		Subsystem: "remote",
		Name:      "fetch_total",
		Help:      "Remote calendar fetches, by outcome.",
	}, []string{"outcome"})

	mutationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weekplan",
		Subsystem: "engine",
		Name:      "mutation_total",
		Help:      "Create/delete mutations, by operation and outcome.",
	}, []string{"op", "outcome"})

	derivationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "weekplan",
		Subsystem: "engine",
		Name:      "derivation_duration_seconds",
		Help:      "Wall time of a full merge+aggregate+layout derivation.",
		Buckets:   prometheus.DefBuckets,
	})

	lastDerivationGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "weekplan",
		Subsystem: "engine",
		Name:      "last_derivation_timestamp_seconds",
		Help:      "Unix timestamp of the most recently installed derivation.",
	})
)

func init() {
	prometheus.MustRegister(remoteFetchTotal, mutationTotal, derivationDuration, lastDerivationGauge)
}

// RecordRemoteFetch counts a remote fetch attempt.
func RecordRemoteFetch(ok bool) {
	remoteFetchTotal.WithLabelValues(outcome(ok)).Inc()
}

// RecordMutation counts a create or delete mutation.
func RecordMutation(op string, ok bool) {
	mutationTotal.WithLabelValues(op, outcome(ok)).Inc()
}

// RecordDerivation updates the derivation duration histogram and the
// freshness watermark.
func RecordDerivation(d time.Duration, at time.Time) {
	derivationDuration.Observe(d.Seconds())
	if !at.IsZero() {
		lastDerivationGauge.Set(float64(at.Unix()))
	}
}

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
