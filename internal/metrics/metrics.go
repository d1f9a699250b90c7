// Package metrics exposes the Prometheus collectors of the vault.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "noona_vault"

// Gate outcomes.
const (
	OutcomePublic      = "public"
	OutcomeVerified    = "verified"
	OutcomeMissing     = "token_missing"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "directory_unavailable"
)

// Registry holds every collector of this package.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	GateDecisions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Authorization gate decisions by outcome.",
	}, []string{"outcome"})

	DirectoryOperations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "directory_operations_total",
		Help:      "Key directory operations by operation and result.",
	}, []string{"op", "result"})

	KeyEvents = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "key_lifecycle_events_total",
		Help:      "Key lifecycle events (create, update, delete) by result.",
	}, []string{"action", "result"})

	DirectoryUp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "directory_up",
		Help:      "Whether the last background probe reached the key directory (1) or not (0).",
	})

	VerifyDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "token_verify_duration_seconds",
		Help:      "Duration of bearer token verification.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the metrics of Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Result turns an error into a low-cardinality label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
