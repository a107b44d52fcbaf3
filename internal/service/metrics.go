package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Label values for lookupsTotal.
const (
	sourceNone    = "none"
	sourceCache   = "cache"
	sourceNetwork = "network"
)

var (
	// lookupsTotal counts accepted submits by where the answer came from and
	// how it ended (ok or an apperror kind).
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_lookups_total",
			Help: "Accepted profile lookups by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	// fetchDuration records GitHub round trips by outcome.
	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "github_fetch_duration_seconds",
			Help:    "Duration of GitHub user fetches in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// fetchesInflight gauges fetches currently waiting on GitHub.
	fetchesInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "github_fetches_inflight",
			Help: "GitHub user fetches currently in flight.",
		},
	)

	// droppedSubmits counts submits ignored because a lookup was already running.
	droppedSubmits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_submits_dropped_total",
			Help: "Submits ignored while a lookup was in flight.",
		},
	)
)

func init() {
	prometheus.MustRegister(lookupsTotal, fetchDuration, fetchesInflight, droppedSubmits)
}
