package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prune run metrics
var (
	// RunDuration tracks how long a prune run takes end to end
	RunDuration prometheus.Histogram

	// LocalesRemovedTotal counts removed locale units per platform
	LocalesRemovedTotal *prometheus.CounterVec

	// LocalesRetained is the number of locale units left after the last run
	LocalesRetained *prometheus.GaugeVec

	// ErrorsTotal counts failed runs by kind (enumerate, refused, safety, delete)
	ErrorsTotal *prometheus.CounterVec

	// LastRunTimestamp records Unix timestamp of the last run
	LastRunTimestamp prometheus.Gauge
)

func initPruneMetrics() {
	RunDuration = NewDurationHistogram(
		"langprune_run_duration_seconds",
		"Duration of prune runs in seconds.",
	)

	LocalesRemovedTotal = NewCounterVec(
		"langprune_locales_removed_total",
		"Total number of locale units removed.",
		[]string{"platform"},
	)

	LocalesRetained = NewGaugeVec(
		"langprune_locales_retained",
		"Number of locale units retained by the last run.",
		[]string{"platform"},
	)

	ErrorsTotal = NewCounterVec(
		"langprune_errors_total",
		"Total number of failed prune runs by failure kind.",
		[]string{"kind"},
	)

	LastRunTimestamp = NewGauge(
		"langprune_last_run_timestamp",
		"Timestamp of the last prune run (Unix epoch seconds).",
	)
}

func registerPruneMetrics(reg prometheus.Registerer) {
	reg.MustRegister(RunDuration)
	reg.MustRegister(LocalesRemovedTotal)
	reg.MustRegister(LocalesRetained)
	reg.MustRegister(ErrorsTotal)
	reg.MustRegister(LastRunTimestamp)
}

// RecordRun updates run-level metrics after a prune finishes
func RecordRun(platform string, removed, retained int, elapsed time.Duration) {
	Init()
	RunDuration.Observe(elapsed.Seconds())
	LocalesRemovedTotal.WithLabelValues(platform).Add(float64(removed))
	LocalesRetained.WithLabelValues(platform).Set(float64(retained))
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordError increments the failure counter for kind
func RecordError(kind string) {
	Init()
	ErrorsTotal.WithLabelValues(kind).Inc()
}
