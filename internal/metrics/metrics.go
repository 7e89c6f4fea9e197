package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	// Registry holds only langprune metrics. The process-level Go collectors
	// are left out because the textfile is merged into node_exporter output.
	Registry = prometheus.NewRegistry()
)

// Init initializes all metrics and registers them with Registry
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		initPruneMetrics()
		registerPruneMetrics(Registry)

		// Present in the textfile even before the first run
		LastRunTimestamp.Set(0)
	})
}

// WriteTextfile writes the current metric values in the Prometheus text
// format, atomically replacing path, for the node_exporter textfile collector
func WriteTextfile(path string) error {
	Init()
	return prometheus.WriteToTextfile(path, Registry)
}
