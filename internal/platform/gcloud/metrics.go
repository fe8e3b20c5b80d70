package gcloud

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the gcloud command metrics. It is separate from the default
// registry so a run can be written out as a node_exporter textfile.
var Registry = prometheus.NewRegistry()

var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runway",
			Subsystem: "gcloud",
			Name:      "commands_total",
			Help:      "Total number of gcloud commands by group, verb and outcome",
		},
		[]string{"group", "verb", "outcome"},
	)

	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "runway",
			Subsystem: "gcloud",
			Name:      "command_duration_seconds",
			Help:      "Duration of gcloud commands in seconds, retries included",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2min
		},
		[]string{"group", "verb"},
	)

	retriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runway",
			Subsystem: "gcloud",
			Name:      "retries_total",
			Help:      "Total number of gcloud command retries after transient failures",
		},
		[]string{"group", "verb"},
	)
)

func init() {
	Registry.MustRegister(commandsTotal, commandDuration, retriesTotal)
}

// recordCommand records one finished command.
func recordCommand(group, verb, outcome string, d time.Duration) {
	commandsTotal.WithLabelValues(group, verb, outcome).Inc()
	commandDuration.WithLabelValues(group, verb).Observe(d.Seconds())
}

// recordRetry records a retry of a command.
func recordRetry(group, verb string) {
	retriesTotal.WithLabelValues(group, verb).Inc()
}

// WriteMetrics writes the collected metrics to path in the Prometheus text format.
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
