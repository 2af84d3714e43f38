// Package metrics holds the Prometheus collectors for the bot: Discord
// command dispatch, remote SSH commands, log cache effectiveness, and
// background job outcomes. Collectors live on a private registry so the
// ops endpoint exposes only what the bot registers.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the bot-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "craftd",
			Subsystem: "discord",
			Name:      "commands_total",
			Help:      "Total number of dispatched bot commands.",
		},
		[]string{"command", "outcome"},
	)

	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "craftd",
			Subsystem: "discord",
			Name:      "command_duration_seconds",
			Help:      "Duration of bot command handling.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"command"},
	)

	remoteCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "craftd",
			Subsystem: "ssh",
			Name:      "commands_total",
			Help:      "Total number of remote commands executed over SSH.",
		},
		[]string{"op", "outcome"},
	)

	remoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "craftd",
			Subsystem: "ssh",
			Name:      "command_duration_seconds",
			Help:      "Duration of remote commands including connection setup.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"op"},
	)

	logCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "craftd",
			Subsystem: "logcache",
			Name:      "lookups_total",
			Help:      "Log cache lookups by result.",
		},
		[]string{"result"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "craftd",
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Total number of scheduled job runs.",
		},
		[]string{"job", "outcome"},
	)

	backupRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "craftd",
			Subsystem: "backup",
			Name:      "snapshots_total",
			Help:      "Total number of snapshot uploads.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		commands,
		commandDuration,
		remoteCommands,
		remoteDuration,
		logCacheLookups,
		jobRuns,
		backupRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// outcome converts a success flag to a label value.
func outcome(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}

// RecordCommand records one dispatched bot command.
func RecordCommand(command string, success bool, duration time.Duration) {
	commands.WithLabelValues(command, outcome(success)).Inc()
	commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordRemoteCommand records one SSH command execution. op is the
// leading word of the command line (cat, zcat, ls, bash).
func RecordRemoteCommand(op string, success bool, duration time.Duration) {
	remoteCommands.WithLabelValues(op, outcome(success)).Inc()
	remoteDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordLogCacheLookup counts a cache hit or miss.
func RecordLogCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	logCacheLookups.WithLabelValues(result).Inc()
}

// RecordJobRun records one scheduled job execution.
func RecordJobRun(job string, success bool) {
	jobRuns.WithLabelValues(job, outcome(success)).Inc()
}

// RecordBackup records one snapshot upload attempt.
func RecordBackup(success bool) {
	backupRuns.WithLabelValues(outcome(success)).Inc()
}
