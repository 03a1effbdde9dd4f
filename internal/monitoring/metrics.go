package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for database lifecycle monitoring
var (
	// Backup metrics
	BackupRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cashier_backup_runs_total",
			Help: "Total backup runs by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	BackupDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cashier_backup_duration_seconds",
			Help:    "Wall-clock duration of backup runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	BackupArtifactBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cashier_backup_last_artifact_bytes",
			Help: "Size of the most recent backup artifact in bytes",
		},
	)

	BackupArtifactCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cashier_backup_artifacts",
			Help: "Number of backup artifacts currently retained",
		},
	)

	// Reset metrics
	ResetRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cashier_reset_runs_total",
			Help: "Total reset runs by mode, trigger and result",
		},
		[]string{"mode", "trigger", "result"},
	)

	ResetDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cashier_reset_duration_seconds",
			Help:    "Wall-clock duration of reset runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// Retention metrics
	RetentionDeletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cashier_retention_deletions_total",
			Help: "Total backup artifacts deleted by retention sweeps",
		},
	)

	RetentionSweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cashier_retention_sweeps_total",
			Help: "Total retention sweeps by result",
		},
		[]string{"result"},
	)

	// Lock metrics
	LockContentionTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cashier_oplock_contention_total",
			Help: "Operations rejected because another one held the lock",
		},
	)

	LockReclaimsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cashier_oplock_reclaims_total",
			Help: "Stale lock markers reclaimed",
		},
	)

	// Scheduler metrics
	SchedulerTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cashier_scheduler_ticks_total",
			Help: "Scheduler polling ticks processed",
		},
	)

	SchedulerFiresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cashier_scheduler_fires_total",
			Help: "Scheduled operations fired by action",
		},
		[]string{"action"},
	)
)
