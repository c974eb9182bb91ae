package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	CycleRan      = "ran"
	CycleSkipped  = "skipped_locked"
	CycleLockLost = "lock_lost"
)

// CronJobMetrics tracks maintenance job runs and the scheduling cycles that
// contain them. A nil receiver records nothing.
type CronJobMetrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	cycles      *prometheus.CounterVec
}

// NewCronJobMetrics registers the cron collectors on reg.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return nil
	}
	m := &CronJobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_runs_total",
			Help:      "Cron job executions by outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_duration_seconds",
			Help:      "Wall time spent in each cron job.",
			Buckets:   []float64{0.05, 0.25, 1, 5, 15, 60, 300},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run of each job.",
		}, []string{"job"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "cycles_total",
			Help:      "Scheduling cycles by how the cluster lock resolved.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.runs, m.duration, m.lastSuccess, m.cycles)
	return m
}

// RecordRun observes one job execution finishing at finished.
func (c *CronJobMetrics) RecordRun(job string, took time.Duration, finished time.Time, err error) {
	if c == nil {
		return
	}
	job = normalizeLabel(job)
	c.duration.WithLabelValues(job).Observe(took.Seconds())
	if err != nil {
		c.runs.WithLabelValues(job, OutcomeFailure).Inc()
		return
	}
	c.runs.WithLabelValues(job, OutcomeSuccess).Inc()
	c.lastSuccess.WithLabelValues(job).Set(float64(finished.Unix()))
}

// RecordCycle counts a scheduling cycle by outcome.
func (c *CronJobMetrics) RecordCycle(outcome string) {
	if c == nil {
		return
	}
	c.cycles.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
