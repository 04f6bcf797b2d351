// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Worker metrics
var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Scholarship ledger metrics
var (
	ScholarshipOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarship_operations_total",
			Help: "Scholarship ledger operations by outcome",
		},
		[]string{"operation", "result"},
	)

	ScholarshipAwardsDisbursed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarship_awards_disbursed_stroops_total",
			Help: "Award amount committed by approvals, in stroops",
		},
		[]string{"tier"},
	)

	LedgerUpdateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scholarship_ledger_update_duration_seconds",
			Help:    "Duration of ledger units of work",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)

	APIRequestsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarship_api_requests_rejected_total",
			Help: "HTTP requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)
