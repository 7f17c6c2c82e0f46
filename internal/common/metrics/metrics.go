// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

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

	EligibilityEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_evaluations_total",
			Help: "Applicant evaluations by jurisdiction",
		},
		[]string{"jurisdiction"},
	)

	EligibilityMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_matches_total",
			Help: "Program matches returned, by program and status",
		},
		[]string{"program", "status"},
	)

	EligibilityRuleFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_rule_failures_total",
			Help: "Stored rules that could not be evaluated",
		},
		[]string{"program"},
	)

	CandidateCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_candidate_cache_total",
			Help: "Candidate snapshot cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)
