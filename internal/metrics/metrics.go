package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Run metrics
	RunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aiquery_runs_started_total",
			Help: "Total number of question runs started",
		},
	)

	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiquery_runs_completed_total",
			Help: "Total number of question runs completed",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aiquery_run_duration_seconds",
			Help:    "End-to-end run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Stage metrics
	StageExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiquery_stage_executions_total",
			Help: "Stage executions by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	AnswerScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aiquery_answer_score",
			Help:    "Review scores assigned to generated answers",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	SnippetsAccumulated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aiquery_snippets_accumulated_total",
			Help: "Snippets added to evidence history after deduplication",
		},
	)

	// Language model metrics
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiquery_llm_requests_total",
			Help: "Language model requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aiquery_llm_request_duration_seconds",
			Help:    "Language model request duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	// Search metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiquery_search_requests_total",
			Help: "Web search requests by status",
		},
		[]string{"status"},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aiquery_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		},
	)
)
