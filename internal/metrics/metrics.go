package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onego_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onego_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// GenerationsTotal counts synthesized artifacts by stage (module_content,
	// quiz_questions) and source (ai, fallback).
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onego_generations_total",
			Help: "Total number of synthesized artifacts by stage and source.",
		},
		[]string{"stage", "source"},
	)

	GenerationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onego_generation_failures_total",
			Help: "Total number of AI generation failures absorbed by fallbacks.",
		},
		[]string{"stage", "kind"},
	)

	CreditsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onego_credits_consumed_total",
			Help: "Total number of credits consumed by action.",
		},
		[]string{"action"},
	)

	CreditRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onego_credit_rejections_total",
			Help: "Total number of gated actions rejected for insufficient credits or plan.",
		},
		[]string{"action", "reason"},
	)

	CoursesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onego_courses_created_total",
			Help: "Total number of courses created.",
		},
		[]string{"track"},
	)

	QuizJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onego_quiz_jobs_total",
			Help: "Total number of asynchronous quiz jobs processed.",
		},
		[]string{"status"},
	)

	CourseGenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "onego_course_generation_duration_seconds",
			Help:    "Time spent generating a course, from credit check to final write.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		GenerationsTotal,
		GenerationFailuresTotal,
		CreditsConsumedTotal,
		CreditRejectionsTotal,
		CoursesCreatedTotal,
		QuizJobsTotal,
		CourseGenerationDuration,
	)
}
