package job

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "qsearch"
	subsystem        = "job"
)

var (
	pollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "polls_total",
			Help:      "Total number of status polls, by observed status",
		},
		[]string{"status"},
	)

	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "completed_total",
			Help:      "Total number of jobs driven to an end, by outcome",
		},
		[]string{"outcome"}, // outcome: "done", "error", "cancelled", "timeout"
	)

	waitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "wait_duration_seconds",
			Help:      "Time from submission to terminal status",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 300, 900},
		},
	)
)
