package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "qsearch"
	subsystem        = "server"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of API requests, by route and status code",
		},
		[]string{"route", "code"},
	)

	submittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "jobs_submitted_total",
			Help:      "Total number of accepted job submissions, by backend",
		},
		[]string{"backend"},
	)

	finishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "jobs_finished_total",
			Help:      "Total number of jobs the worker finished, by outcome",
		},
		[]string{"outcome"}, // outcome: "done", "error", "cancelled"
	)

	executionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "execution_duration_seconds",
			Help:      "Time spent executing one claimed job",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"backend"},
	)
)
