// Package metrics registers the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PropsGraded counts grading verdicts by terminal status.
	PropsGraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propgrade",
		Name:      "props_graded_total",
		Help:      "Props processed by the grading pipeline, labeled by terminal status.",
	}, []string{"status"})

	// ResolutionSource counts which chain step produced each value.
	ResolutionSource = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propgrade",
		Name:      "resolution_source_total",
		Help:      "Resolved stat values by source (primary, fallback, none).",
	}, []string{"source"})

	// ProviderRequests counts upstream calls by outcome.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propgrade",
		Name:      "provider_requests_total",
		Help:      "Requests to the sports-statistics provider by outcome.",
	}, []string{"outcome"})

	// CacheOps counts play-log/boxscore cache hits and misses.
	CacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "propgrade",
		Name:      "cache_ops_total",
		Help:      "Game-data cache operations by kind and result.",
	}, []string{"kind", "result"})

	// BatchDuration observes wall time for batch runs.
	BatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "propgrade",
		Name:      "batch_duration_seconds",
		Help:      "Duration of batch grading and feature runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"kind"})

	// FeatureRows counts derived feature rows built.
	FeatureRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "propgrade",
		Name:      "feature_rows_total",
		Help:      "Derived feature rows computed.",
	})
)
