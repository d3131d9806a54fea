// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsAnalyzed counts finished analyses by result
	// (completed, no_structure, extraction_failed, failed).
	DocumentsAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchunk_documents_analyzed_total",
			Help: "Total number of documents analyzed",
		},
		[]string{"result"},
	)

	ChunksProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchunk_chunks_produced_total",
			Help: "Total number of chunks produced, by marker kind",
		},
		[]string{"kind"},
	)

	TokensCounted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docchunk_tokens_counted_total",
			Help: "Total number of tokens counted across all chunks",
		},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docchunk_analysis_duration_seconds",
			Help:    "Time to extract, chunk and count one document",
			Buckets: prometheus.DefBuckets,
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docchunk_queue_depth",
			Help: "Number of jobs waiting for a worker",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchunk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docchunk_http_request_duration_seconds",
			Help:    "HTTP request duration distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
