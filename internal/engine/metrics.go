// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PIE Contributors

package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the reasoning kernel, registered at package init via
// promauto.
var (
	inferDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pie_infer_duration_seconds",
		Help:    "Histogram of Infer() saturation-loop latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"terminated"})

	inferIterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pie_infer_iterations_total",
		Help: "Total number of forward-chaining saturation passes across all Infer() calls",
	})

	factsDerivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pie_facts_derived_total",
		Help: "Total number of facts added to working memory by Infer()",
	})

	proveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pie_prove_duration_seconds",
		Help:    "Histogram of Prove() latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	proveDepthExceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pie_prove_depth_exceeded_total",
		Help: "Total number of Prove() calls aborted for exceeding the configured max depth",
	})

	queryResultsTotal = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pie_query_results_total",
		Help:    "Histogram of result-set size per Query() call",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
	})
)

func recordInferMetrics(d time.Duration, iterations, derived int, terminated string) {
	inferDuration.WithLabelValues(terminated).Observe(d.Seconds())
	inferIterationsTotal.Add(float64(iterations))
	factsDerivedTotal.Add(float64(derived))
}

func recordProveMetrics(d time.Duration, proven bool) {
	result := "false"
	if proven {
		result = "true"
	}
	proveDuration.WithLabelValues(result).Observe(d.Seconds())
}

func recordProveDepthExceeded() {
	proveDepthExceededTotal.Inc()
}

func recordQueryMetrics(resultCount int) {
	queryResultsTotal.Observe(float64(resultCount))
}
