//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

// Package monitoring exposes the counters and gauges of a segmented graph
// to Prometheus.
package monitoring

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bipartite"

const (
	OptimizationSucceeded = "success"
	OptimizationFailed    = "failure"
	OptimizationSkipped   = "skipped"
)

// GraphMetrics counts the events of one graph. A nil *GraphMetrics is valid
// and records nothing.
type GraphMetrics struct {
	Rollovers            prometheus.Counter
	Evictions            prometheus.Counter
	Optimizations        *prometheus.CounterVec
	OptimizerJobsDropped prometheus.Counter
}

// NewGraphMetrics registers the counters of the graph called name with reg.
func NewGraphMetrics(reg prometheus.Registerer, name string) (*GraphMetrics, error) {
	labels := prometheus.Labels{"graph": name}

	m := &GraphMetrics{
		Rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "segment_rollovers_total",
			Help:        "Number of times the live segment was filled and replaced",
			ConstLabels: labels,
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "segment_evictions_total",
			Help:        "Number of segments dropped from the window",
			ConstLabels: labels,
		}),
		Optimizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "segment_optimizations_total",
			Help:        "Number of segment optimization jobs by result",
			ConstLabels: labels,
		}, []string{"result"}),
		OptimizerJobsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "optimizer_jobs_dropped_total",
			Help:        "Number of filled segments not optimized because the queue was full or closed",
			ConstLabels: labels,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.Rollovers, m.Evictions, m.Optimizations, m.OptimizerJobsDropped,
	} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrapf(err, "register metrics of graph %q", name)
		}
	}
	return m, nil
}

func (m *GraphMetrics) Rollover() {
	if m == nil {
		return
	}

	m.Rollovers.Inc()
}

func (m *GraphMetrics) Eviction() {
	if m == nil {
		return
	}

	m.Evictions.Inc()
}

// Optimization records a finished job, result is one of the
// Optimization* constants.
func (m *GraphMetrics) Optimization(result string) {
	if m == nil {
		return
	}

	m.Optimizations.WithLabelValues(result).Inc()
}

func (m *GraphMetrics) OptimizerJobDropped() {
	if m == nil {
		return
	}

	m.OptimizerJobsDropped.Inc()
}
