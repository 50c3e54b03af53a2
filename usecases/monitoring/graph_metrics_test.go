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

package monitoring

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/bipartite/entities/graph"
)

func TestGraphMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := NewGraphMetrics(reg, "clicks")
	require.Nil(t, err)

	m.Rollover()
	m.Rollover()
	m.Eviction()
	m.Optimization(OptimizationSucceeded)
	m.Optimization(OptimizationFailed)
	m.Optimization(OptimizationSucceeded)
	m.OptimizerJobDropped()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Rollovers))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Evictions))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Optimizations.WithLabelValues(OptimizationSucceeded)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Optimizations.WithLabelValues(OptimizationFailed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OptimizerJobsDropped))

	t.Run("a second graph with the same name is rejected", func(t *testing.T) {
		_, err := NewGraphMetrics(reg, "clicks")
		assert.NotNil(t, err)
	})

	t.Run("graphs are told apart by label", func(t *testing.T) {
		_, err := NewGraphMetrics(reg, "views")
		assert.Nil(t, err)
	})
}

func TestNilGraphMetrics(t *testing.T) {
	var m *GraphMetrics
	assert.NotPanics(t, func() {
		m.Rollover()
		m.Eviction()
		m.Optimization(OptimizationSkipped)
		m.OptimizerJobDropped()
	})
}

func TestNoopRegisterer(t *testing.T) {
	m, err := NewGraphMetrics(NoopRegisterer{}, "a")
	require.Nil(t, err)
	_, err = NewGraphMetrics(NoopRegisterer{}, "a")
	require.Nil(t, err)
	m.Rollover()
}

type fixedStats graph.Stats

func (s *fixedStats) Stats() graph.Stats {
	return graph.Stats(*s)
}

func TestGraphCollector(t *testing.T) {
	source := &fixedStats{
		LiveSegmentID:             3,
		LiveSegmentEdges:          25,
		LiveSegmentFillPercentage: 0.25,
		NumSegments:               2,
		OldestSegmentID:           2,
		NumEdgesSeen:              325,
		NumEdgesInNonLiveSegments: 100,
	}
	collector := NewGraphCollector("clicks", source)

	expected := `
# HELP bipartite_edges_seen_total Number of edges ever added to the graph
# TYPE bipartite_edges_seen_total counter
bipartite_edges_seen_total{graph="clicks"} 325
# HELP bipartite_live_segment_edges Number of edges in the live segment
# TYPE bipartite_live_segment_edges gauge
bipartite_live_segment_edges{graph="clicks"} 25
# HELP bipartite_live_segment_fill_ratio Edges in the live segment relative to its capacity
# TYPE bipartite_live_segment_fill_ratio gauge
bipartite_live_segment_fill_ratio{graph="clicks"} 0.25
# HELP bipartite_non_live_segment_edges Number of edges in the filled segments of the window
# TYPE bipartite_non_live_segment_edges gauge
bipartite_non_live_segment_edges{graph="clicks"} 100
# HELP bipartite_segments Number of segments in the window
# TYPE bipartite_segments gauge
bipartite_segments{graph="clicks"} 2
`
	require.Nil(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))

	// values are polled on every scrape
	source.LiveSegmentEdges = 30
	assert.Equal(t, 5, testutil.CollectAndCount(collector))
	require.Nil(t, testutil.CollectAndCompare(collector, strings.NewReader(`
# HELP bipartite_live_segment_edges Number of edges in the live segment
# TYPE bipartite_live_segment_edges gauge
bipartite_live_segment_edges{graph="clicks"} 30
`), "bipartite_live_segment_edges"))
}
