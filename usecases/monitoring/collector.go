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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/weaviate/bipartite/entities/graph"
)

// StatsSource is polled at scrape time. Graphs implement it with a lock
// free snapshot, so scraping never blocks the writer.
type StatsSource interface {
	Stats() graph.Stats
}

type graphCollector struct {
	source StatsSource

	liveSegmentEdges    *prometheus.Desc
	edgesSeen           *prometheus.Desc
	nonLiveSegmentEdges *prometheus.Desc
	liveSegmentFill     *prometheus.Desc
	segments            *prometheus.Desc
}

// NewGraphCollector returns a collector reporting the gauges of source
// under the graph label name.
func NewGraphCollector(name string, source StatsSource) prometheus.Collector {
	labels := prometheus.Labels{"graph": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", metric), help, nil, labels)
	}

	return &graphCollector{
		source:              source,
		liveSegmentEdges:    desc("live_segment_edges", "Number of edges in the live segment"),
		edgesSeen:           desc("edges_seen_total", "Number of edges ever added to the graph"),
		nonLiveSegmentEdges: desc("non_live_segment_edges", "Number of edges in the filled segments of the window"),
		liveSegmentFill:     desc("live_segment_fill_ratio", "Edges in the live segment relative to its capacity"),
		segments:            desc("segments", "Number of segments in the window"),
	}
}

func (c *graphCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.liveSegmentEdges
	ch <- c.edgesSeen
	ch <- c.nonLiveSegmentEdges
	ch <- c.liveSegmentFill
	ch <- c.segments
}

func (c *graphCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()

	ch <- prometheus.MustNewConstMetric(c.liveSegmentEdges, prometheus.GaugeValue, float64(stats.LiveSegmentEdges))
	ch <- prometheus.MustNewConstMetric(c.edgesSeen, prometheus.CounterValue, float64(stats.NumEdgesSeen))
	ch <- prometheus.MustNewConstMetric(c.nonLiveSegmentEdges, prometheus.GaugeValue,
		float64(stats.NumEdgesInNonLiveSegments))
	ch <- prometheus.MustNewConstMetric(c.liveSegmentFill, prometheus.GaugeValue, stats.LiveSegmentFillPercentage)
	ch <- prometheus.MustNewConstMetric(c.segments, prometheus.GaugeValue, float64(stats.NumSegments))
}
