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

// Package multisegment keeps a sliding window of graph segments over an
// unbounded edge stream.
//
// Edges are appended to the live segment. Once it is filled a new live
// segment is published, the filled one is handed to the optimizer and the
// oldest segment falls out of the window when it grows beyond its bound.
// Readers take one snapshot of the window and never block the writer.
package multisegment

import (
	"math/rand"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgetype"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/optimizer"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/segment"
	"github.com/weaviate/bipartite/entities/graph"
	"github.com/weaviate/bipartite/usecases/config"
	"github.com/weaviate/bipartite/usecases/monitoring"
)

var (
	_ graph.BipartiteGraph = (*Graph)(nil)
	_ graph.DynamicGraph   = (*Graph)(nil)
)

// window is immutable once published.
type window struct {
	// oldest first, the last one is live
	segments          []segment.Segment
	numEdgesInNonLive int
}

func (w *window) live() segment.Segment {
	return w.segments[len(w.segments)-1]
}

type Options struct {
	Logger logrus.FieldLogger
	// Metrics may be nil.
	Metrics *monitoring.GraphMetrics
	// Optimizer is used instead of one built from the config. The caller
	// keeps ownership and closes it.
	Optimizer *optimizer.Optimizer
}

// Graph is a segmented bipartite graph with a single writer and any number
// of concurrent readers.
type Graph struct {
	cfg     config.Graph
	mask    edgetype.Mask
	logger  logrus.FieldLogger
	metrics *monitoring.GraphMetrics

	optimizer     *optimizer.Optimizer
	ownsOptimizer bool

	window       atomic.Pointer[window]
	numEdgesSeen atomic.Int64

	// writer only
	nextSegmentID int
}

func New(cfg config.Graph, opts Options) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mask, err := edgetype.New(cfg.EdgeTypeBits)
	if err != nil {
		return nil, errors.Wrap(err, "edge type mask")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	g := &Graph{
		cfg:       cfg,
		mask:      mask,
		logger:    logger.WithField("component", "bipartite_graph"),
		metrics:   opts.Metrics,
		optimizer: opts.Optimizer,
	}

	if g.optimizer == nil && cfg.Optimizer.Enabled {
		g.optimizer, err = optimizer.New(optimizer.Config{
			Workers:   cfg.Optimizer.Workers,
			QueueSize: cfg.Optimizer.QueueSize,
			Logger:    logger,
			Metrics:   opts.Metrics,
		})
		if err != nil {
			return nil, errors.Wrap(err, "optimizer")
		}
		g.ownsOptimizer = true
	}

	first, err := g.newSegment()
	if err != nil {
		return nil, err
	}
	g.window.Store(&window{segments: []segment.Segment{first}})
	return g, nil
}

func (g *Graph) newSegment() (segment.Segment, error) {
	id := g.nextSegmentID
	g.nextSegmentID++

	cfg := segment.Config{
		ID:                     id,
		MaxNumEdges:            g.cfg.MaxNumEdgesPerSegment,
		ExpectedNumLeftNodes:   g.cfg.ExpectedNumLeftNodes,
		ExpectedMaxLeftDegree:  g.cfg.ExpectedMaxLeftDegree,
		LeftPowerLawExponent:   g.cfg.LeftPowerLawExponent,
		ExpectedNumRightNodes:  g.cfg.ExpectedNumRightNodes,
		ExpectedMaxRightDegree: g.cfg.ExpectedMaxRightDegree,
		RightPowerLawExponent:  g.cfg.RightPowerLawExponent,
		Mask:                   g.mask,
		NumNodeMetadataTypes:   g.cfg.NumNodeMetadataTypes,
		EdgeMetadata:           g.cfg.EdgeMetadata,
	}

	if g.cfg.RightIndexed() {
		s, err := segment.NewLeftRightIndexed(cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "create segment %d", id)
		}
		return s, nil
	}

	s, err := segment.NewLeftIndexed(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "create segment %d", id)
	}
	return s, nil
}

// writableSegment returns the live segment, rolling over first if it is
// filled.
func (g *Graph) writableSegment() (segment.Segment, error) {
	w := g.window.Load()
	if live := w.live(); !live.Filled() {
		return live, nil
	}
	return g.rollover(w)
}

func (g *Graph) rollover(w *window) (segment.Segment, error) {
	filled := w.live()
	filledID, filledEdges := filled.ID(), filled.NumEdges()

	numEvicted := max(0, len(w.segments)+1-g.cfg.MaxNumSegments)
	evicted := w.segments[:numEvicted]

	var live segment.Segment
	if g.cfg.RecycleSegments && numEvicted > 0 {
		live = evicted[0]
		evicted = evicted[1:]
		// its edges leave the window like those of any other evicted segment
		g.evict(live, true)
		if err := live.Reset(g.nextSegmentID); err != nil {
			return nil, errors.Wrap(err, "roll over")
		}
		g.nextSegmentID++
	} else {
		var err error
		if live, err = g.newSegment(); err != nil {
			return nil, errors.Wrap(err, "roll over")
		}
	}

	segments := make([]segment.Segment, 0, len(w.segments)+1-numEvicted)
	segments = append(segments, w.segments[numEvicted:]...)
	segments = append(segments, live)

	next := &window{segments: segments}
	for _, s := range segments[:len(segments)-1] {
		next.numEdgesInNonLive += s.NumEdges()
	}
	g.window.Store(next)

	g.metrics.Rollover()
	g.logger.WithFields(logrus.Fields{
		"action":            "bipartite_rollover",
		"filled_segment_id": filledID,
		"segment_id":        live.ID(),
		"num_edges":         filledEdges,
		"num_segments":      len(segments),
	}).Debug("live segment filled, rolled over to a new segment")

	for _, s := range evicted {
		g.evict(s, false)
	}

	if g.optimizer != nil && !filled.Evicted() && filled != live {
		g.optimizer.Submit(filled)
	}
	return live, nil
}

func (g *Graph) evict(s segment.Segment, recycled bool) {
	s.Evict()
	g.metrics.Eviction()
	g.logger.WithFields(logrus.Fields{
		"action":     "bipartite_evict",
		"segment_id": s.ID(),
		"num_edges":  s.NumEdges(),
		"recycled":   recycled,
	}).Debug("evicted oldest segment")
}

func (g *Graph) AddEdge(left, right int64, edgeType uint8) error {
	s, err := g.writableSegment()
	if err != nil {
		return err
	}
	if err := s.AddEdge(left, right, edgeType); err != nil {
		return err
	}
	g.numEdgesSeen.Add(1)
	return nil
}

// AddEdgeWithMetadata stores an int64 with the edge. It requires a graph
// configured with edge metadata.
func (g *Graph) AddEdgeWithMetadata(left, right int64, edgeType uint8, metadata int64) error {
	if !g.cfg.EdgeMetadata {
		return errors.Wrap(graph.ErrUnsupported, "graph was configured without edge metadata")
	}

	s, err := g.writableSegment()
	if err != nil {
		return err
	}
	if err := s.AddEdgeWithMetadata(left, right, edgeType, metadata); err != nil {
		return err
	}
	g.numEdgesSeen.Add(1)
	return nil
}

// AddEdgeWithNodeMetadata attaches metadata to the nodes of the edge the
// first time each node is seen in the live segment.
func (g *Graph) AddEdgeWithNodeMetadata(left, right int64, edgeType uint8, leftMeta, rightMeta [][]int32) error {
	s, err := g.writableSegment()
	if err != nil {
		return err
	}
	if err := s.AddEdgeWithNodeMetadata(left, right, edgeType, leftMeta, rightMeta); err != nil {
		return err
	}
	g.numEdgesSeen.Add(1)
	return nil
}

func (g *Graph) RemoveEdge(left, right int64) error {
	return errors.Wrapf(graph.ErrUnsupported, "remove edge (%d, %d): the graph is append-only", left, right)
}

func (g *Graph) LeftNodeDegree(node int64) int {
	degree := 0
	for _, s := range g.window.Load().segments {
		degree += s.LeftNodeDegree(node)
	}
	return degree
}

// LeftNodeEdges walks the node's edges from the oldest to the live
// segment. It returns nil if no segment in the window knows the node.
func (g *Graph) LeftNodeEdges(node int64) graph.EdgeIterator {
	it := g.NewLeftIterator()
	if !it.ResetForNode(node) {
		return nil
	}
	return it
}

// RandomLeftNodeEdges draws numSamples edges with replacement. Segments
// contribute in proportion to the node's degree in them.
func (g *Graph) RandomLeftNodeEdges(node int64, numSamples int, rng *rand.Rand) (graph.EdgeIterator, error) {
	it, err := g.NewRandomLeftIterator(numSamples, rng)
	if err != nil {
		return nil, err
	}
	if !it.ResetForNode(node) {
		return nil, nil
	}
	return it, nil
}

// NewLeftIterator returns an exhausted iterator to be positioned with
// ResetForNode.
func (g *Graph) NewLeftIterator() *EdgeIterator {
	return &EdgeIterator{g: g}
}

func (g *Graph) NewRandomLeftIterator(numSamples int, rng *rand.Rand) (*EdgeIterator, error) {
	if err := g.checkRandom(); err != nil {
		return nil, err
	}
	return &EdgeIterator{g: g, random: true, numSamples: numSamples, rng: rng}, nil
}

// RightNodeDegree is 0 on left-indexed graphs.
func (g *Graph) RightNodeDegree(node int64) int {
	degree := 0
	for _, s := range g.window.Load().segments {
		degree += s.RightNodeDegree(node)
	}
	return degree
}

// RightNodeEdges is nil on left-indexed graphs.
func (g *Graph) RightNodeEdges(node int64) graph.EdgeIterator {
	it, err := g.NewRightIterator()
	if err != nil {
		return nil
	}
	if !it.ResetForNode(node) {
		return nil
	}
	return it
}

func (g *Graph) RandomRightNodeEdges(node int64, numSamples int, rng *rand.Rand) (graph.EdgeIterator, error) {
	if !g.cfg.RightIndexed() {
		return nil, errors.Wrap(graph.ErrUnsupported, "right nodes are not indexed")
	}
	if err := g.checkRandom(); err != nil {
		return nil, err
	}

	it := &EdgeIterator{g: g, right: true, random: true, numSamples: numSamples, rng: rng}
	if !it.ResetForNode(node) {
		return nil, nil
	}
	return it, nil
}

func (g *Graph) NewRightIterator() (*EdgeIterator, error) {
	if !g.cfg.RightIndexed() {
		return nil, errors.Wrap(graph.ErrUnsupported, "right nodes are not indexed")
	}
	return &EdgeIterator{g: g, right: true}, nil
}

func (g *Graph) checkRandom() error {
	if g.cfg.NumNodeMetadataTypes > 0 {
		return errors.Wrap(graph.ErrUnsupported, "random edge sampling on a graph with node metadata")
	}
	return nil
}

// Stats reads every value from one snapshot of the window.
func (g *Graph) Stats() graph.Stats {
	w := g.window.Load()
	live := w.live()
	return graph.Stats{
		LiveSegmentID:             live.ID(),
		LiveSegmentEdges:          live.NumEdges(),
		LiveSegmentFillPercentage: live.FillPercentage(),
		NumSegments:               len(w.segments),
		OldestSegmentID:           w.segments[0].ID(),
		NumEdgesSeen:              g.numEdgesSeen.Load(),
		NumEdgesInNonLiveSegments: w.numEdgesInNonLive,
	}
}

// Segments returns the current window, oldest first. The slice must not be
// modified.
func (g *Graph) Segments() []segment.Segment {
	return g.window.Load().segments
}

// Close waits for the optimizer if the graph created it. The graph stays
// readable.
func (g *Graph) Close() error {
	if g.ownsOptimizer {
		return g.optimizer.Close()
	}
	return nil
}
