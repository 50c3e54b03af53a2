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

package edgepool

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/weaviate/bipartite/entities/graph"
)

// OptimizedEdgePool is the read-only, densely packed form of a filled
// pool. The edges of node n are edges[offsets[n]:offsets[n+1]] in insertion
// order. Nothing is ever written after construction, so no atomics are
// needed on the read path.
type OptimizedEdgePool struct {
	offsets  []int32
	edges    []int32
	metadata []int64
}

// NewOptimizedEdgePool takes ownership of the given slices. offsets must
// have one entry per node plus a trailing end offset and be non-decreasing.
// metadata is either nil or as long as edges.
func NewOptimizedEdgePool(offsets, edges []int32, metadata []int64) (*OptimizedEdgePool, error) {
	if len(offsets) == 0 {
		return nil, errors.New("offsets must hold at least the end offset")
	}
	if int(offsets[len(offsets)-1]) != len(edges) {
		return nil, errors.Errorf("end offset %d does not match %d edges", offsets[len(offsets)-1], len(edges))
	}
	if metadata != nil && len(metadata) != len(edges) {
		return nil, errors.Errorf("got %d metadata words for %d edges", len(metadata), len(edges))
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, errors.Errorf("offsets decrease at node %d", i-1)
		}
	}

	return &OptimizedEdgePool{
		offsets:  offsets,
		edges:    edges,
		metadata: metadata,
	}, nil
}

func (p *OptimizedEdgePool) AddEdge(nodeA, nodeB int32) error {
	return errors.Wrapf(graph.ErrUnsupported, "add edge (%d, %d): optimized pools are read-only", nodeA, nodeB)
}

func (p *OptimizedEdgePool) AddEdgeWithMetadata(nodeA, nodeB int32, metadata int64) error {
	return p.AddEdge(nodeA, nodeB)
}

func (p *OptimizedEdgePool) CheckCapacity(node int32) error {
	return errors.Wrapf(graph.ErrUnsupported, "node %d: optimized pools are read-only", node)
}

func (p *OptimizedEdgePool) RemoveEdge(nodeA, nodeB int32) error {
	return errRemoveUnsupported(nodeA, nodeB)
}

func (p *OptimizedEdgePool) span(node int32) (int, int) {
	if node < 0 || int(node) >= len(p.offsets)-1 {
		return 0, 0
	}
	return int(p.offsets[node]), int(p.offsets[node+1])
}

func (p *OptimizedEdgePool) NodeDegree(node int32) int {
	start, end := p.span(node)
	return end - start
}

func (p *OptimizedEdgePool) NodeEdges(node int32, reuse IntIterator) IntIterator {
	start, end := p.span(node)
	if start == end {
		return nil
	}

	it, ok := reuse.(*sliceIterator)
	if !ok {
		it = &sliceIterator{}
	}
	it.reset(p.edges, p.metadata, start, end)
	return it
}

func (p *OptimizedEdgePool) RandomNodeEdges(node int32, numSamples int,
	rng *rand.Rand, reuse IntIterator,
) IntIterator {
	start, end := p.span(node)
	if start == end {
		return nil
	}

	it, ok := reuse.(*sliceRandomIterator)
	if !ok {
		it = &sliceRandomIterator{}
	}
	it.reset(p.edges, p.metadata, start, end-start, numSamples, rng)
	return it
}

func (p *OptimizedEdgePool) NumNodeSlots() int {
	return len(p.offsets) - 1
}

func (p *OptimizedEdgePool) NumEdges() int {
	return len(p.edges)
}

// FillPercentage is always 1, there is no slack in an optimized pool.
func (p *OptimizedEdgePool) FillPercentage() float64 {
	return 1.0
}

func (p *OptimizedEdgePool) HasMetadata() bool {
	return p.metadata != nil
}
