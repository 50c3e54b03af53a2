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

package multisegment

import (
	"math/rand"

	"github.com/weaviate/bipartite/adapters/repos/bipartite/segment"
	"github.com/weaviate/bipartite/entities/graph"
)

var _ graph.NodeMetadataEdgeIterator = (*EdgeIterator)(nil)

// EdgeIterator chains the per-segment iterators of one node over a
// snapshot of the window, oldest segment first. A random iterator instead
// splits its samples over the segments in proportion to the node's degree
// in each of them.
type EdgeIterator struct {
	g     *Graph
	right bool

	random     bool
	numSamples int
	rng        *rand.Rand

	// per-segment iterators kept for reuse across ResetForNode
	cache   []*segment.EdgeIterator
	active  []*segment.EdgeIterator
	current int
	last    *segment.EdgeIterator

	degrees []int
}

func (it *EdgeIterator) segmentIterator(s segment.Segment) *segment.EdgeIterator {
	for _, cached := range it.cache {
		if cached.SegmentID() == s.ID() {
			return cached
		}
	}

	var created *segment.EdgeIterator
	if it.right {
		created = s.NewRightIterator()
	} else {
		created = s.NewLeftIterator()
	}
	return created
}

// ResetForNode takes a new snapshot of the window and positions the
// iterator at the node's first edge. Random iterators draw a fresh sample.
func (it *EdgeIterator) ResetForNode(node int64) bool {
	segments := it.g.window.Load().segments
	it.active = it.active[:0]
	it.current = 0
	it.last = nil

	if it.random {
		return it.resetRandom(segments, node)
	}

	cache := make([]*segment.EdgeIterator, 0, len(segments))
	for _, s := range segments {
		sit := it.segmentIterator(s)
		cache = append(cache, sit)
		if sit.ResetForNode(node) {
			it.active = append(it.active, sit)
		}
	}
	it.cache = cache
	return len(it.active) > 0
}

func (it *EdgeIterator) resetRandom(segments []segment.Segment, node int64) bool {
	it.degrees = it.degrees[:0]
	total := 0
	for _, s := range segments {
		var degree int
		if it.right {
			degree = s.RightNodeDegree(node)
		} else {
			degree = s.LeftNodeDegree(node)
		}
		it.degrees = append(it.degrees, degree)
		total += degree
	}
	if total == 0 {
		return false
	}

	samples := make([]int, len(segments))
	for i := 0; i < it.numSamples; i++ {
		r := it.rng.Intn(total)
		for j, degree := range it.degrees {
			if r < degree {
				samples[j]++
				break
			}
			r -= degree
		}
	}

	for i, s := range segments {
		if samples[i] == 0 {
			continue
		}
		var sit *segment.EdgeIterator
		if it.right {
			sit = s.RandomRightNodeEdges(node, samples[i], it.rng)
		} else {
			sit = s.RandomLeftNodeEdges(node, samples[i], it.rng)
		}
		if sit != nil {
			it.active = append(it.active, sit)
		}
	}
	return len(it.active) > 0
}

func (it *EdgeIterator) HasNext() bool {
	for it.current < len(it.active) {
		if it.active[it.current].HasNext() {
			return true
		}
		it.current++
	}
	return false
}

func (it *EdgeIterator) NextLong() int64 {
	it.HasNext()
	it.last = it.active[it.current]
	return it.last.NextLong()
}

func (it *EdgeIterator) CurrentEdgeType() uint8 {
	if it.last == nil {
		return 0
	}
	return it.last.CurrentEdgeType()
}

func (it *EdgeIterator) CurrentMetadata() int64 {
	if it.last == nil {
		return 0
	}
	return it.last.CurrentMetadata()
}

func (it *EdgeIterator) Skip(n int) int {
	skipped := 0
	for skipped < n && it.current < len(it.active) {
		skipped += it.active[it.current].Skip(n - skipped)
		if skipped < n {
			it.current++
		}
	}
	return skipped
}

func (it *EdgeIterator) LeftNodeMetadata(metadataType int) []int32 {
	if it.last == nil {
		return nil
	}
	return it.last.LeftNodeMetadata(metadataType)
}

func (it *EdgeIterator) RightNodeMetadata(metadataType int) []int32 {
	if it.last == nil {
		return nil
	}
	return it.last.RightNodeMetadata(metadataType)
}
