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

package segment

import (
	"math/rand"

	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgepool"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgetype"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/idmap"
	"github.com/weaviate/bipartite/entities/graph"
)

// EdgeIterator walks a node's edges in one segment and translates the
// destinations back to external ids.
type EdgeIterator struct {
	segmentID    int
	mask         edgetype.Mask
	source, dest *side
	leftIsSource bool

	inner edgepool.IntIterator
	spare edgepool.IntIterator
	node  int32
	last  int32

	random     bool
	numSamples int
	rng        *rand.Rand
}

var _ graph.NodeMetadataEdgeIterator = (*EdgeIterator)(nil)

func newEdgeIterator(c *core, source, dest *side, leftIsSource bool) *EdgeIterator {
	return &EdgeIterator{
		segmentID:    c.ID(),
		mask:         c.mask,
		source:       source,
		dest:         dest,
		leftIsSource: leftIsSource,
		node:         idmap.NotFound,
	}
}

// SegmentID is the id of the segment the iterator was created for.
func (it *EdgeIterator) SegmentID() int {
	return it.segmentID
}

// ResetForNode positions the iterator at the first edge of node. Random
// iterators draw a fresh sample.
func (it *EdgeIterator) ResetForNode(node int64) bool {
	it.inner = nil
	it.node = idmap.NotFound

	pool := it.source.currentPool()
	if pool == nil {
		return false
	}
	id := it.source.ids.Get(node)
	if id == idmap.NotFound {
		return false
	}

	var next edgepool.IntIterator
	if it.random {
		next = pool.RandomNodeEdges(id, it.numSamples, it.rng, it.spare)
	} else {
		next = pool.NodeEdges(id, it.spare)
	}
	if next == nil {
		return false
	}

	it.inner, it.spare = next, next
	it.node = id
	return true
}

func (it *EdgeIterator) HasNext() bool {
	return it.inner != nil && it.inner.HasNext()
}

func (it *EdgeIterator) NextLong() int64 {
	return it.dest.ids.GetKey(it.NextInternal())
}

// NextInternal returns the internal id of the next destination.
func (it *EdgeIterator) NextInternal() int32 {
	it.last = it.inner.Next()
	return it.mask.Restore(it.last)
}

func (it *EdgeIterator) CurrentEdgeType() uint8 {
	return it.mask.EdgeType(it.last)
}

func (it *EdgeIterator) CurrentMetadata() int64 {
	if it.inner == nil {
		return 0
	}
	return it.inner.CurrentMetadata()
}

func (it *EdgeIterator) Skip(n int) int {
	if it.inner == nil {
		return 0
	}
	return it.inner.Skip(n)
}

// LeftNodeMetadata returns the metadata of the left end of the current edge.
func (it *EdgeIterator) LeftNodeMetadata(metadataType int) []int32 {
	if it.leftIsSource {
		return it.source.nodeMetadata(it.node, metadataType)
	}
	return it.dest.nodeMetadata(it.mask.Restore(it.last), metadataType)
}

// RightNodeMetadata returns the metadata of the right end of the current
// edge.
func (it *EdgeIterator) RightNodeMetadata(metadataType int) []int32 {
	if it.leftIsSource {
		return it.dest.nodeMetadata(it.mask.Restore(it.last), metadataType)
	}
	return it.source.nodeMetadata(it.node, metadataType)
}
