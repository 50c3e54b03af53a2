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
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/array"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/idmap"
	"github.com/weaviate/bipartite/entities/graph"
)

const (
	minEdgeShardLength = 1 << 12
	maxEdgeShardLength = 1 << 16
	nodeInfoLoadFactor = 0.5
)

// RegularDegreeEdgePool reserves a fixed span of maxDegree slots for every
// node on its first edge. The node's (position, degree) pair lives in one
// atomic cell, the degree being the last thing written for an edge.
type RegularDegreeEdgePool struct {
	edges     *array.IntArray
	nodeInfo  *idmap.IntToIntPairHashMap
	maxDegree int32

	// writer only
	currentOffset int

	numNodes atomic.Int32
	numEdges atomic.Int64
}

func NewRegularDegreeEdgePool(expectedNumNodes, maxDegree int, withMetadata bool) (*RegularDegreeEdgePool, error) {
	if expectedNumNodes <= 0 {
		return nil, errors.Wrapf(graph.ErrInvalidConfig, "expected number of nodes must be positive, got %d",
			expectedNumNodes)
	}
	if maxDegree <= 0 || maxDegree > math.MaxInt32/2 {
		return nil, errors.Wrapf(graph.ErrInvalidConfig, "max degree must be in (0, %d], got %d",
			math.MaxInt32/2, maxDegree)
	}

	// spans may cross shard boundaries, the array handles that
	shardLength := min(max(maxDegree, minEdgeShardLength), maxEdgeShardLength)
	numShards := max(1, expectedNumNodes*maxDegree/shardLength)
	edges, err := array.NewIntArray(numShards, shardLength, 0, withMetadata)
	if err != nil {
		return nil, errors.Wrap(err, "edge array")
	}

	nodeInfo, err := idmap.NewIntToIntPairHashMap(expectedNumNodes, nodeInfoLoadFactor)
	if err != nil {
		return nil, errors.Wrap(err, "node info map")
	}

	return &RegularDegreeEdgePool{
		edges:     edges,
		nodeInfo:  nodeInfo,
		maxDegree: int32(maxDegree),
	}, nil
}

func (p *RegularDegreeEdgePool) MaxDegree() int {
	return int(p.maxDegree)
}

func (p *RegularDegreeEdgePool) HasMetadata() bool {
	return p.edges.HasMetadata()
}

// Edges exposes the backing array for compaction.
func (p *RegularDegreeEdgePool) Edges() *array.IntArray {
	return p.edges
}

// NodeInfo returns the position of the node's span and its degree.
func (p *RegularDegreeEdgePool) NodeInfo(node int32) (position, degree int32, ok bool) {
	packed, ok := p.nodeInfo.GetBothValues(node)
	if !ok {
		return 0, 0, false
	}
	position, degree = idmap.UnpackPair(packed)
	return position, degree, true
}

func (p *RegularDegreeEdgePool) CheckCapacity(node int32) error {
	_, degree, ok := p.NodeInfo(node)
	if !ok {
		return p.checkPositions(node)
	}
	if degree >= p.maxDegree {
		return errMaxDegree(node, p.maxDegree)
	}
	return nil
}

func (p *RegularDegreeEdgePool) checkPositions(node int32) error {
	if p.currentOffset > math.MaxInt32-int(p.maxDegree) {
		return errors.Wrapf(graph.ErrCapacityViolation,
			"pool with max degree %d cannot place node %d, positions exhausted", p.maxDegree, node)
	}
	return nil
}

func (p *RegularDegreeEdgePool) addNode(node int32) (int32, error) {
	if err := p.checkPositions(node); err != nil {
		return 0, err
	}

	position := int32(p.currentOffset)
	// degree 0 makes the entry safe to publish before any edge is written
	p.nodeInfo.Put(node, position, 0)
	p.currentOffset += int(p.maxDegree)
	p.numNodes.Add(1)
	return position, nil
}

func (p *RegularDegreeEdgePool) AddEdge(nodeA, nodeB int32) error {
	return p.addEdge(nodeA, nodeB, 0, false)
}

func (p *RegularDegreeEdgePool) AddEdgeWithMetadata(nodeA, nodeB int32, metadata int64) error {
	return p.addEdge(nodeA, nodeB, metadata, true)
}

func (p *RegularDegreeEdgePool) addEdge(nodeA, nodeB int32, metadata int64, withMetadata bool) error {
	position, degree, ok := p.NodeInfo(nodeA)
	if !ok {
		var err error
		if position, err = p.addNode(nodeA); err != nil {
			return err
		}
	}
	if degree >= p.maxDegree {
		return errMaxDegree(nodeA, p.maxDegree)
	}

	if withMetadata {
		p.edges.AddEntryWithMetadata(nodeB, metadata, int(position+degree))
	} else {
		p.edges.AddEntry(nodeB, int(position+degree))
	}
	// publishing the degree must come after the slot write
	p.nodeInfo.IncrementSecondValue(nodeA, 1)
	p.numEdges.Add(1)
	return nil
}

func (p *RegularDegreeEdgePool) RemoveEdge(nodeA, nodeB int32) error {
	return errRemoveUnsupported(nodeA, nodeB)
}

func (p *RegularDegreeEdgePool) NodeDegree(node int32) int {
	degree, _ := p.nodeInfo.GetSecondValue(node)
	return int(degree)
}

func (p *RegularDegreeEdgePool) NodeEdges(node int32, reuse IntIterator) IntIterator {
	position, degree, ok := p.NodeInfo(node)
	if !ok {
		return nil
	}

	it, ok := reuse.(*arraySpanIterator)
	if !ok {
		it = &arraySpanIterator{}
	}
	it.reset(p.edges, int(position), int(degree))
	return it
}

func (p *RegularDegreeEdgePool) RandomNodeEdges(node int32, numSamples int,
	rng *rand.Rand, reuse IntIterator,
) IntIterator {
	position, degree, ok := p.NodeInfo(node)
	if !ok || degree == 0 {
		return nil
	}

	it, ok := reuse.(*arrayRandomIterator)
	if !ok {
		it = &arrayRandomIterator{}
	}
	it.reset(p.edges, int(position), int(degree), numSamples, rng)
	return it
}

func (p *RegularDegreeEdgePool) NumNodes() int {
	return int(p.numNodes.Load())
}

func (p *RegularDegreeEdgePool) NumEdges() int {
	return int(p.numEdges.Load())
}

// FillPercentage is the share of reserved slots that hold an edge.
func (p *RegularDegreeEdgePool) FillPercentage() float64 {
	reserved := int64(p.numNodes.Load()) * int64(p.maxDegree)
	if reserved == 0 {
		return 0
	}
	return float64(p.numEdges.Load()) / float64(reserved)
}

// Reset empties the pool for reuse. It must not run concurrently with
// readers.
func (p *RegularDegreeEdgePool) Reset() {
	p.edges.Reset()
	p.nodeInfo.Clear()
	p.currentOffset = 0
	p.numNodes.Store(0)
	p.numEdges.Store(0)
}
