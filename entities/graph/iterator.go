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

// Package graph holds the read contracts shared by the bipartite store and
// the algorithm layers consuming it.
package graph

import "math/rand"

// EdgeIterator walks the edges of a single node. It is forward-only,
// single-pass and not safe for concurrent use. An iterator may be reused for
// another node through ResetForNode.
type EdgeIterator interface {
	HasNext() bool
	// NextLong returns the external id of the next destination node.
	NextLong() int64
	// CurrentEdgeType is the type of the edge last returned by NextLong.
	CurrentEdgeType() uint8
	// CurrentMetadata is the edge metadata of the edge last returned by
	// NextLong, zero when the store does not carry edge metadata.
	CurrentMetadata() int64
	// Skip advances by up to n edges and returns how many were skipped.
	Skip(n int) int
	// ResetForNode repositions the iterator at the start of node's edges. It
	// returns false if the node is unknown, leaving an exhausted iterator.
	ResetForNode(node int64) bool
}

// NodeMetadataEdgeIterator additionally exposes the node metadata of the
// nodes on both ends of the current edge.
type NodeMetadataEdgeIterator interface {
	EdgeIterator
	LeftNodeMetadata(metadataType int) []int32
	RightNodeMetadata(metadataType int) []int32
}

// LeftIndexedGraph is the read surface consumed by recommendation
// algorithms on a left-indexed store.
type LeftIndexedGraph interface {
	LeftNodeDegree(node int64) int
	LeftNodeEdges(node int64) EdgeIterator
	RandomLeftNodeEdges(node int64, numSamples int, rng *rand.Rand) (EdgeIterator, error)
}

// BipartiteGraph is the read surface of a store indexing both sides.
type BipartiteGraph interface {
	LeftIndexedGraph
	RightNodeDegree(node int64) int
	RightNodeEdges(node int64) EdgeIterator
	RandomRightNodeEdges(node int64, numSamples int, rng *rand.Rand) (EdgeIterator, error)
}

// DynamicGraph accepts edges from a single writer goroutine.
type DynamicGraph interface {
	AddEdge(left, right int64, edgeType uint8) error
	RemoveEdge(left, right int64) error
}
