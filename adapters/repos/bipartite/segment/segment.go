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

// Package segment binds the id maps and edge pools of one time slice of
// the edge stream.
//
// A segment is writable until it holds MaxNumEdges edges, it is then filled
// and only read. Once evicted from the window of its graph it is never
// written again. Readers that captured it before eviction may finish.
package segment

import (
	"math/rand"

	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgepool"
)

// Segment is the contract shared by the left-indexed and the left+right
// indexed segment kinds.
type Segment interface {
	ID() int

	AddEdge(left, right int64, edgeType uint8) error
	AddEdgeWithMetadata(left, right int64, edgeType uint8, metadata int64) error
	// AddEdgeWithNodeMetadata attaches metadata to nodes seen for the first
	// time. leftMeta[t] and rightMeta[t] hold the ids of metadata type t.
	AddEdgeWithNodeMetadata(left, right int64, edgeType uint8, leftMeta, rightMeta [][]int32) error

	NumEdges() int
	MaxNumEdges() int
	Filled() bool
	FillPercentage() float64
	RightIndexed() bool
	NumNodeMetadataTypes() int

	// LeftNodeEdges returns nil if the node has no edges in this segment.
	LeftNodeDegree(node int64) int
	LeftNodeEdges(node int64) *EdgeIterator
	RandomLeftNodeEdges(node int64, numSamples int, rng *rand.Rand) *EdgeIterator
	NewLeftIterator() *EdgeIterator

	// The right side mirrors return zero values on left-indexed segments.
	RightNodeDegree(node int64) int
	RightNodeEdges(node int64) *EdgeIterator
	RandomRightNodeEdges(node int64, numSamples int, rng *rand.Rand) *EdgeIterator
	NewRightIterator() *EdgeIterator

	LeftNodeMetadata(internalID int32, metadataType int) []int32
	RightNodeMetadata(internalID int32, metadataType int) []int32

	LeftPool() edgepool.EdgePool
	SwapLeftPool(old, replacement edgepool.EdgePool) bool
	// RightPool is nil on left-indexed segments.
	RightPool() edgepool.EdgePool
	SwapRightPool(old, replacement edgepool.EdgePool) bool

	// Reset empties the segment and gives it a new id. It must not run
	// concurrently with readers.
	Reset(id int) error
	Evict()
	Evicted() bool
}

var (
	_ Segment = (*LeftIndexed)(nil)
	_ Segment = (*LeftRightIndexed)(nil)
)
