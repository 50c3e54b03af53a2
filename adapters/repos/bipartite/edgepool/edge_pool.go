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

// Package edgepool stores adjacency lists of internal node ids.
//
// Pools are append-only and follow a single-writer/multi-reader protocol:
// an edge is written to its array slot before the degree that makes the
// slot visible is published. A reader loads the degree once and never looks
// past it, so it sees a consistent, possibly slightly stale, prefix of the
// adjacency list.
package edgepool

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/weaviate/bipartite/entities/graph"
)

// IntIterator walks internal ids. It is single-pass and not safe for
// concurrent use.
type IntIterator interface {
	HasNext() bool
	Next() int32
	// CurrentMetadata returns the metadata of the edge last returned by
	// Next, zero for pools without edge metadata.
	CurrentMetadata() int64
	Skip(n int) int
}

// EdgePool is the contract shared by the mutable and the optimized pools.
type EdgePool interface {
	AddEdge(nodeA, nodeB int32) error
	AddEdgeWithMetadata(nodeA, nodeB int32, metadata int64) error
	// RemoveEdge always fails, pools are append-only.
	RemoveEdge(nodeA, nodeB int32) error
	// CheckCapacity returns the error the next AddEdge for node would fail
	// with, without writing anything.
	CheckCapacity(node int32) error

	// NodeDegree returns 0 for nodes without edges.
	NodeDegree(node int32) int
	// NodeEdges returns nil for nodes without edges. If reuse is an iterator
	// previously returned by the same kind of pool it is reset and returned
	// instead of allocating a new one.
	NodeEdges(node int32, reuse IntIterator) IntIterator
	// RandomNodeEdges samples numSamples edges with replacement.
	RandomNodeEdges(node int32, numSamples int, rng *rand.Rand, reuse IntIterator) IntIterator

	NumEdges() int
	FillPercentage() float64
	HasMetadata() bool
}

func errRemoveUnsupported(nodeA, nodeB int32) error {
	return errors.Wrapf(graph.ErrUnsupported, "remove edge (%d, %d): pools are append-only", nodeA, nodeB)
}

func errMaxDegree(node int32, maxDegree int32) error {
	return errors.Wrapf(graph.ErrCapacityViolation, "node %d already has the max degree of %d", node, maxDegree)
}
