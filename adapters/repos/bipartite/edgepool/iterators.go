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

	"github.com/weaviate/bipartite/adapters/repos/bipartite/array"
)

// arraySpanIterator walks the contiguous span [start, start+degree) of a
// sharded array. The degree is captured once when the iterator is reset.
type arraySpanIterator struct {
	edges *array.IntArray
	pos   int
	end   int
	last  int
}

func (it *arraySpanIterator) reset(edges *array.IntArray, start, degree int) {
	it.edges = edges
	it.pos = start
	it.end = start + degree
	it.last = -1
}

func (it *arraySpanIterator) HasNext() bool {
	return it.pos < it.end
}

func (it *arraySpanIterator) Next() int32 {
	it.last = it.pos
	it.pos++
	return it.edges.GetEntry(it.last)
}

func (it *arraySpanIterator) CurrentMetadata() int64 {
	if it.last < 0 {
		return 0
	}
	return it.edges.GetMetadata(it.last)
}

func (it *arraySpanIterator) Skip(n int) int {
	skipped := min(n, it.end-it.pos)
	if skipped <= 0 {
		return 0
	}
	it.pos += skipped
	return skipped
}

// arrayRandomIterator draws numSamples positions uniformly, with
// replacement, from a span of a sharded array.
type arrayRandomIterator struct {
	edges     *array.IntArray
	start     int
	degree    int
	remaining int
	rng       *rand.Rand
	last      int
}

func (it *arrayRandomIterator) reset(edges *array.IntArray, start, degree, numSamples int, rng *rand.Rand) {
	it.edges = edges
	it.start = start
	it.degree = degree
	it.remaining = numSamples
	it.rng = rng
	it.last = -1
}

func (it *arrayRandomIterator) HasNext() bool {
	return it.remaining > 0
}

func (it *arrayRandomIterator) Next() int32 {
	it.remaining--
	it.last = it.start + it.rng.Intn(it.degree)
	return it.edges.GetEntry(it.last)
}

func (it *arrayRandomIterator) CurrentMetadata() int64 {
	if it.last < 0 {
		return 0
	}
	return it.edges.GetMetadata(it.last)
}

func (it *arrayRandomIterator) Skip(n int) int {
	skipped := min(n, it.remaining)
	if skipped <= 0 {
		return 0
	}
	it.remaining -= skipped
	return skipped
}

// powerLawIterator walks a node's edges across the buckets of a power-law
// pool in insertion order.
type powerLawIterator struct {
	pools      []*RegularDegreeEdgePool
	node       int32
	edgeNumber int
	degree     int

	bucket     int
	bucketPos  int
	bucketEnd  int // first edge number of the next bucket
	lastBucket int
	lastPos    int
}

func (it *powerLawIterator) reset(pools []*RegularDegreeEdgePool, node int32, degree int) {
	it.pools = pools
	it.node = node
	it.edgeNumber = 0
	it.degree = degree
	it.bucket = -1
	it.bucketEnd = 0
	it.lastBucket = -1
}

func (it *powerLawIterator) HasNext() bool {
	return it.edgeNumber < it.degree
}

func (it *powerLawIterator) enterBucket(bucket int) {
	it.bucket = bucket
	position, _, _ := it.pools[bucket].NodeInfo(it.node)
	it.bucketPos = int(position) + EdgeNumberInPool(bucket, it.edgeNumber)
	it.bucketEnd = firstEdgeNumber(bucket + 1)
}

func (it *powerLawIterator) Next() int32 {
	if it.edgeNumber >= it.bucketEnd {
		it.enterBucket(PoolForEdgeNumber(it.edgeNumber))
	}

	it.lastBucket = it.bucket
	it.lastPos = it.bucketPos
	it.bucketPos++
	it.edgeNumber++
	return it.pools[it.lastBucket].edges.GetEntry(it.lastPos)
}

func (it *powerLawIterator) CurrentMetadata() int64 {
	if it.lastBucket < 0 {
		return 0
	}
	return it.pools[it.lastBucket].edges.GetMetadata(it.lastPos)
}

func (it *powerLawIterator) Skip(n int) int {
	skipped := min(n, it.degree-it.edgeNumber)
	if skipped <= 0 {
		return 0
	}
	it.edgeNumber += skipped
	if it.edgeNumber < it.bucketEnd {
		it.bucketPos += skipped
	} else {
		// re-enter lazily on the next call to Next
		it.bucketEnd = 0
	}
	return skipped
}

// powerLawRandomIterator samples with replacement across buckets. Bucket
// positions are resolved once per reset.
type powerLawRandomIterator struct {
	pools      []*RegularDegreeEdgePool
	positions  []int32
	degree     int
	remaining  int
	rng        *rand.Rand
	lastBucket int
	lastPos    int
}

func (it *powerLawRandomIterator) reset(pools []*RegularDegreeEdgePool, node int32,
	degree, numSamples int, rng *rand.Rand,
) {
	it.pools = pools
	it.degree = degree
	it.remaining = numSamples
	it.rng = rng
	it.lastBucket = -1

	numBuckets := PoolForEdgeNumber(degree-1) + 1
	it.positions = it.positions[:0]
	for b := 0; b < numBuckets; b++ {
		position, _, _ := pools[b].NodeInfo(node)
		it.positions = append(it.positions, position)
	}
}

func (it *powerLawRandomIterator) HasNext() bool {
	return it.remaining > 0
}

func (it *powerLawRandomIterator) Next() int32 {
	it.remaining--
	edgeNumber := it.rng.Intn(it.degree)
	it.lastBucket = PoolForEdgeNumber(edgeNumber)
	it.lastPos = int(it.positions[it.lastBucket]) + EdgeNumberInPool(it.lastBucket, edgeNumber)
	return it.pools[it.lastBucket].edges.GetEntry(it.lastPos)
}

func (it *powerLawRandomIterator) CurrentMetadata() int64 {
	if it.lastBucket < 0 {
		return 0
	}
	return it.pools[it.lastBucket].edges.GetMetadata(it.lastPos)
}

func (it *powerLawRandomIterator) Skip(n int) int {
	skipped := min(n, it.remaining)
	if skipped <= 0 {
		return 0
	}
	it.remaining -= skipped
	return skipped
}

// sliceIterator walks a span of the flat arrays of an optimized pool.
type sliceIterator struct {
	edges    []int32
	metadata []int64
	pos      int
	end      int
	last     int
}

func (it *sliceIterator) reset(edges []int32, metadata []int64, start, end int) {
	it.edges = edges
	it.metadata = metadata
	it.pos = start
	it.end = end
	it.last = -1
}

func (it *sliceIterator) HasNext() bool {
	return it.pos < it.end
}

func (it *sliceIterator) Next() int32 {
	it.last = it.pos
	it.pos++
	return it.edges[it.last]
}

func (it *sliceIterator) CurrentMetadata() int64 {
	if it.metadata == nil || it.last < 0 {
		return 0
	}
	return it.metadata[it.last]
}

func (it *sliceIterator) Skip(n int) int {
	skipped := min(n, it.end-it.pos)
	if skipped <= 0 {
		return 0
	}
	it.pos += skipped
	return skipped
}

type sliceRandomIterator struct {
	edges     []int32
	metadata  []int64
	start     int
	degree    int
	remaining int
	rng       *rand.Rand
	last      int
}

func (it *sliceRandomIterator) reset(edges []int32, metadata []int64, start, degree, numSamples int,
	rng *rand.Rand,
) {
	it.edges = edges
	it.metadata = metadata
	it.start = start
	it.degree = degree
	it.remaining = numSamples
	it.rng = rng
	it.last = -1
}

func (it *sliceRandomIterator) HasNext() bool {
	return it.remaining > 0
}

func (it *sliceRandomIterator) Next() int32 {
	it.remaining--
	it.last = it.start + it.rng.Intn(it.degree)
	return it.edges[it.last]
}

func (it *sliceRandomIterator) CurrentMetadata() int64 {
	if it.metadata == nil || it.last < 0 {
		return 0
	}
	return it.metadata[it.last]
}

func (it *sliceRandomIterator) Skip(n int) int {
	skipped := min(n, it.remaining)
	if skipped <= 0 {
		return 0
	}
	it.remaining -= skipped
	return skipped
}
