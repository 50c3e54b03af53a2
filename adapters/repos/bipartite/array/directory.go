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

package array

import (
	"math"
	"math/bits"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/weaviate/bipartite/entities/graph"
)

const (
	// DefaultGrowthFactor is applied to the shard directory, never to the
	// shards themselves.
	DefaultGrowthFactor = 1.1

	minShardLength = 16
	maxShardLength = 1 << 30
)

type shard[T int32 | int64] struct {
	entries []T
}

// shardDirectory is a list of lazily allocated, fixed length shards. Only
// the writer allocates shards or grows the directory. A grown directory is
// built next to the current one and published with a single atomic store,
// the shards themselves are shared between both directories and never
// move, so readers holding the old directory keep reading valid memory.
type shardDirectory[T int32 | int64] struct {
	dir          atomic.Pointer[[]atomic.Pointer[shard[T]]]
	initialLen   int
	shardBits    uint
	shardMask    int
	growthFactor float64
	fill         T
	allocated    atomic.Int32
}

func validateShape(numShards, shardLength int, growthFactor float64) error {
	if numShards <= 0 {
		return errors.Wrapf(graph.ErrInvalidConfig, "number of shards must be positive, got %d", numShards)
	}
	if shardLength <= 0 || shardLength > maxShardLength {
		return errors.Wrapf(graph.ErrInvalidConfig, "shard length must be in (0, %d], got %d",
			maxShardLength, shardLength)
	}
	if growthFactor <= 1.0 {
		return errors.Wrapf(graph.ErrInvalidConfig, "growth factor must be > 1.0, got %v", growthFactor)
	}
	return nil
}

// roundShardLength rounds up to a power of two so that shard and offset can
// be computed with a shift and a mask.
func roundShardLength(shardLength int) int {
	if shardLength < minShardLength {
		return minShardLength
	}
	return 1 << bits.Len(uint(shardLength-1))
}

func (d *shardDirectory[T]) init(numShards, shardLength int, growthFactor float64, fill T) {
	shardLength = roundShardLength(shardLength)
	d.initialLen = numShards
	d.shardBits = uint(bits.TrailingZeros(uint(shardLength)))
	d.shardMask = shardLength - 1
	d.growthFactor = growthFactor
	d.fill = fill
	d.reset()
}

func (d *shardDirectory[T]) reset() {
	dir := make([]atomic.Pointer[shard[T]], d.initialLen)
	d.dir.Store(&dir)
	d.allocated.Store(0)
}

func (d *shardDirectory[T]) shardLength() int {
	return d.shardMask + 1
}

func (d *shardDirectory[T]) locate(position int) (int, int) {
	return position >> d.shardBits, position & d.shardMask
}

// load returns the shard with the given index or nil if it was never
// allocated.
func (d *shardDirectory[T]) load(index int) []T {
	dir := *d.dir.Load()
	if index >= len(dir) {
		return nil
	}
	s := dir[index].Load()
	if s == nil {
		return nil
	}
	return s.entries
}

// ensure returns the shard with the given index, allocating it and growing
// the directory as required. Writer only.
func (d *shardDirectory[T]) ensure(index int) []T {
	dir := *d.dir.Load()
	if index >= len(dir) {
		dir = d.grow(dir, index)
	}

	if s := dir[index].Load(); s != nil {
		return s.entries
	}

	s := &shard[T]{entries: make([]T, d.shardLength())}
	if d.fill != 0 {
		for i := range s.entries {
			s.entries[i] = d.fill
		}
	}
	dir[index].Store(s)
	d.allocated.Add(1)
	return s.entries
}

func (d *shardDirectory[T]) grow(dir []atomic.Pointer[shard[T]], index int) []atomic.Pointer[shard[T]] {
	newLen := int(math.Ceil(float64(len(dir)) * d.growthFactor))
	if newLen <= index {
		newLen = index + 1
	}

	grown := make([]atomic.Pointer[shard[T]], newLen)
	for i := range dir {
		grown[i].Store(dir[i].Load())
	}
	d.dir.Store(&grown)
	return grown
}

func (d *shardDirectory[T]) numShards() int {
	return len(*d.dir.Load())
}

func (d *shardDirectory[T]) capacity() int {
	return d.numShards() * d.shardLength()
}
