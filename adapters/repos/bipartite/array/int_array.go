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

// Package array contains growable primitive arrays split into fixed size
// shards. Growing never copies or moves a shard that was handed out, which
// keeps concurrent readers safe while a single writer appends.
package array

import (
	"sync/atomic"
)

// IntArray is a sharded array of int32 entries with an optional parallel
// metadata channel of int64 words, sharded identically to the entries.
//
// A single writer may call the mutating methods while any number of readers
// call GetEntry and GetMetadata.
type IntArray struct {
	entries   shardDirectory[int32]
	metadata  *shardDirectory[int64]
	nullEntry int32
	numStored atomic.Int64
}

// NewIntArray creates an array that initially has room for numShards shards
// in its directory. The shard length is rounded up to a power of two.
// Unset positions read as nullEntry.
func NewIntArray(numShards, shardLength int, nullEntry int32, withMetadata bool) (*IntArray, error) {
	return NewIntArrayWithGrowth(numShards, shardLength, nullEntry, withMetadata, DefaultGrowthFactor)
}

func NewIntArrayWithGrowth(numShards, shardLength int, nullEntry int32,
	withMetadata bool, growthFactor float64,
) (*IntArray, error) {
	if err := validateShape(numShards, shardLength, growthFactor); err != nil {
		return nil, err
	}

	a := &IntArray{nullEntry: nullEntry}
	a.entries.init(numShards, shardLength, growthFactor, nullEntry)
	if withMetadata {
		a.metadata = &shardDirectory[int64]{}
		a.metadata.init(numShards, shardLength, growthFactor, 0)
	}
	return a, nil
}

func (a *IntArray) HasMetadata() bool {
	return a.metadata != nil
}

func (a *IntArray) AddEntry(value int32, position int) {
	s, off := a.entries.locate(position)
	atomic.StoreInt32(&a.entries.ensure(s)[off], value)
	a.numStored.Add(1)
}

// AddEntryWithMetadata writes the metadata word before the entry, so a
// reader that is allowed to see the entry also sees its metadata.
func (a *IntArray) AddEntryWithMetadata(value int32, metadata int64, position int) {
	s, off := a.entries.locate(position)
	if a.metadata != nil {
		atomic.StoreInt64(&a.metadata.ensure(s)[off], metadata)
	}
	atomic.StoreInt32(&a.entries.ensure(s)[off], value)
	a.numStored.Add(1)
}

func (a *IntArray) GetEntry(position int) int32 {
	s, off := a.entries.locate(position)
	shard := a.entries.load(s)
	if shard == nil {
		return a.nullEntry
	}
	return atomic.LoadInt32(&shard[off])
}

// GetMetadata returns 0 for positions without metadata and for arrays
// created without a metadata channel.
func (a *IntArray) GetMetadata(position int) int64 {
	if a.metadata == nil {
		return 0
	}
	s, off := a.metadata.locate(position)
	shard := a.metadata.load(s)
	if shard == nil {
		return 0
	}
	return atomic.LoadInt64(&shard[off])
}

// IncrementEntry adds delta to the entry at position and returns the new
// value. An unset position is incremented starting from the null entry.
func (a *IntArray) IncrementEntry(position int, delta int32) int32 {
	s, off := a.entries.locate(position)
	return atomic.AddInt32(&a.entries.ensure(s)[off], delta)
}

// CopyRange writes src[srcOffset:srcOffset+length] starting at
// destPosition, crossing shard boundaries as needed.
func (a *IntArray) CopyRange(src []int32, srcOffset, destPosition, length int) {
	a.copyRange(src, nil, srcOffset, destPosition, length)
}

// CopyRangeWithMetadata is CopyRange for entries and their metadata words.
func (a *IntArray) CopyRangeWithMetadata(src []int32, srcMetadata []int64,
	srcOffset, destPosition, length int,
) {
	a.copyRange(src, srcMetadata, srcOffset, destPosition, length)
}

func (a *IntArray) copyRange(src []int32, srcMetadata []int64, srcOffset, destPosition, length int) {
	for length > 0 {
		s, off := a.entries.locate(destPosition)
		n := min(length, a.entries.shardLength()-off)

		if a.metadata != nil && srcMetadata != nil {
			meta := a.metadata.ensure(s)
			for i := 0; i < n; i++ {
				atomic.StoreInt64(&meta[off+i], srcMetadata[srcOffset+i])
			}
		}
		entries := a.entries.ensure(s)
		for i := 0; i < n; i++ {
			atomic.StoreInt32(&entries[off+i], src[srcOffset+i])
		}

		a.numStored.Add(int64(n))
		srcOffset += n
		destPosition += n
		length -= n
	}
}

// ReadRange fills dst with the entries starting at position.
func (a *IntArray) ReadRange(dst []int32, position int) {
	for i := range dst {
		dst[i] = a.GetEntry(position + i)
	}
}

// ReadMetadataRange fills dst with the metadata words starting at position.
func (a *IntArray) ReadMetadataRange(dst []int64, position int) {
	for i := range dst {
		dst[i] = a.GetMetadata(position + i)
	}
}

// FillPercentage is the ratio of written entries to the capacity addressed
// by the current shard directory.
func (a *IntArray) FillPercentage() float64 {
	capacity := a.entries.capacity()
	if capacity == 0 {
		return 0
	}
	return min(1.0, float64(a.numStored.Load())/float64(capacity))
}

func (a *IntArray) ShardLength() int {
	return a.entries.shardLength()
}

func (a *IntArray) Capacity() int {
	return a.entries.capacity()
}

func (a *IntArray) NumAllocatedShards() int {
	return int(a.entries.allocated.Load())
}

// Reset drops every shard. It must not run concurrently with readers.
func (a *IntArray) Reset() {
	a.entries.reset()
	if a.metadata != nil {
		a.metadata.reset()
	}
	a.numStored.Store(0)
}
