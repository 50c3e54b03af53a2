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

import "sync/atomic"

// LongArray is the int64 counterpart of IntArray, used for reverse id
// lookups. It has no metadata channel.
type LongArray struct {
	entries   shardDirectory[int64]
	nullEntry int64
	numStored atomic.Int64
}

func NewLongArray(numShards, shardLength int, nullEntry int64) (*LongArray, error) {
	if err := validateShape(numShards, shardLength, DefaultGrowthFactor); err != nil {
		return nil, err
	}

	a := &LongArray{nullEntry: nullEntry}
	a.entries.init(numShards, shardLength, DefaultGrowthFactor, nullEntry)
	return a, nil
}

func (a *LongArray) AddEntry(value int64, position int) {
	s, off := a.entries.locate(position)
	atomic.StoreInt64(&a.entries.ensure(s)[off], value)
	a.numStored.Add(1)
}

func (a *LongArray) GetEntry(position int) int64 {
	s, off := a.entries.locate(position)
	shard := a.entries.load(s)
	if shard == nil {
		return a.nullEntry
	}
	return atomic.LoadInt64(&shard[off])
}

func (a *LongArray) IncrementEntry(position int, delta int64) int64 {
	s, off := a.entries.locate(position)
	return atomic.AddInt64(&a.entries.ensure(s)[off], delta)
}

func (a *LongArray) CopyRange(src []int64, srcOffset, destPosition, length int) {
	for length > 0 {
		s, off := a.entries.locate(destPosition)
		n := min(length, a.entries.shardLength()-off)
		entries := a.entries.ensure(s)
		for i := 0; i < n; i++ {
			atomic.StoreInt64(&entries[off+i], src[srcOffset+i])
		}
		a.numStored.Add(int64(n))
		srcOffset += n
		destPosition += n
		length -= n
	}
}

func (a *LongArray) FillPercentage() float64 {
	capacity := a.entries.capacity()
	if capacity == 0 {
		return 0
	}
	return min(1.0, float64(a.numStored.Load())/float64(capacity))
}

func (a *LongArray) ShardLength() int {
	return a.entries.shardLength()
}

func (a *LongArray) Reset() {
	a.entries.reset()
	a.numStored.Store(0)
}
