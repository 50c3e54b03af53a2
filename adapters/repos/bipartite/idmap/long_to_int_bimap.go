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

// Package idmap maps sparse external 64-bit node ids to dense internal
// 32-bit ids and keeps per-node bookkeeping keyed by those internal ids.
//
// All maps follow the same single-writer protocol: the writer fills the
// payload of a slot before publishing the slot's key with an atomic store,
// and growth builds a complete new table which is then swapped in
// atomically. Readers never take a lock.
package idmap

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/spaolacci/murmur3"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/array"
	"github.com/weaviate/bipartite/entities/graph"
)

const (
	// NotFound is returned for keys that were never put.
	NotFound int32 = -1

	DefaultLoadFactor = 0.75

	reverseShardLength = 1 << 14
)

type longTable struct {
	keys []int64
	// internal id + 1, zero marks an empty slot
	ids  []int32
	mask uint64
}

func newLongTable(size int) *longTable {
	return &longTable{
		keys: make([]int64, size),
		ids:  make([]int32, size),
		mask: uint64(size - 1),
	}
}

// LongToInternalIntBiMap assigns internal ids 0, 1, 2, ... in order of first
// insertion. Ids are never reused until Clear.
type LongToInternalIntBiMap struct {
	table      atomic.Pointer[longTable]
	idToKey    *array.LongArray
	numKeys    atomic.Int32
	maxKeys    int32
	loadFactor float64
	initial    int
}

// NewLongToInternalIntBiMap sizes the map for expectedNumKeys. maxKeys caps
// the number of ids that can be handed out, zero means the int32 range.
func NewLongToInternalIntBiMap(expectedNumKeys int, loadFactor float64, maxKeys int) (*LongToInternalIntBiMap, error) {
	if expectedNumKeys <= 0 {
		return nil, errors.Wrapf(graph.ErrInvalidConfig, "expected number of keys must be positive, got %d",
			expectedNumKeys)
	}
	if loadFactor <= 0 || loadFactor >= 1 {
		return nil, errors.Wrapf(graph.ErrInvalidConfig, "load factor must be in (0, 1), got %v", loadFactor)
	}
	if maxKeys <= 0 || maxKeys > math.MaxInt32 {
		maxKeys = math.MaxInt32
	}

	shards := max(1, expectedNumKeys/reverseShardLength+1)
	idToKey, err := array.NewLongArray(shards, reverseShardLength, 0)
	if err != nil {
		return nil, errors.Wrap(err, "reverse id array")
	}

	m := &LongToInternalIntBiMap{
		idToKey:    idToKey,
		maxKeys:    int32(maxKeys),
		loadFactor: loadFactor,
		initial:    tableSize(expectedNumKeys, loadFactor),
	}
	m.table.Store(newLongTable(m.initial))
	return m, nil
}

func hashLong(key int64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key))
	return murmur3.Sum64(buf[:])
}

// Put returns the internal id of key, assigning the next free id if the key
// is new. Writer only.
func (m *LongToInternalIntBiMap) Put(key int64) (int32, error) {
	t := m.table.Load()
	slot := hashLong(key) & t.mask
	for {
		idPlusOne := atomic.LoadInt32(&t.ids[slot])
		if idPlusOne == 0 {
			break
		}
		if atomic.LoadInt64(&t.keys[slot]) == key {
			return idPlusOne - 1, nil
		}
		slot = (slot + 1) & t.mask
	}

	id := m.numKeys.Load()
	if id >= m.maxKeys {
		return NotFound, errors.Wrapf(graph.ErrCapacityViolation,
			"cannot map key %d, all %d internal ids are in use", key, m.maxKeys)
	}

	m.idToKey.AddEntry(key, int(id))
	atomic.StoreInt64(&t.keys[slot], key)
	atomic.StoreInt32(&t.ids[slot], id+1)
	m.numKeys.Store(id + 1)

	if float64(id+1) > float64(len(t.keys))*m.loadFactor {
		m.grow(t)
	}

	return id, nil
}

func (m *LongToInternalIntBiMap) grow(old *longTable) {
	t := newLongTable(len(old.keys) * 2)
	for i, idPlusOne := range old.ids {
		if idPlusOne == 0 {
			continue
		}
		key := old.keys[i]
		slot := hashLong(key) & t.mask
		for t.ids[slot] != 0 {
			slot = (slot + 1) & t.mask
		}
		t.keys[slot] = key
		t.ids[slot] = idPlusOne
	}
	m.table.Store(t)
}

// Get returns the internal id of key or NotFound.
func (m *LongToInternalIntBiMap) Get(key int64) int32 {
	t := m.table.Load()
	slot := hashLong(key) & t.mask
	for {
		idPlusOne := atomic.LoadInt32(&t.ids[slot])
		if idPlusOne == 0 {
			return NotFound
		}
		if atomic.LoadInt64(&t.keys[slot]) == key {
			return idPlusOne - 1
		}
		slot = (slot + 1) & t.mask
	}
}

// GetKey is the reverse lookup. The result is undefined for ids that were
// not handed out by Put.
func (m *LongToInternalIntBiMap) GetKey(id int32) int64 {
	return m.idToKey.GetEntry(int(id))
}

func (m *LongToInternalIntBiMap) NumKeys() int {
	return int(m.numKeys.Load())
}

// MaxKeys is the number of internal ids Put can hand out.
func (m *LongToInternalIntBiMap) MaxKeys() int {
	return int(m.maxKeys)
}

// FillPercentage relates the stored keys to the size at which the current
// table grows.
func (m *LongToInternalIntBiMap) FillPercentage() float64 {
	t := m.table.Load()
	return min(1.0, float64(m.numKeys.Load())/(float64(len(t.keys))*m.loadFactor))
}

// Clear forgets every key. It must not run concurrently with readers.
func (m *LongToInternalIntBiMap) Clear() {
	m.table.Store(newLongTable(m.initial))
	m.idToKey.Reset()
	m.numKeys.Store(0)
}
