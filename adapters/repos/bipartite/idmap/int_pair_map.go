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

package idmap

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/weaviate/bipartite/entities/graph"
)

type pairTable struct {
	// key + 1, zero marks an empty slot
	keys   []int32
	values []uint64
	mask   uint64
}

func newPairTable(size int) *pairTable {
	return &pairTable{
		keys:   make([]int32, size),
		values: make([]uint64, size),
		mask:   uint64(size - 1),
	}
}

// IntToIntPairHashMap maps a non-negative int key to a pair of ints held in
// one 64-bit cell. Edge pools keep (position, degree) per node in it, so a
// reader always observes both halves from the same write.
type IntToIntPairHashMap struct {
	table      atomic.Pointer[pairTable]
	size       atomic.Int32
	loadFactor float64
	initial    int
}

func NewIntToIntPairHashMap(expectedNumKeys int, loadFactor float64) (*IntToIntPairHashMap, error) {
	if expectedNumKeys <= 0 {
		return nil, errors.Wrapf(graph.ErrInvalidConfig, "expected number of keys must be positive, got %d",
			expectedNumKeys)
	}
	if loadFactor <= 0 || loadFactor >= 1 {
		return nil, errors.Wrapf(graph.ErrInvalidConfig, "load factor must be in (0, 1), got %v", loadFactor)
	}

	m := &IntToIntPairHashMap{
		loadFactor: loadFactor,
		initial:    tableSize(expectedNumKeys, loadFactor),
	}
	m.table.Store(newPairTable(m.initial))
	return m, nil
}

// Fibonacci hashing, spreads the dense internal ids over the table.
func hashInt(key int32) uint64 {
	return uint64(uint32(key)) * 11400714819323198485
}

func (t *pairTable) find(key int32) (uint64, bool) {
	slot := (hashInt(key) >> 32) & t.mask
	for {
		k := atomic.LoadInt32(&t.keys[slot])
		if k == 0 {
			return slot, false
		}
		if k == key+1 {
			return slot, true
		}
		slot = (slot + 1) & t.mask
	}
}

// Put stores the pair for key, overwriting an existing entry. Writer only.
func (m *IntToIntPairHashMap) Put(key, v1, v2 int32) {
	t := m.table.Load()
	slot, found := t.find(key)
	atomic.StoreUint64(&t.values[slot], PackPair(v1, v2))
	if found {
		return
	}

	atomic.StoreInt32(&t.keys[slot], key+1)
	size := m.size.Add(1)
	if float64(size) > float64(len(t.keys))*m.loadFactor {
		m.grow(t)
	}
}

func (m *IntToIntPairHashMap) grow(old *pairTable) {
	t := newPairTable(len(old.keys) * 2)
	for i, k := range old.keys {
		if k == 0 {
			continue
		}
		slot, _ := t.find(k - 1)
		t.keys[slot] = k
		t.values[slot] = atomic.LoadUint64(&old.values[i])
	}
	m.table.Store(t)
}

// GetBothValues returns the packed pair of key, see UnpackPair.
func (m *IntToIntPairHashMap) GetBothValues(key int32) (uint64, bool) {
	t := m.table.Load()
	slot, found := t.find(key)
	if !found {
		return 0, false
	}
	return atomic.LoadUint64(&t.values[slot]), true
}

func (m *IntToIntPairHashMap) GetFirstValue(key int32) (int32, bool) {
	packed, ok := m.GetBothValues(key)
	return FirstValue(packed), ok
}

func (m *IntToIntPairHashMap) GetSecondValue(key int32) (int32, bool) {
	packed, ok := m.GetBothValues(key)
	return SecondValue(packed), ok
}

// IncrementSecondValue adds delta to the second half of key's pair and
// returns the new value. It returns false if the key is absent. Writer
// only.
func (m *IntToIntPairHashMap) IncrementSecondValue(key, delta int32) (int32, bool) {
	t := m.table.Load()
	slot, found := t.find(key)
	if !found {
		return 0, false
	}
	v1, v2 := UnpackPair(atomic.LoadUint64(&t.values[slot]))
	v2 += delta
	atomic.StoreUint64(&t.values[slot], PackPair(v1, v2))
	return v2, true
}

func (m *IntToIntPairHashMap) Contains(key int32) bool {
	_, found := m.table.Load().find(key)
	return found
}

func (m *IntToIntPairHashMap) Size() int {
	return int(m.size.Load())
}

func (m *IntToIntPairHashMap) NumSlots() int {
	return len(m.table.Load().keys)
}

// ForEach visits every entry of the current table. Entries added during the
// walk may or may not be visited.
func (m *IntToIntPairHashMap) ForEach(fn func(key, v1, v2 int32)) {
	t := m.table.Load()
	for i := range t.keys {
		k := atomic.LoadInt32(&t.keys[i])
		if k == 0 {
			continue
		}
		v1, v2 := UnpackPair(atomic.LoadUint64(&t.values[i]))
		fn(k-1, v1, v2)
	}
}

// Clear must not run concurrently with readers.
func (m *IntToIntPairHashMap) Clear() {
	m.table.Store(newPairTable(m.initial))
	m.size.Store(0)
}
