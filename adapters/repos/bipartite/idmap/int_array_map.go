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
	"github.com/pkg/errors"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/array"
)

const valuesShardLength = 1 << 12

// IntToIntArrayMap stores an int array per key, set once. The arrays are
// laid out back to back in a sharded IntArray and located through an
// (offset, length) pair.
type IntToIntArrayMap struct {
	locations *IntToIntPairHashMap
	values    *array.IntArray
	offset    int
}

func NewIntToIntArrayMap(expectedNumKeys, expectedArrayLength int) (*IntToIntArrayMap, error) {
	locations, err := NewIntToIntPairHashMap(expectedNumKeys, DefaultLoadFactor)
	if err != nil {
		return nil, errors.Wrap(err, "locations")
	}

	total := expectedNumKeys * max(1, expectedArrayLength)
	values, err := array.NewIntArray(max(1, total/valuesShardLength), valuesShardLength, 0, false)
	if err != nil {
		return nil, errors.Wrap(err, "values")
	}

	return &IntToIntArrayMap{
		locations: locations,
		values:    values,
	}, nil
}

// Put stores values for key unless the key already has an array, in which
// case it returns false and leaves the stored array untouched. Writer only.
func (m *IntToIntArrayMap) Put(key int32, values []int32) bool {
	if m.locations.Contains(key) {
		return false
	}

	m.values.CopyRange(values, 0, m.offset, len(values))
	m.locations.Put(key, int32(m.offset), int32(len(values)))
	m.offset += len(values)
	return true
}

// Get returns a copy of the array stored for key, nil if there is none.
func (m *IntToIntArrayMap) Get(key int32) []int32 {
	return m.AppendTo(nil, key)
}

// AppendTo appends the array stored for key to buf, so callers can reuse
// one buffer across lookups.
func (m *IntToIntArrayMap) AppendTo(buf []int32, key int32) []int32 {
	packed, ok := m.locations.GetBothValues(key)
	if !ok {
		return buf
	}
	offset, length := UnpackPair(packed)
	if buf == nil {
		buf = make([]int32, 0, length)
	}
	for i := int32(0); i < length; i++ {
		buf = append(buf, m.values.GetEntry(int(offset+i)))
	}
	return buf
}

func (m *IntToIntArrayMap) Contains(key int32) bool {
	return m.locations.Contains(key)
}

func (m *IntToIntArrayMap) Clear() {
	m.locations.Clear()
	m.values.Reset()
	m.offset = 0
}
