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
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackPair(t *testing.T) {
	for _, tc := range [][2]int32{
		{0, 0},
		{1, 2},
		{-1, 5},
		{5, -1},
		{math.MaxInt32, math.MinInt32},
	} {
		v1, v2 := UnpackPair(PackPair(tc[0], tc[1]))
		assert.Equal(t, tc[0], v1)
		assert.Equal(t, tc[1], v2)
	}
}

func TestIntToIntPairHashMap(t *testing.T) {
	m, err := NewIntToIntPairHashMap(4, DefaultLoadFactor)
	require.Nil(t, err)

	_, ok := m.GetBothValues(3)
	assert.False(t, ok)

	for i := int32(0); i < 1000; i++ {
		m.Put(i, i*10, 0)
	}
	assert.Equal(t, 1000, m.Size())
	assert.GreaterOrEqual(t, m.NumSlots(), 1000)

	for i := int32(0); i < 1000; i += 3 {
		v, ok := m.IncrementSecondValue(i, 2)
		require.True(t, ok)
		assert.Equal(t, int32(2), v)
	}

	for i := int32(0); i < 1000; i++ {
		packed, ok := m.GetBothValues(i)
		require.True(t, ok)
		v1, v2 := UnpackPair(packed)
		assert.Equal(t, i*10, v1)
		if i%3 == 0 {
			assert.Equal(t, int32(2), v2)
		} else {
			assert.Equal(t, int32(0), v2)
		}
	}

	first, ok := m.GetFirstValue(10)
	assert.True(t, ok)
	assert.Equal(t, int32(100), first)

	_, ok = m.IncrementSecondValue(5000, 1)
	assert.False(t, ok)

	m.Put(10, 7, 7)
	packed, _ := m.GetBothValues(10)
	assert.Equal(t, PackPair(7, 7), packed)
	assert.Equal(t, 1000, m.Size())

	visited := 0
	m.ForEach(func(key, v1, v2 int32) { visited++ })
	assert.Equal(t, 1000, visited)

	m.Clear()
	assert.False(t, m.Contains(10))
	assert.Equal(t, 0, m.Size())
}

func TestIntToIntPairHashMapNoTornReads(t *testing.T) {
	m, err := NewIntToIntPairHashMap(2, DefaultLoadFactor)
	require.Nil(t, err)

	const keys = 64
	const rounds = 2_000

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for k := int32(0); k < keys; k++ {
			m.Put(k, k, k)
		}
		for r := 0; r < rounds; r++ {
			for k := int32(0); k < keys; k++ {
				v1, _ := m.GetFirstValue(k)
				m.Put(k, v1+1, v1+1)
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				for k := int32(0); k < keys; k++ {
					packed, ok := m.GetBothValues(k)
					if !ok {
						continue
					}
					if v1, v2 := UnpackPair(packed); v1 != v2 {
						t.Errorf("torn read for key %d: %d != %d", k, v1, v2)
						return
					}
				}
			}
		}()
	}

	wg.Wait()
}

func TestIntToIntArrayMap(t *testing.T) {
	m, err := NewIntToIntArrayMap(2, 2)
	require.Nil(t, err)

	assert.Nil(t, m.Get(1))

	assert.True(t, m.Put(1, []int32{10, 11}))
	assert.True(t, m.Put(2, []int32{}))
	assert.True(t, m.Put(3, []int32{30, 31, 32}))
	assert.False(t, m.Put(1, []int32{99}))

	assert.Equal(t, []int32{10, 11}, m.Get(1))
	assert.Empty(t, m.Get(2))
	assert.True(t, m.Contains(2))
	assert.Equal(t, []int32{30, 31, 32}, m.Get(3))

	buf := make([]int32, 0, 8)
	buf = m.AppendTo(buf, 1)
	buf = m.AppendTo(buf, 3)
	assert.Equal(t, []int32{10, 11, 30, 31, 32}, buf)

	m.Clear()
	assert.Nil(t, m.Get(1))
	assert.True(t, m.Put(1, []int32{5}))
	assert.Equal(t, []int32{5}, m.Get(1))
}
