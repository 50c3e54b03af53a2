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
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/bipartite/entities/graph"
)

func TestIntArray(t *testing.T) {
	arr, err := NewIntArray(2, 16, -1, false)
	require.Nil(t, err)
	require.Equal(t, 32, arr.Capacity(), "wrong initial capacity")

	setN := func(n int) {
		t.Helper()
		for i := 0; i < n; i++ {
			arr.AddEntry(int32(i), i)
		}
	}

	checkN := func(n int) {
		t.Helper()
		for i := 0; i < n; i++ {
			require.Equal(t, int32(i), arr.GetEntry(i))
		}
	}

	t.Run("unset positions return the null entry", func(t *testing.T) {
		assert.Equal(t, int32(-1), arr.GetEntry(0))
		assert.Equal(t, int32(-1), arr.GetEntry(1_000_000))
	})

	t.Run("write and read within capacity", func(t *testing.T) {
		setN(32)
		checkN(32)
		assert.Equal(t, 2, arr.NumAllocatedShards())
	})

	t.Run("growth keeps earlier entries", func(t *testing.T) {
		arr.AddEntry(7, 10_000)
		assert.Equal(t, int32(7), arr.GetEntry(10_000))
		checkN(32)
		assert.Equal(t, int32(-1), arr.GetEntry(9_999))
		assert.GreaterOrEqual(t, arr.Capacity(), 10_001)
	})

	t.Run("allocated shards are filled with the null entry", func(t *testing.T) {
		assert.Equal(t, int32(-1), arr.GetEntry(10_001))
	})

	t.Run("reset", func(t *testing.T) {
		arr.Reset()
		assert.Equal(t, int32(-1), arr.GetEntry(5))
		assert.Equal(t, 0, arr.NumAllocatedShards())
		assert.Equal(t, 0.0, arr.FillPercentage())
		setN(100)
		checkN(100)
	})
}

func TestIntArrayGrowthIsIdempotent(t *testing.T) {
	arr, err := NewIntArray(1, 16, 0, false)
	require.Nil(t, err)

	r := rand.New(rand.NewSource(42))
	written := map[int]int32{}
	for i := 0; i < 2_000; i++ {
		pos := r.Intn(1 << 18)
		val := r.Int31()
		arr.AddEntry(val, pos)
		written[pos] = val

		require.Equal(t, val, arr.GetEntry(pos))
	}

	for pos, val := range written {
		assert.Equal(t, val, arr.GetEntry(pos))
	}
}

func TestIntArrayShardLengthIsRounded(t *testing.T) {
	for _, tc := range []struct {
		requested int
		expected  int
	}{
		{1, 16},
		{16, 16},
		{17, 32},
		{1000, 1024},
		{1024, 1024},
	} {
		arr, err := NewIntArray(1, tc.requested, 0, false)
		require.Nil(t, err)
		assert.Equal(t, tc.expected, arr.ShardLength())
	}
}

func TestIntArrayInvalidShape(t *testing.T) {
	for _, tc := range []struct {
		name        string
		numShards   int
		shardLength int
		growth      float64
	}{
		{"zero shards", 0, 16, DefaultGrowthFactor},
		{"negative shard length", 1, -1, DefaultGrowthFactor},
		{"zero shard length", 1, 0, DefaultGrowthFactor},
		{"growth factor of one", 1, 16, 1.0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewIntArrayWithGrowth(tc.numShards, tc.shardLength, 0, false, tc.growth)
			require.NotNil(t, err)
			assert.True(t, errors.Is(err, graph.ErrInvalidConfig))
		})
	}
}

func TestIntArrayIncrement(t *testing.T) {
	arr, err := NewIntArray(1, 16, 0, false)
	require.Nil(t, err)

	assert.Equal(t, int32(3), arr.IncrementEntry(100, 3))
	assert.Equal(t, int32(5), arr.IncrementEntry(100, 2))
	assert.Equal(t, int32(5), arr.GetEntry(100))
}

func TestIntArrayCopyRange(t *testing.T) {
	arr, err := NewIntArray(1, 16, 0, true)
	require.Nil(t, err)

	src := make([]int32, 50)
	meta := make([]int64, 50)
	for i := range src {
		src[i] = int32(i + 1)
		meta[i] = int64(i) * 10
	}

	// starts mid-shard and crosses several shard boundaries
	arr.CopyRangeWithMetadata(src, meta, 5, 10, 40)
	for i := 0; i < 40; i++ {
		require.Equal(t, src[5+i], arr.GetEntry(10+i))
		require.Equal(t, meta[5+i], arr.GetMetadata(10+i))
	}
	assert.Equal(t, int32(0), arr.GetEntry(9))
	assert.Equal(t, int32(0), arr.GetEntry(50))

	arr.CopyRange(src, 0, 100, 3)
	assert.Equal(t, []int32{1, 2, 3},
		[]int32{arr.GetEntry(100), arr.GetEntry(101), arr.GetEntry(102)})
}

func TestIntArrayMetadata(t *testing.T) {
	t.Run("with metadata channel", func(t *testing.T) {
		arr, err := NewIntArray(1, 16, 0, true)
		require.Nil(t, err)
		require.True(t, arr.HasMetadata())

		arr.AddEntryWithMetadata(5, 1234, 40)
		assert.Equal(t, int32(5), arr.GetEntry(40))
		assert.Equal(t, int64(1234), arr.GetMetadata(40))
		assert.Equal(t, int64(0), arr.GetMetadata(41))
		assert.Equal(t, int64(0), arr.GetMetadata(4000))
	})

	t.Run("without metadata channel", func(t *testing.T) {
		arr, err := NewIntArray(1, 16, 0, false)
		require.Nil(t, err)
		require.False(t, arr.HasMetadata())

		arr.AddEntryWithMetadata(5, 1234, 40)
		assert.Equal(t, int32(5), arr.GetEntry(40))
		assert.Equal(t, int64(0), arr.GetMetadata(40))
	})
}

func TestIntArrayFillPercentage(t *testing.T) {
	arr, err := NewIntArray(4, 16, 0, false)
	require.Nil(t, err)

	assert.Equal(t, 0.0, arr.FillPercentage())
	for i := 0; i < 32; i++ {
		arr.AddEntry(1, i)
	}
	assert.InDelta(t, 0.5, arr.FillPercentage(), 1e-9)
}

func TestIntArrayConcurrentWriterAndReaders(t *testing.T) {
	arr, err := NewIntArray(1, 16, -1, false)
	require.Nil(t, err)

	const n = 20_000
	var written atomicCounter

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			arr.AddEntry(int32(i), i)
			written.publish(i + 1)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < n; i++ {
				upTo := written.load()
				if upTo == 0 {
					continue
				}
				pos := rng.Intn(upTo)
				if v := arr.GetEntry(pos); v != int32(pos) {
					t.Errorf("position %d: expected %d, got %d", pos, pos, v)
					return
				}
			}
		}(int64(r))
	}

	wg.Wait()
}

func TestIntArrayReadRange(t *testing.T) {
	arr, err := NewIntArray(1, 16, 0, true)
	require.Nil(t, err)

	for i := 0; i < 40; i++ {
		arr.AddEntryWithMetadata(int32(i), int64(i)*2, i)
	}

	dst := make([]int32, 20)
	arr.ReadRange(dst, 10)
	meta := make([]int64, 20)
	arr.ReadMetadataRange(meta, 10)
	for i := range dst {
		assert.Equal(t, int32(10+i), dst[i])
		assert.Equal(t, int64(10+i)*2, meta[i])
	}
}
