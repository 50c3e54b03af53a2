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
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/bipartite/entities/graph"
)

func TestRegularDegreeEdgePool(t *testing.T) {
	pool, err := NewRegularDegreeEdgePool(4, 3, false)
	require.Nil(t, err)

	t.Run("absent node", func(t *testing.T) {
		assert.Equal(t, 0, pool.NodeDegree(1))
		assert.Nil(t, pool.NodeEdges(1, nil))
		assert.Nil(t, pool.RandomNodeEdges(1, 3, rand.New(rand.NewSource(1)), nil))
	})

	t.Run("fill up to the max degree", func(t *testing.T) {
		require.Nil(t, pool.AddEdge(1, 11))
		require.Nil(t, pool.AddEdge(1, 12))
		require.Nil(t, pool.AddEdge(1, 13))

		assert.Equal(t, 3, pool.NodeDegree(1))
		assert.Equal(t, []int32{11, 12, 13}, collect(pool.NodeEdges(1, nil)))
	})

	t.Run("exceeding the max degree fails", func(t *testing.T) {
		assert.True(t, errors.Is(pool.CheckCapacity(1), graph.ErrCapacityViolation))
		assert.Nil(t, pool.CheckCapacity(7), "absent nodes get a new span")

		err := pool.AddEdge(1, 14)
		require.NotNil(t, err)
		assert.True(t, errors.Is(err, graph.ErrCapacityViolation))
		assert.Equal(t, 3, pool.NodeDegree(1))
		assert.Equal(t, []int32{11, 12, 13}, collect(pool.NodeEdges(1, nil)))
	})

	t.Run("other nodes get their own span", func(t *testing.T) {
		require.Nil(t, pool.AddEdge(2, 21))
		require.Nil(t, pool.AddEdge(0, 1))
		require.Nil(t, pool.AddEdge(2, 22))

		assert.Equal(t, []int32{21, 22}, collect(pool.NodeEdges(2, nil)))
		assert.Equal(t, []int32{1}, collect(pool.NodeEdges(0, nil)))
		assert.Equal(t, 3, pool.NumNodes())
		assert.Equal(t, 6, pool.NumEdges())
		assert.InDelta(t, 6.0/9.0, pool.FillPercentage(), 1e-9)
	})

	t.Run("remove is unsupported", func(t *testing.T) {
		err := pool.RemoveEdge(1, 11)
		assert.True(t, errors.Is(err, graph.ErrUnsupported))
		assert.Equal(t, 3, pool.NodeDegree(1))
	})

	t.Run("reset", func(t *testing.T) {
		pool.Reset()
		assert.Equal(t, 0, pool.NodeDegree(1))
		assert.Equal(t, 0, pool.NumEdges())
		require.Nil(t, pool.AddEdge(1, 5))
		assert.Equal(t, []int32{5}, collect(pool.NodeEdges(1, nil)))
	})
}

func TestRegularDegreeEdgePoolIteratorReuse(t *testing.T) {
	pool, err := NewRegularDegreeEdgePool(4, 8, false)
	require.Nil(t, err)

	for i := int32(0); i < 5; i++ {
		require.Nil(t, pool.AddEdge(1, 100+i))
		require.Nil(t, pool.AddEdge(2, 200+i))
	}

	it := pool.NodeEdges(1, nil)
	assert.Equal(t, 2, it.Skip(2))
	assert.Equal(t, []int32{102, 103, 104}, collect(it))
	assert.Equal(t, 0, it.Skip(1))

	reused := pool.NodeEdges(2, it)
	assert.Same(t, it, reused)
	assert.Equal(t, 5, reused.Skip(10))
	assert.False(t, reused.HasNext())
}

func TestRegularDegreeEdgePoolRandomSampling(t *testing.T) {
	pool, err := NewRegularDegreeEdgePool(4, 16, false)
	require.Nil(t, err)

	inserted := map[int32]bool{}
	for i := int32(0); i < 10; i++ {
		require.Nil(t, pool.AddEdge(7, 50+i))
		inserted[50+i] = true
	}

	rng := rand.New(rand.NewSource(99))
	samples := collect(pool.RandomNodeEdges(7, 1000, rng, nil))
	require.Len(t, samples, 1000)

	seen := map[int32]int{}
	for _, s := range samples {
		require.True(t, inserted[s], "sampled %d which was never inserted", s)
		seen[s]++
	}
	// with 1000 draws every one of 10 edges is expected to show up
	assert.Len(t, seen, 10)

	it := pool.RandomNodeEdges(7, 5, rng, nil)
	assert.Equal(t, 3, it.Skip(3))
	assert.Len(t, collect(it), 2)
}

func TestRegularDegreeEdgePoolMetadata(t *testing.T) {
	pool, err := NewRegularDegreeEdgePool(4, 4, true)
	require.Nil(t, err)
	require.True(t, pool.HasMetadata())

	require.Nil(t, pool.AddEdgeWithMetadata(3, 30, 1000))
	require.Nil(t, pool.AddEdgeWithMetadata(3, 31, 1001))
	require.Nil(t, pool.AddEdge(3, 32))

	assert.Equal(t, []int32{30, 31, 32}, collect(pool.NodeEdges(3, nil)))
	assert.Equal(t, []int64{1000, 1001, 0}, collectMetadata(pool.NodeEdges(3, nil)))

	it := pool.NodeEdges(3, nil)
	assert.Equal(t, int64(0), it.CurrentMetadata(), "no edge returned yet")
}

func TestRegularDegreeEdgePoolInvalidConfig(t *testing.T) {
	for _, tc := range []struct {
		name      string
		numNodes  int
		maxDegree int
	}{
		{"zero nodes", 0, 4},
		{"negative nodes", -1, 4},
		{"zero degree", 4, 0},
		{"huge degree", 4, 1 << 31},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegularDegreeEdgePool(tc.numNodes, tc.maxDegree, false)
			assert.True(t, errors.Is(err, graph.ErrInvalidConfig))
		})
	}
}
