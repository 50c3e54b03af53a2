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

package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgepool"
)

func drain(it edgepool.IntIterator) ([]int32, []int64) {
	if it == nil {
		return nil, nil
	}
	var edges []int32
	var metadata []int64
	for it.HasNext() {
		edges = append(edges, it.Next())
		metadata = append(metadata, it.CurrentMetadata())
	}
	return edges, metadata
}

func TestOptimizePowerLawPool(t *testing.T) {
	for _, withMetadata := range []bool{false, true} {
		pool, err := edgepool.NewPowerLawDegreeEdgePool(64, 16, 2.0, withMetadata)
		require.Nil(t, err)

		r := rand.New(rand.NewSource(31))
		for i := 0; i < 10_000; i++ {
			// node 5 stays without edges
			node := int32(r.ExpFloat64() * 20)
			if node == 5 {
				continue
			}
			require.Nil(t, pool.AddEdgeWithMetadata(node, r.Int31(), r.Int63()))
		}

		optimized, err := OptimizePowerLawPool(pool)
		require.Nil(t, err)
		assert.Equal(t, pool.NumEdges(), optimized.NumEdges())
		assert.Equal(t, pool.NumNodeSlots(), optimized.NumNodeSlots())
		assert.Equal(t, withMetadata, optimized.HasMetadata())

		for node := int32(0); node < int32(pool.NumNodeSlots())+2; node++ {
			require.Equal(t, pool.NodeDegree(node), optimized.NodeDegree(node), "node %d", node)

			expectedEdges, expectedMetadata := drain(pool.NodeEdges(node, nil))
			edges, metadata := drain(optimized.NodeEdges(node, nil))
			require.Equal(t, expectedEdges, edges, "node %d", node)
			require.Equal(t, expectedMetadata, metadata, "node %d", node)
		}
		assert.Equal(t, 0, optimized.NodeDegree(5))
	}
}

func TestOptimizeEmptyPool(t *testing.T) {
	pool, err := edgepool.NewPowerLawDegreeEdgePool(4, 4, 2.0, false)
	require.Nil(t, err)

	optimized, err := OptimizePowerLawPool(pool)
	require.Nil(t, err)
	assert.Equal(t, 0, optimized.NumEdges())
	assert.Nil(t, optimized.NodeEdges(0, nil))
}
