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
	"math"

	"github.com/pkg/errors"

	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgepool"
)

// OptimizePowerLawPool copies the edges of a pool that is no longer written
// into one packed array. The edges of a node keep the bucket layout of the
// mutable pool: edge number e of a node with base offset b lands at b+e, so
// bucket i starts at b + 2^(i+1) - 2.
func OptimizePowerLawPool(pool *edgepool.PowerLawDegreeEdgePool) (*edgepool.OptimizedEdgePool, error) {
	numNodes := pool.NumNodeSlots()
	offsets := make([]int32, numNodes+1)

	total := 0
	for n := 0; n < numNodes; n++ {
		offsets[n] = int32(total)
		total += pool.NodeDegree(int32(n))
		if total > math.MaxInt32 {
			return nil, errors.Errorf("pool holds more than %d edges", math.MaxInt32)
		}
	}
	offsets[numNodes] = int32(total)

	if total != pool.NumEdges() {
		return nil, errors.Errorf("node degrees sum up to %d edges, pool reports %d", total, pool.NumEdges())
	}

	edges := make([]int32, total)
	var metadata []int64
	if pool.HasMetadata() {
		metadata = make([]int64, total)
	}

	buckets := pool.Pools()
	for n := 0; n < numNodes; n++ {
		base := int(offsets[n])
		degree := int(offsets[n+1]) - base
		if degree == 0 {
			continue
		}

		lastBucket := edgepool.PoolForEdgeNumber(degree - 1)
		if lastBucket >= len(buckets) {
			return nil, errors.Errorf("node %d with degree %d needs bucket %d, pool has %d",
				n, degree, lastBucket, len(buckets))
		}

		for b := 0; b <= lastBucket; b++ {
			first := edgepool.MaxDegreeOfPool(b) - 2
			count := min(degree, edgepool.MaxDegreeOfPool(b+1)-2) - first

			position, bucketDegree, ok := buckets[b].NodeInfo(int32(n))
			if !ok || int(bucketDegree) != count {
				return nil, errors.Errorf("node %d: bucket %d holds %d edges, expected %d",
					n, b, bucketDegree, count)
			}

			dst := base + first
			buckets[b].Edges().ReadRange(edges[dst:dst+count], int(position))
			if metadata != nil {
				buckets[b].Edges().ReadMetadataRange(metadata[dst:dst+count], int(position))
			}
		}
	}

	optimized, err := edgepool.NewOptimizedEdgePool(offsets, edges, metadata)
	if err != nil {
		return nil, errors.Wrap(err, "build optimized pool")
	}
	return optimized, nil
}
