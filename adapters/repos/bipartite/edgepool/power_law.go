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
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/array"
	"github.com/weaviate/bipartite/entities/graph"
)

// MaxNumPools bounds the number of buckets of a power-law pool. The last
// bucket has a max degree of 2^MaxNumPools, which keeps every position
// inside the int32 range.
const MaxNumPools = 29

const degreeShardLength = 1 << 14

var logTable [256]int8

func init() {
	logTable[0] = -1
	logTable[1] = 0
	for i := 2; i < 256; i++ {
		logTable[i] = 1 + logTable[i/2]
	}
}

// floorLog2 is floor(log2(v)) for v > 0, via a byte lookup table.
func floorLog2(v uint32) int {
	if t := v >> 24; t != 0 {
		return 24 + int(logTable[t])
	}
	if t := v >> 16; t != 0 {
		return 16 + int(logTable[t])
	}
	if t := v >> 8; t != 0 {
		return 8 + int(logTable[t])
	}
	return int(logTable[v])
}

// PoolForEdgeNumber returns the bucket holding a node's edge with the given
// 0-based number: floor(log2(edgeNumber+2)) - 1. Bucket i holds edge
// numbers [2^(i+1)-2, 2^(i+2)-2).
func PoolForEdgeNumber(edgeNumber int) int {
	return floorLog2(uint32(edgeNumber+2)) - 1
}

// EdgeNumberInPool is the offset of edgeNumber within its bucket's span.
func EdgeNumberInPool(bucket, edgeNumber int) int {
	return edgeNumber - firstEdgeNumber(bucket)
}

func firstEdgeNumber(bucket int) int {
	return 1<<(bucket+1) - 2
}

// MaxDegreeOfPool is the span length reserved per node in a bucket.
func MaxDegreeOfPool(bucket int) int {
	return 1 << (bucket + 1)
}

type powerLawState struct {
	pools []*RegularDegreeEdgePool
}

// PowerLawDegreeEdgePool spreads a node's edges over a sequence of regular
// pools whose max degree doubles while their expected node count shrinks by
// the exponent. Most nodes only ever touch the first, small buckets.
//
// Buckets are created lazily on first write. The bucket list is never
// mutated in place, a longer list is published atomically.
type PowerLawDegreeEdgePool struct {
	state       atomic.Pointer[powerLawState]
	nodeDegrees *array.IntArray

	expectedNumNodes  int
	expectedMaxDegree int
	exponent          float64
	withMetadata      bool

	numNodeSlots atomic.Int32
	numEdges     atomic.Int64
}

func NewPowerLawDegreeEdgePool(expectedNumNodes, expectedMaxDegree int, exponent float64,
	withMetadata bool,
) (*PowerLawDegreeEdgePool, error) {
	if expectedNumNodes <= 0 {
		return nil, errors.Wrapf(graph.ErrInvalidConfig, "expected number of nodes must be positive, got %d",
			expectedNumNodes)
	}
	if expectedMaxDegree <= 0 {
		return nil, errors.Wrapf(graph.ErrInvalidConfig, "expected max degree must be positive, got %d",
			expectedMaxDegree)
	}
	if exponent <= 1.0 || math.IsNaN(exponent) {
		return nil, errors.Wrapf(graph.ErrInvalidConfig, "power law exponent must be > 1.0, got %v", exponent)
	}

	nodeDegrees, err := array.NewIntArray(max(1, expectedNumNodes/degreeShardLength), degreeShardLength, 0, false)
	if err != nil {
		return nil, errors.Wrap(err, "node degree array")
	}

	p := &PowerLawDegreeEdgePool{
		nodeDegrees:       nodeDegrees,
		expectedNumNodes:  expectedNumNodes,
		expectedMaxDegree: expectedMaxDegree,
		exponent:          exponent,
		withMetadata:      withMetadata,
	}
	p.state.Store(&powerLawState{})
	return p, nil
}

// ExpectedNumPools is the number of buckets needed to hold
// expectedMaxDegree edges for one node. More buckets are added on demand.
func (p *PowerLawDegreeEdgePool) ExpectedNumPools() int {
	return max(1, PoolForEdgeNumber(p.expectedMaxDegree-1)+1)
}

func (p *PowerLawDegreeEdgePool) expectedNodesInPool(bucket int) int {
	return max(1, int(float64(p.expectedNumNodes)/math.Pow(p.exponent, float64(bucket))))
}

// Pools returns the current buckets. The slice must not be modified.
func (p *PowerLawDegreeEdgePool) Pools() []*RegularDegreeEdgePool {
	return p.state.Load().pools
}

func (p *PowerLawDegreeEdgePool) pool(bucket int) (*RegularDegreeEdgePool, error) {
	current := p.state.Load().pools
	if bucket < len(current) {
		return current[bucket], nil
	}

	pools := make([]*RegularDegreeEdgePool, len(current), bucket+1)
	copy(pools, current)
	for b := len(current); b <= bucket; b++ {
		pool, err := NewRegularDegreeEdgePool(p.expectedNodesInPool(b), MaxDegreeOfPool(b), p.withMetadata)
		if err != nil {
			return nil, errors.Wrapf(err, "create bucket %d", b)
		}
		pools = append(pools, pool)
	}
	p.state.Store(&powerLawState{pools: pools})
	return pools[bucket], nil
}

func (p *PowerLawDegreeEdgePool) AddEdge(nodeA, nodeB int32) error {
	return p.addEdge(nodeA, nodeB, 0, false)
}

func (p *PowerLawDegreeEdgePool) AddEdgeWithMetadata(nodeA, nodeB int32, metadata int64) error {
	return p.addEdge(nodeA, nodeB, metadata, true)
}

func (p *PowerLawDegreeEdgePool) bucketForNextEdge(node int32) (int, error) {
	if node < 0 {
		return 0, errors.Errorf("invalid node id %d", node)
	}
	bucket := PoolForEdgeNumber(int(p.nodeDegrees.GetEntry(int(node))))
	if bucket >= MaxNumPools {
		return 0, errMaxDegree(node, int32(firstEdgeNumber(MaxNumPools)))
	}
	return bucket, nil
}

func (p *PowerLawDegreeEdgePool) CheckCapacity(node int32) error {
	bucket, err := p.bucketForNextEdge(node)
	if err != nil {
		return err
	}
	// a bucket that does not exist yet starts empty
	if pools := p.state.Load().pools; bucket < len(pools) {
		return errors.Wrapf(pools[bucket].CheckCapacity(node), "bucket %d", bucket)
	}
	return nil
}

func (p *PowerLawDegreeEdgePool) addEdge(nodeA, nodeB int32, metadata int64, withMetadata bool) error {
	bucket, err := p.bucketForNextEdge(nodeA)
	if err != nil {
		return err
	}

	pool, err := p.pool(bucket)
	if err != nil {
		return err
	}
	if withMetadata {
		err = pool.AddEdgeWithMetadata(nodeA, nodeB, metadata)
	} else {
		err = pool.AddEdge(nodeA, nodeB)
	}
	if err != nil {
		return errors.Wrapf(err, "bucket %d", bucket)
	}

	// the total degree gates readers, it is published last
	p.nodeDegrees.IncrementEntry(int(nodeA), 1)
	if nodeA >= p.numNodeSlots.Load() {
		p.numNodeSlots.Store(nodeA + 1)
	}
	p.numEdges.Add(1)
	return nil
}

func (p *PowerLawDegreeEdgePool) RemoveEdge(nodeA, nodeB int32) error {
	return errRemoveUnsupported(nodeA, nodeB)
}

func (p *PowerLawDegreeEdgePool) NodeDegree(node int32) int {
	if node < 0 {
		return 0
	}
	return int(p.nodeDegrees.GetEntry(int(node)))
}

func (p *PowerLawDegreeEdgePool) NodeEdges(node int32, reuse IntIterator) IntIterator {
	degree := p.NodeDegree(node)
	if degree == 0 {
		return nil
	}
	// loaded after the degree, so every bucket the degree refers to exists
	pools := p.state.Load().pools

	it, ok := reuse.(*powerLawIterator)
	if !ok {
		it = &powerLawIterator{}
	}
	it.reset(pools, node, degree)
	return it
}

func (p *PowerLawDegreeEdgePool) RandomNodeEdges(node int32, numSamples int,
	rng *rand.Rand, reuse IntIterator,
) IntIterator {
	degree := p.NodeDegree(node)
	if degree == 0 {
		return nil
	}
	pools := p.state.Load().pools

	it, ok := reuse.(*powerLawRandomIterator)
	if !ok {
		it = &powerLawRandomIterator{}
	}
	it.reset(pools, node, degree, numSamples, rng)
	return it
}

// NumNodeSlots is one more than the highest node id with an edge.
func (p *PowerLawDegreeEdgePool) NumNodeSlots() int {
	return int(p.numNodeSlots.Load())
}

func (p *PowerLawDegreeEdgePool) NumEdges() int {
	return int(p.numEdges.Load())
}

func (p *PowerLawDegreeEdgePool) HasMetadata() bool {
	return p.withMetadata
}

// FillPercentage averages the fill of the allocated buckets, weighted by
// their reserved slots.
func (p *PowerLawDegreeEdgePool) FillPercentage() float64 {
	var reserved, used float64
	for _, pool := range p.state.Load().pools {
		slots := float64(pool.NumNodes()) * float64(pool.MaxDegree())
		reserved += slots
		used += slots * pool.FillPercentage()
	}
	if reserved == 0 {
		return 0
	}
	return used / reserved
}

// Reset drops all buckets. It must not run concurrently with readers.
func (p *PowerLawDegreeEdgePool) Reset() {
	p.state.Store(&powerLawState{})
	p.nodeDegrees.Reset()
	p.numNodeSlots.Store(0)
	p.numEdges.Store(0)
}
