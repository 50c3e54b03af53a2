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

package segment

import (
	"math/rand"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgepool"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgetype"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/idmap"
	"github.com/weaviate/bipartite/entities/graph"
)

const expectedNodeMetadataLength = 4

// poolRef lets pools of different concrete types share one atomic pointer.
type poolRef struct {
	pool edgepool.EdgePool
}

// side holds everything known about the nodes of one side of the graph.
// pool is nil if the side is not indexed. Once the optimizer swapped in a
// compacted pool, the mutable one is only referenced by readers still
// walking it.
type side struct {
	ids      *idmap.LongToInternalIntBiMap
	pool     atomic.Pointer[poolRef]
	indexed  bool
	metadata []*idmap.IntToIntArrayMap

	// pool sizing, kept to rebuild the mutable pool on reset
	expectedNumNodes  int
	expectedMaxDegree int
	exponent          float64
	edgeMetadata      bool
}

func newSide(expectedNumNodes, expectedMaxDegree int, exponent float64, indexed bool,
	maxNodeID int32, cfg Config,
) (*side, error) {
	ids, err := idmap.NewLongToInternalIntBiMap(expectedNumNodes, idmap.DefaultLoadFactor, int(maxNodeID)+1)
	if err != nil {
		return nil, errors.Wrap(err, "id map")
	}

	s := &side{
		ids:               ids,
		indexed:           indexed,
		expectedNumNodes:  expectedNumNodes,
		expectedMaxDegree: expectedMaxDegree,
		exponent:          exponent,
		edgeMetadata:      cfg.EdgeMetadata,
	}
	if indexed {
		pool, err := s.newPool()
		if err != nil {
			return nil, errors.Wrap(err, "edge pool")
		}
		s.pool.Store(&poolRef{pool: pool})
	}

	for t := 0; t < cfg.NumNodeMetadataTypes; t++ {
		m, err := idmap.NewIntToIntArrayMap(expectedNumNodes, expectedNodeMetadataLength)
		if err != nil {
			return nil, errors.Wrapf(err, "node metadata type %d", t)
		}
		s.metadata = append(s.metadata, m)
	}
	return s, nil
}

func (s *side) newPool() (*edgepool.PowerLawDegreeEdgePool, error) {
	return edgepool.NewPowerLawDegreeEdgePool(s.expectedNumNodes, s.expectedMaxDegree, s.exponent,
		s.edgeMetadata)
}

func (s *side) currentPool() edgepool.EdgePool {
	if ref := s.pool.Load(); ref != nil {
		return ref.pool
	}
	return nil
}

func (s *side) swapPool(old, replacement edgepool.EdgePool) bool {
	ref := s.pool.Load()
	if ref == nil || ref.pool != old {
		return false
	}
	return s.pool.CompareAndSwap(ref, &poolRef{pool: replacement})
}

func (s *side) degree(node int64) int {
	pool := s.currentPool()
	if pool == nil {
		return 0
	}
	id := s.ids.Get(node)
	if id == idmap.NotFound {
		return 0
	}
	return pool.NodeDegree(id)
}

// resolve returns the internal id key has, or the one Put will assign to
// it, without changing the id map.
func (s *side) resolve(key int64) (int32, error) {
	if id := s.ids.Get(key); id != idmap.NotFound {
		return id, nil
	}
	next := s.ids.NumKeys()
	if next >= s.ids.MaxKeys() {
		return idmap.NotFound, errors.Wrapf(graph.ErrCapacityViolation,
			"cannot map node %d, all %d internal ids are in use", key, s.ids.MaxKeys())
	}
	return int32(next), nil
}

func (s *side) checkMetadata(meta [][]int32) error {
	if len(meta) > len(s.metadata) {
		return errors.Errorf("got %d node metadata types, segment holds %d", len(meta), len(s.metadata))
	}
	return nil
}

func (s *side) putMetadata(id int32, meta [][]int32) {
	for t, values := range meta {
		s.metadata[t].Put(id, values)
	}
}

func (s *side) nodeMetadata(id int32, metadataType int) []int32 {
	if metadataType < 0 || metadataType >= len(s.metadata) {
		return nil
	}
	return s.metadata[metadataType].Get(id)
}

// reset empties the side. A compacted pool is replaced by a new mutable
// one, a mutable pool is emptied in place.
func (s *side) reset() error {
	s.ids.Clear()
	if s.indexed {
		mutable, ok := s.currentPool().(*edgepool.PowerLawDegreeEdgePool)
		if ok {
			mutable.Reset()
		} else {
			var err error
			if mutable, err = s.newPool(); err != nil {
				return errors.Wrap(err, "edge pool")
			}
		}
		s.pool.Store(&poolRef{pool: mutable})
	}
	for _, m := range s.metadata {
		m.Clear()
	}
	return nil
}

// core is the state shared by both segment kinds.
type core struct {
	id           atomic.Int64
	maxNumEdges  int
	mask         edgetype.Mask
	edgeMetadata bool

	left  *side
	right *side

	numEdges atomic.Int64
	evicted  atomic.Bool
}

func newCore(cfg Config, rightIndexed bool) (*core, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	mask := cfg.mask()
	// left ids only pass through the mask when they are stored in the
	// right pool
	leftMax := edgetype.Identity{}.MaxNodeID()
	if rightIndexed {
		leftMax = mask.MaxNodeID()
	}

	left, err := newSide(cfg.ExpectedNumLeftNodes, cfg.ExpectedMaxLeftDegree, cfg.LeftPowerLawExponent,
		true, leftMax, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "left side")
	}
	expectedNumRightNodes := cfg.ExpectedNumRightNodes
	if !rightIndexed && expectedNumRightNodes <= 0 {
		expectedNumRightNodes = cfg.ExpectedNumLeftNodes
	}
	right, err := newSide(expectedNumRightNodes, cfg.ExpectedMaxRightDegree, cfg.RightPowerLawExponent,
		rightIndexed, mask.MaxNodeID(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "right side")
	}

	c := &core{
		maxNumEdges:  cfg.MaxNumEdges,
		mask:         mask,
		edgeMetadata: cfg.EdgeMetadata,
		left:         left,
		right:        right,
	}
	c.id.Store(int64(cfg.ID))
	return c, nil
}

func (c *core) ID() int {
	return int(c.id.Load())
}

func (c *core) AddEdge(left, right int64, edgeType uint8) error {
	return c.addEdge(left, right, edgeType, 0, nil, nil)
}

func (c *core) AddEdgeWithMetadata(left, right int64, edgeType uint8, metadata int64) error {
	return c.addEdge(left, right, edgeType, metadata, nil, nil)
}

func (c *core) AddEdgeWithNodeMetadata(left, right int64, edgeType uint8, leftMeta, rightMeta [][]int32) error {
	return c.addEdge(left, right, edgeType, 0, leftMeta, rightMeta)
}

// addEdge checks every capacity bound before it changes anything, so a
// rejected edge leaves no partial state behind.
func (c *core) addEdge(left, right int64, edgeType uint8, metadata int64, leftMeta, rightMeta [][]int32) error {
	if c.Filled() {
		return errors.Wrapf(graph.ErrCapacityViolation, "segment %d is filled with %d edges",
			c.ID(), c.maxNumEdges)
	}

	leftID, err := c.left.resolve(left)
	if err != nil {
		return errors.Wrapf(err, "left node %d", left)
	}
	rightID, err := c.right.resolve(right)
	if err != nil {
		return errors.Wrapf(err, "right node %d", right)
	}
	if err := c.left.checkMetadata(leftMeta); err != nil {
		return errors.Wrapf(err, "left node %d", left)
	}
	if err := c.right.checkMetadata(rightMeta); err != nil {
		return errors.Wrapf(err, "right node %d", right)
	}
	if err := c.left.currentPool().CheckCapacity(leftID); err != nil {
		return errors.Wrapf(err, "left node %d", left)
	}
	if c.right.indexed {
		if err := c.right.currentPool().CheckCapacity(rightID); err != nil {
			return errors.Wrapf(err, "right node %d", right)
		}
	}

	if _, err := c.left.ids.Put(left); err != nil {
		return errors.Wrapf(err, "left node %d", left)
	}
	if _, err := c.right.ids.Put(right); err != nil {
		return errors.Wrapf(err, "right node %d", right)
	}

	// node metadata must be readable before the edge that leads to it
	c.left.putMetadata(leftID, leftMeta)
	c.right.putMetadata(rightID, rightMeta)

	if err := c.addToPool(c.left, leftID, c.mask.Encode(rightID, edgeType), metadata); err != nil {
		return errors.Wrapf(err, "left node %d", left)
	}
	if c.right.indexed {
		if err := c.addToPool(c.right, rightID, c.mask.Encode(leftID, edgeType), metadata); err != nil {
			return errors.Wrapf(err, "right node %d", right)
		}
	}

	c.numEdges.Add(1)
	return nil
}

func (c *core) addToPool(s *side, node, value int32, metadata int64) error {
	pool := s.currentPool()
	if c.edgeMetadata {
		return pool.AddEdgeWithMetadata(node, value, metadata)
	}
	return pool.AddEdge(node, value)
}

func (c *core) NumEdges() int {
	return int(c.numEdges.Load())
}

func (c *core) MaxNumEdges() int {
	return c.maxNumEdges
}

func (c *core) Filled() bool {
	return c.NumEdges() >= c.maxNumEdges
}

func (c *core) FillPercentage() float64 {
	return float64(c.NumEdges()) / float64(c.maxNumEdges)
}

func (c *core) RightIndexed() bool {
	return c.right.indexed
}

func (c *core) NumNodeMetadataTypes() int {
	return len(c.left.metadata)
}

func (c *core) LeftNodeDegree(node int64) int {
	return c.left.degree(node)
}

func (c *core) LeftNodeEdges(node int64) *EdgeIterator {
	it := c.NewLeftIterator()
	if !it.ResetForNode(node) {
		return nil
	}
	return it
}

func (c *core) RandomLeftNodeEdges(node int64, numSamples int, rng *rand.Rand) *EdgeIterator {
	it := c.NewRandomLeftIterator(numSamples, rng)
	if !it.ResetForNode(node) {
		return nil
	}
	return it
}

func (c *core) NewLeftIterator() *EdgeIterator {
	return newEdgeIterator(c, c.left, c.right, true)
}

// NewRandomLeftIterator returns an exhausted iterator that draws numSamples
// edges on every ResetForNode.
func (c *core) NewRandomLeftIterator(numSamples int, rng *rand.Rand) *EdgeIterator {
	it := newEdgeIterator(c, c.left, c.right, true)
	it.random, it.numSamples, it.rng = true, numSamples, rng
	return it
}

func (c *core) RightNodeDegree(node int64) int {
	return c.right.degree(node)
}

func (c *core) RightNodeEdges(node int64) *EdgeIterator {
	if !c.right.indexed {
		return nil
	}
	it := c.NewRightIterator()
	if !it.ResetForNode(node) {
		return nil
	}
	return it
}

func (c *core) RandomRightNodeEdges(node int64, numSamples int, rng *rand.Rand) *EdgeIterator {
	if !c.right.indexed {
		return nil
	}
	it := newEdgeIterator(c, c.right, c.left, false)
	it.random, it.numSamples, it.rng = true, numSamples, rng
	if !it.ResetForNode(node) {
		return nil
	}
	return it
}

// NewRightIterator never finds a node on left-indexed segments.
func (c *core) NewRightIterator() *EdgeIterator {
	return newEdgeIterator(c, c.right, c.left, false)
}

func (c *core) LeftNodeMetadata(internalID int32, metadataType int) []int32 {
	return c.left.nodeMetadata(internalID, metadataType)
}

func (c *core) RightNodeMetadata(internalID int32, metadataType int) []int32 {
	return c.right.nodeMetadata(internalID, metadataType)
}

func (c *core) LeftPool() edgepool.EdgePool {
	return c.left.currentPool()
}

func (c *core) SwapLeftPool(old, replacement edgepool.EdgePool) bool {
	return c.left.swapPool(old, replacement)
}

func (c *core) RightPool() edgepool.EdgePool {
	return c.right.currentPool()
}

func (c *core) SwapRightPool(old, replacement edgepool.EdgePool) bool {
	return c.right.swapPool(old, replacement)
}

// LeftIDs exposes the left id map, e.g. to resolve internal ids handed to
// node metadata lookups.
func (c *core) LeftIDs() *idmap.LongToInternalIntBiMap {
	return c.left.ids
}

func (c *core) RightIDs() *idmap.LongToInternalIntBiMap {
	return c.right.ids
}

func (c *core) Reset(id int) error {
	if err := c.left.reset(); err != nil {
		return errors.Wrapf(err, "reset segment %d: left side", c.ID())
	}
	if err := c.right.reset(); err != nil {
		return errors.Wrapf(err, "reset segment %d: right side", c.ID())
	}
	c.numEdges.Store(0)
	c.evicted.Store(false)
	c.id.Store(int64(id))
	return nil
}

func (c *core) Evict() {
	c.evicted.Store(true)
}

func (c *core) Evicted() bool {
	return c.evicted.Load()
}
