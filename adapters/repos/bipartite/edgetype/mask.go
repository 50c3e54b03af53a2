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

// Package edgetype packs an edge type into the destination id stored in an
// edge pool.
package edgetype

import (
	"math"

	"github.com/pkg/errors"
	"github.com/weaviate/bipartite/entities/graph"
)

// MaxBits is the widest type field a BitMask supports.
const MaxBits = 8

// Mask encodes an edge type into an internal node id and decodes it again.
// Encoded values are never negative.
type Mask interface {
	Encode(node int32, edgeType uint8) int32
	EdgeType(value int32) uint8
	Restore(value int32) int32
	// MaxNodeID is the largest internal id that can be encoded without
	// losing bits.
	MaxNodeID() int32
}

// Identity is the mask of untyped graphs. Types are dropped on Encode.
type Identity struct{}

func (Identity) Encode(node int32, _ uint8) int32 { return node }

func (Identity) EdgeType(int32) uint8 { return 0 }

func (Identity) Restore(value int32) int32 { return value }

func (Identity) MaxNodeID() int32 { return math.MaxInt32 }

// BitMask stores the edge type in the top bits below the sign bit.
type BitMask struct {
	bits     uint
	shift    uint
	typeMask int32
	nodeMask int32
}

func NewBitMask(bits int) (*BitMask, error) {
	if bits < 1 || bits > MaxBits {
		return nil, errors.Wrapf(graph.ErrInvalidConfig, "edge type bits must be in [1, %d], got %d",
			MaxBits, bits)
	}

	shift := uint(31 - bits)
	return &BitMask{
		bits:     uint(bits),
		shift:    shift,
		typeMask: int32(1)<<bits - 1,
		nodeMask: int32(1)<<shift - 1,
	}, nil
}

// New returns the Identity mask for bits == 0, a BitMask otherwise.
func New(bits int) (Mask, error) {
	if bits == 0 {
		return Identity{}, nil
	}
	return NewBitMask(bits)
}

// Bits is the width of the type field.
func (m *BitMask) Bits() int {
	return int(m.bits)
}

// Encode keeps the lowest Bits() bits of edgeType. Callers check node
// against MaxNodeID first.
func (m *BitMask) Encode(node int32, edgeType uint8) int32 {
	return (int32(edgeType)&m.typeMask)<<m.shift | node&m.nodeMask
}

func (m *BitMask) EdgeType(value int32) uint8 {
	return uint8(value >> m.shift & m.typeMask)
}

func (m *BitMask) Restore(value int32) int32 {
	return value & m.nodeMask
}

func (m *BitMask) MaxNodeID() int32 {
	return m.nodeMask
}
