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
	"github.com/pkg/errors"
	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgetype"
	"github.com/weaviate/bipartite/entities/graph"
)

// Config sizes a single segment.
type Config struct {
	ID          int
	MaxNumEdges int

	ExpectedNumLeftNodes  int
	ExpectedMaxLeftDegree int
	LeftPowerLawExponent  float64

	ExpectedNumRightNodes  int
	ExpectedMaxRightDegree int
	RightPowerLawExponent  float64

	// Mask defaults to edgetype.Identity.
	Mask                 edgetype.Mask
	NumNodeMetadataTypes int
	EdgeMetadata         bool
}

func (c Config) validate() error {
	if c.MaxNumEdges <= 0 {
		return errors.Wrapf(graph.ErrInvalidConfig, "max number of edges must be positive, got %d",
			c.MaxNumEdges)
	}
	if c.NumNodeMetadataTypes < 0 {
		return errors.Wrapf(graph.ErrInvalidConfig, "number of node metadata types must not be negative, got %d",
			c.NumNodeMetadataTypes)
	}
	return nil
}

func (c Config) mask() edgetype.Mask {
	if c.Mask == nil {
		return edgetype.Identity{}
	}
	return c.Mask
}
