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

// Package config holds the construction-time settings of a segmented
// graph. A config is immutable once a graph has been built from it.
package config

import (
	"math"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/weaviate/bipartite/adapters/repos/bipartite/edgetype"
	"github.com/weaviate/bipartite/entities/graph"
)

const (
	IndexingLeft = "left"
	IndexingBoth = "both"
)

const (
	DefaultMaxNumSegments         = 10
	DefaultMaxNumEdgesPerSegment  = 1 << 20
	DefaultExpectedNumLeftNodes   = 1 << 16
	DefaultExpectedMaxLeftDegree  = 64
	DefaultLeftPowerLawExponent   = 2.0
	DefaultExpectedNumRightNodes  = 1 << 16
	DefaultExpectedMaxRightDegree = 64
	DefaultRightPowerLawExponent  = 2.0
	DefaultOptimizerWorkers       = 1
	DefaultOptimizerQueueSize     = 16
	DefaultIndexing               = IndexingLeft
	DefaultNumNodeMetadataTypes   = 0
	DefaultEdgeTypeBits           = 0
	DefaultOptimizerEnabled       = true
)

// Graph configures a multi-segment graph.
type Graph struct {
	MaxNumSegments        int `json:"max_num_segments" yaml:"max_num_segments"`
	MaxNumEdgesPerSegment int `json:"max_num_edges_per_segment" yaml:"max_num_edges_per_segment"`

	ExpectedNumLeftNodes  int     `json:"expected_num_left_nodes" yaml:"expected_num_left_nodes"`
	ExpectedMaxLeftDegree int     `json:"expected_max_left_degree" yaml:"expected_max_left_degree"`
	LeftPowerLawExponent  float64 `json:"left_power_law_exponent" yaml:"left_power_law_exponent"`

	ExpectedNumRightNodes  int     `json:"expected_num_right_nodes" yaml:"expected_num_right_nodes"`
	ExpectedMaxRightDegree int     `json:"expected_max_right_degree" yaml:"expected_max_right_degree"`
	RightPowerLawExponent  float64 `json:"right_power_law_exponent" yaml:"right_power_law_exponent"`

	// Indexing is IndexingLeft or IndexingBoth.
	Indexing string `json:"indexing" yaml:"indexing"`
	// EdgeTypeBits of 0 selects the untyped identity mask.
	EdgeTypeBits         int  `json:"edge_type_bits" yaml:"edge_type_bits"`
	NumNodeMetadataTypes int  `json:"num_node_metadata_types" yaml:"num_node_metadata_types"`
	EdgeMetadata         bool `json:"edge_metadata" yaml:"edge_metadata"`

	Optimizer Optimizer `json:"optimizer" yaml:"optimizer"`

	// RecycleSegments resets evicted segments in place and reuses them as
	// the next live segment. Only safe without concurrent readers and
	// without the optimizer.
	RecycleSegments bool `json:"recycle_segments" yaml:"recycle_segments"`
}

type Optimizer struct {
	Enabled   bool `json:"enabled" yaml:"enabled"`
	Workers   int  `json:"workers" yaml:"workers"`
	QueueSize int  `json:"queue_size" yaml:"queue_size"`
}

// Defaults returns a left-indexed, untyped graph config.
func Defaults() Graph {
	return Graph{
		MaxNumSegments:         DefaultMaxNumSegments,
		MaxNumEdgesPerSegment:  DefaultMaxNumEdgesPerSegment,
		ExpectedNumLeftNodes:   DefaultExpectedNumLeftNodes,
		ExpectedMaxLeftDegree:  DefaultExpectedMaxLeftDegree,
		LeftPowerLawExponent:   DefaultLeftPowerLawExponent,
		ExpectedNumRightNodes:  DefaultExpectedNumRightNodes,
		ExpectedMaxRightDegree: DefaultExpectedMaxRightDegree,
		RightPowerLawExponent:  DefaultRightPowerLawExponent,
		Indexing:               DefaultIndexing,
		EdgeTypeBits:           DefaultEdgeTypeBits,
		NumNodeMetadataTypes:   DefaultNumNodeMetadataTypes,
		Optimizer: Optimizer{
			Enabled:   DefaultOptimizerEnabled,
			Workers:   DefaultOptimizerWorkers,
			QueueSize: DefaultOptimizerQueueSize,
		},
	}
}

// LoadFile reads a YAML file on top of the defaults. Keys missing from the
// file keep their default value.
func LoadFile(path string) (Graph, error) {
	cfg := Defaults()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config file %q", path)
	}
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config file %q", path)
	}
	return cfg, nil
}

// RightIndexed is true if right nodes get their own adjacency lists.
func (g Graph) RightIndexed() bool {
	return g.Indexing == IndexingBoth
}

// Validate reports every violated precondition at once.
func (g Graph) Validate() error {
	var result *multierror.Error

	positive := func(name string, value int) {
		if value <= 0 {
			result = multierror.Append(result, errors.Errorf("%s must be positive, got %d", name, value))
		}
	}
	exponent := func(name string, value float64) {
		if !(value > 1.0) || math.IsInf(value, 0) {
			result = multierror.Append(result, errors.Errorf("%s must be > 1.0, got %v", name, value))
		}
	}

	positive("max_num_segments", g.MaxNumSegments)
	positive("max_num_edges_per_segment", g.MaxNumEdgesPerSegment)
	positive("expected_num_left_nodes", g.ExpectedNumLeftNodes)
	positive("expected_max_left_degree", g.ExpectedMaxLeftDegree)
	exponent("left_power_law_exponent", g.LeftPowerLawExponent)

	switch g.Indexing {
	case IndexingLeft:
	case IndexingBoth:
		positive("expected_num_right_nodes", g.ExpectedNumRightNodes)
		positive("expected_max_right_degree", g.ExpectedMaxRightDegree)
		exponent("right_power_law_exponent", g.RightPowerLawExponent)
	default:
		result = multierror.Append(result, errors.Errorf("indexing must be %q or %q, got %q",
			IndexingLeft, IndexingBoth, g.Indexing))
	}

	if g.EdgeTypeBits < 0 || g.EdgeTypeBits > edgetype.MaxBits {
		result = multierror.Append(result, errors.Errorf("edge_type_bits must be in [0, %d], got %d",
			edgetype.MaxBits, g.EdgeTypeBits))
	}
	if g.NumNodeMetadataTypes < 0 {
		result = multierror.Append(result, errors.Errorf("num_node_metadata_types must not be negative, got %d",
			g.NumNodeMetadataTypes))
	}

	if g.Optimizer.Enabled {
		positive("optimizer.workers", g.Optimizer.Workers)
		positive("optimizer.queue_size", g.Optimizer.QueueSize)

		// a recycled segment keeps its pools, a late swap would publish
		// stale edges
		if g.RecycleSegments {
			result = multierror.Append(result,
				errors.New("recycle_segments requires the optimizer to be disabled"))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Wrap(graph.ErrInvalidConfig, err.Error())
	}
	return nil
}
