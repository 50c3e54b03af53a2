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

package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// FromEnv overlays the BIPARTITE_* environment variables on config.
func FromEnv(config *Graph) error {
	ints := []struct {
		env    string
		target *int
	}{
		{"BIPARTITE_MAX_NUM_SEGMENTS", &config.MaxNumSegments},
		{"BIPARTITE_MAX_NUM_EDGES_PER_SEGMENT", &config.MaxNumEdgesPerSegment},
		{"BIPARTITE_EXPECTED_NUM_LEFT_NODES", &config.ExpectedNumLeftNodes},
		{"BIPARTITE_EXPECTED_MAX_LEFT_DEGREE", &config.ExpectedMaxLeftDegree},
		{"BIPARTITE_EXPECTED_NUM_RIGHT_NODES", &config.ExpectedNumRightNodes},
		{"BIPARTITE_EXPECTED_MAX_RIGHT_DEGREE", &config.ExpectedMaxRightDegree},
		{"BIPARTITE_EDGE_TYPE_BITS", &config.EdgeTypeBits},
		{"BIPARTITE_NUM_NODE_METADATA_TYPES", &config.NumNodeMetadataTypes},
		{"BIPARTITE_OPTIMIZER_WORKERS", &config.Optimizer.Workers},
		{"BIPARTITE_OPTIMIZER_QUEUE_SIZE", &config.Optimizer.QueueSize},
	}
	for _, i := range ints {
		if v := os.Getenv(i.env); v != "" {
			asInt, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "parse %s as int", i.env)
			}
			*i.target = asInt
		}
	}

	floats := []struct {
		env    string
		target *float64
	}{
		{"BIPARTITE_LEFT_POWER_LAW_EXPONENT", &config.LeftPowerLawExponent},
		{"BIPARTITE_RIGHT_POWER_LAW_EXPONENT", &config.RightPowerLawExponent},
	}
	for _, f := range floats {
		if v := os.Getenv(f.env); v != "" {
			asFloat, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.Wrapf(err, "parse %s as float", f.env)
			}
			*f.target = asFloat
		}
	}

	if v := os.Getenv("BIPARTITE_INDEXING"); v != "" {
		config.Indexing = v
	}

	bools := []struct {
		env    string
		target *bool
	}{
		{"BIPARTITE_EDGE_METADATA", &config.EdgeMetadata},
		{"BIPARTITE_OPTIMIZER_ENABLED", &config.Optimizer.Enabled},
		{"BIPARTITE_RECYCLE_SEGMENTS", &config.RecycleSegments},
	}
	for _, b := range bools {
		if v := os.Getenv(b.env); v != "" {
			*b.target = enabled(v)
		}
	}

	return nil
}

func enabled(value string) bool {
	if value == "" {
		return false
	}

	if value == "on" ||
		value == "enabled" ||
		value == "1" ||
		value == "true" {
		return true
	}

	return false
}
