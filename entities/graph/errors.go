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

package graph

import "errors"

var (
	// ErrCapacityViolation is returned when a write would exceed a configured
	// bound, e.g. the max degree of a pool or the edge capacity of a segment.
	// The edge is never silently dropped.
	ErrCapacityViolation = errors.New("capacity violation")

	// ErrUnsupported is returned by operations the store does not implement,
	// such as edge removal on the append-only pools.
	ErrUnsupported = errors.New("operation not supported")

	// ErrInvalidConfig is returned when construction preconditions fail.
	ErrInvalidConfig = errors.New("invalid config")
)
