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

// Stats is a point-in-time view of a segmented graph. All values are
// computed from one snapshot of the segment window.
type Stats struct {
	LiveSegmentID    int
	LiveSegmentEdges int
	// LiveSegmentFillPercentage is the live segment's edge count relative to
	// its capacity, in [0, 1].
	LiveSegmentFillPercentage float64
	NumSegments               int
	OldestSegmentID           int
	// NumEdgesSeen counts every edge ever added, including those in evicted
	// segments.
	NumEdgesSeen              int64
	NumEdgesInNonLiveSegments int
}
