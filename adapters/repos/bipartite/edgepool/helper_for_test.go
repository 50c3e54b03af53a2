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

func collect(it IntIterator) []int32 {
	if it == nil {
		return nil
	}
	var out []int32
	for it.HasNext() {
		out = append(out, it.Next())
	}
	return out
}

func collectMetadata(it IntIterator) []int64 {
	if it == nil {
		return nil
	}
	var out []int64
	for it.HasNext() {
		it.Next()
		out = append(out, it.CurrentMetadata())
	}
	return out
}
