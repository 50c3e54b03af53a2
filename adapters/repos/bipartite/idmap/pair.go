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

package idmap

// PackPair stores v1 in the high and v2 in the low 32 bits, so both halves
// can be loaded and stored with a single atomic operation.
func PackPair(v1, v2 int32) uint64 {
	return uint64(uint32(v1))<<32 | uint64(uint32(v2))
}

func UnpackPair(packed uint64) (int32, int32) {
	return FirstValue(packed), SecondValue(packed)
}

func FirstValue(packed uint64) int32 {
	return int32(uint32(packed >> 32))
}

func SecondValue(packed uint64) int32 {
	return int32(uint32(packed))
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// tableSize returns the power of two slot count that keeps expected keys
// below the load factor.
func tableSize(expected int, loadFactor float64) int {
	return nextPowerOf2(max(16, int(float64(expected)/loadFactor)+1))
}
