// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hwy

// TailMask creates a mask with the first 'count' lanes active.
// This is useful for handling the tail (remainder) of an array
// when the size is not a multiple of the vector width.
//
// count is clamped to [0, MaxLanes[T]()].
//
// Example:
//
//	maxLanes := hwy.MaxLanes[float32]()
//	remaining := len(data) % maxLanes
//	if remaining > 0 {
//	    mask := hwy.TailMask[float32](remaining)
//	    v := hwy.MaskLoad(mask, data[len(data)-remaining:])
//	    // ... process tail
//	}
func TailMask[T Floats](count int) Mask[T] {
	maxLanes := MaxLanes[T]()
	count = max(0, min(count, maxLanes))
	return Mask[T]{bits: uint32(1)<<count - 1, n: maxLanes}
}

// ProcessWithTail is a helper for processing arrays with SIMD that handles
// both full vectors and the tail (remainder) automatically.
//
// It calls:
//   - fullFn(offset) for each full vector (offset is the starting index)
//   - tailFn(offset, count) once for the tail if size is not a multiple of vector width
//
// Example:
//
//	acc := hwy.Zero[float32]()
//	hwy.ProcessWithTail[float32](len(data),
//	    func(offset int) {
//	        acc = hwy.Add(acc, hwy.Load(data[offset:]))
//	    },
//	    func(offset, count int) {
//	        mask := hwy.TailMask[float32](count)
//	        acc = hwy.Add(acc, hwy.MaskLoad(mask, data[offset:]))
//	    },
//	)
func ProcessWithTail[T Floats](size int, fullFn func(offset int), tailFn func(offset, count int)) {
	maxLanes := MaxLanes[T]()

	// Process full vectors
	fullVectors := size / maxLanes
	for i := range fullVectors {
		fullFn(i * maxLanes)
	}

	// Process tail if any
	remaining := size % maxLanes
	if remaining > 0 {
		tailFn(fullVectors*maxLanes, remaining)
	}
}

