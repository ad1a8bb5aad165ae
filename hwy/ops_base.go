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

import (
	"fmt"
	"math"
)

// This file provides the portable per-lane operations. Every operation works
// lane by lane on the active lanes of its operands; only the Reduce* and
// GetLane functions look across lanes.

// Load creates a vector from the first MaxLanes[T]() elements of src.
//
// Panics if src holds fewer elements than one vector; use MaskLoad for a
// partial tail.
func Load[T Floats](src []T) Vec[T] {
	n := MaxLanes[T]()
	if len(src) < n {
		panic(fmt.Sprintf("hwy: Load needs %d elements, slice has %d", n, len(src)))
	}
	v := Vec[T]{n: n}
	copy(v.data[:n], src[:n])
	return v
}

// Store writes a vector's lanes to dst, truncating to len(dst).
func Store[T Floats](v Vec[T], dst []T) {
	n := min(len(dst), v.n)
	copy(dst[:n], v.data[:n])
}

// Set creates a vector with all lanes set to the same value.
func Set[T Floats](value T) Vec[T] {
	v := Vec[T]{n: MaxLanes[T]()}
	for i := range v.n {
		v.data[i] = value
	}
	return v
}

// Zero creates a vector with all lanes set to zero.
func Zero[T Floats]() Vec[T] {
	return Vec[T]{n: MaxLanes[T]()}
}

// Add performs element-wise addition.
func Add[T Floats](a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: min(a.n, b.n)}
	for i := range r.n {
		r.data[i] = a.data[i] + b.data[i]
	}
	return r
}

// Sub performs element-wise subtraction.
func Sub[T Floats](a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: min(a.n, b.n)}
	for i := range r.n {
		r.data[i] = a.data[i] - b.data[i]
	}
	return r
}

// Neg negates every lane.
func Neg[T Floats](v Vec[T]) Vec[T] {
	r := Vec[T]{n: v.n}
	for i := range r.n {
		r.data[i] = -v.data[i]
	}
	return r
}

// Abs computes the absolute value of every lane.
func Abs[T Floats](v Vec[T]) Vec[T] {
	r := Vec[T]{n: v.n}
	for i := range r.n {
		r.data[i] = absHelper(v.data[i])
	}
	return r
}

// absHelper clears the sign; the float64 round trip is exact for float32.
func absHelper[T Floats](a T) T {
	return T(math.Abs(float64(a)))
}

// LessThan performs element-wise a < b.
func LessThan[T Floats](a, b Vec[T]) Mask[T] {
	m := Mask[T]{n: min(a.n, b.n)}
	for i := range m.n {
		if a.data[i] < b.data[i] {
			m.bits |= 1 << i
		}
	}
	return m
}

// Less is an alias for LessThan.
func Less[T Floats](a, b Vec[T]) Mask[T] {
	return LessThan(a, b)
}

// IfThenElse selects a where mask is set and b elsewhere, per lane.
func IfThenElse[T Floats](mask Mask[T], a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: min(mask.n, a.n, b.n)}
	for i := range r.n {
		if mask.bits&(1<<i) != 0 {
			r.data[i] = a.data[i]
		} else {
			r.data[i] = b.data[i]
		}
	}
	return r
}

// MaskLoad loads src into the lanes where mask is set; the other lanes are +0.
//
// Only active lanes are read, and never beyond len(src), so a TailMask built
// from the remaining element count is always safe.
func MaskLoad[T Floats](mask Mask[T], src []T) Vec[T] {
	v := Vec[T]{n: mask.n}
	n := min(len(src), mask.n)
	for i := range n {
		if mask.bits&(1<<i) != 0 {
			v.data[i] = src[i]
		}
	}
	return v
}

// ReduceSum sums all lanes from lane 0 upwards with ordinary addition.
func ReduceSum[T Floats](v Vec[T]) T {
	var sum T
	for i := range v.n {
		sum += v.data[i]
	}
	return sum
}

// GetLane extracts a single lane value from the vector.
// Returns zero value if index is out of bounds.
func GetLane[T Floats](v Vec[T], idx int) T {
	if idx < 0 || idx >= v.n {
		var zero T
		return zero
	}
	return v.data[idx]
}
