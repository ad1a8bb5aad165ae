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

// Package hwy provides portable fixed-width lane vectors for floating-point
// kernels, with the lane count selected once per process from the CPU's
// vector register width.
//
// Kernels are written against Vec[T] and the per-lane operations in this
// package; the number of lanes a vector carries is MaxLanes[T]() and never
// changes while a kernel runs.
//
// Basic usage:
//
//	import "github.com/ajroetker/go-accsum/hwy"
//
//	lanes := hwy.MaxLanes[float64]()
//	acc := hwy.Zero[float64]()
//	for i := 0; i+lanes <= len(data); i += lanes {
//	    acc = hwy.Add(acc, hwy.Load(data[i:]))
//	}
//	total := hwy.ReduceSum(acc)
package hwy

import "golang.org/x/exp/constraints"

// Floats is a constraint for the floating-point element types a Vec can hold.
type Floats interface {
	constraints.Float
}

// MaxVectorBytes is the widest register width the package models (AVX-512).
const MaxVectorBytes = 64

// maxVecLanes is the lane capacity of a Vec: the widest register holding the
// narrowest element type (float32).
const maxVecLanes = MaxVectorBytes / 4

// Vec is a portable vector handle of MaxLanes[T]() lanes.
//
// Vec is a value type backed by a fixed array, so copying or returning one
// does not allocate. Lanes past NumLanes are always zero.
//
// Vec instances should not be created directly; use Load, Set, or Zero instead.
type Vec[T Floats] struct {
	data [maxVecLanes]T
	n    int
}

// NumLanes returns the number of lanes (elements) in this vector.
func (v Vec[T]) NumLanes() int {
	return v.n
}

// Data returns a copy of the active lanes.
// This is primarily for testing and should not be used in performance-critical code.
func (v Vec[T]) Data() []T {
	out := make([]T, v.n)
	copy(out, v.data[:v.n])
	return out
}

// Store writes the vector's lanes to dst.
// This is the method form of the hwy.Store function.
func (v Vec[T]) Store(dst []T) {
	Store(v, dst)
}

// Mask represents the result of a per-lane comparison.
// It is consumed by IfThenElse and MaskLoad.
//
// Mask instances should not be created directly; use comparisons like Less
// or TailMask instead.
type Mask[T Floats] struct {
	// bit i is set if lane i is active.
	bits uint32
	n    int
}

// NumLanes returns the number of lanes in this mask.
func (m Mask[T]) NumLanes() int {
	return m.n
}

// AllTrue returns true if all lanes in the mask are active.
func (m Mask[T]) AllTrue() bool {
	return m.CountTrue() == m.n
}

// AnyTrue returns true if at least one lane in the mask is active.
func (m Mask[T]) AnyTrue() bool {
	return m.bits != 0
}

// CountTrue returns the number of active lanes in the mask.
func (m Mask[T]) CountTrue() int {
	count := 0
	for i := range m.n {
		if m.bits&(1<<i) != 0 {
			count++
		}
	}
	return count
}

// GetBit returns whether lane i is active.
func (m Mask[T]) GetBit(i int) bool {
	if i < 0 || i >= m.n {
		return false
	}
	return m.bits&(1<<i) != 0
}
