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

package accsum

import (
	"math"

	"github.com/ajroetker/go-accsum/hwy"
)

// TwoSum is Knuth's error-free transformation of a + b.
//
// x is the rounded sum and x + e equals a + b exactly for any finite a and b,
// regardless of their relative magnitude. Costs 6 additions.
func TwoSum[T hwy.Floats](a, b T) (x, e T) {
	x = a + b
	z := x - a
	e = (a - (x - z)) + (b - z)
	return x, e
}

// FastTwoSum is Dekker's error-free transformation of a + b.
//
// Dekker's identity needs |a| >= |b|; the operands are ordered by magnitude
// first, so the result is exact for any finite a and b. Costs a compare and
// 3 additions.
func FastTwoSum[T hwy.Floats](a, b T) (x, e T) {
	big, small := a, b
	if abs(a) < abs(b) {
		big, small = b, a
	}
	x = a + b
	z := x - big
	e = small - z
	return x, e
}

// TwoSumVec is the lane-wise form of TwoSum.
func TwoSumVec[T hwy.Floats](a, b hwy.Vec[T]) (x, e hwy.Vec[T]) {
	x = hwy.Add(a, b)
	z := hwy.Sub(x, a)
	e = hwy.Add(hwy.Sub(a, hwy.Sub(x, z)), hwy.Sub(b, z))
	return x, e
}

// FastTwoSumVec is the lane-wise form of FastTwoSum. The magnitude ordering
// is a per-lane select, so lanes never diverge.
func FastTwoSumVec[T hwy.Floats](a, b hwy.Vec[T]) (x, e hwy.Vec[T]) {
	swap := hwy.Less(hwy.Abs(a), hwy.Abs(b))
	big := hwy.IfThenElse(swap, b, a)
	small := hwy.IfThenElse(swap, a, b)
	x = hwy.Add(a, b)
	z := hwy.Sub(x, big)
	e = hwy.Sub(small, z)
	return x, e
}

func abs[T hwy.Floats](a T) T {
	return T(math.Abs(float64(a)))
}

// Primitive selects the EFT the cascaded engine runs with. BaseCascadedSum
// recognizes TwoSumEFT and FastTwoSumEFT and runs an engine body that calls
// them directly; any other implementation goes through its methods.
type Primitive[T hwy.Floats] interface {
	// Scalar returns the rounded sum of a and b and its rounding error.
	Scalar(a, b T) (T, T)

	// Vec is Scalar applied independently to every lane.
	Vec(a, b hwy.Vec[T]) (hwy.Vec[T], hwy.Vec[T])
}

// TwoSumEFT instantiates the engine with TwoSum (Ogita-Rump-Oishi).
type TwoSumEFT[T hwy.Floats] struct{}

// Scalar implements Primitive.
func (TwoSumEFT[T]) Scalar(a, b T) (T, T) { return TwoSum(a, b) }

// Vec implements Primitive.
func (TwoSumEFT[T]) Vec(a, b hwy.Vec[T]) (hwy.Vec[T], hwy.Vec[T]) { return TwoSumVec(a, b) }

// FastTwoSumEFT instantiates the engine with FastTwoSum (Kahan-Babuška).
type FastTwoSumEFT[T hwy.Floats] struct{}

// Scalar implements Primitive.
func (FastTwoSumEFT[T]) Scalar(a, b T) (T, T) { return FastTwoSum(a, b) }

// Vec implements Primitive.
func (FastTwoSumEFT[T]) Vec(a, b hwy.Vec[T]) (hwy.Vec[T], hwy.Vec[T]) { return FastTwoSumVec(a, b) }
