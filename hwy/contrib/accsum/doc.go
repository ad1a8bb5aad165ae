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

// Package accsum provides compensated (error-free transformation) summation
// of float32 and float64 slices on hwy lane vectors.
//
// Every addition is performed with an error-free transformation (EFT) that
// returns both the rounded sum and its exact rounding residual; residuals are
// accumulated separately and added back at the end, so the result is close
// to the correctly rounded sum even when naive addition loses every digit.
//
// # Entry points
//
//   - SumKahan: compensated Kahan-Babuška summation built on FastTwoSum.
//   - SumORO: Ogita-Rump-Oishi cascaded summation built on TwoSum.
//   - SumNaive: plain vectorized addition, the accuracy baseline.
//
// Both compensated sums are specializations of one cascaded engine,
// BaseCascadedSum, parameterized by the EFT primitive (a type parameter) and
// a Config selecting the unroll factor and the tail policy:
//
//	s := accsum.SumORO(data)
//
//	// Same algorithm, 8 accumulator chains, masked tail:
//	cfg := accsum.Config{Remainder: accsum.RemainderMask, UnrollShift: 3}
//	s = accsum.Cascaded[float64, accsum.TwoSumEFT[float64]](data, cfg)
//
//	// Validate once, reuse many times:
//	summer, err := accsum.New[float32, accsum.FastTwoSumEFT[float32]](
//	    accsum.WithUnrollShift(4), accsum.WithRemainder(accsum.RemainderMask))
//
// # Engine layout
//
// The input is consumed in blocks of U*W elements (W = hwy.MaxLanes[T](),
// U = 1<<UnrollShift). Each of the U accumulator slots owns one W-wide
// sub-block per block, so lane i of slot u sums the strided subsequence
// starting at u*W+i. Whole vectors left after the last block go to slot 0,
// and the final partial vector is handled by the Remainder policy. The U
// slots are merged sequentially into slot 0, the error lanes are summed,
// and the sum lanes are folded one by one with the scalar EFT.
//
// Unroll factor and tail policy change only performance: results for a
// given input agree across configurations to within a rounding of the
// exact sum.
//
// NaN and Inf propagate as IEEE addition defines; they are not detected.
package accsum
