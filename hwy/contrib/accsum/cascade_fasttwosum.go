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

import "github.com/ajroetker/go-accsum/hwy"

// cascadeFastTwoSum is BaseCascadedSum specialized for FastTwoSum, so every
// EFT in the loops is a direct call. cfg must be valid.
func cascadeFastTwoSum[T hwy.Floats](v []T, cfg Config) T {
	if cfg == DefaultConfig() {
		return cascadeFastTwoSumU4(v)
	}

	n := len(v)
	lanes := hwy.MaxLanes[T]()
	unroll := cfg.Unroll()
	block := unroll * lanes

	var small [2 * smallUnroll]hwy.Vec[T]
	var sums, errs []hwy.Vec[T]
	if unroll <= smallUnroll {
		sums, errs = small[:unroll], small[smallUnroll:smallUnroll+unroll]
	} else {
		buf := make([]hwy.Vec[T], 2*unroll)
		sums, errs = buf[:unroll], buf[unroll:]
	}
	for u := range unroll {
		sums[u] = hwy.Zero[T]()
		errs[u] = hwy.Zero[T]()
	}

	i := 0
	for ; i+block <= n; i += block {
		blk := v[i : i+block]
		for u := range unroll {
			x := hwy.Load(blk[u*lanes : (u+1)*lanes])
			var e hwy.Vec[T]
			sums[u], e = FastTwoSumVec(sums[u], x)
			errs[u] = hwy.Add(errs[u], e)
		}
	}

	for ; i+lanes <= n; i += lanes {
		var e hwy.Vec[T]
		sums[0], e = FastTwoSumVec(sums[0], hwy.Load(v[i:i+lanes]))
		errs[0] = hwy.Add(errs[0], e)
	}

	if cfg.Remainder == RemainderMask && i < n {
		var e hwy.Vec[T]
		sums[0], e = FastTwoSumVec(sums[0], hwy.MaskLoad(hwy.TailMask[T](n-i), v[i:n]))
		errs[0] = hwy.Add(errs[0], e)
		i = n
	}

	for u := 1; u < unroll; u++ {
		var e hwy.Vec[T]
		sums[0], e = FastTwoSumVec(sums[0], sums[u])
		errs[0] = hwy.Add(errs[0], errs[u])
		errs[0] = hwy.Add(errs[0], e)
	}

	var s T
	e := hwy.ReduceSum(errs[0])
	for l := range lanes {
		var d T
		s, d = FastTwoSum(s, hwy.GetLane(sums[0], l))
		e += d
	}
	for _, x := range v[i:] {
		var d T
		s, d = FastTwoSum(s, x)
		e += d
	}
	return s + e
}

// cascadeFastTwoSumU4 is cascadeFastTwoSum for DefaultConfig: four accumulator
// chains held in locals and a scalar tail.
func cascadeFastTwoSumU4[T hwy.Floats](v []T) T {
	n := len(v)
	lanes := hwy.MaxLanes[T]()
	block := 4 * lanes

	s0, s1, s2, s3 := hwy.Zero[T](), hwy.Zero[T](), hwy.Zero[T](), hwy.Zero[T]()
	e0, e1, e2, e3 := hwy.Zero[T](), hwy.Zero[T](), hwy.Zero[T](), hwy.Zero[T]()

	i := 0
	for ; i+block <= n; i += block {
		blk := v[i : i+block]
		var d0, d1, d2, d3 hwy.Vec[T]
		s0, d0 = FastTwoSumVec(s0, hwy.Load(blk[:lanes]))
		s1, d1 = FastTwoSumVec(s1, hwy.Load(blk[lanes:2*lanes]))
		s2, d2 = FastTwoSumVec(s2, hwy.Load(blk[2*lanes:3*lanes]))
		s3, d3 = FastTwoSumVec(s3, hwy.Load(blk[3*lanes:]))
		e0 = hwy.Add(e0, d0)
		e1 = hwy.Add(e1, d1)
		e2 = hwy.Add(e2, d2)
		e3 = hwy.Add(e3, d3)
	}

	for ; i+lanes <= n; i += lanes {
		var d hwy.Vec[T]
		s0, d = FastTwoSumVec(s0, hwy.Load(v[i:i+lanes]))
		e0 = hwy.Add(e0, d)
	}

	var d hwy.Vec[T]
	s0, d = FastTwoSumVec(s0, s1)
	e0 = hwy.Add(hwy.Add(e0, e1), d)
	s0, d = FastTwoSumVec(s0, s2)
	e0 = hwy.Add(hwy.Add(e0, e2), d)
	s0, d = FastTwoSumVec(s0, s3)
	e0 = hwy.Add(hwy.Add(e0, e3), d)

	var s T
	e := hwy.ReduceSum(e0)
	for l := range lanes {
		var r T
		s, r = FastTwoSum(s, hwy.GetLane(s0, l))
		e += r
	}
	for _, x := range v[i:] {
		var r T
		s, r = FastTwoSum(s, x)
		e += r
	}
	return s + e
}
