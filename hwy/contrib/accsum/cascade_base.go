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

// BaseCascadedSum computes the compensated sum of v with the EFT primitive P.
//
// cfg is validated before any element is read; an invalid cfg is a
// programming error and panics. Returns 0 for an empty slice.
//
// Accumulation runs U = cfg.Unroll() independent (sum, error) vector chains
// over blocks of U*W elements. Each chain updates its sum with P and adds the
// residual to its error vector with ordinary addition.
//
// TwoSumEFT and FastTwoSumEFT run hand-specialized copies of the engine
// (cascade_twosum.go, cascade_fasttwosum.go) with the EFT called directly;
// the primitive is chosen once per call, outside the loops. Other Primitive
// implementations run the generic body below.
func BaseCascadedSum[T hwy.Floats, P Primitive[T]](v []T, cfg Config) T {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	var eft P
	switch any(eft).(type) {
	case TwoSumEFT[T]:
		return cascadeTwoSum(v, cfg)
	case FastTwoSumEFT[T]:
		return cascadeFastTwoSum(v, cfg)
	}
	return cascadeGeneric[T, P](v, cfg)
}

// smallUnroll is the largest U whose accumulator slots live in a fixed
// stack buffer; larger U allocates them.
const smallUnroll = 4

// cascadeGeneric is the engine with the EFT called through P. cfg must be
// valid.
func cascadeGeneric[T hwy.Floats, P Primitive[T]](v []T, cfg Config) T {
	var eft P
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

	// Main loop: slot u owns v[i+u*W : i+(u+1)*W] of every block.
	i := 0
	for ; i+block <= n; i += block {
		blk := v[i : i+block]
		for u := range unroll {
			x := hwy.Load(blk[u*lanes : (u+1)*lanes])
			var e hwy.Vec[T]
			sums[u], e = eft.Vec(sums[u], x)
			errs[u] = hwy.Add(errs[u], e)
		}
	}

	// Whole vectors that did not fill a block go to slot 0.
	for ; i+lanes <= n; i += lanes {
		x := hwy.Load(v[i : i+lanes])
		var e hwy.Vec[T]
		sums[0], e = eft.Vec(sums[0], x)
		errs[0] = hwy.Add(errs[0], e)
	}

	if cfg.Remainder == RemainderMask && i < n {
		x := hwy.MaskLoad(hwy.TailMask[T](n-i), v[i:n])
		var e hwy.Vec[T]
		sums[0], e = eft.Vec(sums[0], x)
		errs[0] = hwy.Add(errs[0], e)
		i = n
	}

	// Merge slots into slot 0 in order; slot 0 carries the running result.
	for u := 1; u < unroll; u++ {
		var e hwy.Vec[T]
		sums[0], e = eft.Vec(sums[0], sums[u])
		errs[0] = hwy.Add(errs[0], errs[u])
		errs[0] = hwy.Add(errs[0], e)
	}

	// Lane reduction: the error lanes are summed plainly, the sum lanes are
	// folded with the scalar EFT.
	var s T
	e := hwy.ReduceSum(errs[0])
	for l := range lanes {
		var d T
		s, d = eft.Scalar(s, hwy.GetLane(sums[0], l))
		e += d
	}

	// Scalar remainder, if the mask policy did not consume it.
	for _, x := range v[i:] {
		var d T
		s, d = eft.Scalar(s, x)
		e += d
	}

	return s + e
}

// BaseNaiveSum sums v with plain vector addition over the same U*W block
// layout and tail policy as BaseCascadedSum. It is the accuracy baseline the
// compensated sums are measured against.
func BaseNaiveSum[T hwy.Floats](v []T, cfg Config) T {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	n := len(v)
	lanes := hwy.MaxLanes[T]()
	unroll := cfg.Unroll()
	block := unroll * lanes

	var small [smallUnroll]hwy.Vec[T]
	sums := small[:]
	if unroll > smallUnroll {
		sums = make([]hwy.Vec[T], unroll)
	}
	for u := range unroll {
		sums[u] = hwy.Zero[T]()
	}

	i := 0
	for ; i+block <= n; i += block {
		blk := v[i : i+block]
		for u := range unroll {
			sums[u] = hwy.Add(sums[u], hwy.Load(blk[u*lanes:(u+1)*lanes]))
		}
	}
	for u := 1; u < unroll; u++ {
		sums[0] = hwy.Add(sums[0], sums[u])
	}

	acc := sums[0]
	tail := n
	hwy.ProcessWithTail[T](n-i,
		func(offset int) {
			acc = hwy.Add(acc, hwy.Load(v[i+offset:n]))
		},
		func(offset, count int) {
			if cfg.Remainder == RemainderMask {
				acc = hwy.Add(acc, hwy.MaskLoad(hwy.TailMask[T](count), v[i+offset:n]))
				return
			}
			tail = i + offset
		},
	)

	sum := hwy.ReduceSum(acc)
	for _, x := range v[tail:] {
		sum += x
	}
	return sum
}
