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

// Package accuracy provides the reference arithmetic and test vectors used to
// measure summation kernels: an exact sum, relative error against it, and
// generators for well- and ill-conditioned inputs.
//
// Nothing in hwy or its contrib packages depends on this package.
package accuracy

import (
	"math"
	"math/big"
	"math/rand/v2"
	"unsafe"

	"github.com/samber/lo"
	"golang.org/x/exp/constraints"

	"github.com/ajroetker/go-accsum/hwy/contrib/workerpool"
)

// exactPrec is wide enough to hold the sum of any realistic number of finite
// float64 values without rounding: 2098 bits span the float64 exponent range
// and the rest absorbs carries.
const exactPrec = 2300

// exactChunk is the number of elements ExactSumPool folds into one partial.
const exactChunk = 1 << 14

// ExactSum returns the exact sum of v. Inputs must be finite.
func ExactSum[T constraints.Float](v []T) *big.Float {
	sum := new(big.Float).SetPrec(exactPrec)
	x := new(big.Float).SetPrec(exactPrec)
	for _, f := range v {
		x.SetFloat64(float64(f))
		sum.Add(sum, x)
	}
	return sum
}

// ExactSumPool is ExactSum with chunks of v summed concurrently on pool.
// Every partial is exact, so the result equals ExactSum(v) for any pool,
// including nil.
func ExactSumPool[T constraints.Float](pool *workerpool.Pool, v []T) *big.Float {
	partial := make([]*big.Float, workerpool.Chunks(len(v), exactChunk))
	pool.ForEachChunk(len(v), exactChunk, func(c, start, end int) {
		partial[c] = ExactSum(v[start:end])
	})
	sum := new(big.Float).SetPrec(exactPrec)
	for _, p := range partial {
		sum.Add(sum, p)
	}
	return sum
}

// RelErr returns |got - exact| / |exact|, or |got| when exact is zero.
// Returns +Inf if got is not finite.
func RelErr[T constraints.Float](got T, exact *big.Float) float64 {
	g := float64(got)
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return math.Inf(1)
	}
	diff := new(big.Float).SetPrec(exactPrec).SetFloat64(g)
	diff.Sub(diff, exact)
	diff.Abs(diff)
	if exact.Sign() != 0 {
		diff.Quo(diff, new(big.Float).SetPrec(exactPrec).Abs(exact))
	}
	f, _ := diff.Float64()
	return f
}

// Condition returns the condition number of the sum of v:
// sum(|v_i|) / |sum(v_i)|, or +Inf for an exactly zero sum.
func Condition[T constraints.Float](v []T) float64 {
	return ConditionPool(nil, v)
}

// ConditionPool is Condition with the exact sums computed on pool.
func ConditionPool[T constraints.Float](pool *workerpool.Pool, v []T) float64 {
	exact := ExactSumPool(pool, v)
	if exact.Sign() == 0 {
		return math.Inf(1)
	}
	abs := ExactSumPool(pool, lo.Map(v, func(x T, _ int) T { return T(math.Abs(float64(x))) }))
	c, _ := new(big.Float).SetPrec(exactPrec).Quo(abs, exact.Abs(exact)).Float64()
	return c
}

// Naive returns the left-to-right sum of v with ordinary addition.
func Naive[T constraints.Float](v []T) T {
	var s T
	for _, x := range v {
		s += x
	}
	return s
}

// Uniform returns n values drawn uniformly from [0, 1).
func Uniform[T constraints.Float](rng *rand.Rand, n int) []T {
	return lo.Times(n, func(int) T { return T(rng.Float64()) })
}

// MaxSpread is the largest exponent spread IllConditioned accepts for T:
// every generated magnitude stays finite after rounding to T.
func MaxSpread[T constraints.Float]() int {
	var x T
	if unsafe.Sizeof(x) == 4 {
		return 126
	}
	return 1022
}

// IllConditioned returns n shuffled values whose exact sum is small relative
// to the sum of their magnitudes.
//
// Roughly 90% of the values come in pairs x, -x with random sign and binary
// exponents spread over [-spread, spread]; the pairs cancel exactly and only
// the remaining values in [0.5, 1) survive in the exact sum, which is
// therefore positive for n >= 1. Larger spread means a worse condition number.
// spread is clamped to [0, MaxSpread[T]()].
func IllConditioned[T constraints.Float](rng *rand.Rand, n, spread int) []T {
	spread = min(max(spread, 0), MaxSpread[T]())
	v := make([]T, 0, n)
	pairs := (n - max(1, n/10)) / 2
	for range pairs {
		x := T(math.Ldexp(1+rng.Float64(), rng.IntN(2*spread+1)-spread))
		if rng.IntN(2) == 0 {
			x = -x
		}
		v = append(v, x, -x)
	}
	for len(v) < n {
		v = append(v, T(0.5+rng.Float64()/2))
	}
	rng.Shuffle(len(v), func(i, j int) { v[i], v[j] = v[j], v[i] })
	return v
}

// Negated returns v followed by its elementwise negation; its exact sum is 0.
func Negated[T constraints.Float](v []T) []T {
	return append(append(make([]T, 0, 2*len(v)), v...), lo.Map(v, func(x T, _ int) T { return -x })...)
}
