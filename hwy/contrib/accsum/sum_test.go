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
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/ajroetker/go-accsum/hwy"
	"github.com/ajroetker/go-accsum/internal/accuracy"
)

const (
	eps64 = 0x1p-52
	eps32 = 0x1p-23
)

var widths = []int{16, 32, 64}

// allConfigs enumerates every valid engine configuration.
func allConfigs() []Config {
	var cfgs []Config
	for _, r := range []Remainder{RemainderScalar, RemainderMask} {
		for shift := 0; shift <= MaxUnrollShift; shift++ {
			cfgs = append(cfgs, Config{Remainder: r, UnrollShift: shift})
		}
	}
	return cfgs
}

// forEachWidth runs fn once per supported vector width.
func forEachWidth(t *testing.T, fn func(t *testing.T)) {
	for _, width := range widths {
		t.Run(fmt.Sprintf("width_%d", width), func(t *testing.T) {
			defer hwy.ForceWidth(width)()
			fn(t)
		})
	}
}

type engine[T hwy.Floats] struct {
	name string
	sum  func([]T, Config) T
}

func engines[T hwy.Floats]() []engine[T] {
	return []engine[T]{
		{"kahan", BaseCascadedSum[T, FastTwoSumEFT[T]]},
		{"oro", BaseCascadedSum[T, TwoSumEFT[T]]},
	}
}

// scalarFold is the reference compensated sum: one scalar EFT per element.
func scalarFold[T hwy.Floats, P Primitive[T]](v []T) T {
	var p P
	var s, e T
	for _, x := range v {
		var d T
		s, d = p.Scalar(s, x)
		e += d
	}
	return s + e
}

func TestSumEmpty(t *testing.T) {
	forEachWidth(t, func(t *testing.T) {
		for _, cfg := range allConfigs() {
			for _, eng := range engines[float64]() {
				if got := eng.sum(nil, cfg); got != 0 {
					t.Errorf("%s %v: sum(nil) = %v, want 0", eng.name, cfg, got)
				}
			}
			if got := BaseNaiveSum([]float32{}, cfg); got != 0 {
				t.Errorf("naive %v: sum([]) = %v, want 0", cfg, got)
			}
		}
	})
	if SumKahan[float32](nil) != 0 || SumORO[float64](nil) != 0 || SumNaive[float64](nil) != 0 {
		t.Error("public entry points must return 0 for an empty slice")
	}
}

func TestSumIllConditionedExample(t *testing.T) {
	wiki := []float64{1.0, 1e100, 1.0, -1e100}

	if got := accuracy.Naive(wiki); got != 0 {
		t.Fatalf("naive left-to-right sum = %v, expected the textbook 0", got)
	}
	if got := SumKahan(wiki); got != 2 {
		t.Errorf("SumKahan = %v, want 2", got)
	}
	if got := SumORO(wiki); got != 2 {
		t.Errorf("SumORO = %v, want 2", got)
	}

	// Every ordering of the four values, every configuration, every width.
	perms := [][4]int{}
	for a := range 4 {
		for b := range 4 {
			for c := range 4 {
				for d := range 4 {
					if a != b && a != c && a != d && b != c && b != d && c != d {
						perms = append(perms, [4]int{a, b, c, d})
					}
				}
			}
		}
	}
	forEachWidth(t, func(t *testing.T) {
		input := make([]float64, 4)
		for _, p := range perms {
			for i, idx := range p {
				input[i] = wiki[idx]
			}
			for _, cfg := range allConfigs() {
				for _, eng := range engines[float64]() {
					if got := eng.sum(input, cfg); got != 2 {
						t.Errorf("%s %v %v = %v, want 2", eng.name, cfg, input, got)
					}
				}
			}
		}
	})

	wiki32 := []float32{1, 1e30, 1, -1e30}
	if got := SumKahan(wiki32); got != 2 {
		t.Errorf("SumKahan[float32] = %v, want 2", got)
	}
	if got := SumORO(wiki32); got != 2 {
		t.Errorf("SumORO[float32] = %v, want 2", got)
	}
}

func testShortMatchesScalarFold[T hwy.Floats](t *testing.T) {
	rng := rand.New(rand.NewPCG(23, 29))
	lanes := hwy.MaxLanes[T]()
	for n := 0; n < lanes; n++ {
		v := accuracy.IllConditioned[T](rng, n, 10)
		wantKahan := scalarFold[T, FastTwoSumEFT[T]](v)
		wantORO := scalarFold[T, TwoSumEFT[T]](v)
		for _, cfg := range allConfigs() {
			if got := BaseCascadedSum[T, FastTwoSumEFT[T]](v, cfg); got != wantKahan {
				t.Errorf("n=%d kahan %v = %v, want scalar fold %v", n, cfg, got, wantKahan)
			}
			if got := BaseCascadedSum[T, TwoSumEFT[T]](v, cfg); got != wantORO {
				t.Errorf("n=%d oro %v = %v, want scalar fold %v", n, cfg, got, wantORO)
			}
		}
	}
}

func TestSumShortSequencesMatchScalarFold(t *testing.T) {
	forEachWidth(t, func(t *testing.T) {
		testShortMatchesScalarFold[float64](t)
		testShortMatchesScalarFold[float32](t)
	})
}

func testConfigInvariance[T hwy.Floats](t *testing.T, eps float64) {
	rng := rand.New(rand.NewPCG(31, 37))
	sizes := []int{1, 7, 31, 64, 65, 127, 128, 129, 255, 511, 513, 1000, 1024, 4097}
	for _, n := range sizes {
		v := accuracy.Uniform[T](rng, n)
		exact := accuracy.ExactSum(v)
		for _, eng := range engines[T]() {
			ref := eng.sum(v, DefaultConfig())
			for _, cfg := range allConfigs() {
				got := eng.sum(v, cfg)
				if relErr := accuracy.RelErr(got, exact); relErr > 2*eps {
					t.Errorf("n=%d %s %v: relative error %g > %g", n, eng.name, cfg, relErr, 2*eps)
				}
				if d := math.Abs(float64(got) - float64(ref)); d > 2*eps*math.Abs(float64(ref)) {
					t.Errorf("n=%d %s %v = %v, default config gave %v", n, eng.name, cfg, got, ref)
				}
			}
		}
	}
}

func TestSumConfigInvariance(t *testing.T) {
	forEachWidth(t, func(t *testing.T) {
		testConfigInvariance[float64](t, eps64)
		testConfigInvariance[float32](t, eps32)
	})
}

// twoSumByMethod is TwoSum behind a Primitive that is not one of the
// package's own, so BaseCascadedSum takes the generic body.
type twoSumByMethod[T hwy.Floats] struct{}

func (twoSumByMethod[T]) Scalar(a, b T) (T, T) { return TwoSum(a, b) }

func (twoSumByMethod[T]) Vec(a, b hwy.Vec[T]) (hwy.Vec[T], hwy.Vec[T]) { return TwoSumVec(a, b) }

func testSpecializedMatchesGeneric[T hwy.Floats](t *testing.T) {
	rng := rand.New(rand.NewPCG(53, 59))
	lanes := hwy.MaxLanes[T]()
	sizes := []int{0, 1, lanes - 1, lanes, 4*lanes - 1, 4 * lanes, 4*lanes + 1, 33*lanes + 3, 1000, 4097}
	for _, n := range sizes {
		v := accuracy.IllConditioned[T](rng, n, 20)
		for _, cfg := range allConfigs() {
			want := cascadeGeneric[T, TwoSumEFT[T]](v, cfg)
			if got := cascadeTwoSum(v, cfg); got != want {
				t.Errorf("n=%d %v: cascadeTwoSum = %v, generic body = %v", n, cfg, got, want)
			}
			if got := BaseCascadedSum[T, twoSumByMethod[T]](v, cfg); got != want {
				t.Errorf("n=%d %v: custom primitive = %v, generic body = %v", n, cfg, got, want)
			}

			want = cascadeGeneric[T, FastTwoSumEFT[T]](v, cfg)
			if got := cascadeFastTwoSum(v, cfg); got != want {
				t.Errorf("n=%d %v: cascadeFastTwoSum = %v, generic body = %v", n, cfg, got, want)
			}
		}
		if got, want := cascadeTwoSumU4(v), cascadeGeneric[T, TwoSumEFT[T]](v, DefaultConfig()); got != want {
			t.Errorf("n=%d: cascadeTwoSumU4 = %v, generic body = %v", n, got, want)
		}
		if got, want := cascadeFastTwoSumU4(v), cascadeGeneric[T, FastTwoSumEFT[T]](v, DefaultConfig()); got != want {
			t.Errorf("n=%d: cascadeFastTwoSumU4 = %v, generic body = %v", n, got, want)
		}
	}
}

func TestSpecializedEnginesMatchGeneric(t *testing.T) {
	forEachWidth(t, func(t *testing.T) {
		testSpecializedMatchesGeneric[float64](t)
		testSpecializedMatchesGeneric[float32](t)
	})
}

func TestSumDoesNotAllocate(t *testing.T) {
	v := accuracy.Uniform[float64](rand.New(rand.NewPCG(41, 43)), 1000)
	for _, cfg := range allConfigs() {
		if cfg.Unroll() > smallUnroll {
			continue
		}
		for _, eng := range engines[float64]() {
			allocs := testing.AllocsPerRun(20, func() { eng.sum(v, cfg) })
			if allocs != 0 {
				t.Errorf("%s %v: %v allocations per call, want 0", eng.name, cfg, allocs)
			}
		}
	}
}

func testBeatsNaive[T hwy.Floats](t *testing.T, n, spread int, eps float64) {
	rng := rand.New(rand.NewPCG(41, 43))
	for trial := range 3 {
		v := accuracy.IllConditioned[T](rng, n, spread)
		exact := accuracy.ExactSum(v)
		naiveErr := accuracy.RelErr(accuracy.Naive(v), exact)

		// Permutations of the same multiset stay within the bound too.
		for perm := range 2 {
			if perm > 0 {
				rng.Shuffle(len(v), func(i, j int) { v[i], v[j] = v[j], v[i] })
			}
			for _, eng := range engines[T]() {
				for _, cfg := range allConfigs() {
					got := accuracy.RelErr(eng.sum(v, cfg), exact)
					if got > naiveErr/10 && got > 4*eps {
						t.Errorf("trial %d perm %d %s %v: relative error %g, naive %g (cond %g)",
							trial, perm, eng.name, cfg, got, naiveErr, accuracy.Condition(v))
					}
				}
			}
		}
	}
}

func TestSumBeatsNaive(t *testing.T) {
	forEachWidth(t, func(t *testing.T) {
		testBeatsNaive[float64](t, 4000, 40, eps64)
		testBeatsNaive[float32](t, 2000, 10, eps32)
	})
}

func testNegatedCancels[T hwy.Floats](t *testing.T, n int, eps float64) {
	rng := rand.New(rand.NewPCG(47, 53))
	v := accuracy.Negated(accuracy.Uniform[T](rng, n))
	for _, eng := range engines[T]() {
		for _, cfg := range allConfigs() {
			if got := eng.sum(v, cfg); math.Abs(float64(got)) > 4*eps {
				t.Errorf("n=%d %s %v: sum(v ++ -v) = %g, want ~0", n, eng.name, cfg, got)
			}
		}
	}
}

func TestSumNegatedCancels(t *testing.T) {
	forEachWidth(t, func(t *testing.T) {
		for _, n := range []int{1, 5, 16, 33, 100, 1000} {
			testNegatedCancels[float64](t, n, eps64)
		}
		for _, n := range []int{1, 5, 16, 33, 100} {
			testNegatedCancels[float32](t, n, eps32)
		}
	})
}

func TestSumNonFinitePropagates(t *testing.T) {
	tests := []struct {
		name string
		v    []float64
	}{
		{"nan", []float64{1, math.NaN(), 2}},
		{"inf", []float64{1, math.Inf(1), 2}},
		{"overflow", []float64{math.MaxFloat64, math.MaxFloat64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, eng := range engines[float64]() {
				for _, cfg := range allConfigs() {
					got := eng.sum(tt.v, cfg)
					if !math.IsNaN(got) && !math.IsInf(got, 0) {
						t.Errorf("%s %v = %v, want a non-finite result", eng.name, cfg, got)
					}
				}
			}
		})
	}
}

func TestSumNaive(t *testing.T) {
	forEachWidth(t, func(t *testing.T) {
		for _, cfg := range allConfigs() {
			for _, n := range []int{1, 3, 17, 100, 1031} {
				v := make([]float64, n)
				for i := range v {
					v[i] = float64(i + 1)
				}
				// Small integers add exactly in any order.
				if got, want := BaseNaiveSum(v, cfg), float64(n*(n+1)/2); got != want {
					t.Errorf("naive %v n=%d = %v, want %v", cfg, n, got, want)
				}
			}
		}
	})
	if got := SumNaive([]float32{0.5, 1.5, 2}); got != 4 {
		t.Errorf("SumNaive = %v, want 4", got)
	}
}

func TestInvalidConfigPanics(t *testing.T) {
	for _, cfg := range []Config{
		{UnrollShift: -1},
		{UnrollShift: MaxUnrollShift + 1},
		{UnrollShift: 63},
		{Remainder: Remainder(7)},
	} {
		func() {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !(errors.Is(err, ErrInvalidUnrollShift) || errors.Is(err, ErrInvalidRemainder)) {
					t.Errorf("%v: recovered %v, want a config error", cfg, r)
				}
			}()
			Cascaded[float64, TwoSumEFT[float64]]([]float64{1, 2, 3}, cfg)
		}()
	}
}

func TestConfig(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig invalid: %v", err)
	}
	if got := DefaultConfig().Unroll(); got != 4 {
		t.Errorf("default Unroll() = %d, want 4", got)
	}
	if err := (Config{}).Validate(); err != nil {
		t.Errorf("zero Config invalid: %v", err)
	}
	if got := (Config{Remainder: RemainderMask, UnrollShift: 3}).String(); got != "remainder=mask,shift=3" {
		t.Errorf("String() = %q", got)
	}
	if err := (Config{UnrollShift: 6}).Validate(); !errors.Is(err, ErrInvalidUnrollShift) {
		t.Errorf("shift 6: err = %v, want ErrInvalidUnrollShift", err)
	}
	if err := (Config{Remainder: -1}).Validate(); !errors.Is(err, ErrInvalidRemainder) {
		t.Errorf("remainder -1: err = %v, want ErrInvalidRemainder", err)
	}
}

func TestParseRemainder(t *testing.T) {
	for _, r := range []Remainder{RemainderScalar, RemainderMask} {
		got, err := ParseRemainder(r.String())
		if err != nil || got != r {
			t.Errorf("ParseRemainder(%q) = %v, %v", r.String(), got, err)
		}
	}
	if _, err := ParseRemainder("vector"); !errors.Is(err, ErrInvalidRemainder) {
		t.Errorf("ParseRemainder(vector): err = %v, want ErrInvalidRemainder", err)
	}
	if got := Remainder(9).String(); got != "Remainder(9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestNew(t *testing.T) {
	s, err := New[float64, TwoSumEFT[float64]](WithUnrollShift(5), WithRemainder(RemainderMask))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Config(); got != (Config{Remainder: RemainderMask, UnrollShift: 5}) {
		t.Errorf("Config() = %v", got)
	}

	v := accuracy.Uniform[float64](rand.New(rand.NewPCG(59, 61)), 777)
	want := Cascaded[float64, TwoSumEFT[float64]](v, s.Config())

	var wg sync.WaitGroup
	results := make([]float64, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.Sum(v)
		}()
	}
	wg.Wait()
	for i, got := range results {
		if got != want {
			t.Errorf("goroutine %d: Sum = %v, want %v", i, got, want)
		}
	}

	if _, err := New[float32, FastTwoSumEFT[float32]](WithUnrollShift(6)); !errors.Is(err, ErrInvalidUnrollShift) {
		t.Errorf("New(shift 6): err = %v, want ErrInvalidUnrollShift", err)
	}
	if _, err := New[float32, FastTwoSumEFT[float32]](WithRemainder(Remainder(3))); !errors.Is(err, ErrInvalidRemainder) {
		t.Errorf("New(remainder 3): err = %v, want ErrInvalidRemainder", err)
	}
}

func BenchmarkSum(b *testing.B) {
	sizes := []int{16, 256, 4096, 65536}

	for _, size := range sizes {
		v := accuracy.Uniform[float64](rand.New(rand.NewPCG(1, uint64(size))), size)
		kernels := []struct {
			name string
			fn   func([]float64) float64
		}{
			{"naive", SumNaive[float64]},
			{"kahan", SumKahan[float64]},
			{"oro", SumORO[float64]},
		}
		for _, k := range kernels {
			b.Run(fmt.Sprintf("%s/size_%d", k.name, size), func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(size * 8))
				var result float64
				for i := 0; i < b.N; i++ {
					result = k.fn(v)
				}
				_ = result
			})
		}
	}
}

func BenchmarkUnroll(b *testing.B) {
	v := accuracy.Uniform[float32](rand.New(rand.NewPCG(2, 3)), 10007)
	for _, cfg := range allConfigs() {
		b.Run(cfg.String(), func(b *testing.B) {
			b.ReportAllocs()
			var result float32
			for i := 0; i < b.N; i++ {
				result = Cascaded[float32, TwoSumEFT[float32]](v, cfg)
			}
			_ = result
		})
	}
}
