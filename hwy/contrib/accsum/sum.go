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

// SumKahan returns the compensated (Kahan-Babuška) sum of v, using
// FastTwoSum with the default configuration.
//
// Example:
//
//	data := []float64{1.0, 1e100, 1.0, -1e100}
//	result := SumKahan(data)  // 2, where naive addition gives 0
func SumKahan[T hwy.Floats](v []T) T {
	return BaseCascadedSum[T, FastTwoSumEFT[T]](v, DefaultConfig())
}

// SumORO returns the Ogita-Rump-Oishi cascaded sum of v, using TwoSum with
// the default configuration.
func SumORO[T hwy.Floats](v []T) T {
	return BaseCascadedSum[T, TwoSumEFT[T]](v, DefaultConfig())
}

// SumNaive returns the plain vectorized sum of v with the default
// configuration. It carries no compensation and serves as a baseline.
func SumNaive[T hwy.Floats](v []T) T {
	return BaseNaiveSum(v, DefaultConfig())
}

// Cascaded runs the cascaded engine with an explicit primitive and
// configuration. Panics if cfg is invalid.
func Cascaded[T hwy.Floats, P Primitive[T]](v []T, cfg Config) T {
	return BaseCascadedSum[T, P](v, cfg)
}

// Summer is a validated engine configuration bound to one element type and
// EFT primitive. It is immutable and safe for concurrent use.
type Summer[T hwy.Floats] struct {
	cfg Config
	sum func([]T, Config) T
}

// New returns a Summer for primitive P with DefaultConfig adjusted by opts.
// It returns an error wrapping ErrInvalidUnrollShift or ErrInvalidRemainder
// if the resulting configuration is invalid.
//
// Example:
//
//	s, err := accsum.New[float32, accsum.TwoSumEFT[float32]](accsum.WithUnrollShift(3))
//	if err != nil {
//	    return err
//	}
//	total := s.Sum(data)
func New[T hwy.Floats, P Primitive[T]](opts ...Option) (*Summer[T], error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Summer[T]{cfg: cfg, sum: BaseCascadedSum[T, P]}, nil
}

// Sum returns the compensated sum of v.
func (s *Summer[T]) Sum(v []T) T {
	return s.sum(v, s.cfg)
}

// Config returns the configuration the Summer was built with.
func (s *Summer[T]) Config() Config {
	return s.cfg
}
