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
)

// Remainder selects how the final partial vector (fewer than W elements) is summed.
type Remainder int

const (
	// RemainderScalar folds the leftover elements one at a time with the
	// scalar EFT after the lanes have been reduced. Portable default.
	RemainderScalar Remainder = iota

	// RemainderMask loads the leftover elements with one masked vector load
	// (inactive lanes read as +0) and folds them into accumulator slot 0.
	RemainderMask
)

// String returns the flag spelling of the policy.
func (r Remainder) String() string {
	switch r {
	case RemainderScalar:
		return "scalar"
	case RemainderMask:
		return "mask"
	default:
		return fmt.Sprintf("Remainder(%d)", int(r))
	}
}

// ParseRemainder parses "scalar" or "mask".
func ParseRemainder(s string) (Remainder, error) {
	switch s {
	case "scalar":
		return RemainderScalar, nil
	case "mask":
		return RemainderMask, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRemainder, s)
}

const (
	// MaxUnrollShift is the largest accepted UnrollShift (U = 32).
	MaxUnrollShift = 5

	// MaxUnroll is the largest unroll factor.
	MaxUnroll = 1 << MaxUnrollShift

	// DefaultUnrollShift gives U = 4 accumulator chains.
	DefaultUnrollShift = 2
)

var (
	// ErrInvalidUnrollShift is returned for an UnrollShift outside [0, MaxUnrollShift].
	ErrInvalidUnrollShift = errors.New("accsum: unroll shift out of range")

	// ErrInvalidRemainder is returned for an unknown Remainder policy.
	ErrInvalidRemainder = errors.New("accsum: unknown remainder policy")
)

// Config holds the per-call engine parameters. The zero Config is valid:
// scalar tail, U = 1. Use DefaultConfig for the tuned default.
type Config struct {
	// Remainder is the policy for the final partial vector.
	Remainder Remainder

	// UnrollShift encodes the number of independent accumulator chains,
	// U = 1 << UnrollShift. Must be in [0, MaxUnrollShift].
	UnrollShift int
}

// DefaultConfig returns the scalar tail policy with 4 accumulator chains.
func DefaultConfig() Config {
	return Config{Remainder: RemainderScalar, UnrollShift: DefaultUnrollShift}
}

// Unroll returns the unroll factor U. Only meaningful on a valid Config.
func (c Config) Unroll() int {
	return 1 << c.UnrollShift
}

// Validate reports whether the configuration can be run.
func (c Config) Validate() error {
	if c.UnrollShift < 0 || c.UnrollShift > MaxUnrollShift {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidUnrollShift, c.UnrollShift, MaxUnrollShift)
	}
	switch c.Remainder {
	case RemainderScalar, RemainderMask:
	default:
		return fmt.Errorf("%w: %v", ErrInvalidRemainder, c.Remainder)
	}
	return nil
}

// String formats the configuration as "remainder=scalar,shift=2".
func (c Config) String() string {
	return fmt.Sprintf("remainder=%s,shift=%d", c.Remainder, c.UnrollShift)
}

// Option adjusts a Config passed to New.
type Option func(*Config)

// WithRemainder sets the tail policy.
func WithRemainder(r Remainder) Option {
	return func(c *Config) { c.Remainder = r }
}

// WithUnrollShift sets U = 1 << shift.
func WithUnrollShift(shift int) Option {
	return func(c *Config) { c.UnrollShift = shift }
}
