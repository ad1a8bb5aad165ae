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

// Command accsumbench times the summation kernels on a random vector and
// reports their relative error against the exact sum.
//
// Usage:
//
//	accsumbench -n 1000000 --type f64 --spread 40
//	accsumbench -n 4096 --type f32 --unroll-shift 3 --remainder mask
//
// With --spread 0 the input is uniform in [0, 1); otherwise it is an
// ill-conditioned vector whose cancelling pairs have binary exponents in
// [-spread, spread].
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
