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

// Package contrib groups the kernels built on the hwy vector API.
//
// # Subpackages
//
//   - accsum: compensated (error-free) summation with unrolled vector
//     accumulators, plus a plain vectorized baseline
//   - workerpool: persistent goroutine pool for chunked reductions that
//     run outside the kernels, such as exact reference sums
//
// # Compensated Summation (hwy/contrib/accsum)
//
//	import "github.com/ajroetker/go-accsum/hwy/contrib/accsum"
//
//	total := accsum.SumORO(data)   // TwoSum, any operand order
//	total = accsum.SumKahan(data)  // FastTwoSum, magnitude-ordered operands
//
// The kernels are single-threaded: all parallelism is across the lanes of
// one vector register and across the unrolled accumulator chains.
package contrib
