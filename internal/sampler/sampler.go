// Copyright (C) 2024 The PearRay-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sampler implements the engine's low-discrepancy sample generators:
// random, uniform, stratified, Kensler multi-jitter, Halton and Sobol QMC.
// Uniform, multi-jitter, Halton and Sobol are deterministic functions of
// (seed, sample index). Random and Stratified draw from an injected RNG in
// call order, so their values depend on the sequence of calls and not on
// the sample index alone.
package sampler

// Sampler is implemented by every sample generator in this package.
type Sampler interface {
	// Generate1D returns the i-th sample in [0,1).
	Generate1D(i uint32) float32
	// Generate2D returns the i-th sample pair, each in [0,1).
	Generate2D(i uint32) [2]float32
	// Generate3D returns the i-th sample triple, each in [0,1).
	Generate3D(i uint32) [3]float32
}

// GenerateND fills out with lanes [start, start+len(out)) of a 1D sampler's
// sequence, the batched form integrators use to fill a SIMD-width request in
// one call.
func GenerateND(s Sampler, start uint32, out []float32) {
	for i := range out {
		out[i] = s.Generate1D(start + uint32(i))
	}
}

// isqrt returns floor(sqrt(n)) for n >= 0, used by samplers that lay out a 2D
// lattice from a 1D sample count.
func isqrt(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	r := uint32(1)
	for r*r <= n {
		r++
	}
	return r - 1
}
