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

package sampler

// RNG is the minimal random source every sampler in this package can be
// driven by. Of a tile's four samplers, the lens (Stratified) and spectral
// (Sobol) samplers each own an independent RNG seeded from the per-tile
// seed; the AA multi-jitter sampler takes the seed directly and the Halton
// time sampler is unseeded.
type RNG interface {
	Uint32() uint32
	Float32() float32
}

// splitMix64 is a small, fast, well-distributed RNG used to derive per-tile
// seeds and to drive the Random sampler. It is deterministic in (seed).
type splitMix64 struct{ state uint64 }

// NewRNG returns a deterministic RNG seeded by seed.
func NewRNG(seed uint64) RNG {
	return &splitMix64{state: seed}
}

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (s *splitMix64) Uint32() uint32 {
	return uint32(s.next() >> 32)
}

func (s *splitMix64) Float32() float32 {
	// 24 bits of mantissa precision, matching the granularity float32 can
	// actually represent in [0,1).
	return float32(s.Uint32()>>8) / float32(1<<24)
}

// Random is the independent-uniform sampler: every call draws fresh entropy
// from the injected RNG, ignoring the sample index.
type Random struct {
	rng RNG
}

// NewRandom returns a Random sampler drawing from rng.
func NewRandom(rng RNG) *Random { return &Random{rng: rng} }

func (r *Random) Generate1D(uint32) float32 {
	return r.rng.Float32()
}

func (r *Random) Generate2D(uint32) [2]float32 {
	return [2]float32{r.rng.Float32(), r.rng.Float32()}
}

func (r *Random) Generate3D(uint32) [3]float32 {
	return [3]float32{r.rng.Float32(), r.rng.Float32(), r.rng.Float32()}
}
