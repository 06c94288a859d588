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

// Stratified splits [0,1) into N strata in 1D and jitters within each; 2D
// uses a separable sqrt(N) x sqrt(N) grid with uncorrelated jitter per axis.
type Stratified struct {
	count uint32
	rng   RNG
}

// NewStratified returns a Stratified sampler over count strata, jittered by rng.
func NewStratified(count uint32, rng RNG) *Stratified {
	return &Stratified{count: count, rng: rng}
}

func (s *Stratified) Generate1D(i uint32) float32 {
	n := s.count
	if n == 0 {
		n = 1
	}
	return (float32(i%n) + s.rng.Float32()) / float32(n)
}

func (s *Stratified) Generate2D(i uint32) [2]float32 {
	n := isqrt(s.count)
	if n == 0 {
		n = 1
	}
	x := i % n
	y := (i / n) % n
	return [2]float32{
		(float32(x) + s.rng.Float32()) / float32(n),
		(float32(y) + s.rng.Float32()) / float32(n),
	}
}

func (s *Stratified) Generate3D(i uint32) [3]float32 {
	xy := s.Generate2D(i)
	return [3]float32{xy[0], xy[1], s.Generate1D(i)}
}
