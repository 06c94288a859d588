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

// Halton is a quasi-Monte-Carlo sampler evaluating the radical inverse on
// fixed prime bases. It is restartable (no internal state beyond the sample
// index) and works for both a finite pass budget and an unbounded one.
type Halton struct {
	basesFor2D [2]uint32
	basesFor3D [3]uint32
}

// DefaultHaltonBases are the three bases the engine uses by default across
// the 1D/2D/3D generators.
var DefaultHaltonBases = [3]uint32{13, 47, 89}

// NewHalton returns a Halton sampler using DefaultHaltonBases, one prime
// base per axis.
func NewHalton() *Halton {
	return &Halton{
		basesFor2D: [2]uint32{DefaultHaltonBases[0], DefaultHaltonBases[1]},
		basesFor3D: [3]uint32{DefaultHaltonBases[0], DefaultHaltonBases[1], DefaultHaltonBases[2]},
	}
}

func radicalInverse(i uint32, base uint32) float32 {
	invBase := 1.0 / float32(base)
	var result float32
	f := invBase
	for i > 0 {
		result += f * float32(i%base)
		i /= base
		f *= invBase
	}
	return result
}

func (h *Halton) Generate1D(i uint32) float32 {
	return radicalInverse(i+1, h.basesFor2D[0])
}

func (h *Halton) Generate2D(i uint32) [2]float32 {
	return [2]float32{
		radicalInverse(i+1, h.basesFor3D[0]),
		radicalInverse(i+1, h.basesFor3D[1]),
	}
}

func (h *Halton) Generate3D(i uint32) [3]float32 {
	return [3]float32{
		radicalInverse(i+1, h.basesFor3D[0]),
		radicalInverse(i+1, h.basesFor3D[1]),
		radicalInverse(i+1, h.basesFor3D[2]),
	}
}
