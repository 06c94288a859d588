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

// Package spectral implements the engine's hero-wavelength spectral
// representation and the Jakob-Hanika parametric spectral upsampler.
package spectral

// Blob is a fixed-size quartet of radiometric samples, one per wavelength of
// the carrying ray's hero-wavelength quartet. Every radiometric quantity in
// the engine is a Blob; RGB conversion only happens at output write time.
type Blob [4]float32

// Wavelengths is the hero-wavelength quartet a Blob is indexed by.
type Wavelengths [4]float32

func (b Blob) Add(o Blob) Blob {
	return Blob{b[0] + o[0], b[1] + o[1], b[2] + o[2], b[3] + o[3]}
}

func (b Blob) Sub(o Blob) Blob {
	return Blob{b[0] - o[0], b[1] - o[1], b[2] - o[2], b[3] - o[3]}
}

func (b Blob) Mul(o Blob) Blob {
	return Blob{b[0] * o[0], b[1] * o[1], b[2] * o[2], b[3] * o[3]}
}

func (b Blob) MulScalar(s float32) Blob {
	return Blob{b[0] * s, b[1] * s, b[2] * s, b[3] * s}
}

func (b Blob) DivScalar(s float32) Blob {
	return b.MulScalar(1.0 / s)
}

func (b Blob) Lerp(o Blob, t float32) Blob {
	return Blob{
		(1-t)*b[0] + t*o[0],
		(1-t)*b[1] + t*o[1],
		(1-t)*b[2] + t*o[2],
		(1-t)*b[3] + t*o[3],
	}
}

// Avg returns the mean over the quartet, used wherever a scalar luminance
// proxy is needed (Russian roulette, photon power floor, variance channel).
func (b Blob) Avg() float32 {
	return (b[0] + b[1] + b[2] + b[3]) / 4
}

func (b Blob) IsZero() bool {
	return b[0] == 0 && b[1] == 0 && b[2] == 0 && b[3] == 0
}

// HasNonFinite reports whether any lane is NaN or +/-Inf, the trigger for the
// output pipeline's numerical-fault feedback bit.
func (b Blob) HasNonFinite() bool {
	for _, v := range b {
		if v != v || v > maxFinite || v < -maxFinite {
			return true
		}
	}
	return false
}

// HasNegative reports whether any lane is strictly negative.
func (b Blob) HasNegative() bool {
	for _, v := range b {
		if v < 0 {
			return true
		}
	}
	return false
}

const maxFinite = 3.4028235e38

// Parametric is the three Jakob-Hanika coefficients (a, b, c) encoding a
// smooth reflective or illuminant spectral curve.
type Parametric struct {
	A, B, C float32
}

// ZeroParametric approximates a zero spectrum, per the upsampler's documented
// edge case for rgb (0,0,0).
var ZeroParametric = Parametric{A: 0, B: 0, C: -50}
