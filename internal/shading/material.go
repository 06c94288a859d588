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

package shading

import (
	"math"

	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// ScatteringType classifies a sampled direction; integrators gate specular
// recursion and MIS on it.
type ScatteringType int

const (
	DiffuseReflect ScatteringType = iota
	DiffuseTransmit
	SpecularReflect
	SpecularTransmit
)

func (s ScatteringType) IsSpecular() bool {
	return s == SpecularReflect || s == SpecularTransmit
}

// ScatterSample is the result of Material.Sample.
type ScatterSample struct {
	L             Vec3 // sampled outgoing direction
	PdfSolidAngle float64
	// PathWeight is the branch-selection probability in [0,1]; it sums to 1
	// over SamplePathCount() alternatives of a branching BSDF (e.g. glass).
	// It is not a throughput factor and must never be multiplied into a
	// continuation ray's weight on its own.
	PathWeight float32
	// Weight is the path-throughput factor this sample contributes:
	// Eval(c, L, NdotL)*NdotL/PdfSolidAngle for a non-specular sample, or the
	// branch's reflectance/transmittance for a specular one (Eval/Pdf are
	// undefined when PdfSolidAngle is +Inf, so the branch-probability
	// cancellation is folded in here instead).
	Weight spectral.Blob
	Type   ScatteringType
}

// IsSpecular reports whether the sample must be treated as a Dirac lobe: the
// integrator must not call Eval/Pdf for this direction.
func (s ScatterSample) IsSpecular() bool {
	return math.IsInf(s.PdfSolidAngle, 1) || s.Type.IsSpecular()
}

// Material is the engine's BSDF contract. Implementations are immutable
// after Freeze and must keep any deferred cache thread-local.
type Material interface {
	// Eval returns the BSDF value (not multiplied by cosine; the integrator
	// applies NdotL itself) for the given shading closure and outgoing
	// direction L.
	Eval(c Closure, l Vec3, ndotl float64) spectral.Blob
	// Pdf returns the solid-angle pdf of sampling L from c.
	Pdf(c Closure, l Vec3, ndotl float64) float64
	// Sample draws an outgoing direction given two uniform random numbers.
	Sample(c Closure, rnd [2]float64) ScatterSample
	// SamplePathCount is the number of branching alternatives Sample can
	// return (e.g. glass: reflect or refract); path weights across all
	// alternatives sum to 1.
	SamplePathCount() int
	// Freeze finalizes the material; no further mutation is permitted after
	// this call returns, and any subsequent caching must be thread-local.
	Freeze()
}

// Emission is evaluated at a face point; sidedness is unconstrained unless
// the attached material declares itself one-sided.
type Emission interface {
	Eval(c Closure) spectral.Blob
	Freeze()
}
