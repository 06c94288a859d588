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

	"github.com/PearCoding/PearRay-go/internal/mis"
	"github.com/PearCoding/PearRay-go/internal/shading/node"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// Diffuse is a perfectly Lambertian BSDF. Eval returns albedo/pi (no cosine
// folded in, per the engine-wide convention).
type Diffuse struct {
	Albedo node.Handle
	arena  *node.Arena
	frozen bool
}

func NewDiffuse(arena *node.Arena, albedo node.Handle) *Diffuse {
	return &Diffuse{Albedo: albedo, arena: arena}
}

func (d *Diffuse) Eval(c Closure, l Vec3, ndotl float64) spectral.Blob {
	if ndotl <= 0 {
		return spectral.Blob{}
	}
	albedo := d.arena.SpectralAt(d.Albedo, c)
	return albedo.MulScalar(float32(1 / math.Pi))
}

func (d *Diffuse) Pdf(c Closure, l Vec3, ndotl float64) float64 {
	if ndotl <= 0 {
		return 0
	}
	return ndotl / math.Pi
}

func (d *Diffuse) Sample(c Closure, rnd [2]float64) ScatterSample {
	s := mis.CosineHemisphere(rnd[0], rnd[1])
	world := c.Nx.Scale(s.Dir.X).Add(c.Ny.Scale(s.Dir.Y)).Add(c.N.Scale(s.Dir.Z))
	// Cosine-weighted sampling makes Eval*NdotL/Pdf collapse to the albedo
	// exactly: (albedo/pi * ndotl) / (ndotl/pi) = albedo.
	albedo := d.arena.SpectralAt(d.Albedo, c)
	return ScatterSample{
		L:             world,
		PdfSolidAngle: s.Pdf,
		PathWeight:    1,
		Weight:        albedo,
		Type:          DiffuseReflect,
	}
}

func (d *Diffuse) SamplePathCount() int { return 1 }
func (d *Diffuse) Freeze()              { d.frozen = true }

// Mirror is a perfectly specular reflective BSDF: a Dirac lobe, so Eval/Pdf
// must never be called by a conforming integrator.
type Mirror struct {
	Albedo node.Handle
	arena  *node.Arena
}

func NewMirror(arena *node.Arena, albedo node.Handle) *Mirror {
	return &Mirror{Albedo: albedo, arena: arena}
}

func (m *Mirror) Eval(Closure, Vec3, float64) spectral.Blob { return spectral.Blob{} }
func (m *Mirror) Pdf(Closure, Vec3, float64) float64        { return 0 }

func (m *Mirror) Sample(c Closure, rnd [2]float64) ScatterSample {
	l := c.N.Scale(2 * c.N.Dot(c.V)).Sub(c.V)
	albedo := m.arena.SpectralAt(m.Albedo, c)
	return ScatterSample{
		L:             l,
		PdfSolidAngle: math.Inf(1),
		PathWeight:    1,
		Weight:        albedo,
		Type:          SpecularReflect,
	}
}

func (m *Mirror) SamplePathCount() int { return 1 }
func (m *Mirror) Freeze()              {}

// Dielectric models smooth glass: Sample branches between reflection and
// refraction via Fresnel, each a Dirac lobe, with path weights summing to 1
// as the spec's branching-BSDF invariant requires.
type Dielectric struct {
	IOR float64
}

func NewDielectric(ior float64) *Dielectric { return &Dielectric{IOR: ior} }

func (g *Dielectric) Eval(Closure, Vec3, float64) spectral.Blob { return spectral.Blob{} }
func (g *Dielectric) Pdf(Closure, Vec3, float64) float64        { return 0 }

func schlickFresnel(cosTheta, eta float64) float64 {
	r0 := (eta - 1) / (eta + 1)
	r0 *= r0
	x := 1 - cosTheta
	return r0 + (1-r0)*x*x*x*x*x
}

// unitWeight is the colorless glass's reflectance/transmittance: the Fresnel
// factor that selects a branch also cancels it out of that branch's
// Eval/Pdf ratio (both scaled by the same factor), leaving just this.
var unitWeight = spectral.Blob{1, 1, 1, 1}

func (g *Dielectric) Sample(c Closure, rnd [2]float64) ScatterSample {
	cosI := c.NdotV
	eta := g.IOR
	n := c.N
	if c.Inside {
		eta = 1 / eta
		n = n.Neg()
		cosI = n.Dot(c.V)
	}

	fr := schlickFresnel(math.Abs(cosI), eta)

	if rnd[0] < fr {
		l := n.Scale(2 * cosI).Sub(c.V)
		return ScatterSample{L: l, PdfSolidAngle: math.Inf(1), PathWeight: float32(fr), Weight: unitWeight, Type: SpecularReflect}
	}

	sin2t := (1 / (eta * eta)) * math.Max(0, 1-cosI*cosI)
	if sin2t >= 1 {
		// total internal reflection; fold into the reflection branch
		l := n.Scale(2 * cosI).Sub(c.V)
		return ScatterSample{L: l, PdfSolidAngle: math.Inf(1), PathWeight: 1, Weight: unitWeight, Type: SpecularReflect}
	}
	cosT := math.Sqrt(1 - sin2t)
	t := c.V.Neg().Scale(1 / eta).Add(n.Scale(cosI/eta - cosT))
	// Radiance compresses by 1/eta^2 crossing into the denser medium.
	transmit := unitWeight.MulScalar(float32(1 / (eta * eta)))
	return ScatterSample{L: t, PdfSolidAngle: math.Inf(1), PathWeight: float32(1 - fr), Weight: transmit, Type: SpecularTransmit}
}

func (g *Dielectric) SamplePathCount() int { return 2 }
func (g *Dielectric) Freeze()              {}
