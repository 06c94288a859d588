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

package mis

import "math"

// Vec3 is a minimal local vector type; the shading package defines the
// engine-wide one, but projections are pure math with no dependency on
// shading state.
type Vec3 struct{ X, Y, Z float64 }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sample is a sampled direction together with its solid-angle pdf.
type Sample struct {
	Dir Vec3
	Pdf float64
}

// UniformSphere samples a direction uniformly over the full sphere.
func UniformSphere(u1, u2 float64) Sample {
	z := 1 - 2*u1
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u2
	return Sample{
		Dir: Vec3{r * math.Cos(phi), r * math.Sin(phi), z},
		Pdf: 1 / (4 * math.Pi),
	}
}

// UniformHemisphere samples a direction uniformly over the hemisphere
// around +Z.
func UniformHemisphere(u1, u2 float64) Sample {
	z := u1
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u2
	return Sample{
		Dir: Vec3{r * math.Cos(phi), r * math.Sin(phi), z},
		Pdf: 1 / (2 * math.Pi),
	}
}

// CosineHemisphere samples a direction cosine-weighted over the hemisphere
// around +Z (Malley's method: uniform disk projected up).
func CosineHemisphere(u1, u2 float64) Sample {
	r := math.Sqrt(u1)
	phi := 2 * math.Pi * u2
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1-u1))
	return Sample{
		Dir: Vec3{x, y, z},
		Pdf: z / math.Pi,
	}
}

// PhongHemisphere samples a direction from a Phong lobe of exponent n around
// +Z, with pdf proportional to cos^n(theta).
func PhongHemisphere(u1, u2, n float64) Sample {
	cosTheta := math.Pow(u1, 1/(n+1))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u2
	pdf := (n + 1) / (2 * math.Pi) * math.Pow(cosTheta, n)
	return Sample{
		Dir: Vec3{sinTheta * math.Cos(phi), sinTheta * math.Sin(phi), cosTheta},
		Pdf: pdf,
	}
}

// UniformTriangle returns barycentric coordinates (u,v) uniformly distributed
// over a triangle, with the third barycentric weight implied as 1-u-v.
func UniformTriangle(u1, u2 float64) (u, v float64) {
	su0 := math.Sqrt(u1)
	return 1 - su0, u2 * su0
}

// SolidAngleToArea converts a solid-angle pdf to an area-measure pdf for a
// surface point at squared distance dist2 from the shading point, with
// cosThetaLight the cosine of the angle between the connecting direction and
// the surface's normal at the far point.
func SolidAngleToArea(pdfSolidAngle, dist2, cosThetaLight float64) float64 {
	if cosThetaLight <= 0 {
		return 0
	}
	return pdfSolidAngle * cosThetaLight / dist2
}

// AreaToSolidAngle is the inverse of SolidAngleToArea.
func AreaToSolidAngle(pdfArea, dist2, cosThetaLight float64) float64 {
	if cosThetaLight <= 0 {
		return 0
	}
	return pdfArea * dist2 / cosThetaLight
}
