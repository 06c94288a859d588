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

package scene

import (
	"math"

	"github.com/PearCoding/PearRay-go/internal/shading"
)

// Mesh is the geometry a World entity binds to a material. Building a full
// triangle-mesh BVH from an on-disk mesh cache is out of scope (spec.md §1
// Non-goals mention no new acceleration work beyond what's named); Sphere
// and Plane are the two analytic primitives the end-to-end test scenarios
// in spec.md §8 actually need (furnace sphere, Cornell box walls/floor,
// mirror/refractive sphere over a diffuse floor).
type Mesh interface {
	// Intersect returns the closest hit along ray within (tMin, tMax), or
	// ok=false. t is the hit distance, p the hit point, n the geometric
	// normal and (u, v) the surface parameters; the caller builds the
	// Closure, with its tangent frame and wavelength quartet, via
	// shading.NewClosure.
	Intersect(ray shading.Ray, tMin, tMax float64) (t float64, p, n shading.Vec3, u, v float64, ok bool)
	Bounds() (min, max shading.Vec3)
	// SampleArea picks a uniform point on the surface for next-event
	// estimation, returning the point, its geometric normal and the area
	// measure pdf (1/surface area).
	SampleArea(rnd [2]float64) (p, n shading.Vec3, pdfArea float64)
}

// Sphere is a Mesh centered at Center with radius Radius.
type Sphere struct {
	Center shading.Vec3
	Radius float64
}

func (s Sphere) Intersect(ray shading.Ray, tMin, tMax float64) (float64, shading.Vec3, shading.Vec3, float64, float64, bool) {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, shading.Vec3{}, shading.Vec3{}, 0, 0, false
	}
	sq := math.Sqrt(disc)
	for _, t := range [2]float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
		if t > tMin && t < tMax {
			p := ray.At(t)
			n := p.Sub(s.Center).Normalize()
			u, v := sphereUV(n)
			return t, p, n, u, v, true
		}
	}
	return 0, shading.Vec3{}, shading.Vec3{}, 0, 0, false
}

func sphereUV(n shading.Vec3) (u, v float64) {
	theta := math.Acos(clamp(-n.Y, -1, 1))
	phi := math.Atan2(-n.Z, n.X) + math.Pi
	return phi / (2 * math.Pi), theta / math.Pi
}

func (s Sphere) Bounds() (shading.Vec3, shading.Vec3) {
	r := shading.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return s.Center.Sub(r), s.Center.Add(r)
}

func (s Sphere) SampleArea(rnd [2]float64) (shading.Vec3, shading.Vec3, float64) {
	z := 1 - 2*rnd[0]
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * rnd[1]
	n := shading.Vec3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
	p := s.Center.Add(n.Scale(s.Radius))
	area := 4 * math.Pi * s.Radius * s.Radius
	return p, n, 1 / area
}

// Plane is a finite rectangle, used for the Cornell box walls/floor/ceiling
// and area light scenarios in spec.md §8.
type Plane struct {
	Origin     shading.Vec3
	EdgeU, EdgeV shading.Vec3
	Normal     shading.Vec3
}

// NewPlane derives Normal from EdgeU x EdgeV.
func NewPlane(origin, edgeU, edgeV shading.Vec3) Plane {
	return Plane{Origin: origin, EdgeU: edgeU, EdgeV: edgeV, Normal: edgeU.Cross(edgeV).Normalize()}
}

func (p Plane) Intersect(ray shading.Ray, tMin, tMax float64) (float64, shading.Vec3, shading.Vec3, float64, float64, bool) {
	denom := p.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-9 {
		return 0, shading.Vec3{}, shading.Vec3{}, 0, 0, false
	}
	t := p.Normal.Dot(p.Origin.Sub(ray.Origin)) / denom
	if t <= tMin || t >= tMax {
		return 0, shading.Vec3{}, shading.Vec3{}, 0, 0, false
	}
	hit := ray.At(t)
	rel := hit.Sub(p.Origin)
	lenU2, lenV2 := p.EdgeU.LengthSqr(), p.EdgeV.LengthSqr()
	u := rel.Dot(p.EdgeU) / lenU2
	v := rel.Dot(p.EdgeV) / lenV2
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return 0, shading.Vec3{}, shading.Vec3{}, 0, 0, false
	}
	return t, hit, p.Normal, u, v, true
}

func (p Plane) Bounds() (shading.Vec3, shading.Vec3) {
	corners := [4]shading.Vec3{
		p.Origin, p.Origin.Add(p.EdgeU), p.Origin.Add(p.EdgeV), p.Origin.Add(p.EdgeU).Add(p.EdgeV),
	}
	min, max := corners[0], corners[0]
	for _, c := range corners[1:] {
		min = shading.Vec3{X: math.Min(min.X, c.X), Y: math.Min(min.Y, c.Y), Z: math.Min(min.Z, c.Z)}
		max = shading.Vec3{X: math.Max(max.X, c.X), Y: math.Max(max.Y, c.Y), Z: math.Max(max.Z, c.Z)}
	}
	return min, max
}

func (p Plane) SampleArea(rnd [2]float64) (shading.Vec3, shading.Vec3, float64) {
	point := p.Origin.Add(p.EdgeU.Scale(rnd[0])).Add(p.EdgeV.Scale(rnd[1]))
	area := p.EdgeU.Cross(p.EdgeV).Length()
	return point, p.Normal, 1 / area
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
