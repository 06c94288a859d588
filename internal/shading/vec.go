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

// Package shading holds the per-hit shading context materials, emissions and
// shading nodes consume, plus the sampling contracts integrators drive it
// through.
package shading

import "math"

// Vec3 is the engine-wide 3D vector/point type.
type Vec3 struct{ X, Y, Z float64 }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3            { return Vec3{-v.X, -v.Y, -v.Z} }

// Lerp interpolates linearly from v (t=0) to o (t=1).
func (v Vec3) Lerp(o Vec3, t float32) Vec3 { return v.Add(o.Sub(v).Scale(float64(t))) }

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) LengthSqr() float64 { return v.Dot(v) }
func (v Vec3) Length() float64    { return math.Sqrt(v.LengthSqr()) }

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// IsUnit reports whether v is unit length within tolerance, the invariant the
// shading closure asserts on N, Ng, Nx, Ny.
func (v Vec3) IsUnit(eps float64) bool {
	return math.Abs(v.LengthSqr()-1) <= eps
}

// OrthonormalBasis builds a right-handed tangent frame {Nx, Ny, N} around
// unit normal n, using Duff et al.'s branchless construction.
func OrthonormalBasis(n Vec3) (nx, ny Vec3) {
	sign := math.Copysign(1, n.Z)
	a := -1 / (sign + n.Z)
	b := n.X * n.Y * a
	nx = Vec3{1 + sign*n.X*n.X*a, sign * b, -sign * n.X}
	ny = Vec3{b, sign + n.Y*n.Y*a, -n.Y}
	return nx, ny
}
