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

import "github.com/PearCoding/PearRay-go/internal/spectral"

// UVW is a parametric surface coordinate with its screen-space derivatives.
type UVW struct {
	U, V, W     float64
	DUVWdX, DUVWdY Vec3
}

// Closure is the per-hit shading context populated by scene traversal. It is
// what materials, emissions and shading nodes are evaluated against.
//
// Invariant: N, Ng, Nx, Ny are unit; {Nx, Ny, N} is right-handed;
// NdotV = N.Dot(V) where V = -ray.Direction.
type Closure struct {
	P             Vec3 // geometric hit point
	DPdu, DPdv    Vec3
	DPdx, DPdy    Vec3 // screen-space derivatives

	N, Ng   Vec3 // shading normal, geometric normal
	Nx, Ny  Vec3 // tangent frame completing {Nx, Ny, N}

	V               Vec3 // view vector, -ray.Direction
	NdotV, NgdotV   float64

	UV UVW

	PrimitiveID, EntityID, MaterialID, EmissionID int32

	Inside bool

	Wavelengths spectral.Wavelengths
}

// NewClosure builds a Closure from scene-traversal outputs, deriving V,
// NdotV and NgdotV and completing the tangent frame if the caller hasn't
// already.
func NewClosure(p Vec3, n, ng Vec3, rayDir Vec3, wavelengths spectral.Wavelengths) Closure {
	v := rayDir.Neg()
	nx, ny := OrthonormalBasis(n)
	return Closure{
		P:           p,
		N:           n,
		Ng:          ng,
		Nx:          nx,
		Ny:          ny,
		V:           v,
		NdotV:       n.Dot(v),
		NgdotV:      ng.Dot(v),
		Wavelengths: wavelengths,
	}
}

// Valid checks the frame invariants a debug build would assert on: unit
// normals and a right-handed tangent basis.
func (c Closure) Valid(eps float64) bool {
	if !c.N.IsUnit(eps) || !c.Ng.IsUnit(eps) || !c.Nx.IsUnit(eps) || !c.Ny.IsUnit(eps) {
		return false
	}
	handedness := c.Nx.Cross(c.Ny).Dot(c.N)
	return handedness > 0
}
