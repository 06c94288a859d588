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

// Package node implements the shading-node arena: materials and emissions do
// not own their input nodes directly, they reference them by integer handle
// into an Arena, which eliminates the cyclic-ownership risk of nodes that can
// themselves reference materials. The node *expression DAG parser* building
// these graphs from a scene description is out of scope; this package only
// evaluates an already-built graph.
package node

import (
	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// Handle is an arena-relative id. The zero Handle is never valid.
type Handle int32

// Scalar evaluates to a single float given a shading closure.
type Scalar interface {
	EvalScalar(c shading.Closure) float64
}

// Spectral evaluates to a spectral.Blob given a shading closure.
type Spectral interface {
	EvalSpectral(c shading.Closure) spectral.Blob
}

// Vector evaluates to a shading.Vec3 given a shading closure.
type Vector interface {
	EvalVector(c shading.Closure) shading.Vec3
}

// Arena owns every node reachable from the scene graph, indexed by Handle.
// Scene construction appends nodes and wires handles into materials and
// emissions; nothing holds a node by pointer.
type Arena struct {
	scalars   []Scalar
	spectrals []Spectral
	vectors   []Vector
}

func NewArena() *Arena { return &Arena{} }

func (a *Arena) AddScalar(n Scalar) Handle {
	a.scalars = append(a.scalars, n)
	return Handle(len(a.scalars))
}

func (a *Arena) AddSpectral(n Spectral) Handle {
	a.spectrals = append(a.spectrals, n)
	return Handle(len(a.spectrals))
}

func (a *Arena) AddVector(n Vector) Handle {
	a.vectors = append(a.vectors, n)
	return Handle(len(a.vectors))
}

// ScalarAt evaluates the scalar node at h against c. Returns 0 for an invalid
// handle so a missing optional input degrades gracefully.
func (a *Arena) ScalarAt(h Handle, c shading.Closure) float64 {
	if h <= 0 || int(h) > len(a.scalars) {
		return 0
	}
	return a.scalars[h-1].EvalScalar(c)
}

func (a *Arena) SpectralAt(h Handle, c shading.Closure) spectral.Blob {
	if h <= 0 || int(h) > len(a.spectrals) {
		return spectral.Blob{}
	}
	return a.spectrals[h-1].EvalSpectral(c)
}

func (a *Arena) VectorAt(h Handle, c shading.Closure) shading.Vec3 {
	if h <= 0 || int(h) > len(a.vectors) {
		return shading.Vec3{}
	}
	return a.vectors[h-1].EvalVector(c)
}

// ConstScalar is a leaf node holding a fixed value.
type ConstScalar float64

func (c ConstScalar) EvalScalar(shading.Closure) float64 { return float64(c) }

// ConstSpectral is a leaf node holding a fixed parametric spectrum. The hero
// wavelengths are not known at construction, so it stores the parametric
// coefficients and evaluates them per closure against its wavelength quartet.
type ConstSpectral struct {
	Coeffs spectral.Parametric
	Power  float32 // illuminant scale factor; 1 for reflective use
}

func (c ConstSpectral) EvalSpectral(ctx shading.Closure) spectral.Blob {
	return spectral.Compute(c.Coeffs, ctx.Wavelengths).MulScalar(c.Power)
}

// ConstBlob is a leaf node holding a literal hero-wavelength Blob, bypassing
// the upsampler entirely. Scene construction from a DataLisp description
// always goes through ConstSpectral/Parametric; ConstBlob exists for
// synthetic or debug graphs that already have per-wavelength values.
type ConstBlob spectral.Blob

func (c ConstBlob) EvalSpectral(shading.Closure) spectral.Blob { return spectral.Blob(c) }
