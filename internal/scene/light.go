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

	"github.com/PearCoding/PearRay-go/internal/mis"
	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/shading/node"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// InfiniteLight represents a light with no finite geometry: a distant
// (directional) light or an environment background, mirrored on the
// original engine's IInfiniteLight (sample against a view direction, apply
// to a ray that escaped the scene).
type InfiniteLight interface {
	// Apply returns the radiance contribution for a ray that left the scene
	// in direction dir, evaluated against closure c (only c.Wavelengths is
	// read for a constant background; directional lights additionally use
	// dir).
	Apply(c shading.Closure, dir shading.Vec3) spectral.Blob
	// SampleDirection draws a direction toward this light for next-event
	// estimation, returning its solid-angle pdf. pdf is +Inf for a Dirac
	// (distant) light.
	SampleDirection(c shading.Closure, rnd [2]float64) (dir shading.Vec3, pdf float64)
}

// EnvironmentLight is a constant-radiance background, the uniform white
// environment spec.md §8's furnace test scenario requires.
type EnvironmentLight struct {
	Radiance node.Handle
	arena    *node.Arena
}

func NewEnvironmentLight(arena *node.Arena, radiance node.Handle) *EnvironmentLight {
	return &EnvironmentLight{Radiance: radiance, arena: arena}
}

func (e *EnvironmentLight) Apply(c shading.Closure, dir shading.Vec3) spectral.Blob {
	return e.arena.SpectralAt(e.Radiance, c)
}

// SampleDirection draws a cosine-weighted direction around the shading
// normal: a constant background has no directional structure to importance
// sample against, so cosine weighting is the best the light alone can do.
func (e *EnvironmentLight) SampleDirection(c shading.Closure, rnd [2]float64) (shading.Vec3, float64) {
	s := mis.CosineHemisphere(rnd[0], rnd[1])
	dir := c.Nx.Scale(s.Dir.X).Add(c.Ny.Scale(s.Dir.Y)).Add(c.N.Scale(s.Dir.Z))
	return dir, s.Pdf
}

// DistantLight emits uniformly from one direction, like a sun: it only
// contributes to a ray whose direction is within an epsilon of -Direction
// (a Dirac delta direction, same treatment as a specular BSDF lobe).
type DistantLight struct {
	Direction shading.Vec3 // direction the light shines toward
	Radiance  node.Handle
	arena     *node.Arena
}

func NewDistantLight(arena *node.Arena, direction shading.Vec3, radiance node.Handle) *DistantLight {
	return &DistantLight{Direction: direction.Normalize(), Radiance: radiance, arena: arena}
}

func (d *DistantLight) Apply(c shading.Closure, dir shading.Vec3) spectral.Blob {
	if dir.Normalize().Dot(d.Direction.Neg()) < 1-1e-4 {
		return spectral.Blob{}
	}
	return d.arena.SpectralAt(d.Radiance, c)
}

// SampleDirection always returns the light's fixed incident direction: a
// Dirac delta, same treatment as a specular BSDF lobe.
func (d *DistantLight) SampleDirection(c shading.Closure, rnd [2]float64) (shading.Vec3, float64) {
	return d.Direction.Neg(), math.Inf(1)
}

// Background sums every registered InfiniteLight's contribution for a ray
// that escaped the scene, implementing internal/integrator.Background.
type Background struct {
	Lights []InfiniteLight
}

func (b Background) Apply(c shading.Closure, ray shading.Ray) spectral.Blob {
	sum := spectral.Blob{}
	for _, l := range b.Lights {
		sum = sum.Add(l.Apply(c, ray.Direction))
	}
	return sum
}

// SampleDirection picks one infinite light uniformly at random and samples a
// direction toward it, implementing internal/integrator.Background. The
// uniform discrete pick probability is folded into the continuous
// solid-angle pdf; for a Dirac light the radiance is pre-divided by the
// pick probability instead, since a finite radiance can't be divided by an
// infinite pdf.
func (b Background) SampleDirection(c shading.Closure, rnd [3]float64) (shading.Vec3, spectral.Blob, float64, bool) {
	if len(b.Lights) == 0 {
		return shading.Vec3{}, spectral.Blob{}, 0, false
	}

	discrete := 1.0 / float64(len(b.Lights))
	idx := int(rnd[2] * float64(len(b.Lights)))
	if idx >= len(b.Lights) {
		idx = len(b.Lights) - 1
	}
	light := b.Lights[idx]

	dir, pdf := light.SampleDirection(c, [2]float64{rnd[0], rnd[1]})
	radiance := light.Apply(c, dir)
	if math.IsInf(pdf, 1) {
		return dir, radiance.MulScalar(float32(1 / discrete)), pdf, true
	}
	return dir, radiance, pdf * discrete, true
}
