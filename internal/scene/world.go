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
	"context"
	"math"

	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/stream"
)

// Entity binds one piece of geometry to a material and, optionally, an
// emission (an emissive entity is a light, per spec.md §6).
type Entity struct {
	ID         int32
	Mesh       Mesh
	MaterialID int32
	EmissionID int32 // 0 if non-emissive
}

// World is a linear-scan scene: every entity is tested against every ray.
// Building the BVH spec.md §9's DESIGN NOTES describe is out of scope here
// (internal/cache persists one once built elsewhere); World is the
// traversal collaborator stream.Pipeline and the integrator package need
// during this exercise, grounded on the same closure-construction spec.md
// §3/§4.4 already codifies in internal/shading.
type World struct {
	Entities  []Entity
	Materials map[int32]shading.Material
	Emissions map[int32]shading.Emission
	Infinite  []InfiniteLight

	lightEntities []int32 // indices into Entities with EmissionID != 0
}

// NewWorld builds a traversal-ready World; call AddEntity for every piece of
// geometry, then Finalize once before rendering.
func NewWorld() *World {
	return &World{
		Materials: map[int32]shading.Material{},
		Emissions: map[int32]shading.Emission{},
	}
}

// AddEntity registers e, indexing it for light sampling if it carries an
// emission.
func (w *World) AddEntity(e Entity) {
	w.Entities = append(w.Entities, e)
	if e.EmissionID != 0 {
		w.lightEntities = append(w.lightEntities, int32(len(w.Entities)-1))
	}
}

// Bounds returns the world-space bounding box across every entity (infinite
// lights have no extent and are not included), feeding
// integrator.Scene.BoundMin/BoundMax for PPM's spatial hash grid
// preallocation.
func (w *World) Bounds() (min, max shading.Vec3) {
	first := true
	for _, e := range w.Entities {
		mn, mx := e.Mesh.Bounds()
		if first {
			min, max = mn, mx
			first = false
			continue
		}
		min = shading.Vec3{X: math.Min(min.X, mn.X), Y: math.Min(min.Y, mn.Y), Z: math.Min(min.Z, mn.Z)}
		max = shading.Vec3{X: math.Max(max.X, mx.X), Y: math.Max(max.Y, mx.Y), Z: math.Max(max.Z, mx.Z)}
	}
	return min, max
}

func (w *World) intersectClosest(ray shading.Ray) (shading.Closure, bool) {
	const tMin, farAway = 1e-4, math.MaxFloat64
	tBest := farAway
	var best shading.Closure
	hitAny := false
	for _, e := range w.Entities {
		t, p, n, u, v, ok := e.Mesh.Intersect(ray, tMin, tBest)
		if !ok {
			continue
		}
		hitAny = true
		tBest = t
		c := shading.NewClosure(p, n, n, ray.Direction, ray.Wavelengths)
		c.UV.U, c.UV.V = u, v
		c.EntityID = e.ID
		c.MaterialID = e.MaterialID
		c.EmissionID = e.EmissionID
		best = c
	}
	return best, hitAny
}

// Traverse implements internal/stream.Traverser. A miss still carries the
// ray's wavelength quartet in its Closure, since Background.Apply (the
// integrator's route to infinite lights) is evaluated against it.
func (w *World) Traverse(ctx context.Context, rays []shading.Ray, hits []stream.Hit) {
	for i, r := range rays {
		c, ok := w.intersectClosest(r)
		if !ok {
			c.Wavelengths = r.Wavelengths
		}
		hits[i] = stream.Hit{Ray: r, Closure: c, Hit: ok}
	}
}

// Intersect implements internal/integrator.Intersector for bidirectional's
// light-subpath construction.
func (w *World) Intersect(ctx context.Context, ray shading.Ray) (shading.Closure, bool) {
	return w.intersectClosest(ray)
}

// Lookup implements internal/integrator.Material.
func (w *World) Lookup(id int32) (shading.Material, bool) {
	m, ok := w.Materials[id]
	return m, ok
}

// LookupEmission implements internal/integrator.Emitter's material-like
// lookup half.
func (w *World) LookupEmission(id int32) (shading.Emission, bool) {
	e, ok := w.Emissions[id]
	return e, ok
}

// SampleLight implements internal/integrator.Emitter: picks one emissive
// entity uniformly, then a point on its surface.
func (w *World) SampleLight(rnd [3]float64) (int32, shading.Vec3, shading.Vec3, float64, bool) {
	if len(w.lightEntities) == 0 {
		return 0, shading.Vec3{}, shading.Vec3{}, 0, false
	}
	pick := int(rnd[0] * float64(len(w.lightEntities)))
	if pick >= len(w.lightEntities) {
		pick = len(w.lightEntities) - 1
	}
	e := w.Entities[w.lightEntities[pick]]
	p, n, pdfArea := e.Mesh.SampleArea([2]float64{rnd[1], rnd[2]})
	discretePdf := 1.0 / float64(len(w.lightEntities))
	return e.EmissionID, p, n, pdfArea * discretePdf, true
}

// LightCount implements internal/integrator.Emitter.
func (w *World) LightCount() int { return len(w.lightEntities) }

// Visible implements internal/integrator.Occluder with a shadow ray against
// every entity; time is accepted for a moving-geometry traversal this
// exercise's World does not implement (entities are static).
func (w *World) Visible(ctx context.Context, from, to shading.Vec3, time float32) bool {
	dir := to.Sub(from)
	dist := dir.Length()
	if dist < 1e-9 {
		return true
	}
	dirN := dir.Normalize()
	probe := shading.Ray{Origin: from, Direction: dirN, Time: time, Flags: shading.FlagShadowProbe}
	for _, e := range w.Entities {
		if _, _, _, _, _, ok := e.Mesh.Intersect(probe, 1e-4, dist-1e-3); ok {
			return false
		}
	}
	return true
}

// VisibleToInfinity implements internal/integrator.Occluder's infinite-light
// half: a shadow ray cast toward dir with no finite target, so it must clear
// every entity out to the scene's extent rather than a finite distance.
func (w *World) VisibleToInfinity(ctx context.Context, from, dir shading.Vec3, time float32) bool {
	probe := shading.Ray{Origin: from, Direction: dir, Time: time, Flags: shading.FlagShadowProbe}
	for _, e := range w.Entities {
		if _, _, _, _, _, ok := e.Mesh.Intersect(probe, 1e-4, math.MaxFloat64); ok {
			return false
		}
	}
	return true
}

// Emitter adapts World to internal/integrator.Emitter, which additionally
// requires Lookup(id) (shading.Emission, bool) under the name Lookup; World
// exposes that as LookupEmission to avoid colliding with the Material
// interface's Lookup, so Emitter is the small wrapper integrator.Scene
// actually binds to.
type Emitter struct{ W *World }

func (e Emitter) Lookup(id int32) (shading.Emission, bool)   { return e.W.LookupEmission(id) }
func (e Emitter) SampleLight(rnd [3]float64) (int32, shading.Vec3, shading.Vec3, float64, bool) {
	return e.W.SampleLight(rnd)
}
func (e Emitter) LightCount() int { return e.W.LightCount() }
