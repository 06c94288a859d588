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

// Package integrator implements the light-transport algorithms driving one
// ray/hit pair to a radiance contribution: direct lighting with MIS,
// bidirectional path tracing, and stochastic progressive photon mapping.
// All three share the Integrator lifecycle contract so the render context
// (internal/render) can drive any of them identically.
package integrator

import (
	"context"

	"github.com/PearCoding/PearRay-go/internal/sampler"
	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// Material looks up the frozen BSDF bound to a material id.
type Material interface {
	Lookup(id int32) (shading.Material, bool)
}

// Emitter looks up the frozen emission bound to an emission id, and can
// sample a position on a light's surface for next-event estimation.
type Emitter interface {
	Lookup(id int32) (shading.Emission, bool)
	// SampleLight picks one emissive primitive and a point on it, returning
	// its emission id, the world-space position, its area-measure pdf
	// (including the discrete pick probability) and its geometric normal.
	SampleLight(rnd [3]float64) (emissionID int32, p, n shading.Vec3, pdfArea float64, ok bool)
	// LightCount is the number of emissive primitives in the scene, used by
	// the uniform discrete light-pick pdf.
	LightCount() int
}

// Occluder answers visibility queries between two points, the only scene
// query next-event estimation needs beyond Material/Emitter.
type Occluder interface {
	Visible(ctx context.Context, from, to shading.Vec3, time float32) bool
	// VisibleToInfinity answers a shadow ray cast toward an infinite light:
	// there is no "to" point, so it must trace to the scene's extent rather
	// than a finite distance.
	VisibleToInfinity(ctx context.Context, from, dir shading.Vec3, time float32) bool
}

// Intersector answers a single synchronous ray query. Primary and bounce
// rays flow through internal/stream's batched pipeline instead; Intersector
// exists for the rare integrator (bidirectional's light-subpath
// construction) that must walk the scene directly rather than wait for the
// next stream swap.
type Intersector interface {
	Intersect(ctx context.Context, ray shading.Ray) (hit shading.Closure, ok bool)
}

// Background evaluates the contribution of a ray that left the scene
// without hitting anything (an environment or distant light).
type Background interface {
	Apply(c shading.Closure, ray shading.Ray) spectral.Blob
	// SampleDirection draws one infinite-light direction for next-event
	// estimation, returning its incident radiance and the solid-angle pdf of
	// having sampled that direction. pdfSolidAngle is +Inf for a Dirac
	// (distant) light; radiance is then already pre-divided by the discrete
	// pick probability, since a finite radiance can't be divided by an
	// infinite pdf. ok is false when the scene has no infinite lights.
	SampleDirection(c shading.Closure, rnd [3]float64) (dir shading.Vec3, radiance spectral.Blob, pdfSolidAngle float64, ok bool)
}

// Scene bundles the read-only scene queries an integrator needs. Traversal
// of camera/bounce rays happens through internal/stream.Traverser instead;
// Scene only covers the queries a hit's shading closure doesn't already
// carry.
type Scene struct {
	Materials   Material
	Emitters    Emitter
	Occluder    Occluder
	Intersector Intersector
	// Background is nil when the scene has no infinite lights; a miss then
	// contributes nothing.
	Background Background
	// BoundMin/BoundMax is the scene's world-space bounding box, used by
	// photon mapping to preallocate its spatial hash grid before photon
	// passes begin concurrent stores.
	BoundMin, BoundMax shading.Vec3
}

// Status reports an integrator's progress, surfaced by internal/render to
// whatever observes render progress.
type Status struct {
	Pass        int
	MaxPasses   int
	SamplesDone uint64

	// GridOccupancyMean/Variance are PPM-only photon-grid diagnostics (zero
	// for integrators with no spatial photon grid).
	GridOccupancyMean     float64
	GridOccupancyVariance float64
}

// Integrator is the lifecycle contract every transport algorithm
// implements, named directly from the engine's pass model (§4.9): started
// once, driven through passes, and asked after each pass whether another is
// warranted.
type Integrator interface {
	// OnStart initializes any per-render state (e.g. PPM's initial photon
	// map and gather radius).
	OnStart(ctx context.Context, s Scene) error
	// OnNextPass is called once per pass, before any tile work for that pass
	// begins, e.g. to fire a photon pass or shrink the gather radius. emit
	// lets it inject light-subpath rays ahead of that pass's eye subpaths.
	OnNextPass(ctx context.Context, s Scene, pass int, rng sampler.RNG, emit func(shading.Ray)) error
	// OnPass computes the contribution of one ray/hit pair, writing any
	// extra bounce rays it wants traced through emit.
	OnPass(ctx context.Context, s Scene, ray shading.Ray, hit shading.Closure, hasHit bool, rng sampler.RNG, emit func(shading.Ray)) spectral.Blob
	// OnEnd releases any per-render state.
	OnEnd(ctx context.Context) error
	// NeedsNextPass reports whether the integrator has more work to do.
	NeedsNextPass(pass int) bool
	// MaxPasses is the configured pass budget (0 means unbounded, bounded
	// instead by MaxSamples or wall time).
	MaxPasses() int
	// MaxSamples is the configured per-pixel sample budget (0 means
	// unbounded).
	MaxSamples() int
	// Status reports current progress.
	Status() Status
}

// Next2D draws two independent floats from rng, the form BSDF/light sampling
// needs for a direction or a barycentric pick.
func Next2D(rng sampler.RNG) (float64, float64) {
	return float64(rng.Float32()), float64(rng.Float32())
}

// Next3D draws three independent floats from rng, the form light selection
// plus a 2D surface pick needs.
func Next3D(rng sampler.RNG) [3]float64 {
	return [3]float64{float64(rng.Float32()), float64(rng.Float32()), float64(rng.Float32())}
}

// RussianRoulette applies throughput-based path termination starting at
// minDepth, returning the survival weight multiplier (0 if the path dies).
func RussianRoulette(depth int, minDepth int, throughput float32, rnd float64) float32 {
	if depth < minDepth {
		return 1
	}
	q := float64(throughput)
	if q > 0.95 {
		q = 0.95
	}
	if q < 0.05 {
		q = 0.05
	}
	if rnd >= q {
		return 0
	}
	return float32(1 / q)
}
