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

package integrator

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/PearCoding/PearRay-go/internal/mis"
	"github.com/PearCoding/PearRay-go/internal/sampler"
	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// DirectConfig configures Direct.
type DirectConfig struct {
	MaxDepth     int
	RRMinDepth   int
	LightSamples int
	Heuristic    mis.Heuristic
	// SamplesPerPixel caps the number of passes (one sample each); 0 means
	// unbounded, relying on wall-clock or an external stop signal instead.
	SamplesPerPixel int
}

// Direct implements next-event-estimation path tracing with MIS between
// light sampling and BSDF sampling, grounded on the one-sample and
// light-sampled MIS forms from §4.3/§4.9.
type Direct struct {
	cfg DirectConfig

	samplesDone uint64
	pass        int32
}

// NewDirect returns a Direct integrator with the given configuration.
func NewDirect(cfg DirectConfig) *Direct {
	if cfg.LightSamples <= 0 {
		cfg.LightSamples = 1
	}
	if cfg.Heuristic != mis.Power {
		cfg.Heuristic = mis.Balance
	}
	return &Direct{cfg: cfg}
}

func (d *Direct) OnStart(context.Context, Scene) error { return nil }

func (d *Direct) OnNextPass(_ context.Context, _ Scene, pass int, _ sampler.RNG, _ func(shading.Ray)) error {
	atomic.StoreInt32(&d.pass, int32(pass))
	return nil
}

func (d *Direct) OnEnd(context.Context) error { return nil }

func (d *Direct) NeedsNextPass(pass int) bool {
	return d.cfg.SamplesPerPixel == 0 || pass < d.cfg.SamplesPerPixel
}

func (d *Direct) MaxPasses() int { return d.cfg.SamplesPerPixel }

func (d *Direct) MaxSamples() int { return d.cfg.SamplesPerPixel }

func (d *Direct) Status() Status {
	return Status{
		Pass:        int(atomic.LoadInt32(&d.pass)),
		MaxPasses:   d.MaxPasses(),
		SamplesDone: atomic.LoadUint64(&d.samplesDone),
	}
}

// OnPass traces one camera or bounce ray: emitted radiance at the hit point
// plus next-event-estimated direct light, MIS-weighted against the BSDF
// sample that continues the path. The returned contribution is already
// scaled by ray.Weight, the throughput accumulated up to this hit, so the
// caller can sum contributions along a path without tracking throughput
// itself.
func (d *Direct) OnPass(ctx context.Context, s Scene, ray shading.Ray, hit shading.Closure, hasHit bool, rng sampler.RNG, emit func(shading.Ray)) spectral.Blob {
	atomic.AddUint64(&d.samplesDone, 1)

	if !hasHit {
		if s.Background != nil {
			return s.Background.Apply(hit, ray).MulScalar(ray.Weight)
		}
		return spectral.Blob{}
	}

	mat, hasMat := s.Materials.Lookup(hit.MaterialID)
	result := spectral.Blob{}

	if em, ok := s.Emitters.Lookup(hit.EmissionID); ok {
		result = result.Add(em.Eval(hit))
	}

	if !hasMat {
		return result.MulScalar(ray.Weight)
	}

	result = result.Add(d.nextEventEstimation(ctx, s, hit, mat, ray.Time, rng))

	if ray.Depth < d.cfg.MaxDepth {
		u1, u2 := Next2D(rng)
		scatter := mat.Sample(hit, [2]float64{u1, u2})
		if scatter.PathWeight <= 0 {
			return result.MulScalar(ray.Weight)
		}

		rrWeight := RussianRoulette(ray.Depth, d.cfg.RRMinDepth, ray.Weight, float64(rng.Float32()))
		if rrWeight <= 0 {
			return result.MulScalar(ray.Weight)
		}

		next := ray.Next(hit.P, scatter.L)
		next.Weight = ray.Weight * scatter.Weight.Avg() * rrWeight
		emit(next)
	}

	return result.MulScalar(ray.Weight)
}

// nextEventEstimation samples d.cfg.LightSamples finite-light points plus one
// infinite-light direction, each MIS-weighed against the BSDF's pdf at the
// same direction.
func (d *Direct) nextEventEstimation(ctx context.Context, s Scene, hit shading.Closure, mat shading.Material, time float32, rng sampler.RNG) spectral.Blob {
	sum := d.sampleFiniteLights(ctx, s, hit, mat, time, rng)
	return sum.Add(d.sampleInfiniteLights(ctx, s, hit, mat, time, rng))
}

func (d *Direct) sampleFiniteLights(ctx context.Context, s Scene, hit shading.Closure, mat shading.Material, time float32, rng sampler.RNG) spectral.Blob {
	if s.Emitters.LightCount() == 0 {
		return spectral.Blob{}
	}

	sum := spectral.Blob{}
	n := d.cfg.LightSamples
	for i := 0; i < n; i++ {
		u := Next3D(rng)
		emissionID, lp, ln, pdfArea, ok := s.Emitters.SampleLight(u)
		if !ok {
			continue
		}
		em, ok := s.Emitters.Lookup(emissionID)
		if !ok {
			continue
		}

		toLight := lp.Sub(hit.P)
		dist2 := toLight.LengthSqr()
		if dist2 <= 0 {
			continue
		}
		l := toLight.Normalize()
		ndotl := hit.N.Dot(l)
		if ndotl <= 0 {
			continue
		}
		cosLight := ln.Dot(l.Neg())
		if cosLight <= 0 {
			continue
		}

		if !s.Occluder.Visible(ctx, hit.P, lp, time) {
			continue
		}

		lightClosure := hit
		lightClosure.P = lp
		lightClosure.N = ln
		radiance := em.Eval(lightClosure)
		if radiance.IsZero() {
			continue
		}

		bsdf := mat.Eval(hit, l, ndotl)
		pdfSolidAngleLight := mis.AreaToSolidAngle(pdfArea, dist2, cosLight)
		pdfSolidAngleBSDF := mat.Pdf(hit, l, ndotl)
		weight := mis.Weight2(d.cfg.Heuristic, pdfSolidAngleLight, pdfSolidAngleBSDF)

		contribution := bsdf.Mul(radiance).MulScalar(float32(ndotl * weight / pdfSolidAngleLight))
		sum = sum.Add(contribution)
	}
	if n > 0 {
		sum = sum.DivScalar(float32(n))
	}
	return sum
}

// sampleInfiniteLights MIS-weighs one sampled infinite-light direction
// against the BSDF's pdf at that same direction, the infinite-light half of
// next-event estimation §4.9 Direct requires alongside area-light sampling.
func (d *Direct) sampleInfiniteLights(ctx context.Context, s Scene, hit shading.Closure, mat shading.Material, time float32, rng sampler.RNG) spectral.Blob {
	if s.Background == nil {
		return spectral.Blob{}
	}

	u := Next3D(rng)
	dir, radiance, pdfSolidAngle, ok := s.Background.SampleDirection(hit, u)
	if !ok || radiance.IsZero() {
		return spectral.Blob{}
	}
	ndotl := hit.N.Dot(dir)
	if ndotl <= 0 {
		return spectral.Blob{}
	}
	if !s.Occluder.VisibleToInfinity(ctx, hit.P, dir, time) {
		return spectral.Blob{}
	}

	bsdf := mat.Eval(hit, dir, ndotl)
	if math.IsInf(pdfSolidAngle, 1) {
		// A Dirac (distant-light) direction: no other strategy can hit it,
		// so its MIS weight is 1 and there is no solid-angle pdf to divide
		// by (already folded into radiance by Background.SampleDirection).
		return bsdf.Mul(radiance).MulScalar(float32(ndotl))
	}

	pdfSolidAngleBSDF := mat.Pdf(hit, dir, ndotl)
	weight := mis.Weight2(d.cfg.Heuristic, pdfSolidAngle, pdfSolidAngleBSDF)
	return bsdf.Mul(radiance).MulScalar(float32(ndotl * weight / pdfSolidAngle))
}
