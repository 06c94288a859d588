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
	"sync/atomic"

	"github.com/PearCoding/PearRay-go/internal/mis"
	"github.com/PearCoding/PearRay-go/internal/sampler"
	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// BidirectionalConfig configures Bidirectional.
type BidirectionalConfig struct {
	MaxEyeDepth     int
	MaxLightDepth   int
	RRMinDepth      int
	Heuristic       mis.Heuristic
	SamplesPerPixel int
}

// lightVertex is one node of a light subpath built synchronously through
// Scene.Intersector ahead of each eye-subpath hit.
type lightVertex struct {
	c          shading.Closure
	mat        shading.Material
	throughput spectral.Blob
	pdf        float64
}

// Bidirectional implements bidirectional path tracing (§4.3's BDPT
// requirement): a light subpath is traced synchronously per eye-subpath hit,
// and the eye vertex connects to every light-subpath vertex, each connection
// weighted against the other connections by the configured MIS heuristic.
// The BSDF-sampled continuation ray is not part of that weighting.
type Bidirectional struct {
	cfg BidirectionalConfig

	pass        int32
	samplesDone uint64
}

// NewBidirectional returns a Bidirectional integrator with the given
// configuration.
func NewBidirectional(cfg BidirectionalConfig) *Bidirectional {
	if cfg.MaxLightDepth <= 0 {
		cfg.MaxLightDepth = 4
	}
	if cfg.Heuristic != mis.Power {
		cfg.Heuristic = mis.Balance
	}
	return &Bidirectional{cfg: cfg}
}

func (b *Bidirectional) OnStart(context.Context, Scene) error { return nil }

func (b *Bidirectional) OnNextPass(_ context.Context, _ Scene, pass int, _ sampler.RNG, _ func(shading.Ray)) error {
	atomic.StoreInt32(&b.pass, int32(pass))
	return nil
}

func (b *Bidirectional) OnEnd(context.Context) error { return nil }

func (b *Bidirectional) NeedsNextPass(pass int) bool {
	return b.cfg.SamplesPerPixel == 0 || pass < b.cfg.SamplesPerPixel
}

func (b *Bidirectional) MaxPasses() int { return b.cfg.SamplesPerPixel }

func (b *Bidirectional) MaxSamples() int { return b.cfg.SamplesPerPixel }

func (b *Bidirectional) Status() Status {
	return Status{
		Pass:        int(atomic.LoadInt32(&b.pass)),
		MaxPasses:   b.MaxPasses(),
		SamplesDone: atomic.LoadUint64(&b.samplesDone),
	}
}

// OnPass returns a contribution already scaled by ray.Weight, the throughput
// accumulated up to this hit, matching the convention Direct.OnPass uses.
func (b *Bidirectional) OnPass(ctx context.Context, s Scene, ray shading.Ray, hit shading.Closure, hasHit bool, rng sampler.RNG, emit func(shading.Ray)) spectral.Blob {
	atomic.AddUint64(&b.samplesDone, 1)

	if !hasHit {
		if s.Background != nil {
			return s.Background.Apply(hit, ray).MulScalar(ray.Weight)
		}
		return spectral.Blob{}
	}

	result := spectral.Blob{}
	if em, ok := s.Emitters.Lookup(hit.EmissionID); ok {
		result = result.Add(em.Eval(hit))
	}

	mat, ok := s.Materials.Lookup(hit.MaterialID)
	if !ok {
		return result.MulScalar(ray.Weight)
	}

	lightPath := b.traceLightSubpath(ctx, s, rng)
	result = result.Add(b.connectVertices(ctx, s, hit, mat, ray.Time, lightPath))

	if ray.Depth < b.cfg.MaxEyeDepth {
		u1, u2 := Next2D(rng)
		scatter := mat.Sample(hit, [2]float64{u1, u2})
		if scatter.PathWeight > 0 {
			rrWeight := RussianRoulette(ray.Depth, b.cfg.RRMinDepth, ray.Weight, float64(rng.Float32()))
			if rrWeight > 0 {
				next := ray.Next(hit.P, scatter.L)
				next.Weight = ray.Weight * scatter.Weight.Avg() * rrWeight
				emit(next)
			}
		}
	}

	return result.MulScalar(ray.Weight)
}

// traceLightSubpath walks a light-emitted path synchronously through
// s.Intersector, stopping at a Dirac (specular) bounce, max depth, or a
// miss.
func (b *Bidirectional) traceLightSubpath(ctx context.Context, s Scene, rng sampler.RNG) []lightVertex {
	if s.Emitters.LightCount() == 0 || s.Intersector == nil {
		return nil
	}

	u := Next3D(rng)
	emissionID, pos, normal, pdfArea, ok := s.Emitters.SampleLight(u)
	if !ok {
		return nil
	}
	em, ok := s.Emitters.Lookup(emissionID)
	if !ok || pdfArea <= 0 {
		return nil
	}

	dirSample := uniformHemisphereAround(normal, float64(rng.Float32()), float64(rng.Float32()))
	closure := shading.Closure{P: pos, N: normal, Ng: normal}
	throughput := em.Eval(closure).MulScalar(float32(1 / (pdfArea * dirSample.pdf)))

	ray := shading.Ray{Origin: pos, Direction: dirSample.dir, Weight: 1, Flags: shading.FlagLightSubpath}

	var path []lightVertex
	for depth := 0; depth < b.cfg.MaxLightDepth; depth++ {
		hit, hasHit := s.Intersector.Intersect(ctx, ray)
		if !hasHit {
			break
		}
		mat, ok := s.Materials.Lookup(hit.MaterialID)
		if !ok {
			break
		}
		path = append(path, lightVertex{c: hit, mat: mat, throughput: throughput, pdf: dirSample.pdf})

		u1, u2 := Next2D(rng)
		scatter := mat.Sample(hit, [2]float64{u1, u2})
		if scatter.IsSpecular() || scatter.PathWeight <= 0 {
			break
		}
		rrWeight := RussianRoulette(depth, b.cfg.RRMinDepth, throughput.Avg(), float64(rng.Float32()))
		if rrWeight <= 0 {
			break
		}
		ndotl := hit.N.Dot(scatter.L)
		if ndotl <= 0 {
			break
		}
		throughput = throughput.Mul(scatter.Weight).MulScalar(rrWeight)
		dirSample.pdf = scatter.PdfSolidAngle
		ray = ray.Next(hit.P, scatter.L)
	}
	return path
}

// connectVertices joins the eye vertex at hit to every stored light vertex,
// MIS-weighing each connection against the others by the configured
// heuristic folded over every valid connection's solid-angle pdf.
func (b *Bidirectional) connectVertices(ctx context.Context, s Scene, hit shading.Closure, mat shading.Material, time float32, lightPath []lightVertex) spectral.Blob {
	if len(lightPath) == 0 {
		return spectral.Blob{}
	}

	type candidate struct {
		contribution spectral.Blob
		pdf          float64
	}
	candidates := make([]candidate, 0, len(lightPath))

	for _, lv := range lightPath {
		toLight := lv.c.P.Sub(hit.P)
		dist2 := toLight.LengthSqr()
		if dist2 <= 0 {
			continue
		}
		l := toLight.Normalize()
		ndotl := hit.N.Dot(l)
		if ndotl <= 0 {
			continue
		}
		ndotlLight := lv.c.N.Dot(l.Neg())
		if ndotlLight <= 0 {
			continue
		}
		if !s.Occluder.Visible(ctx, hit.P, lv.c.P, time) {
			continue
		}

		eyeBSDF := mat.Eval(hit, l, ndotl)
		lightBSDF := lv.mat.Eval(lv.c, l.Neg(), ndotlLight)
		pdfSolidAngle := mis.AreaToSolidAngle(lv.pdf, dist2, ndotlLight)
		if pdfSolidAngle <= 0 {
			continue
		}

		contribution := eyeBSDF.Mul(lightBSDF).Mul(lv.throughput).MulScalar(float32(ndotl * ndotlLight / dist2))
		candidates = append(candidates, candidate{contribution: contribution, pdf: pdfSolidAngle})
	}

	if len(candidates) == 0 {
		return spectral.Blob{}
	}

	sum := spectral.Blob{}
	for _, cand := range candidates {
		acc := mis.NewAccumulator(b.cfg.Heuristic)
		for _, other := range candidates {
			acc.Add(other.pdf)
		}
		weight := acc.Weight(cand.pdf)
		sum = sum.Add(cand.contribution.MulScalar(float32(weight)))
	}
	return sum.DivScalar(float32(len(candidates)))
}
