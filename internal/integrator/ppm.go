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
	"sync"
	"sync/atomic"

	"github.com/PearCoding/PearRay-go/internal/photon"
	"github.com/PearCoding/PearRay-go/internal/sampler"
	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// PPMConfig configures PPM.
type PPMConfig struct {
	InitialRadius  float64
	// Alpha is the Hachisuka-Jensen photon-retention fraction in (0,1]: a
	// gather that accepts M new photons keeps Alpha*M of them, scaling the
	// squared radius by (N+Alpha*M)/(N+M); 2/3 is the value the original
	// paper recommends.
	Alpha          float64
	MaxPasses      int
	PhotonsPerPass int
	MaxDepth       int
	RRMinDepth     int
	GatherMode     photon.GatherMode
}

type pixelStats struct {
	mu          sync.Mutex
	radius2     float64
	photonCount float64
	flux        spectral.Blob
}

// PPM implements stochastic progressive photon mapping (Hachisuka-Jensen):
// each pass fires a photon sub-pass into a fresh spatial hash grid, then
// traces eye subpaths that gather from it and shrink their per-pixel radius,
// converging the biased photon density estimate to the unbiased solution as
// passes accumulate.
type PPM struct {
	cfg PPMConfig

	photonMap *photon.Map
	pixels    sync.Map // uint32 pixel index -> *pixelStats

	pass           int32
	samplesDone    uint64
	photonsEmitted int64
}

// NewPPM returns a PPM integrator with the given configuration.
func NewPPM(cfg PPMConfig) *PPM {
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		cfg.Alpha = 2.0 / 3.0
	}
	if cfg.PhotonsPerPass <= 0 {
		cfg.PhotonsPerPass = 100000
	}
	return &PPM{cfg: cfg}
}

func (p *PPM) OnStart(_ context.Context, s Scene) error {
	p.photonMap = photon.NewMap(s.BoundMin, p.cfg.InitialRadius)
	p.photonMap.PreallocateBuckets(s.BoundMin, s.BoundMax)
	return nil
}

func (p *PPM) OnEnd(context.Context) error { return nil }

func (p *PPM) NeedsNextPass(pass int) bool {
	return p.cfg.MaxPasses == 0 || pass < p.cfg.MaxPasses
}

func (p *PPM) MaxPasses() int { return p.cfg.MaxPasses }

func (p *PPM) MaxSamples() int { return 0 }

func (p *PPM) Status() Status {
	mean, variance := p.photonMap.Occupancy()
	return Status{
		Pass:                  int(atomic.LoadInt32(&p.pass)),
		MaxPasses:             p.cfg.MaxPasses,
		SamplesDone:           atomic.LoadUint64(&p.samplesDone),
		GridOccupancyMean:     mean,
		GridOccupancyVariance: variance,
	}
}

// OnNextPass clears the photon map from the previous pass and emits a fresh
// batch of light-subpath rays, each flagged shading.FlagLightSubpath so
// OnPass routes it to depositPhoton instead of the eye-subpath gather.
func (p *PPM) OnNextPass(_ context.Context, s Scene, pass int, rng sampler.RNG, emit func(shading.Ray)) error {
	atomic.StoreInt32(&p.pass, int32(pass))
	p.photonMap.Clear()

	if s.Emitters.LightCount() == 0 {
		return nil
	}

	for i := 0; i < p.cfg.PhotonsPerPass; i++ {
		u := Next3D(rng)
		emissionID, pos, normal, pdfArea, ok := s.Emitters.SampleLight(u)
		if !ok {
			continue
		}
		em, ok := s.Emitters.Lookup(emissionID)
		if !ok || pdfArea <= 0 {
			continue
		}

		dirSample := uniformHemisphereAround(normal, float64(rng.Float32()), float64(rng.Float32()))
		closure := shading.Closure{P: pos, N: normal, Ng: normal}
		power := em.Eval(closure).Avg() / float32(pdfArea*dirSample.pdf*float64(p.cfg.PhotonsPerPass))

		ray := shading.Ray{
			Origin:    pos,
			Direction: dirSample.dir,
			Weight:    power,
			Flags:     shading.FlagLightSubpath,
		}
		emit(ray)
	}
	atomic.AddInt64(&p.photonsEmitted, int64(p.cfg.PhotonsPerPass))
	return nil
}

type hemisphereSample struct {
	dir shading.Vec3
	pdf float64
}

func uniformHemisphereAround(n shading.Vec3, u1, u2 float64) hemisphereSample {
	nx, ny := shading.OrthonormalBasis(n)
	z := u1
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u2
	local := shading.Vec3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
	world := nx.Scale(local.X).Add(ny.Scale(local.Y)).Add(n.Scale(local.Z))
	return hemisphereSample{dir: world, pdf: 1 / (2 * math.Pi)}
}

// OnPass routes a light-subpath ray to depositPhoton and an eye-subpath ray
// to gatherRadiance.
func (p *PPM) OnPass(ctx context.Context, s Scene, ray shading.Ray, hit shading.Closure, hasHit bool, rng sampler.RNG, emit func(shading.Ray)) spectral.Blob {
	if ray.Flags.Has(shading.FlagLightSubpath) {
		p.depositPhoton(s, ray, hit, hasHit, rng, emit)
		return spectral.Blob{}
	}

	atomic.AddUint64(&p.samplesDone, 1)
	return p.gatherRadiance(s, ray, hit, hasHit, rng, emit)
}

func (p *PPM) depositPhoton(s Scene, ray shading.Ray, hit shading.Closure, hasHit bool, rng sampler.RNG, emit func(shading.Ray)) {
	if !hasHit {
		return
	}
	mat, ok := s.Materials.Lookup(hit.MaterialID)
	if !ok {
		return
	}

	if ray.Depth > 0 {
		power := spectral.Blob{ray.Weight, ray.Weight, ray.Weight, ray.Weight}
		p.photonMap.Store(photon.NewPhoton(hit.P, ray.Direction.Neg(), power, uint8(ray.Depth)))
	}

	if ray.Depth >= p.cfg.MaxDepth {
		return
	}
	u1, u2 := Next2D(rng)
	scatter := mat.Sample(hit, [2]float64{u1, u2})
	if scatter.IsSpecular() || scatter.PathWeight <= 0 {
		return
	}
	rrWeight := RussianRoulette(ray.Depth, p.cfg.RRMinDepth, ray.Weight, float64(rng.Float32()))
	if rrWeight <= 0 {
		return
	}
	next := ray.Next(hit.P, scatter.L)
	next.Weight = ray.Weight * scatter.Weight.Avg() * rrWeight
	emit(next)
}

// gatherRadiance returns a contribution already scaled by ray.Weight,
// matching the convention Direct/Bidirectional's OnPass use; densityEstimate
// folds ray.Weight in itself since it also carries the pixel's running flux
// estimate, so it is added in after the rest of result is scaled.
func (p *PPM) gatherRadiance(s Scene, ray shading.Ray, hit shading.Closure, hasHit bool, rng sampler.RNG, emit func(shading.Ray)) spectral.Blob {
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

	scatter := mat.Sample(hit, Next2D(rng))
	if scatter.IsSpecular() && ray.Depth < p.cfg.MaxDepth {
		if scatter.PathWeight > 0 {
			next := ray.Next(hit.P, scatter.L)
			next.Weight = ray.Weight * scatter.Weight.Avg()
			emit(next)
		}
		return result.MulScalar(ray.Weight)
	}

	return result.MulScalar(ray.Weight).Add(p.densityEstimate(s, ray, hit, mat))
}

// densityEstimate gathers photons around hit.P and folds them into the
// pixel's running radius/flux estimate per Hachisuka-Jensen eq. 5-6, then
// returns this pass's contribution to the converged radiance.
func (p *PPM) densityEstimate(s Scene, ray shading.Ray, hit shading.Closure, mat shading.Material) spectral.Blob {
	st := p.statsFor(ray.PixelIndex)

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.radius2 == 0 {
		st.radius2 = p.cfg.InitialRadius * p.cfg.InitialRadius
	}

	m := 0.0
	gathered := spectral.Blob{}
	p.photonMap.Gather(photon.Query{Center: hit.P, R2: st.radius2, Normal: hit.Ng, Mode: p.cfg.GatherMode}, func(ph photon.Photon, d2, weight float64) {
		l := ph.Direction()
		ndotl := hit.N.Dot(l)
		if ndotl <= 0 {
			return
		}
		bsdf := mat.Eval(hit, l, ndotl)
		gathered = gathered.Add(bsdf.Mul(ph.Power).MulScalar(float32(weight)))
		m++
	})

	n := st.photonCount
	if n+m > 0 {
		newN := n + p.cfg.Alpha*m
		ratio := float32(newN / (n + m))
		st.flux = st.flux.Add(gathered).MulScalar(ratio)
		if m > 0 {
			st.radius2 *= newN / (n + m)
		}
		st.photonCount = newN
	}

	return st.flux.MulScalar(ray.Weight)
}

func (p *PPM) statsFor(pixelIndex uint32) *pixelStats {
	if v, ok := p.pixels.Load(pixelIndex); ok {
		return v.(*pixelStats)
	}
	st := &pixelStats{}
	actual, _ := p.pixels.LoadOrStore(pixelIndex, st)
	return actual.(*pixelStats)
}
