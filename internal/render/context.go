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

// Package render orchestrates one render: a worker pool draws tiles from a
// tile.Map, drives each tile's camera rays through a stream.Pipeline and an
// Integrator, and accumulates the result into a framebuffer.Map. Its
// worker-pool shape is grounded on google-gapid's core/event/task.Pool: a
// fixed number of worker goroutines pulling from a shared tile source,
// started afresh for every pass.
package render

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/PearCoding/PearRay-go/internal/framebuffer"
	"github.com/PearCoding/PearRay-go/internal/integrator"
	"github.com/PearCoding/PearRay-go/internal/log"
	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/spectral"
	"github.com/PearCoding/PearRay-go/internal/stream"
	"github.com/PearCoding/PearRay-go/internal/tile"
)

// Camera generates a primary ray for one pixel sample. wavelengthU is a
// single uniform random number the camera turns into a hero wavelength
// quartet via spectral.SampleWavelengths.
type Camera interface {
	GenerateRay(pixelX, pixelY int, aa, lens [2]float32, time, wavelengthU float32) shading.Ray
}

// Config bundles everything a Context needs beyond the scene itself.
type Config struct {
	Threads             int
	MaxParallelRays     int
	TileSize            int
	Layout              tile.Layout
	Seed                uint64
	SamplesPerIteration uint32
	Crop                tile.Rect
	AdaptiveStop        framebuffer.AdaptiveConfig
}

// Observer is notified of render progress; internal/rpc's status stream and
// a CLI progress bar both implement it.
type Observer interface {
	OnPassComplete(pass int, finishedPixels, totalPixels int)
	OnTileComplete(tileIndex int)
}

// nopObserver discards every event, the default when the caller supplies
// none.
type nopObserver struct{}

func (nopObserver) OnPassComplete(int, int, int) {}
func (nopObserver) OnTileComplete(int)           {}

// Context owns one render's worker pool, tile map and framebuffer.
type Context struct {
	cfg      Config
	camera   Camera
	traverse stream.Traverser
	integ    integrator.Integrator
	scene    integrator.Scene
	fb       *framebuffer.Map
	tiles    *tile.Map
	observer Observer

	stopping int32
	sortHits bool

	metrics instruments
}

// NewContext builds a render Context. fb's width/height is the full image
// resolution; cfg.Crop restricts which pixels are actually rendered.
func NewContext(cfg Config, camera Camera, traverse stream.Traverser, integ integrator.Integrator, scene integrator.Scene, fb *framebuffer.Map, observer Observer, sortHitsByMaterial bool) *Context {
	if cfg.Threads <= 0 {
		cfg.Threads = tile.DefaultThreads()
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = tile.DefaultTileSize(cfg.Crop.Width(), cfg.Crop.Height(), cfg.Threads)
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Context{
		cfg:      cfg,
		camera:   camera,
		traverse: traverse,
		integ:    integ,
		scene:    scene,
		fb:       fb,
		tiles:    tile.NewMap(cfg.Crop, cfg.TileSize, cfg.Layout, cfg.Seed, cfg.SamplesPerIteration),
		observer: observer,
		sortHits: sortHitsByMaterial,
		metrics:  newInstruments(),
	}
}

// Stop requests cancellation; in-flight tiles finish their current pass, but
// no new tile is claimed afterward.
func (c *Context) Stop() { atomic.StoreInt32(&c.stopping, 1) }

func (c *Context) isStopping() bool { return atomic.LoadInt32(&c.stopping) != 0 }

// Run drives the render to completion: it repeats passes until the
// integrator reports no further pass is needed, the context is cancelled,
// or Stop is called. Each pass partitions tile work across cfg.Threads
// worker goroutines.
func (c *Context) Run(ctx context.Context) error {
	lctx := log.Wrap(ctx)
	lctx.Info().Log("render starting: %d tiles, %d threads", len(c.tiles.Tiles()), c.cfg.Threads)

	if err := c.integ.OnStart(ctx, c.scene); err != nil {
		return err
	}
	defer func() {
		if err := c.integ.OnEnd(ctx); err != nil {
			lctx.Error().Cause(err).Log("integrator OnEnd failed")
		}
	}()

	sem := semaphore.NewWeighted(int64(c.cfg.MaxParallelRays))

	for pass := 1; c.integ.NeedsNextPass(pass-1) && !c.isStopping(); pass++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.runPass(ctx, pass, sem); err != nil {
			return err
		}

		st := c.integ.Status()
		finished := c.fb.FinishedPixelCount(c.cfg.AdaptiveStop)
		c.observer.OnPassComplete(pass, finished, c.fb.Width()*c.fb.Height())
		lctx.Info().Log("pass %d complete: samples_done=%d finished_pixels=%d", pass, st.SamplesDone, finished)
		if st.GridOccupancyMean > 0 {
			lctx.Debug().Log("photon grid occupancy: mean=%.2f variance=%.2f", st.GridOccupancyMean, st.GridOccupancyVariance)
		}
		c.metrics.passes.Add(ctx, 1)
		c.metrics.finishedPixels.Record(ctx, int64(finished))

		if c.cfg.AdaptiveStop.Enabled && finished == c.fb.Width()*c.fb.Height() {
			break
		}
	}

	lctx.Info().Log("render finished")
	return nil
}

func (c *Context) runPass(ctx context.Context, pass int, sem *semaphore.Weighted) error {
	photonRNG := newPassRNG(c.cfg.Seed ^ uint64(pass)).Next(0)
	var photonRays []shading.Ray
	if err := c.integ.OnNextPass(ctx, c.scene, pass, photonRNG, func(r shading.Ray) {
		photonRays = append(photonRays, r)
	}); err != nil {
		return err
	}
	if len(photonRays) > 0 {
		if err := c.drainPhotonRays(ctx, photonRays, sem); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < c.cfg.Threads; w++ {
		g.Go(func() error {
			return c.worker(gctx, pass, sem)
		})
	}
	return g.Wait()
}

// drainPhotonRays traces the integrator's photon-pass rays through their own
// pipeline ahead of the eye-subpath worker pool, since photon deposit must
// finish before any tile in this pass gathers from the map.
func (c *Context) drainPhotonRays(ctx context.Context, rays []shading.Ray, sem *semaphore.Weighted) error {
	pipe := stream.New(sem, c.cfg.MaxParallelRays, c.sortHits)
	for _, r := range rays {
		if err := pipe.Push(ctx, r); err != nil {
			return err
		}
	}
	rng := newPassRNG(c.cfg.Seed ^ 0xC0FFEE)
	return c.drivePipeline(ctx, pipe, rng)
}

func (c *Context) worker(ctx context.Context, pass int, sem *semaphore.Weighted) error {
	pipe := stream.New(sem, c.cfg.MaxParallelRays, c.sortHits)
	for {
		if c.isStopping() {
			return nil
		}
		t := c.tiles.NextFree(pass)
		if t == nil {
			return nil
		}

		if err := c.renderTile(ctx, t, pipe); err != nil {
			return err
		}
		t.Inc()
		t.Release()
		c.observer.OnTileComplete(t.Index)
	}
}

func (c *Context) renderTile(ctx context.Context, t *tile.Tile, pipe *stream.Pipeline) error {
	idx := uint32(0)
	for y := t.Rect.MinY; y < t.Rect.MaxY; y++ {
		for x := t.Rect.MinX; x < t.Rect.MaxX; x++ {
			aa := t.Samplers.AA.Generate2D(idx)
			lens := t.Samplers.Lens.Generate2D(idx)
			timeSample := t.Samplers.Time.Generate1D(idx)
			wavelengthSample := t.Samplers.Spectral.Generate1D(idx)

			ray := c.camera.GenerateRay(x, y, aa, lens, timeSample, wavelengthSample)
			ray.PixelIndex = uint32(y*c.fb.Width() + x)
			if err := pipe.Push(ctx, ray); err != nil {
				return err
			}
			idx++
		}
	}

	rng := newPassRNG(t.Seed())
	return c.drivePipeline(ctx, pipe, rng)
}

// pathState accumulates one pixel's eye-path radiance across bounces: the
// pipeline processes one worker's tile sequentially, so a path's hits arrive
// one swap at a time and this map needs no locking.
type pathState struct {
	radiance spectral.Blob
	lastHit  framebuffer.Fragment
}

// drivePipeline swaps, traverses and integrates rays until the pipeline
// drains. Each OnPass call returns that hit's contribution already scaled by
// the path's throughput so far; contributions are summed per pixel across a
// path's bounces and pushed to the framebuffer as a single fragment only at
// the bounce where the integrator emits no continuation, so every eye path
// contributes exactly one fragment per pass (§4.8.5's either-continuation-
// or-terminal-fragment contract). Photon/light-subpath rays bypass the
// framebuffer entirely, as before.
func (c *Context) drivePipeline(ctx context.Context, pipe *stream.Pipeline, rng *passRNG) error {
	paths := make(map[uint32]*pathState)

	for pipe.Len() > 0 {
		pipe.Swap()
		hits := pipe.Traverse(ctx, c.traverse)
		for _, h := range hits {
			if h.Ray.Flags.Has(shading.FlagLightSubpath) {
				c.integ.OnPass(ctx, c.scene, h.Ray, h.Closure, h.Hit, rng.Next(h.Ray.PixelIndex), func(next shading.Ray) {
					_ = pipe.Push(ctx, next)
				})
				continue
			}

			continued := false
			contribution := c.integ.OnPass(ctx, c.scene, h.Ray, h.Closure, h.Hit, rng.Next(h.Ray.PixelIndex), func(next shading.Ray) {
				continued = true
				_ = pipe.Push(ctx, next)
			})

			st := paths[h.Ray.PixelIndex]
			if st == nil {
				st = &pathState{}
				paths[h.Ray.PixelIndex] = st
			}
			st.radiance = st.radiance.Add(contribution)
			st.lastHit = framebuffer.Fragment{
				Position:   h.Closure.P,
				Normal:     h.Closure.N,
				Geo:        h.Closure.Ng,
				MaterialID: h.Closure.MaterialID,
				EntityID:   h.Closure.EntityID,
				Time:       h.Ray.Time,
				Depth:      float32(h.Ray.Depth),
			}

			if !continued {
				frag := st.lastHit
				frag.Spectral = st.radiance
				c.fb.Push(int(h.Ray.PixelIndex)%c.fb.Width(), int(h.Ray.PixelIndex)/c.fb.Width(), frag)
				delete(paths, h.Ray.PixelIndex)
			}
		}
	}
	return nil
}
