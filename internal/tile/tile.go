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

// Package tile implements the render tile work-unit state machine and the
// tile map that partitions an image into tiles under one of three layouts.
package tile

import (
	"sync/atomic"

	"github.com/PearCoding/PearRay-go/internal/sampler"
)

// State is a tile's claim state: Map.NextFree moves it Free -> Working and
// Release returns it to Free after each pass. No transition in this package
// sets Done.
type State int32

const (
	Free State = iota
	Working
	Done
)

// Rect is a rectangle in image space, half-open on max.
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

func (r Rect) Width() int  { return r.MaxX - r.MinX }
func (r Rect) Height() int { return r.MaxY - r.MinY }
func (r Rect) Area() int   { return r.Width() * r.Height() }

// Samplers bundles the four independent sample generators a tile owns: one
// each for antialiasing, lens (depth of field), time (motion blur) and
// spectral (hero-wavelength) sampling.
type Samplers struct {
	AA       sampler.Sampler
	Lens     sampler.Sampler
	Time     sampler.Sampler
	Spectral sampler.Sampler
}

// Stats accumulates a tile's local statistics block; workers update it
// without synchronization since only the tile's owning worker touches it
// between Free and its return to Free.
type Stats struct {
	RaysCast   int64
	PrimaryHits int64
	ShadowHits int64
}

// Tile is the only work unit handed to a render worker.
type Tile struct {
	Index int
	Rect  Rect

	state     int32 // atomic State
	seed      uint64
	iteration int32
	Samplers  Samplers
	Stats     Stats
}

// NewTile constructs a tile with its per-tile RNG seed derived as
// global_seed XOR tile_index. The AA, lens and spectral samplers are seeded
// from it; the Halton time sampler takes no seed.
func NewTile(index int, rect Rect, globalSeed uint64, samplesPerIteration uint32) *Tile {
	seed := globalSeed ^ uint64(index)
	return &Tile{
		Index: index,
		Rect:  rect,
		seed:  seed,
		Samplers: Samplers{
			AA:       sampler.NewMultiJittered(samplesPerIteration, uint32(seed)),
			Lens:     sampler.NewStratified(samplesPerIteration, sampler.NewRNG(seed^0x1)),
			Time:     sampler.NewHalton(),
			Spectral: sampler.NewSobol(4, sampler.NewRNG(seed^0x2)),
		},
	}
}

func (t *Tile) Seed() uint64 { return t.seed }

func (t *Tile) State() State { return State(atomic.LoadInt32(&t.state)) }

// tryTransition atomically moves the tile from `from` to `to`, returning
// whether it succeeded.
func (t *Tile) tryTransition(from, to State) bool {
	return atomic.CompareAndSwapInt32(&t.state, int32(from), int32(to))
}

// Iteration returns the tile's current pass index.
func (t *Tile) Iteration() int { return int(atomic.LoadInt32(&t.iteration)) }

// Inc advances the tile's iteration counter, called by a worker after it
// finishes a pass over the tile.
func (t *Tile) Inc() {
	atomic.AddInt32(&t.iteration, 1)
}

// Release returns the tile to Free after a worker finishes a pass over it.
func (t *Tile) Release() {
	atomic.StoreInt32(&t.state, int32(Free))
}
