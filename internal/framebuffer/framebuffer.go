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

// Package framebuffer implements the engine's named-channel output map: the
// mandatory spectral/sample-count/variance channels, optional AOVs, and the
// adaptive-stop predicate driven off the variance channel.
package framebuffer

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// Feedback bits flag per-pixel numerical faults (§7).
type Feedback uint8

const (
	FeedbackNaN Feedback = 1 << iota
	FeedbackInfinite
	FeedbackNegative
	FeedbackMissingMaterial
	FeedbackMissingEmission
)

// Fragment is the contribution of a single sample to a pixel.
type Fragment struct {
	Spectral       spectral.Blob
	Position       shading.Vec3
	Normal, Geo    shading.Vec3
	Tangent, Bitangent shading.Vec3
	View           shading.Vec3
	UVW            shading.UVW
	MaterialID     int32
	EntityID       int32
	Time           float32
	Depth          float32
}

type pixel struct {
	mu sync.Mutex

	spectral    spectral.Blob
	sampleCount uint32
	mean        float32 // running mean luminance, for Welford variance
	m2          float32 // running sum of squared deviation
	feedback    Feedback

	hasPosition bool
	position    shading.Vec3
	normal, geo shading.Vec3
	tangent, bitangent shading.Vec3
	view        shading.Vec3
	uvw         shading.UVW
	materialID  int32
	entityID    int32
	time        float32
	depth       float32
}

// Channels selects which optional auxiliary channels a Map maintains.
type Channels struct {
	Position  bool
	Normals   bool
	Tangents  bool
	View      bool
	UVW       bool
	MaterialID bool
	EntityID  bool
	Time      bool
	Depth     bool
}

// Map is the named collection of per-pixel channels sharing one resolution.
type Map struct {
	width, height int
	pixels        []pixel
	channels      Channels
}

// NewMap allocates a framebuffer of width x height pixels with the given
// optional channels enabled.
func NewMap(width, height int, channels Channels) *Map {
	return &Map{
		width:    width,
		height:   height,
		pixels:   make([]pixel, width*height),
		channels: channels,
	}
}

func (m *Map) index(x, y int) int { return y*m.width + x }

// Push atomically folds a new sample into pixel (x,y): updates spectral,
// sample-count and variance together, then lerps present auxiliary channels
// by 1/(n+1) against their previous value; the material and entity id
// channels take the newest sample's id. NaN/Inf/negative spectral samples
// are flagged in the feedback bitset and discarded rather than pushed.
func (m *Map) Push(x, y int, f Fragment) {
	p := &m.pixels[m.index(x, y)]

	p.mu.Lock()
	defer p.mu.Unlock()

	if f.Spectral.HasNonFinite() {
		for _, v := range f.Spectral {
			if math.IsNaN(float64(v)) {
				p.feedback |= FeedbackNaN
			} else if math.IsInf(float64(v), 0) {
				p.feedback |= FeedbackInfinite
			}
		}
		return
	}
	if f.Spectral.HasNegative() {
		p.feedback |= FeedbackNegative
		return
	}

	n := p.sampleCount
	t := 1.0 / float32(n+1)

	// Welford's online algorithm against the luminance proxy.
	luminance := f.Spectral.Avg()
	delta := luminance - p.mean
	p.mean += delta / float32(n+1)
	delta2 := luminance - p.mean
	p.m2 += delta * delta2

	p.spectral = p.spectral.Lerp(f.Spectral, t)

	if m.channels.Position {
		p.position = p.position.Lerp(f.Position, t)
		p.hasPosition = true
	}
	if m.channels.Normals {
		p.normal = p.normal.Lerp(f.Normal, t)
		p.geo = p.geo.Lerp(f.Geo, t)
	}
	if m.channels.Tangents {
		p.tangent = p.tangent.Lerp(f.Tangent, t)
		p.bitangent = p.bitangent.Lerp(f.Bitangent, t)
	}
	if m.channels.View {
		p.view = p.view.Lerp(f.View, t)
	}
	if m.channels.UVW {
		w := float64(t)
		p.uvw.U += (f.UVW.U - p.uvw.U) * w
		p.uvw.V += (f.UVW.V - p.uvw.V) * w
		p.uvw.W += (f.UVW.W - p.uvw.W) * w
		p.uvw.DUVWdX = p.uvw.DUVWdX.Lerp(f.UVW.DUVWdX, t)
		p.uvw.DUVWdY = p.uvw.DUVWdY.Lerp(f.UVW.DUVWdY, t)
	}
	if m.channels.Time {
		p.time = lerp32(p.time, f.Time, t)
	}
	if m.channels.Depth {
		p.depth = lerp32(p.depth, f.Depth, t)
	}
	if m.channels.MaterialID {
		p.materialID = f.MaterialID
	}
	if m.channels.EntityID {
		p.entityID = f.EntityID
	}

	atomic.AddUint32(&p.sampleCount, 1)
}

func lerp32(a, b, t float32) float32 { return (1-t)*a + t*b }

// Quality returns the pixel's current variance/quality estimate.
func (m *Map) Quality(x, y int) float32 {
	p := &m.pixels[m.index(x, y)]
	p.mu.Lock()
	defer p.mu.Unlock()
	n := p.sampleCount
	if n < 2 {
		return 0
	}
	return p.m2 / float32(n-1)
}

// SampleCount returns the number of samples pushed into pixel (x,y).
func (m *Map) SampleCount(x, y int) uint32 {
	return atomic.LoadUint32(&m.pixels[m.index(x, y)].sampleCount)
}

// Spectral returns the converged spectral value at pixel (x,y).
func (m *Map) Spectral(x, y int) spectral.Blob {
	p := &m.pixels[m.index(x, y)]
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spectral
}

// Feedback returns the accumulated feedback bitset at pixel (x,y).
func (m *Map) Feedback(x, y int) Feedback {
	p := &m.pixels[m.index(x, y)]
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.feedback
}

// AdaptiveConfig controls IsPixelFinished.
type AdaptiveConfig struct {
	Enabled       bool
	MinSamples    uint32
	TargetQuality float32
}

// IsPixelFinished reports whether pixel (x,y) has converged: its sample
// count has reached MinSamples, and either adaptive stopping is disabled or
// its quality has reached TargetQuality.
func (m *Map) IsPixelFinished(x, y int, cfg AdaptiveConfig) bool {
	if m.SampleCount(x, y) < cfg.MinSamples {
		return false
	}
	if !cfg.Enabled {
		return true
	}
	return m.Quality(x, y) <= cfg.TargetQuality
}

// FinishedPixelCount returns the number of pixels satisfying
// IsPixelFinished, used by progress reporting and by adaptive samplers to
// skip converged pixels.
func (m *Map) FinishedPixelCount(cfg AdaptiveConfig) int {
	count := 0
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.IsPixelFinished(x, y, cfg) {
				count++
			}
		}
	}
	return count
}

func (m *Map) Width() int  { return m.width }
func (m *Map) Height() int { return m.height }
