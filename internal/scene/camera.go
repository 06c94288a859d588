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

// Package scene is the minimal scene data model and traversal collaborator:
// camera, entities, infinite lights and a linear-scan World that implements
// internal/stream.Traverser and internal/integrator.Scene's query
// interfaces. Parsing a DataLisp scene description into this model is out of
// scope (spec.md §1 Non-goals); World is built directly by a Builder that
// exercises internal/plugin's factory registry, the boundary a future parser
// would sit behind.
package scene

import (
	"math"

	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// PerspectiveCamera is a thin-lens pinhole camera: aa jitters the pixel
// footprint for antialiasing, lens samples a disc of radius LensRadius for
// depth of field (a point aperture when LensRadius is 0).
type PerspectiveCamera struct {
	Eye, Forward, Up, Right shading.Vec3
	Width, Height           int
	FovY                    float64 // radians
	LensRadius              float64
	FocalDistance           float64
}

// NewPerspectiveCamera builds a camera looking from eye to target, with up
// completing the frame. width/height is the image resolution fovY subtends.
func NewPerspectiveCamera(eye, target, up shading.Vec3, fovY float64, width, height int) *PerspectiveCamera {
	forward := target.Sub(eye).Normalize()
	right := forward.Cross(up).Normalize()
	trueUp := right.Cross(forward).Normalize()
	return &PerspectiveCamera{
		Eye: eye, Forward: forward, Up: trueUp, Right: right,
		Width: width, Height: height, FovY: fovY, FocalDistance: 1,
	}
}

// GenerateRay implements internal/render.Camera.
func (c *PerspectiveCamera) GenerateRay(pixelX, pixelY int, aa, lens [2]float32, time, wavelengthU float32) shading.Ray {
	aspect := float64(c.Width) / float64(c.Height)
	tanHalfFovY := math.Tan(c.FovY / 2)

	px := (float64(pixelX) + float64(aa[0])) / float64(c.Width)
	py := (float64(pixelY) + float64(aa[1])) / float64(c.Height)

	ndcX := (2*px - 1) * tanHalfFovY * aspect
	ndcY := (1 - 2*py) * tanHalfFovY

	dir := c.Forward.Add(c.Right.Scale(ndcX)).Add(c.Up.Scale(ndcY)).Normalize()

	origin := c.Eye
	if c.LensRadius > 0 {
		lr, ltheta := math.Sqrt(float64(lens[0]))*c.LensRadius, float64(lens[1])*2*math.Pi
		lensOffset := c.Right.Scale(lr * math.Cos(ltheta)).Add(c.Up.Scale(lr * math.Sin(ltheta)))
		focalPoint := c.Eye.Add(dir.Scale(c.FocalDistance))
		origin = c.Eye.Add(lensOffset)
		dir = focalPoint.Sub(origin).Normalize()
	}

	return shading.Ray{
		Origin:      origin,
		Direction:   dir,
		PixelIndex:  uint32(pixelY*c.Width + pixelX),
		Wavelengths: spectral.SampleWavelengths(wavelengthU),
		Time:        time,
		Weight:      1,
		Flags:       shading.FlagCamera,
	}
}
