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

package shading

import "github.com/PearCoding/PearRay-go/internal/spectral"

// Flags classify a ray's role in the transport algorithm driving it.
type Flags uint8

const (
	FlagCamera Flags = 1 << iota
	FlagLightSubpath
	FlagShadowProbe
	FlagDebug
)

// Ray is a value type: next-bounce rays are derived, never mutated in place.
type Ray struct {
	Origin      Vec3
	Direction   Vec3 // normalized
	PixelIndex  uint32
	Depth       int
	Wavelengths spectral.Wavelengths
	Time        float32
	Weight      float32
	Flags       Flags
}

// Next derives the next-bounce ray: it increments depth and inherits the
// pixel index, time and wavelength quartet of the parent ray.
func (r Ray) Next(origin, direction Vec3) Ray {
	return Ray{
		Origin:      origin,
		Direction:   direction.Normalize(),
		PixelIndex:  r.PixelIndex,
		Depth:       r.Depth + 1,
		Wavelengths: r.Wavelengths,
		Time:        r.Time,
		Weight:      r.Weight,
		Flags:       r.Flags,
	}
}

// At evaluates the ray's position at parameter t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }
