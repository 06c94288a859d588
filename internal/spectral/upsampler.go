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

package spectral

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// coeffsPerCell is fixed by the Jakob-Hanika model: (a, b, c) per grid cell.
const coeffsPerCell = 3

// Upsampler converts an (r,g,b) triple into the three parametric coefficients
// of a smooth spectral curve, per Jakob & Hanika, "A Low-Dimensional Function
// Space for Efficient Spectral Upsampling" (EGSR 2019).
type Upsampler struct {
	resolution uint32
	scale      []float32
	data       []float32
}

// LoadUpsampler reads a coefficient table: 4-byte "SPEC" tag, a u32
// resolution, resolution floats of scale, then resolution^3*3*3 floats of
// data, all little-endian.
func LoadUpsampler(r io.Reader) (*Upsampler, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "reading upsampler tag")
	}
	if string(header[:]) != "SPEC" {
		return nil, errors.Errorf("invalid upsampler table magic %q", header)
	}

	var resolution uint32
	if err := binary.Read(r, binary.LittleEndian, &resolution); err != nil {
		return nil, errors.Wrap(err, "reading upsampler resolution")
	}

	scale := make([]float32, resolution)
	if err := binary.Read(r, binary.LittleEndian, scale); err != nil {
		return nil, errors.Wrap(err, "reading upsampler scale table")
	}

	dataSize := uint64(resolution) * uint64(resolution) * uint64(resolution) * 3 * coeffsPerCell
	data := make([]float32, dataSize)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, errors.Wrap(err, "reading upsampler data table")
	}

	return &Upsampler{resolution: resolution, scale: scale, data: data}, nil
}

// findInterval performs the same binary search the reference upsampler uses:
// the largest index i such that values[i] < x, clamped to [0, size-2].
func findInterval(values []float32, x float32) int {
	lastInterval := len(values) - 2
	left, size := 0, lastInterval
	for size > 0 {
		half := size >> 1
		middle := left + half + 1
		if values[middle] < x {
			left = middle
			size -= half + 1
		} else {
			size = half
		}
	}
	if left > lastInterval {
		return lastInterval
	}
	return left
}

// Prepare returns the parametric coefficients reproducing an (r,g,b) triple,
// in the sense that Compute(Prepare(r,g,b), ...) integrates back to ~(r,g,b).
func (u *Upsampler) Prepare(r, g, b float32) Parametric {
	if r == 0 && g == 0 && b == 0 {
		return ZeroParametric
	}

	arr := [3]float32{r, g, b}
	res := u.resolution

	largest := 0
	for j := 1; j < 3; j++ {
		if arr[largest] < arr[j] {
			largest = j
		}
	}

	z := arr[largest]
	scale := float32(res-1) / z
	x := arr[(largest+1)%3] * scale
	y := arr[(largest+2)%3] * scale

	xi := clampU32(uint32(x), res-2)
	yi := clampU32(uint32(y), res-2)
	zi := uint32(findInterval(u.scale[:res], z))

	dx := uint32(coeffsPerCell)
	dy := coeffsPerCell * res
	dz := coeffsPerCell * res * res
	off := (((uint32(largest)*res+zi)*res+yi)*res + xi) * coeffsPerCell

	x1 := clamp01(x - float32(xi))
	x0 := 1 - x1
	y1 := clamp01(y - float32(yi))
	y0 := 1 - y1
	z1 := clamp01((z - u.scale[zi]) / (u.scale[zi+1] - u.scale[zi]))
	z0 := 1 - z1

	var coeffs [coeffsPerCell]float32
	for j := uint32(0); j < coeffsPerCell; j++ {
		o := off + j
		lo := lerp2(u.data[o], u.data[o+dx], x0, x1)
		hi := lerp2(u.data[o+dy], u.data[o+dx+dy], x0, x1)
		front := y0*lo + y1*hi

		lo2 := lerp2(u.data[o+dz], u.data[o+dx+dz], x0, x1)
		hi2 := lerp2(u.data[o+dy+dz], u.data[o+dx+dy+dz], x0, x1)
		back := y0*lo2 + y1*hi2

		coeffs[j] = z0*front + z1*back
	}

	return Parametric{A: coeffs[0], B: coeffs[1], C: coeffs[2]}
}

func lerp2(a, b, w0, w1 float32) float32 { return a*w0 + b*w1 }

func clampU32(v, max uint32) uint32 {
	if v > max {
		return max
	}
	return v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Compute evaluates a parametric spectrum at a hero-wavelength quartet. For
// reflective upsampling the result lies in [0,1]; illuminant upsampling
// callers scale the result by a power factor since the raw curve normalizes
// near unit.
func Compute(p Parametric, wavelengths Wavelengths) Blob {
	var out Blob
	for i, lambda := range wavelengths {
		x := (p.A*lambda+p.B)*lambda + p.C
		y := float32(1.0 / math.Sqrt(float64(x*x+1)))
		out[i] = 0.5*x*y + 0.5
	}
	return out
}
