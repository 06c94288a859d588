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

// Package photon implements the uniform spatial hash grid over photon
// deposits used by progressive photon mapping, with sphere/dome gather
// queries.
package photon

import (
	"math"

	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// octEncode packs a unit direction into two bytes using an octahedral
// mapping, keeping a Photon to position + power + two bookkeeping bytes.
func octEncode(d shading.Vec3) [2]int8 {
	invL1 := 1.0 / (math.Abs(d.X) + math.Abs(d.Y) + math.Abs(d.Z))
	x, y := d.X*invL1, d.Y*invL1
	if d.Z < 0 {
		x, y = (1-math.Abs(y))*sign(x), (1-math.Abs(x))*sign(y)
	}
	return [2]int8{int8(x * 127), int8(y * 127)}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func octDecode(e [2]int8) shading.Vec3 {
	x := float64(e[0]) / 127
	y := float64(e[1]) / 127
	z := 1 - math.Abs(x) - math.Abs(y)
	if z < 0 {
		ox, oy := x, y
		x = (1 - math.Abs(oy)) * sign(ox)
		y = (1 - math.Abs(ox)) * sign(oy)
	}
	return shading.Vec3{X: x, Y: y, Z: z}.Normalize()
}

// Photon is an append-only deposit: position, incident direction (octahedral
// encoded), power, and two bytes of bookkeeping (bounce depth, diffuse flag).
type Photon struct {
	Position shading.Vec3
	DirOct   [2]int8
	Power    spectral.Blob
	Bounce   uint8
	Flags    uint8
}

func NewPhoton(pos, dir shading.Vec3, power spectral.Blob, bounce uint8) Photon {
	return Photon{Position: pos, DirOct: octEncode(dir), Power: power, Bounce: bounce}
}

func (p Photon) Direction() shading.Vec3 { return octDecode(p.DirOct) }
