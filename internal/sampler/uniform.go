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

package sampler

// Uniform lays samples on a regular lattice: a 1D index i maps to the center
// of the i-th of N equal bins; 2D uses a sqrt(N) x ceil(N/sqrt(N)) grid.
type Uniform struct {
	count uint32
}

// NewUniform returns a Uniform sampler over a sequence of the given length.
func NewUniform(count uint32) *Uniform { return &Uniform{count: count} }

func (u *Uniform) Generate1D(i uint32) float32 {
	n := u.count
	if n == 0 {
		n = 1
	}
	return (float32(i%n) + 0.5) / float32(n)
}

func (u *Uniform) Generate2D(i uint32) [2]float32 {
	nx := isqrt(u.count)
	if nx == 0 {
		nx = 1
	}
	ny := (u.count + nx - 1) / nx
	x := i % nx
	y := (i / nx) % ny
	return [2]float32{
		(float32(x) + 0.5) / float32(nx),
		(float32(y) + 0.5) / float32(ny),
	}
}

func (u *Uniform) Generate3D(i uint32) [3]float32 {
	xy := u.Generate2D(i)
	return [3]float32{xy[0], xy[1], u.Generate1D(i)}
}
