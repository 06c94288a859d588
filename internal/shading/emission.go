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

import (
	"github.com/PearCoding/PearRay-go/internal/shading/node"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

// DiffuseEmission radiates a constant spectral radiance over the hemisphere
// above the geometric normal. When OneSided is set, the backward hemisphere
// contributes nothing; otherwise sidedness is unconstrained, per the spec.
type DiffuseEmission struct {
	Radiance node.Handle
	arena    *node.Arena
	OneSided bool
}

func NewDiffuseEmission(arena *node.Arena, radiance node.Handle, oneSided bool) *DiffuseEmission {
	return &DiffuseEmission{Radiance: radiance, arena: arena, OneSided: oneSided}
}

func (e *DiffuseEmission) Eval(c Closure) spectral.Blob {
	if e.OneSided && c.NgdotV <= 0 {
		return spectral.Blob{}
	}
	return e.arena.SpectralAt(e.Radiance, c)
}

func (e *DiffuseEmission) Freeze() {}
