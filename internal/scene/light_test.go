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

package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/shading/node"
	"github.com/PearCoding/PearRay-go/internal/spectral"
)

func TestEnvironmentLightSampleDirectionIsCosineWeighted(t *testing.T) {
	arena := node.NewArena()
	radiance := arena.AddSpectral(node.ConstBlob{1, 1, 1, 1})
	light := NewEnvironmentLight(arena, radiance)

	c := shading.NewClosure(shading.Vec3{}, shading.Vec3{Z: 1}, shading.Vec3{Z: 1}, shading.Vec3{Z: -1}, spectral.Wavelengths{500, 550, 600, 650})
	dir, pdf := light.SampleDirection(c, [2]float64{0.3, 0.7})
	require.Greater(t, pdf, 0.0)
	require.Greater(t, dir.Dot(c.N), 0.0)
}

func TestDistantLightSampleDirectionIsDirac(t *testing.T) {
	arena := node.NewArena()
	radiance := arena.AddSpectral(node.ConstBlob{1, 1, 1, 1})
	light := NewDistantLight(arena, shading.Vec3{Z: 1}, radiance)

	c := shading.NewClosure(shading.Vec3{}, shading.Vec3{Z: 1}, shading.Vec3{Z: 1}, shading.Vec3{Z: -1}, spectral.Wavelengths{500, 550, 600, 650})
	dir, pdf := light.SampleDirection(c, [2]float64{0, 0})
	require.True(t, math.IsInf(pdf, 1))
	require.InDelta(t, -1.0, dir.Z, 1e-9)
}

func TestBackgroundSampleDirectionPreDividesDiracRadianceByPickProbability(t *testing.T) {
	arena := node.NewArena()
	radiance := arena.AddSpectral(node.ConstBlob{1, 1, 1, 1})
	sun := NewDistantLight(arena, shading.Vec3{Z: 1}, radiance)
	sky := NewEnvironmentLight(arena, radiance)
	bg := Background{Lights: []InfiniteLight{sun, sky}}

	c := shading.NewClosure(shading.Vec3{}, shading.Vec3{Z: 1}, shading.Vec3{Z: 1}, shading.Vec3{Z: -1}, spectral.Wavelengths{500, 550, 600, 650})

	// rnd[2] picks the light index; 0.0 selects index 0 (the Dirac sun).
	dir, rad, pdf, ok := bg.SampleDirection(c, [3]float64{0, 0, 0})
	require.True(t, ok)
	require.True(t, math.IsInf(pdf, 1))
	require.InDelta(t, -1.0, dir.Z, 1e-9)
	require.InDelta(t, 2.0, rad[0], 1e-5)
}

func TestBackgroundSampleDirectionEmptyIsNotOK(t *testing.T) {
	bg := Background{}
	c := shading.NewClosure(shading.Vec3{}, shading.Vec3{Z: 1}, shading.Vec3{Z: 1}, shading.Vec3{Z: -1}, spectral.Wavelengths{500, 550, 600, 650})
	_, _, _, ok := bg.SampleDirection(c, [3]float64{0, 0, 0})
	require.False(t, ok)
}
