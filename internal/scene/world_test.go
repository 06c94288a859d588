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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PearCoding/PearRay-go/internal/plugin"
	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/shading/node"
	"github.com/PearCoding/PearRay-go/internal/spectral"
	"github.com/PearCoding/PearRay-go/internal/stream"
)

func TestSphereIntersectHitsNearestPoint(t *testing.T) {
	s := Sphere{Center: shading.Vec3{Z: 5}, Radius: 1}
	ray := shading.Ray{Origin: shading.Vec3{}, Direction: shading.Vec3{Z: 1}}
	tHit, p, n, _, _, ok := s.Intersect(ray, 1e-4, 1e9)
	require.True(t, ok)
	require.InDelta(t, 4.0, tHit, 1e-9)
	require.InDelta(t, -1.0, n.Z, 1e-9)
	require.InDelta(t, 4.0, p.Z, 1e-9)
}

func TestWorldVisibleFalseWhenOccluded(t *testing.T) {
	w := NewWorld()
	w.AddEntity(Entity{ID: 1, Mesh: Sphere{Center: shading.Vec3{Z: 5}, Radius: 1}})
	require.False(t, w.Visible(context.Background(), shading.Vec3{}, shading.Vec3{Z: 10}, 0))
	require.True(t, w.Visible(context.Background(), shading.Vec3{}, shading.Vec3{Z: 2}, 0))
}

func TestWorldVisibleToInfinityFalseWhenOccluded(t *testing.T) {
	w := NewWorld()
	w.AddEntity(Entity{ID: 1, Mesh: Sphere{Center: shading.Vec3{Z: 5}, Radius: 1}})
	require.False(t, w.VisibleToInfinity(context.Background(), shading.Vec3{}, shading.Vec3{Z: 1}, 0))
	require.True(t, w.VisibleToInfinity(context.Background(), shading.Vec3{}, shading.Vec3{X: 1}, 0))
}

func TestWorldTraversePopulatesClosureOnHit(t *testing.T) {
	w := NewWorld()
	w.AddEntity(Entity{ID: 7, MaterialID: 3, Mesh: Sphere{Center: shading.Vec3{Z: 5}, Radius: 1}})

	rays := []shading.Ray{{Origin: shading.Vec3{}, Direction: shading.Vec3{Z: 1}}}
	hits := make([]stream.Hit, 1)
	w.Traverse(context.Background(), rays, hits)

	require.True(t, hits[0].Hit)
	require.Equal(t, int32(7), hits[0].Closure.EntityID)
	require.Equal(t, int32(3), hits[0].Closure.MaterialID)
}

func TestWorldTraverseMissCarriesWavelengths(t *testing.T) {
	w := NewWorld()
	rays := []shading.Ray{{Direction: shading.Vec3{Z: 1}, Wavelengths: spectral.Wavelengths{500, 550, 600, 650}}}
	hits := make([]stream.Hit, 1)
	w.Traverse(context.Background(), rays, hits)

	require.False(t, hits[0].Hit)
	require.Equal(t, spectral.Wavelengths{500, 550, 600, 650}, hits[0].Closure.Wavelengths)
}

func TestSampleLightPicksEmissiveEntityOnly(t *testing.T) {
	w := NewWorld()
	w.AddEntity(Entity{ID: 1, Mesh: Sphere{Radius: 1}}) // non-emissive
	w.AddEntity(Entity{ID: 2, EmissionID: 9, Mesh: Sphere{Center: shading.Vec3{X: 10}, Radius: 1}})

	id, _, _, pdf, ok := w.SampleLight([3]float64{0.9, 0.1, 0.1})
	require.True(t, ok)
	require.Equal(t, int32(9), id)
	require.Greater(t, pdf, 0.0)
	require.Equal(t, 1, w.LightCount())
}

func TestBuilderWiresRegistryFactories(t *testing.T) {
	registry := NewBuiltinRegistry()
	b := NewBuilder(registry)
	albedo := b.Arena().AddSpectral(node.ConstBlob{0.8, 0.8, 0.8, 0.8})

	ctx := context.Background()
	require.NoError(t, b.AddMaterial(ctx, 1, "diffuse", plugin.NewParams(map[string]interface{}{"albedo": int32(albedo)})))
	require.NoError(t, b.AddEntity(ctx, 1, "sphere", plugin.NewParams(map[string]interface{}{"radius": 2.0}), 1, 0))

	world := b.Build()
	require.Len(t, world.Entities, 1)
	mat, ok := world.Lookup(1)
	require.True(t, ok)

	c := shading.NewClosure(shading.Vec3{}, shading.Vec3{Z: 1}, shading.Vec3{Z: 1}, shading.Vec3{Z: -1}, spectral.Wavelengths{500, 550, 600, 650})
	eval := mat.Eval(c, shading.Vec3{Z: 1}, 1)
	require.False(t, eval.IsZero())
}

func TestBuilderUnknownFactoryIsConfigurationError(t *testing.T) {
	b := NewBuilder(NewBuiltinRegistry())
	err := b.AddMaterial(context.Background(), 1, "nonexistent", plugin.NewParams(nil))
	require.Error(t, err)
}
