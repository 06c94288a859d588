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
	"math"

	"github.com/pkg/errors"

	"github.com/PearCoding/PearRay-go/internal/plugin"
	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/shading/node"
)

// Demo names a built-in scene this package can construct in-process. Real
// scene description parsing is out of scope (§1 Non-goals); these exist so
// the CLI entry point has something to point a render Context at without a
// DataLisp front end.
type Demo string

const (
	// DemoFurnace is spec.md §8's furnace test: a uniform white environment
	// and a single diffuse white sphere.
	DemoFurnace Demo = "furnace"
	// DemoCornell is a simplified Cornell box: red/green side walls, a
	// white floor/ceiling/back wall, a small ceiling area light, and a
	// diffuse sphere resting on the floor. The scene contains no cube.
	DemoCornell Demo = "cornell"
)

// BuildResult bundles everything NewContext needs beyond the integrator.
type BuildResult struct {
	World  *World
	Camera *PerspectiveCamera
}

// BuildDemo constructs one of the named built-in scenes.
func BuildDemo(name Demo, width, height int) (*BuildResult, error) {
	switch name {
	case DemoFurnace:
		return buildFurnace(width, height), nil
	case DemoCornell:
		return buildCornell(width, height), nil
	default:
		return nil, errors.Errorf("unknown demo scene %q", name)
	}
}

func mustAddMaterial(ctx context.Context, b *Builder, id int32, name string, params plugin.Params) {
	if err := b.AddMaterial(ctx, id, name, params); err != nil {
		panic(err) // only reachable if a built-in demo scene references a nonexistent factory
	}
}

func mustAddEmission(ctx context.Context, b *Builder, id int32, name string, params plugin.Params) {
	if err := b.AddEmission(ctx, id, name, params); err != nil {
		panic(err)
	}
}

func mustAddEntity(ctx context.Context, b *Builder, id int32, meshName string, meshParams plugin.Params, materialID, emissionID int32) {
	if err := b.AddEntity(ctx, id, meshName, meshParams, materialID, emissionID); err != nil {
		panic(err)
	}
}

func buildFurnace(width, height int) *BuildResult {
	ctx := context.Background()
	b := NewBuilder(NewBuiltinRegistry())

	white := b.Arena().AddSpectral(node.ConstBlob{1, 1, 1, 1})
	mustAddMaterial(ctx, b, 1, "diffuse", plugin.NewParams(map[string]interface{}{"albedo": int32(white)}))
	mustAddEntity(ctx, b, 1, "sphere", plugin.NewParams(map[string]interface{}{"radius": 1.0}), 1, 0)

	b.AddInfiniteLight(NewEnvironmentLight(b.Arena(), white))

	w := b.Build()
	cam := NewPerspectiveCamera(
		shading.Vec3{X: 0, Y: 0, Z: -4},
		shading.Vec3{X: 0, Y: 0, Z: 0},
		shading.Vec3{X: 0, Y: 1, Z: 0},
		40*math.Pi/180, width, height,
	)
	return &BuildResult{World: w, Camera: cam}
}

func buildCornell(width, height int) *BuildResult {
	ctx := context.Background()
	b := NewBuilder(NewBuiltinRegistry())
	arena := b.Arena()

	red := arena.AddSpectral(node.ConstBlob{0.63, 0.06, 0.05, 0.0})
	green := arena.AddSpectral(node.ConstBlob{0.14, 0.45, 0.09, 0.0})
	white := arena.AddSpectral(node.ConstBlob{0.73, 0.73, 0.73, 0.73})
	lightColor := arena.AddSpectral(node.ConstBlob{17, 17, 17, 17})

	mustAddMaterial(ctx, b, 1, "diffuse", plugin.NewParams(map[string]interface{}{"albedo": int32(red)}))
	mustAddMaterial(ctx, b, 2, "diffuse", plugin.NewParams(map[string]interface{}{"albedo": int32(green)}))
	mustAddMaterial(ctx, b, 3, "diffuse", plugin.NewParams(map[string]interface{}{"albedo": int32(white)}))
	mustAddEmission(ctx, b, 1, "diffuse", plugin.NewParams(map[string]interface{}{"radiance": int32(lightColor), "one_sided": true}))

	const s = 2.0
	left := NewPlane(shading.Vec3{X: -s, Y: -s, Z: -s}, shading.Vec3{Z: 2 * s}, shading.Vec3{Y: 2 * s})
	right := NewPlane(shading.Vec3{X: s, Y: -s, Z: -s}, shading.Vec3{Y: 2 * s}, shading.Vec3{Z: 2 * s})
	floor := NewPlane(shading.Vec3{X: -s, Y: -s, Z: -s}, shading.Vec3{Z: 2 * s}, shading.Vec3{X: 2 * s})
	ceil := NewPlane(shading.Vec3{X: -s, Y: s, Z: s}, shading.Vec3{Z: -2 * s}, shading.Vec3{X: 2 * s})
	back := NewPlane(shading.Vec3{X: -s, Y: -s, Z: s}, shading.Vec3{Y: 2 * s}, shading.Vec3{X: 2 * s})
	lightQuad := NewPlane(shading.Vec3{X: -0.3, Y: s - 0.01, Z: -0.3}, shading.Vec3{Z: 0.6}, shading.Vec3{X: 0.6})

	w := b.Build()
	w.AddEntity(Entity{ID: 2, Mesh: left, MaterialID: 1})
	w.AddEntity(Entity{ID: 3, Mesh: right, MaterialID: 2})
	w.AddEntity(Entity{ID: 4, Mesh: floor, MaterialID: 3})
	w.AddEntity(Entity{ID: 5, Mesh: ceil, MaterialID: 3})
	w.AddEntity(Entity{ID: 6, Mesh: back, MaterialID: 3})
	w.AddEntity(Entity{ID: 7, Mesh: lightQuad, MaterialID: 3, EmissionID: 1})
	mustAddEntity(ctx, b, 8, "sphere", plugin.NewParams(map[string]interface{}{"radius": 0.6, "center_y": -1.4}), 3, 0)

	cam := NewPerspectiveCamera(
		shading.Vec3{X: 0, Y: 0, Z: -6},
		shading.Vec3{X: 0, Y: 0, Z: 0},
		shading.Vec3{X: 0, Y: 1, Z: 0},
		38*math.Pi/180, width, height,
	)
	return &BuildResult{World: w, Camera: cam}
}
