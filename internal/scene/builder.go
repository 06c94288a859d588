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

	"github.com/pkg/errors"

	"github.com/PearCoding/PearRay-go/internal/plugin"
	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/shading/node"
)

// NewBuiltinRegistry returns a plugin.Registry pre-populated with the
// built-in material, emission and mesh factories this package ships. An
// external --plugin-path/PR_PLUGIN_PATH loader (out of scope, per §6) would
// register additional factories into the same Registry before a scene is
// built.
func NewBuiltinRegistry() *plugin.Registry {
	r := plugin.NewRegistry()
	for _, f := range []plugin.Factory{
		diffuseFactory{}, mirrorFactory{}, dielectricFactory{},
		diffuseEmissionFactory{}, sphereFactory{}, planeFactory{},
	} {
		if err := r.Register(f); err != nil {
			panic(err) // only reachable from a programming error: two built-ins sharing a name
		}
	}
	return r
}

// Builder constructs a World (plus its material/mesh arena) by driving
// plugin.Registry factories directly; the DataLisp object-tree parser that
// would normally produce the (category, name, params) triples this calls
// with is out of scope (§1 Non-goals), so the triples are supplied by the
// caller in-process instead of parsed from a scene file.
type Builder struct {
	registry *plugin.Registry
	arena    *node.Arena
	world    *World
}

// NewBuilder starts a Builder backed by registry (typically
// NewBuiltinRegistry's result) and a fresh node Arena.
func NewBuilder(registry *plugin.Registry) *Builder {
	return &Builder{registry: registry, arena: node.NewArena(), world: NewWorld()}
}

// Arena exposes the node arena so callers can add ConstSpectral/ConstBlob
// leaves before referencing them in material/emission params.
func (b *Builder) Arena() *node.Arena { return b.arena }

type arenaKeyTy struct{}

var arenaKey = arenaKeyTy{}

// arenaFromContext retrieves the arena a built-in factory's Create should
// bind its shading.Material/Emission to. Builder injects it on every call so
// factories stay stateless package-level values instead of one instance per
// Builder.
func arenaFromContext(ctx context.Context) *node.Arena {
	a, _ := ctx.Value(arenaKey).(*node.Arena)
	return a
}

// AddMaterial looks up a "material" factory by name and registers the
// resulting shading.Material under id.
func (b *Builder) AddMaterial(ctx context.Context, id int32, name string, params plugin.Params) error {
	ctx = context.WithValue(ctx, arenaKey, b.arena)
	f, err := b.registry.Lookup("material", name)
	if err != nil {
		return errors.Wrapf(err, "material %d", id)
	}
	obj, err := f.Create(ctx, id, params)
	if err != nil {
		return errors.Wrapf(err, "creating material %d (%s)", id, name)
	}
	mat, ok := obj.(shading.Material)
	if !ok {
		return errors.Errorf("factory %q did not produce a shading.Material", name)
	}
	mat.Freeze()
	b.world.Materials[id] = mat
	return nil
}

// AddEmission looks up an "emission" factory by name and registers the
// resulting shading.Emission under id.
func (b *Builder) AddEmission(ctx context.Context, id int32, name string, params plugin.Params) error {
	ctx = context.WithValue(ctx, arenaKey, b.arena)
	f, err := b.registry.Lookup("emission", name)
	if err != nil {
		return errors.Wrapf(err, "emission %d", id)
	}
	obj, err := f.Create(ctx, id, params)
	if err != nil {
		return errors.Wrapf(err, "creating emission %d (%s)", id, name)
	}
	em, ok := obj.(shading.Emission)
	if !ok {
		return errors.Errorf("factory %q did not produce a shading.Emission", name)
	}
	em.Freeze()
	b.world.Emissions[id] = em
	return nil
}

// AddEntity looks up a "mesh" factory by name, binds it to materialID and
// emissionID (0 for non-emissive), and appends the resulting Entity.
func (b *Builder) AddEntity(ctx context.Context, id int32, meshName string, meshParams plugin.Params, materialID, emissionID int32) error {
	f, err := b.registry.Lookup("mesh", meshName)
	if err != nil {
		return errors.Wrapf(err, "entity %d", id)
	}
	obj, err := f.Create(ctx, id, meshParams)
	if err != nil {
		return errors.Wrapf(err, "creating mesh for entity %d (%s)", id, meshName)
	}
	mesh, ok := obj.(Mesh)
	if !ok {
		return errors.Errorf("factory %q did not produce a scene.Mesh", meshName)
	}
	b.world.AddEntity(Entity{ID: id, Mesh: mesh, MaterialID: materialID, EmissionID: emissionID})
	return nil
}

// AddInfiniteLight appends l to the world's background.
func (b *Builder) AddInfiniteLight(l InfiniteLight) {
	b.world.Infinite = append(b.world.Infinite, l)
}

// Build finalizes and returns the constructed World.
func (b *Builder) Build() *World { return b.world }

// -- built-in factories -----------------------------------------------------

type diffuseFactory struct{}

func (diffuseFactory) Name() string     { return "diffuse" }
func (diffuseFactory) Category() string { return "material" }
func (diffuseFactory) Params() []plugin.ParamSpec {
	return []plugin.ParamSpec{{Name: "albedo", Kind: plugin.NodeReference, Description: "reflective spectral albedo node"}}
}
func (diffuseFactory) Create(ctx context.Context, id int32, params plugin.Params) (interface{}, error) {
	h, _ := params.Reference("albedo")
	return shading.NewDiffuse(arenaFromContext(ctx), node.Handle(h)), nil
}

type mirrorFactory struct{}

func (mirrorFactory) Name() string     { return "mirror" }
func (mirrorFactory) Category() string { return "material" }
func (mirrorFactory) Params() []plugin.ParamSpec {
	return []plugin.ParamSpec{{Name: "albedo", Kind: plugin.NodeReference, Description: "specular albedo node"}}
}
func (mirrorFactory) Create(ctx context.Context, id int32, params plugin.Params) (interface{}, error) {
	h, _ := params.Reference("albedo")
	return shading.NewMirror(arenaFromContext(ctx), node.Handle(h)), nil
}

type dielectricFactory struct{}

func (dielectricFactory) Name() string     { return "glass" }
func (dielectricFactory) Category() string { return "material" }
func (dielectricFactory) Params() []plugin.ParamSpec {
	return []plugin.ParamSpec{{Name: "ior", Kind: plugin.Number, Default: 1.5, Min: 1, Max: 4, HasRange: true}}
}
func (dielectricFactory) Create(ctx context.Context, id int32, params plugin.Params) (interface{}, error) {
	return shading.NewDielectric(params.Number("ior", 1.5)), nil
}

type diffuseEmissionFactory struct{}

func (diffuseEmissionFactory) Name() string     { return "diffuse" }
func (diffuseEmissionFactory) Category() string { return "emission" }
func (diffuseEmissionFactory) Params() []plugin.ParamSpec {
	return []plugin.ParamSpec{
		{Name: "radiance", Kind: plugin.NodeReference, Description: "emitted spectral radiance node"},
		{Name: "one_sided", Kind: plugin.Bool, Default: false, Optional: true},
	}
}
func (diffuseEmissionFactory) Create(ctx context.Context, id int32, params plugin.Params) (interface{}, error) {
	h, _ := params.Reference("radiance")
	return shading.NewDiffuseEmission(arenaFromContext(ctx), node.Handle(h), params.Bool("one_sided", false)), nil
}

type sphereFactory struct{}

func (sphereFactory) Name() string     { return "sphere" }
func (sphereFactory) Category() string { return "mesh" }
func (sphereFactory) Params() []plugin.ParamSpec {
	return []plugin.ParamSpec{
		{Name: "radius", Kind: plugin.Number, Default: 1.0, Min: 0, HasRange: true},
		{Name: "center_x", Kind: plugin.Number, Default: 0.0, Optional: true},
		{Name: "center_y", Kind: plugin.Number, Default: 0.0, Optional: true},
		{Name: "center_z", Kind: plugin.Number, Default: 0.0, Optional: true},
	}
}
func (sphereFactory) Create(ctx context.Context, id int32, params plugin.Params) (interface{}, error) {
	center := shading.Vec3{
		X: params.Number("center_x", 0),
		Y: params.Number("center_y", 0),
		Z: params.Number("center_z", 0),
	}
	return Sphere{Center: center, Radius: params.Number("radius", 1)}, nil
}

type planeFactory struct{}

func (planeFactory) Name() string     { return "plane" }
func (planeFactory) Category() string { return "mesh" }
func (planeFactory) Params() []plugin.ParamSpec {
	return []plugin.ParamSpec{
		{Name: "width", Kind: plugin.Number, Default: 1.0, Min: 0, HasRange: true},
		{Name: "height", Kind: plugin.Number, Default: 1.0, Min: 0, HasRange: true},
	}
}
func (planeFactory) Create(ctx context.Context, id int32, params plugin.Params) (interface{}, error) {
	w, h := params.Number("width", 1), params.Number("height", 1)
	origin := shading.Vec3{X: -w / 2, Z: -h / 2}
	return NewPlane(origin, shading.Vec3{X: w}, shading.Vec3{Z: h}), nil
}
