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

package plugin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PearCoding/PearRay-go/internal/plugin"
)

type stubFactory struct {
	name, category string
}

func (f stubFactory) Name() string     { return f.name }
func (f stubFactory) Category() string { return f.category }
func (f stubFactory) Params() []plugin.ParamSpec {
	return []plugin.ParamSpec{{Name: "albedo", Kind: plugin.Number, Default: 1.0, Min: 0, Max: 1, HasRange: true}}
}
func (f stubFactory) Create(ctx context.Context, id int32, params plugin.Params) (interface{}, error) {
	return id, nil
}

func TestRegistryLookupFindsRegisteredFactory(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(stubFactory{name: "diffuse", category: "material"}))

	f, err := r.Lookup("material", "diffuse")
	require.NoError(t, err)
	require.Equal(t, "diffuse", f.Name())
}

func TestRegistryLookupUnknownCategoryIsConfigurationError(t *testing.T) {
	r := plugin.NewRegistry()
	_, err := r.Lookup("material", "diffuse")
	require.Error(t, err)
}

func TestRegistryLookupUnknownNameIsConfigurationError(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(stubFactory{name: "diffuse", category: "material"}))

	_, err := r.Lookup("material", "mirror")
	require.Error(t, err)
}

func TestRegistryRegisterRejectsDuplicateNameInCategory(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(stubFactory{name: "diffuse", category: "material"}))

	err := r.Register(stubFactory{name: "diffuse", category: "material"})
	require.Error(t, err)
}

func TestRegistryAllowsSameNameAcrossCategories(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(stubFactory{name: "point", category: "light"}))
	require.NoError(t, r.Register(stubFactory{name: "point", category: "camera"}))

	_, err := r.Lookup("light", "point")
	require.NoError(t, err)
	_, err = r.Lookup("camera", "point")
	require.NoError(t, err)
}

func TestRegistryCategoriesListsEveryRegisteredCategory(t *testing.T) {
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(stubFactory{name: "diffuse", category: "material"}))
	require.NoError(t, r.Register(stubFactory{name: "sphere", category: "entity"}))

	require.ElementsMatch(t, []string{"material", "entity"}, r.Categories())
}

func TestParamsReturnsDefaultsWhenValueAbsent(t *testing.T) {
	p := plugin.NewParams(map[string]interface{}{"name": "light-1", "count": float64(4)})
	require.Equal(t, "light-1", p.String("name", "unnamed"))
	require.Equal(t, "fallback", p.String("missing", "fallback"))
	require.Equal(t, float64(4), p.Number("count", 0))
	require.Equal(t, 2.5, p.Number("missing", 2.5))
	require.False(t, p.Bool("missing", false))

	ref, ok := p.Reference("missing")
	require.False(t, ok)
	require.Zero(t, ref)
}
