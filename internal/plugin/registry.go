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

// Package plugin is the core-facing subset of the scene-object factory
// registry: a typed-factory lookup used only to construct the scene graph
// the engine consumes. Plugin *discovery* (walking --plugin-path/
// PR_PLUGIN_PATH and dlopen-ing shared objects) is an external collaborator
// named by its interface here, not implemented by this package.
package plugin

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ParamKind is the type tag of one factory input.
type ParamKind int

const (
	Bool ParamKind = iota
	Int
	Uint
	Number
	String
	NumberArray
	StringArray
	Reference
	NodeReference
)

// ParamSpec self-describes one accepted factory input, letting scene
// validation run without starting a render.
type ParamSpec struct {
	Name        string
	Description string
	Kind        ParamKind
	Default     interface{}
	Min, Max    float64
	HasRange    bool
	Optional    bool
}

// Params is the typed parameter group passed to a Factory's Create.
type Params struct {
	values map[string]interface{}
}

func NewParams(values map[string]interface{}) Params {
	return Params{values: values}
}

func (p Params) Bool(name string, def bool) bool {
	if v, ok := p.values[name].(bool); ok {
		return v
	}
	return def
}

func (p Params) Number(name string, def float64) float64 {
	if v, ok := p.values[name].(float64); ok {
		return v
	}
	return def
}

func (p Params) String(name string, def string) string {
	if v, ok := p.values[name].(string); ok {
		return v
	}
	return def
}

func (p Params) Reference(name string) (int32, bool) {
	v, ok := p.values[name].(int32)
	return v, ok
}

// Factory constructs one kind of scene object (camera, entity, material,
// emission, infinite light, ...) from its typed parameter group.
type Factory interface {
	// Name is the factory's registered type name, e.g. "diffuse", "sphere".
	Name() string
	// Category groups factories for lookup, e.g. "material", "camera".
	Category() string
	// Params self-describes accepted inputs.
	Params() []ParamSpec
	// Create constructs the object identified by id from params.
	Create(ctx context.Context, id int32, params Params) (interface{}, error)
}

// Registry is a typed factory lookup, keyed by (category, name).
type Registry struct {
	mu        sync.RWMutex
	factories map[string]map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]map[string]Factory{}}
}

// Register adds f to the registry. It is an error to register two factories
// under the same (category, name).
func (r *Registry) Register(f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat, ok := r.factories[f.Category()]
	if !ok {
		cat = map[string]Factory{}
		r.factories[f.Category()] = cat
	}
	if _, exists := cat[f.Name()]; exists {
		return errors.Errorf("factory %q already registered in category %q", f.Name(), f.Category())
	}
	cat[f.Name()] = f
	return nil
}

// Lookup finds a factory by category and name. Returns a configuration error
// (per §7 kind 1) if the factory is unknown, so scene loading can surface it
// before a render ever starts.
func (r *Registry) Lookup(category, name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cat, ok := r.factories[category]
	if !ok {
		return nil, errors.Errorf("unknown factory category %q", category)
	}
	f, ok := cat[name]
	if !ok {
		return nil, errors.Errorf("unknown factory %q in category %q", name, category)
	}
	return f, nil
}

// Categories lists every registered category, for introspection/validation
// tooling.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for c := range r.factories {
		out = append(out, c)
	}
	return out
}
