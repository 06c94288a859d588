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

package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PearCoding/PearRay-go/internal/framebuffer"
	"github.com/PearCoding/PearRay-go/internal/integrator"
	"github.com/PearCoding/PearRay-go/internal/mis"
	"github.com/PearCoding/PearRay-go/internal/scene"
	"github.com/PearCoding/PearRay-go/internal/tile"
)

type countingObserver struct {
	passes int
}

func (o *countingObserver) OnPassComplete(int, int, int) { o.passes++ }
func (o *countingObserver) OnTileComplete(int)           {}

func newFurnaceContext(t *testing.T, observer Observer) (*Context, *scene.BuildResult) {
	t.Helper()
	const w, h = 8, 8

	built, err := scene.BuildDemo(scene.DemoFurnace, w, h)
	require.NoError(t, err)

	boundMin, boundMax := built.World.Bounds()
	sc := integrator.Scene{
		Materials:   built.World,
		Emitters:    scene.Emitter{W: built.World},
		Occluder:    built.World,
		Intersector: built.World,
		Background:  scene.Background{Lights: built.World.Infinite},
		BoundMin:    boundMin,
		BoundMax:    boundMax,
	}

	integ := integrator.NewDirect(integrator.DirectConfig{
		MaxDepth: 2, RRMinDepth: 1, LightSamples: 1,
		Heuristic: mis.Power, SamplesPerPixel: 1,
	})

	fb := framebuffer.NewMap(w, h, framebuffer.Channels{})
	cfg := Config{
		Threads:             2,
		MaxParallelRays:     64,
		Layout:              tile.Linear,
		Seed:                7,
		SamplesPerIteration: 1,
		Crop:                tile.Rect{MinX: 0, MinY: 0, MaxX: w, MaxY: h},
	}

	ctx := NewContext(cfg, built.Camera, built.World, integ, sc, fb, observer, true)
	return ctx, built
}

func TestContextRunCompletesAndReportsPasses(t *testing.T) {
	obs := &countingObserver{}
	ctx, _ := newFurnaceContext(t, obs)

	err := ctx.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, obs.passes)
}

func TestContextRunHonorsCancelledContext(t *testing.T) {
	ctx, _ := newFurnaceContext(t, nil)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	err := ctx.Run(cancelled)
	require.Error(t, err)
}

func TestContextStopPreventsFurtherPasses(t *testing.T) {
	obs := &countingObserver{}
	ctx, _ := newFurnaceContext(t, obs)
	ctx.Stop()

	err := ctx.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, obs.passes)
}
