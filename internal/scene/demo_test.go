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

	"github.com/PearCoding/PearRay-go/internal/shading"
)

func TestBuildDemoFurnaceHasOneDiffuseSphereAndEnvironment(t *testing.T) {
	r, err := BuildDemo(DemoFurnace, 64, 64)
	require.NoError(t, err)
	require.Len(t, r.World.Entities, 1)
	require.Len(t, r.World.Infinite, 1)

	ray := shading.Ray{Origin: shading.Vec3{X: 0, Y: 0, Z: -4}, Direction: shading.Vec3{Z: 1}}
	c, ok := r.World.Intersect(context.Background(), ray)
	require.True(t, ok)
	require.Equal(t, int32(1), c.MaterialID)
}

func TestBuildDemoCornellHasWallsFloorLightAndSphere(t *testing.T) {
	r, err := BuildDemo(DemoCornell, 64, 64)
	require.NoError(t, err)
	require.Len(t, r.World.Entities, 7)
	require.Equal(t, 1, r.World.LightCount())
}

func TestBuildDemoUnknownNameIsError(t *testing.T) {
	_, err := BuildDemo(Demo("nonexistent"), 64, 64)
	require.Error(t, err)
}

func TestBuildDemoCamerasLookTowardOrigin(t *testing.T) {
	r, err := BuildDemo(DemoFurnace, 32, 32)
	require.NoError(t, err)
	require.InDelta(t, 1.0, r.Camera.Forward.Length(), 1e-9)
}
