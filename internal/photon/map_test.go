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

package photon

import (
	"sync"
	"testing"

	"github.com/PearCoding/PearRay-go/internal/shading"
	"github.com/PearCoding/PearRay-go/internal/spectral"
	"github.com/stretchr/testify/require"
)

func TestStoreConcurrentThenGatherSphere(t *testing.T) {
	m := NewMap(shading.Vec3{}, 1.0)
	m.PreallocateBuckets(shading.Vec3{X: -2, Y: -2, Z: -2}, shading.Vec3{X: 2, Y: 2, Z: 2})

	var wg sync.WaitGroup
	const n = 500
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pos := shading.Vec3{X: float64(i%5) * 0.1, Y: float64(i%3) * 0.1, Z: 0}
			m.Store(NewPhoton(pos, shading.Vec3{X: 0, Y: 0, Z: 1}, spectral.Blob{1, 1, 1, 1}, 0))
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, n, m.Count())

	var accepted int
	var flux spectral.Blob
	m.Gather(Query{Center: shading.Vec3{}, R2: 1.0, Mode: Sphere}, func(p Photon, d2, w float64) {
		accepted++
		flux = flux.Add(p.Power.MulScalar(float32(w)))
	})
	require.Greater(t, accepted, 0)
	require.False(t, flux.HasNonFinite())
}

func TestGatherDomeRejectsBelowPlane(t *testing.T) {
	m := NewMap(shading.Vec3{}, 1.0)
	m.PreallocateBuckets(shading.Vec3{X: -2, Y: -2, Z: -2}, shading.Vec3{X: 2, Y: 2, Z: 2})
	m.Store(NewPhoton(shading.Vec3{X: 0, Y: 0, Z: -0.1}, shading.Vec3{X: 0, Y: 0, Z: 1}, spectral.Blob{1, 1, 1, 1}, 0))

	var accepted int
	m.Gather(Query{Center: shading.Vec3{}, R2: 1.0, Mode: Dome, Normal: shading.Vec3{X: 0, Y: 0, Z: 1}, Alpha: 1}, func(Photon, float64, float64) {
		accepted++
	})
	require.Equal(t, 0, accepted)
}

func TestConeKernelZeroAtBoundary(t *testing.T) {
	require.Equal(t, 0.0, ConeKernel(ConeKernelK, 1.0))
	require.Greater(t, ConeKernel(0, 1.0), 0.0)
}

func TestOccupancyEmptyGridIsZero(t *testing.T) {
	m := NewMap(shading.Vec3{}, 1.0)
	mean, variance := m.Occupancy()
	require.Equal(t, 0.0, mean)
	require.Equal(t, 0.0, variance)
}

func TestOccupancyReflectsDeposits(t *testing.T) {
	m := NewMap(shading.Vec3{}, 1.0)
	m.PreallocateBuckets(shading.Vec3{X: -2, Y: -2, Z: -2}, shading.Vec3{X: 2, Y: 2, Z: 2})
	for i := 0; i < 5; i++ {
		m.Store(NewPhoton(shading.Vec3{}, shading.Vec3{X: 0, Y: 0, Z: 1}, spectral.Blob{1, 1, 1, 1}, 0))
	}
	m.Store(NewPhoton(shading.Vec3{X: 1.5, Y: 1.5, Z: 1.5}, shading.Vec3{X: 0, Y: 0, Z: 1}, spectral.Blob{1, 1, 1, 1}, 0))

	mean, variance := m.Occupancy()
	require.Greater(t, mean, 0.0)
	require.Greater(t, variance, 0.0)
}

func TestOctahedralRoundTrip(t *testing.T) {
	dirs := []shading.Vec3{
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0.5774, Y: 0.5774, Z: 0.5774}, {X: 0, Y: 0, Z: -1},
	}
	for _, d := range dirs {
		d = d.Normalize()
		e := octEncode(d)
		got := octDecode(e)
		require.InDelta(t, d.X, got.X, 0.05)
		require.InDelta(t, d.Y, got.Y, 0.05)
		require.InDelta(t, d.Z, got.Z, 0.05)
	}
}
