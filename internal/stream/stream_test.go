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

package stream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/PearCoding/PearRay-go/internal/shading"
)

type fakeTraverser struct{}

func (fakeTraverser) Traverse(_ context.Context, rays []shading.Ray, hits []Hit) {
	for i, r := range rays {
		hits[i] = Hit{Ray: r, Hit: true, Closure: shading.Closure{MaterialID: int32(len(rays) - i)}}
	}
}

func TestPushSwapTraverseRoundTrip(t *testing.T) {
	sem := semaphore.NewWeighted(8)
	p := New(sem, 8, false)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, p.Push(ctx, shading.Ray{PixelIndex: uint32(i)}))
	}
	require.Equal(t, 4, p.Len())

	p.Swap()
	require.Equal(t, 4, p.ReadLen())
	require.Equal(t, 0, p.Len())

	hits := p.Traverse(ctx, fakeTraverser{})
	require.Len(t, hits, 4)
	for i, h := range hits {
		require.True(t, h.Hit)
		require.EqualValues(t, i, h.Ray.PixelIndex)
	}
}

func TestTraverseSortsByMaterialID(t *testing.T) {
	sem := semaphore.NewWeighted(8)
	p := New(sem, 8, true)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Push(ctx, shading.Ray{PixelIndex: uint32(i)}))
	}
	p.Swap()
	hits := p.Traverse(ctx, fakeTraverser{})
	for i := 1; i < len(hits); i++ {
		require.LessOrEqual(t, hits[i-1].Closure.MaterialID, hits[i].Closure.MaterialID)
	}
}

func TestPushBlocksOnSemaphoreCapacity(t *testing.T) {
	sem := semaphore.NewWeighted(2)
	p := New(sem, 2, false)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, p.Push(ctx, shading.Ray{}))
	require.NoError(t, p.Push(ctx, shading.Ray{}))

	cancel()
	err := p.Push(ctx, shading.Ray{})
	require.Error(t, err)
}
