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

package framebuffer

import (
	"math"
	"sync"
	"testing"

	"github.com/PearCoding/PearRay-go/internal/spectral"
	"github.com/stretchr/testify/require"
)

func TestPushConstantInputConverges(t *testing.T) {
	m := NewMap(1, 1, Channels{})
	in := spectral.Blob{1, 1, 1, 1}
	for i := 0; i < 16; i++ {
		m.Push(0, 0, Fragment{Spectral: in})
	}
	require.Equal(t, in, m.Spectral(0, 0))
	require.EqualValues(t, 16, m.SampleCount(0, 0))
}

func TestPushDiscardsNonFiniteAndFlagsFeedback(t *testing.T) {
	m := NewMap(1, 1, Channels{})
	m.Push(0, 0, Fragment{Spectral: spectral.Blob{float32(math.NaN()), 0, 0, 0}})
	require.EqualValues(t, 0, m.SampleCount(0, 0))
	require.NotZero(t, m.Feedback(0, 0)&FeedbackNaN)
}

func TestPushDiscardsNegative(t *testing.T) {
	m := NewMap(1, 1, Channels{})
	m.Push(0, 0, Fragment{Spectral: spectral.Blob{-1, 0, 0, 0}})
	require.EqualValues(t, 0, m.SampleCount(0, 0))
	require.NotZero(t, m.Feedback(0, 0)&FeedbackNegative)
}

func TestConcurrentPushIsRaceFree(t *testing.T) {
	m := NewMap(1, 1, Channels{})
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Push(0, 0, Fragment{Spectral: spectral.Blob{0.5, 0.5, 0.5, 0.5}})
		}()
	}
	wg.Wait()
	require.EqualValues(t, 64, m.SampleCount(0, 0))
}

func TestIsPixelFinished(t *testing.T) {
	m := NewMap(1, 1, Channels{})
	cfg := AdaptiveConfig{Enabled: true, MinSamples: 4, TargetQuality: 1000}
	for i := 0; i < 3; i++ {
		m.Push(0, 0, Fragment{Spectral: spectral.Blob{1, 1, 1, 1}})
		require.False(t, m.IsPixelFinished(0, 0, cfg))
	}
	m.Push(0, 0, Fragment{Spectral: spectral.Blob{1, 1, 1, 1}})
	require.True(t, m.IsPixelFinished(0, 0, cfg))
}

func TestAdaptiveDisabledOnlyChecksMinSamples(t *testing.T) {
	m := NewMap(1, 1, Channels{})
	cfg := AdaptiveConfig{Enabled: false, MinSamples: 2}
	m.Push(0, 0, Fragment{Spectral: spectral.Blob{1, 1, 1, 1}})
	m.Push(0, 0, Fragment{Spectral: spectral.Blob{100, 100, 100, 100}})
	require.True(t, m.IsPixelFinished(0, 0, cfg))
}
