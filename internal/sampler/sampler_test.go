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

package sampler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func within01(t *testing.T, v float32) {
	t.Helper()
	require.GreaterOrEqual(t, v, float32(0))
	require.Less(t, v, float32(1))
}

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint32(), b.Uint32())
	}
}

func TestUniformCoversLattice(t *testing.T) {
	u := NewUniform(16)
	seen := map[[2]float32]bool{}
	for i := uint32(0); i < 16; i++ {
		p := u.Generate2D(i)
		within01(t, p[0])
		within01(t, p[1])
		seen[p] = true
	}
	require.Len(t, seen, 16)
}

func TestMultiJitteredDeterministic(t *testing.T) {
	a := NewMultiJittered(64, 7)
	b := NewMultiJittered(64, 7)
	for i := uint32(0); i < 64; i++ {
		require.Equal(t, a.Generate2D(i), b.Generate2D(i))
	}
}

func TestMultiJitteredInUnitSquare(t *testing.T) {
	c := NewMultiJittered(64, 1)
	for i := uint32(0); i < 64; i++ {
		p := c.Generate2D(i)
		within01(t, p[0])
		within01(t, p[1])
	}
}

func TestHaltonDeterministicAndBounded(t *testing.T) {
	h := NewHalton()
	for i := uint32(0); i < 200; i++ {
		p := h.Generate2D(i)
		within01(t, p[0])
		within01(t, p[1])
	}
	require.Equal(t, h.Generate2D(5), h.Generate2D(5))
}

func TestSobolDeterministicGivenSeed(t *testing.T) {
	a := NewSobol(4, NewRNG(9))
	b := NewSobol(4, NewRNG(9))
	for i := uint32(0); i < 128; i++ {
		require.Equal(t, a.Generate3D(i), b.Generate3D(i))
	}
}

func TestSobolBounded(t *testing.T) {
	s := NewSobol(4, NewRNG(123))
	for i := uint32(0); i < 500; i++ {
		v := s.Generate1D(i)
		within01(t, v)
	}
}
