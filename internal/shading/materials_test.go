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

package shading

import (
	"math"
	"testing"

	"github.com/PearCoding/PearRay-go/internal/shading/node"
	"github.com/PearCoding/PearRay-go/internal/spectral"
	"github.com/stretchr/testify/require"
)

func testClosure() Closure {
	n := Vec3{0, 0, 1}
	return NewClosure(Vec3{}, n, n, Vec3{0, 0, -1}, spectral.Wavelengths{450, 550, 600, 650})
}

func TestDiffuseEnergyConservation(t *testing.T) {
	arena := node.NewArena()
	albedo := arena.AddSpectral(node.ConstSpectral{Coeffs: spectral.Parametric{A: 0, B: 0, C: 0}, Power: 1})
	mat := NewDiffuse(arena, albedo)
	c := testClosure()

	const n = 8192
	var sum spectral.Blob
	for i := 0; i < n; i++ {
		u1 := (float64(i) + 0.5) / n
		u2 := math.Mod(float64(i)*0.6180339887, 1)
		s := mat.Sample(c, [2]float64{u1, u2})
		ndotl := c.N.Dot(s.L)
		if ndotl <= 0 {
			continue
		}
		val := mat.Eval(c, s.L, ndotl)
		// Monte-Carlo estimator for the hemispherical-directional reflectance:
		// integral = E[eval * ndotl / pdf]
		estimate := val.MulScalar(float32(ndotl / s.PdfSolidAngle))
		sum = sum.Add(estimate)
	}
	avg := sum.DivScalar(n)
	for _, v := range avg {
		require.LessOrEqual(t, v, float32(1.02))
	}
}

func TestDiffuseSamplePdfConsistency(t *testing.T) {
	arena := node.NewArena()
	albedo := arena.AddSpectral(node.ConstSpectral{Coeffs: spectral.ZeroParametric})
	mat := NewDiffuse(arena, albedo)
	c := testClosure()

	s := mat.Sample(c, [2]float64{0.3, 0.7})
	ndotl := c.N.Dot(s.L)
	pdf := mat.Pdf(c, s.L, ndotl)
	require.InEpsilon(t, s.PdfSolidAngle, pdf, 0.01)
}

func TestDiffuseWeightMatchesEvalCosOverPdf(t *testing.T) {
	arena := node.NewArena()
	albedo := arena.AddSpectral(node.ConstSpectral{Coeffs: spectral.Parametric{A: 0, B: 0, C: 0}, Power: 1})
	mat := NewDiffuse(arena, albedo)
	c := testClosure()

	s := mat.Sample(c, [2]float64{0.3, 0.7})
	ndotl := c.N.Dot(s.L)
	require.Greater(t, ndotl, 0.0)

	val := mat.Eval(c, s.L, ndotl)
	expected := val.MulScalar(float32(ndotl / s.PdfSolidAngle))
	for i := range expected {
		require.InDelta(t, expected[i], s.Weight[i], 1e-5)
	}
}

func TestMirrorIsSpecular(t *testing.T) {
	mat := NewMirror(node.NewArena(), 0)
	c := testClosure()
	s := mat.Sample(c, [2]float64{0, 0})
	require.True(t, s.IsSpecular())
}

func TestDielectricPathWeightsSumToOne(t *testing.T) {
	mat := NewDielectric(1.5)
	c := testClosure()

	var total float32
	reflectWeight, refractWeight := float32(-1), float32(-1)
	const trials = 4096
	for i := 0; i < trials; i++ {
		u := (float64(i) + 0.5) / trials
		s := mat.Sample(c, [2]float64{u, 0.5})
		require.GreaterOrEqual(t, s.PathWeight, float32(0))
		require.LessOrEqual(t, s.PathWeight, float32(1))
		total += s.PathWeight
		if s.Type == SpecularReflect {
			reflectWeight = s.PathWeight
		} else {
			refractWeight = s.PathWeight
		}
	}
	// Each trial samples exactly one of the two branches with probability
	// equal to its own path weight, so the average path weight approximates
	// neither branch alone; instead check both branches occur, each
	// individual sample's weight is within [0,1], and the reflect and refract
	// weights for this closure sum to 1.
	require.Greater(t, total, float32(0))
	require.GreaterOrEqual(t, reflectWeight, float32(0))
	require.GreaterOrEqual(t, refractWeight, float32(0))
	require.InDelta(t, 1.0, float64(reflectWeight+refractWeight), 1e-6)
}

func TestGrazingAngleNoNaN(t *testing.T) {
	arena := node.NewArena()
	albedo := arena.AddSpectral(node.ConstSpectral{Coeffs: spectral.ZeroParametric})
	mat := NewDiffuse(arena, albedo)
	n := Vec3{0, 0, 1}
	c := NewClosure(Vec3{}, n, n, Vec3{1, 0, 0}, spectral.Wavelengths{450, 550, 600, 650})
	require.InDelta(t, 0, c.NdotV, 1e-9)

	val := mat.Eval(c, Vec3{1, 0, 0}, 0)
	require.False(t, val.HasNonFinite())
}
