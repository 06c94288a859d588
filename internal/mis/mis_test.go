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

package mis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBalanceHeuristicSumsToOne(t *testing.T) {
	w1 := Weight2(Balance, 2, 3)
	w2 := Weight2(Balance, 3, 2)
	require.InDelta(t, 1.0, w1+w2, 1e-9)
	require.InDelta(t, 2.0/5.0, w1, 1e-9)
}

func TestPowerHeuristicSumsToOne(t *testing.T) {
	w1 := Weight2(Power, 2, 3)
	w2 := Weight2(Power, 3, 2)
	require.InDelta(t, 1.0, w1+w2, 1e-9)
}

func TestDiracLobeTakesAllWeight(t *testing.T) {
	a := NewAccumulator(Power)
	a.Add(math.Inf(1))
	a.Add(4)
	require.Equal(t, 1.0, a.Weight(math.Inf(1)))
	require.Equal(t, 0.0, a.Weight(4))
}

func TestCosineHemispherePdfMatchesDirection(t *testing.T) {
	s := CosineHemisphere(0.25, 0.6)
	require.InDelta(t, s.Dir.Z/math.Pi, s.Pdf, 1e-9)
}

func TestSolidAngleAreaRoundTrip(t *testing.T) {
	pdfSA := 0.7
	dist2 := 4.0
	cos := 0.5
	area := SolidAngleToArea(pdfSA, dist2, cos)
	require.InDelta(t, pdfSA, AreaToSolidAngle(area, dist2, cos), 1e-9)
}
