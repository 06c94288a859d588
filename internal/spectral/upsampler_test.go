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

package spectral

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildFlatTable constructs a minimal resolution-2 table whose every cell
// holds the same coefficients, so Prepare's trilinear interpolation always
// returns that constant regardless of the rgb input.
func buildFlatTable(t *testing.T, coeffs [3]float32) *Upsampler {
	t.Helper()
	buf := &bytes.Buffer{}
	buf.WriteString("SPEC")
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(2)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, []float32{0, 1}))

	data := make([]float32, 2*2*2*3*3)
	for i := 0; i < len(data); i += 3 {
		copy(data[i:i+3], coeffs[:])
	}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, data))

	up, err := LoadUpsampler(buf)
	require.NoError(t, err)
	return up
}

func TestPrepareZeroSpectrum(t *testing.T) {
	up := buildFlatTable(t, [3]float32{1, 2, 3})
	p := up.Prepare(0, 0, 0)
	require.Equal(t, ZeroParametric, p)
}

func TestPrepareFlatTableReturnsConstant(t *testing.T) {
	up := buildFlatTable(t, [3]float32{0.1, -0.2, 0.3})
	p := up.Prepare(0.5, 0.2, 0.8)
	require.InDelta(t, 0.1, p.A, 1e-5)
	require.InDelta(t, -0.2, p.B, 1e-5)
	require.InDelta(t, 0.3, p.C, 1e-5)
}

func TestComputeMidRangeInUnitInterval(t *testing.T) {
	out := Compute(Parametric{A: 0, B: 0, C: 0}, Wavelengths{400, 500, 600, 700})
	for _, v := range out {
		require.InDelta(t, 0.5, v, 1e-6)
	}
}
