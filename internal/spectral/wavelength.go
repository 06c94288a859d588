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

const (
	// VisibleMin and VisibleMax bound the visible range the hero wavelength
	// quartet is drawn from.
	VisibleMin float32 = 360
	VisibleMax float32 = 830
	visibleRange       = VisibleMax - VisibleMin
)

// SampleWavelengths draws a hero wavelength quartet from a single uniform
// random number u in [0,1), using equal-spaced stratified offsets across the
// visible range (the standard hero-wavelength technique): one base sample
// plus three more a quarter of the range apart, wrapping at VisibleMax. This
// lets a camera derive all four wavelengths from one low-discrepancy 1D
// sample per ray instead of needing a 4D generator.
func SampleWavelengths(u float32) Wavelengths {
	var w Wavelengths
	base := u * visibleRange
	for i := range w {
		off := base + float32(i)*(visibleRange/4)
		for off >= visibleRange {
			off -= visibleRange
		}
		w[i] = VisibleMin + off
	}
	return w
}
