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

// Package mis implements the multiple-importance-sampling heuristics and the
// direction-sampling projections the integrators combine strategies with.
package mis

import "math"

// Heuristic combines the pdfs of several sampling strategies into a weight
// for one of them.
type Heuristic int

const (
	// Balance is w_i = p_i / sum(p_j).
	Balance Heuristic = iota
	// Power is w_i = p_i^beta / sum(p_j^beta), beta=2 by default.
	Power
)

// DefaultPowerBeta is the exponent the Power heuristic uses unless overridden.
const DefaultPowerBeta = 2

// Accumulator folds the pdfs of multiple sampling strategies incrementally so
// callers don't need every strategy's pdf in hand simultaneously.
type Accumulator struct {
	heuristic Heuristic
	beta      float64
	sum       float64
	dirac     bool
}

// NewAccumulator returns an empty accumulator for the given heuristic.
func NewAccumulator(h Heuristic) *Accumulator {
	return &Accumulator{heuristic: h, beta: DefaultPowerBeta}
}

// WithBeta overrides the Power heuristic's exponent.
func (a *Accumulator) WithBeta(beta float64) *Accumulator {
	a.beta = beta
	return a
}

func (a *Accumulator) term(pdf float64) float64 {
	if math.IsInf(pdf, 1) {
		return 0 // a Dirac lobe's mass is handled by the dirac flag, not folded in here
	}
	switch a.heuristic {
	case Power:
		return math.Pow(pdf, a.beta)
	default:
		return pdf
	}
}

// Add folds strategy pdf into the running sum. If pdf is +Inf, the strategy
// is a Dirac (specular) lobe: its weight becomes 1 and every other strategy
// contributes 0, per the spec's special case.
func (a *Accumulator) Add(pdf float64) {
	if math.IsInf(pdf, 1) {
		a.dirac = true
		return
	}
	a.sum += a.term(pdf)
}

// Weight returns the MIS weight for a strategy with the given pdf, given
// every strategy's pdf has been folded in via Add (including this one).
func (a *Accumulator) Weight(pdf float64) float64 {
	if a.dirac {
		if math.IsInf(pdf, 1) {
			return 1
		}
		return 0
	}
	if math.IsInf(pdf, 1) {
		return 1
	}
	if a.sum <= 0 {
		return 0
	}
	return a.term(pdf) / a.sum
}

// Weight2 is the common two-strategy case: the weight for pdfA against the
// combined mass of pdfA and pdfB.
func Weight2(h Heuristic, pdfA, pdfB float64) float64 {
	a := NewAccumulator(h)
	a.Add(pdfA)
	a.Add(pdfB)
	return a.Weight(pdfA)
}
