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

package render

import "github.com/PearCoding/PearRay-go/internal/sampler"

// passRNG derives one fresh sampler.RNG per OnPass call, owned by a single
// worker goroutine. It is not safe for concurrent use, matching
// stream.Pipeline's single-owner contract: each worker holds one passRNG
// alongside its one Pipeline.
//
// A plain per-pixel seed (seed XOR pixelIndex) would hand every call for the
// same pixel within a pass an identical splitmix64 stream, since NewRNG
// always restarts from its seed. The monotonic counter folded into the seed
// on every call keeps successive draws against the same pixel (successive
// bounces, successive light samples) independent.
type passRNG struct {
	seed    uint64
	counter uint64
}

func newPassRNG(seed uint64) *passRNG {
	return &passRNG{seed: seed}
}

// Next returns a fresh RNG for the next OnPass call against pixelIndex.
func (r *passRNG) Next(pixelIndex uint32) sampler.RNG {
	r.counter++
	return sampler.NewRNG(r.seed ^ uint64(pixelIndex) ^ (r.counter * 0x9E3779B97F4A7C15))
}
