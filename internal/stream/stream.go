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

// Package stream implements the ray/hit streaming pipeline described in
// §4.8: a per-worker pair of ray streams (write/read) and a hit stream, all
// bounded by max_parallel_rays, with scene traversal consuming the read
// stream and populating the hit stream between swaps.
package stream

import (
	"context"
	"sort"

	"golang.org/x/sync/semaphore"

	"github.com/PearCoding/PearRay-go/internal/shading"
)

// Hit is the scene-traversal outcome for one ray: either a populated Closure
// (Hit true) or a miss against the background/infinite lights (Hit false).
type Hit struct {
	Ray     shading.Ray
	Closure shading.Closure
	Hit     bool
}

// Traverser is the scene-traversal collaborator a Pipeline drives; it is
// implemented by internal/scene and is the suspension point between filling
// the read stream and populating the hit stream.
type Traverser interface {
	// Traverse resolves each ray in rays against the scene and writes its
	// outcome to the same index of hits. len(hits) must equal len(rays).
	Traverse(ctx context.Context, rays []shading.Ray, hits []Hit)
}

// Pipeline owns one worker's ray/hit streams. It is not safe for concurrent
// use: one Pipeline belongs to exactly one render worker goroutine.
type Pipeline struct {
	sem *semaphore.Weighted

	write []shading.Ray
	read  []shading.Ray
	hits  []Hit

	sortByMaterial bool
}

// New allocates a Pipeline whose streams never exceed maxParallelRays
// in-flight rays, acquiring capacity from sem -- shared across a worker pool
// so the aggregate in-flight ray count across all pipelines stays bounded.
func New(sem *semaphore.Weighted, maxParallelRays int, sortByMaterial bool) *Pipeline {
	return &Pipeline{
		sem:            sem,
		write:          make([]shading.Ray, 0, maxParallelRays),
		sortByMaterial: sortByMaterial,
	}
}

// Push appends r to the write stream. Push blocks (via the shared semaphore)
// if doing so would exceed the pipeline's fair share of max_parallel_rays,
// providing the backpressure §4.8 calls for.
func (p *Pipeline) Push(ctx context.Context, r shading.Ray) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.write = append(p.write, r)
	return nil
}

// Len returns the number of rays currently queued in the write stream.
func (p *Pipeline) Len() int { return len(p.write) }

// Swap exchanges write and read: the stream just filled becomes the stream
// scene traversal will consume, and the (now empty) former read stream
// becomes the next write target.
func (p *Pipeline) Swap() {
	p.read, p.write = p.write, p.read[:0]
}

// Traverse consumes the read stream through t, populating the hit stream,
// optionally sorted by material id to improve BSDF/texture cache locality
// for the integrator pass that follows. It releases one semaphore unit per
// ray consumed, matching the Acquire in Push.
func (p *Pipeline) Traverse(ctx context.Context, t Traverser) []Hit {
	n := len(p.read)
	if cap(p.hits) < n {
		p.hits = make([]Hit, n)
	} else {
		p.hits = p.hits[:n]
	}

	t.Traverse(ctx, p.read, p.hits)

	if p.sortByMaterial {
		sort.SliceStable(p.hits, func(i, j int) bool {
			return p.hits[i].Closure.MaterialID < p.hits[j].Closure.MaterialID
		})
	}

	p.sem.Release(int64(n))
	return p.hits
}

// ReadLen returns the number of rays in the read stream, valid after Swap
// and before the next Swap.
func (p *Pipeline) ReadLen() int { return len(p.read) }
