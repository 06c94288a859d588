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

package photon

import (
	"math"
	"sync/atomic"
	"unsafe"

	"gonum.org/v1/gonum/stat"

	"github.com/PearCoding/PearRay-go/internal/shading"
)

// GatherMode selects the query sphere's acceptance test.
type GatherMode int

const (
	Sphere GatherMode = iota
	Dome
)

// cell is a lock-free singly-linked list node: Store prepends via CAS so
// concurrent stores never block each other.
type cell struct {
	photon Photon
	next   unsafe.Pointer // *cell
}

type bucketKey struct{ x, y, z int32 }

// Map is a uniform spatial hash grid over photon deposits, keyed by integer
// (x,y,z) bucket. The grid spacing equals the maximum initial gather radius
// so one gather query never needs more than the 3x3x3 buckets around it.
type Map struct {
	origin  shading.Vec3
	spacing float64
	count   int64

	buckets map[bucketKey]*unsafe.Pointer
}

// NewMap returns an empty grid with the given origin and cell spacing
// (normally the PPM initial gather radius r0).
func NewMap(origin shading.Vec3, spacing float64) *Map {
	return &Map{origin: origin, spacing: spacing, buckets: map[bucketKey]*unsafe.Pointer{}}
}

func (m *Map) key(p shading.Vec3) bucketKey {
	rel := p.Sub(m.origin)
	return bucketKey{
		x: int32(math.Floor(rel.X / m.spacing)),
		y: int32(math.Floor(rel.Y / m.spacing)),
		z: int32(math.Floor(rel.Z / m.spacing)),
	}
}

// Store appends p to its bucket's lock-free list. Safe for concurrent use
// against other Store calls; never call this concurrently with Gather.
func (m *Map) Store(p Photon) {
	k := m.key(p.Position)
	head, ok := m.buckets[k]
	if !ok {
		// Bucket creation itself is not lock-free; callers establish the
		// grid's bucket set during on_start before photon passes begin
		// concurrent stores, per the concurrency contract in §4.5/§5.
		var np unsafe.Pointer
		head = &np
		m.buckets[k] = head
	}
	node := &cell{photon: p}
	for {
		old := atomic.LoadPointer(head)
		node.next = old
		if atomic.CompareAndSwapPointer(head, old, unsafe.Pointer(node)) {
			break
		}
	}
	atomic.AddInt64(&m.count, 1)
}

// Count returns the number of photons stored since the last Clear.
func (m *Map) Count() int64 { return atomic.LoadInt64(&m.count) }

// Clear empties every bucket between photon passes while keeping the bucket
// set itself, so buckets established by PreallocateBuckets survive into the
// next pass. Only valid when no Store or Gather is in flight (a full barrier
// at pass end, per §4.5).
func (m *Map) Clear() {
	for _, head := range m.buckets {
		atomic.StorePointer(head, nil)
	}
	atomic.StoreInt64(&m.count, 0)
}

// PreallocateBuckets establishes empty buckets for every (x,y,z) cell that
// could receive a photon within bound (a scene-space bounding box), letting
// concurrent photon-pass Store calls run lock-free with no map mutation.
func (m *Map) PreallocateBuckets(min, max shading.Vec3) {
	kmin := m.key(min)
	kmax := m.key(max)
	for x := kmin.x; x <= kmax.x; x++ {
		for y := kmin.y; y <= kmax.y; y++ {
			for z := kmin.z; z <= kmax.z; z++ {
				k := bucketKey{x, y, z}
				if _, ok := m.buckets[k]; !ok {
					var np unsafe.Pointer
					m.buckets[k] = &np
				}
			}
		}
	}
}

// Occupancy reports the mean and variance of photons-per-populated-bucket,
// a diagnostic for whether the grid spacing fits this scene's photon
// distribution (a badly undersized spacing shows high variance, since most
// buckets sit empty while a few absorb most deposits).
func (m *Map) Occupancy() (mean, variance float64) {
	counts := make([]float64, 0, len(m.buckets))
	for _, head := range m.buckets {
		n := 0
		for c := (*cell)(atomic.LoadPointer(head)); c != nil; c = (*cell)(atomic.LoadPointer(&c.next)) {
			n++
		}
		if n > 0 {
			counts = append(counts, float64(n))
		}
	}
	if len(counts) == 0 {
		return 0, 0
	}
	mean = stat.Mean(counts, nil)
	variance = stat.Variance(counts, nil)
	return mean, variance
}

// Kernel weights an accepted photon at squared distance d2 within a gather
// query of squared radius r2.
type Kernel func(d2, r2 float64) float64

// ConeKernelK is the standard cone-filter sharpness parameter.
const ConeKernelK = 1.1

// ConeKernel is the standard cone filter: w = max(0, 1 - d2/(K*r2)),
// normalized by 1/((1 - 2/(3K)) * pi * r2).
func ConeKernel(d2, r2 float64) float64 {
	w := 1 - d2/(ConeKernelK*r2)
	if w < 0 {
		return 0
	}
	norm := 1 / ((1 - 2/(3*ConeKernelK)) * math.Pi * r2)
	return w * norm
}

// Query describes a gather sphere.
type Query struct {
	Center shading.Vec3
	R2     float64
	Mode   GatherMode
	Normal shading.Vec3 // only used by Dome
	Alpha  float64      // squeeze weight in [0,1]; 1 = no squeeze
}

// Gather walks the 3x3x3 buckets around the query and calls visit for every
// accepted photon. Only valid between passes, never concurrent with Store.
func (m *Map) Gather(q Query, visit func(p Photon, d2 float64, weight float64)) {
	center := m.key(q.Center)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				head, ok := m.buckets[bucketKey{center.x + dx, center.y + dy, center.z + dz}]
				if !ok {
					continue
				}
				for n := (*cell)(atomic.LoadPointer(head)); n != nil; n = (*cell)(atomic.LoadPointer(&n.next)) {
					m.visitPhoton(q, n.photon, visit)
				}
			}
		}
	}
}

func (m *Map) visitPhoton(q Query, p Photon, visit func(p Photon, d2 float64, weight float64)) {
	delta := p.Position.Sub(q.Center)
	d2 := delta.LengthSqr()
	if d2 > q.R2 {
		return
	}
	if q.Mode == Dome {
		proj := delta.Dot(q.Normal)
		if proj < 0 {
			return
		}
		if q.Alpha < 1 {
			squeezed := d2 + q.Alpha*proj*proj
			if squeezed > q.R2 {
				return
			}
			d2 = squeezed
		}
	}
	visit(p, d2, ConeKernel(d2, q.R2))
}
