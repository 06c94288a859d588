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

package tile

import (
	"runtime"
	"sort"
	"sync"
)

// Layout selects how a Map lays tiles out in the order next_free hands them
// to workers.
type Layout int

const (
	// Linear yields tiles in row-major order.
	Linear Layout = iota
	// Checker interleaves cache lines: even rows emit even columns first,
	// then odd, then the pass swaps.
	Checker
	// Spiral enumerates tiles by increasing Chebyshev radius from the image
	// center, outward.
	Spiral
)

// Map partitions a cropped image into tiles and hands them out one at a
// time under a single-writer lock, per §4.6 and the concurrency model's
// "reader-writer lock" guarantee: many goroutines may query progress
// concurrently, but only one claims a tile at a time.
type Map struct {
	mu    sync.RWMutex
	tiles []*Tile
	order []int // tiles[order[k]] is the k-th tile to hand out
}

// DefaultTileSize returns 8, or the next power of two that makes the tile
// count at least 4x the thread count, per §4.6.
func DefaultTileSize(width, height, threads int) int {
	size := 8
	for {
		tilesX := (width + size - 1) / size
		tilesY := (height + size - 1) / size
		if tilesX*tilesY >= 4*threads || size <= 1 {
			return size
		}
		size /= 2
	}
}

// NewMap partitions crop into tileSize x tileSize tiles under layout, seeding
// each tile's RNG from globalSeed.
func NewMap(crop Rect, tileSize int, layout Layout, globalSeed uint64, samplesPerIteration uint32) *Map {
	var rects []Rect
	for y := crop.MinY; y < crop.MaxY; y += tileSize {
		for x := crop.MinX; x < crop.MaxX; x += tileSize {
			r := Rect{
				MinX: x, MinY: y,
				MaxX: min(x+tileSize, crop.MaxX),
				MaxY: min(y+tileSize, crop.MaxY),
			}
			rects = append(rects, r)
		}
	}

	m := &Map{}
	for i, r := range rects {
		m.tiles = append(m.tiles, NewTile(i, r, globalSeed, samplesPerIteration))
	}
	m.order = layoutOrder(rects, layout, crop)
	return m
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func layoutOrder(rects []Rect, layout Layout, crop Rect) []int {
	n := len(rects)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	switch layout {
	case Linear:
		return idx // rects were already built in row-major order
	case Checker:
		// tiles are laid out row-major in a grid; recover (col,row) from
		// rects' positions to build the even/odd column interleave.
		type cr struct{ col, row, i int }
		items := make([]cr, n)
		for i, r := range rects {
			row := (r.MinY - crop.MinY) / (r.MaxY - r.MinY)
			col := 0
			if cw := r.MaxX - r.MinX; cw > 0 {
				col = (r.MinX - crop.MinX) / cw
			}
			items[i] = cr{col: col, row: row, i: i}
		}
		sort.SliceStable(items, func(a, b int) bool {
			pa := checkerPhase(items[a].row, items[a].col)
			pb := checkerPhase(items[b].row, items[b].col)
			if pa != pb {
				return pa < pb
			}
			if items[a].row != items[b].row {
				return items[a].row < items[b].row
			}
			return items[a].col < items[b].col
		})
		out := make([]int, n)
		for k, it := range items {
			out[k] = it.i
		}
		return out
	case Spiral:
		cx := (crop.MinX + crop.MaxX) / 2
		cy := (crop.MinY + crop.MaxY) / 2
		sort.SliceStable(idx, func(a, b int) bool {
			ra := chebyshev(rects[idx[a]], cx, cy)
			rb := chebyshev(rects[idx[b]], cx, cy)
			return ra < rb
		})
		return idx
	default:
		return idx
	}
}


// checkerPhase groups (row,col) into 4 phases: even rows/even cols, even
// rows/odd cols, odd rows/even cols, odd rows/odd cols -- this is the
// "even rows emit even columns first, then odd, then swap" interleave.
func checkerPhase(row, col int) int {
	rp := row % 2
	cp := col % 2
	return rp*2 + cp
}

func chebyshev(r Rect, cx, cy int) int {
	dx := absInt((r.MinX+r.MaxX)/2 - cx)
	dy := absInt((r.MinY+r.MaxY)/2 - cy)
	if dx > dy {
		return dx
	}
	return dy
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// NextFree claims the next tile whose iteration count is below maxIter,
// transitioning it Free -> Working. Returns nil if none is available right
// now (either all are Working/Done, or all have reached maxIter).
func (m *Map) NextFree(maxIter int) *Tile {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.order {
		t := m.tiles[i]
		if t.Iteration() >= maxIter {
			continue
		}
		if t.tryTransition(Free, Working) {
			return t
		}
	}
	return nil
}

// AllFinished reports whether every tile's iteration count has reached
// target.
func (m *Map) AllFinished(target int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tiles {
		if t.Iteration() < target {
			return false
		}
	}
	return true
}

// Tiles returns the tile set (not ordered by layout); callers that need
// layout order should iterate Map.order via NextFree instead.
func (m *Map) Tiles() []*Tile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Tile, len(m.tiles))
	copy(out, m.tiles)
	return out
}

// DefaultThreads returns runtime.GOMAXPROCS(0), the hardware-concurrency
// default the render context sizes its worker pool and tile grid from.
func DefaultThreads() int {
	return runtime.GOMAXPROCS(0)
}
