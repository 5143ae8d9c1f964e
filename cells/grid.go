// Package cells implements the cell-list spatial partitioner: cubic cells
// of side >= cutoff, a 13-offset forward neighbor table with periodic
// wrap bookkeeping, and a deterministic "cell chunk" coloring that makes
// parallel pair-kernel invocation race-free (spec.md §4.2).
package cells

import (
	"fmt"

	"github.com/pthm-cable/dpd/box"
)

// Grid is the immutable-after-construction cell-list geometry for one
// box + cutoff combination.
type Grid struct {
	B      *box.Box
	Cutoff float64

	Count [3]int
	Side  [3]float64

	// neighborTable[c] holds cell c's forward-neighbor stencil.
	neighborTable [][]CellNeighbor

	// chunks partitions all cell indices into stencil-disjoint groups
	// (spec.md §4.2's "cell chunk").
	chunks [][]int
}

// CellNeighbor is one entry of a cell's forward-neighbor stencil: the
// flat index of the neighboring cell plus the per-axis periodic-image
// offset to add to a particle position sampled from that cell before
// differencing against a particle in the owning cell.
type CellNeighbor struct {
	Cell             int
	WrapX, WrapY, WrapZ float64
}

// BoxTooSmallError reports a cutoff that does not fit the box's cell
// geometry (spec.md §7).
type BoxTooSmallError struct {
	Axis       int
	CellSide   float64
	Cutoff     float64
}

func (e *BoxTooSmallError) Error() string {
	return fmt.Sprintf("cells: axis %d cell side %.6g is smaller than cutoff %.6g", e.Axis, e.CellSide, e.Cutoff)
}

// New builds the cell grid for b at the given cutoff. Cell counts are
// chosen as max(3, floor(L_axis/cutoff)) per spec.md §4.2; if the
// resulting cell side is still smaller than cutoff the box is too small
// for this cutoff and construction fails.
//
// On a periodic axis the count is additionally rounded down to a
// multiple of 3: the (ix%3,iy%3,iz%3) chunk coloring (chunks.go) is only
// stencil-disjoint when same-color cells can never be forward-neighbors,
// and under periodic wrap cell count-1 borders cell 0 regardless of
// their numeric difference — a count that isn't a multiple of 3 lets
// those two wrap-adjacent cells land in the same color bucket.
func New(b *box.Box, cutoff float64) (*Grid, error) {
	if !(cutoff > 0) {
		return nil, fmt.Errorf("cells: non-positive cutoff %v", cutoff)
	}
	g := &Grid{B: b, Cutoff: cutoff}
	for axis := 0; axis < 3; axis++ {
		count := int(b.L[axis] / cutoff)
		if count < 3 {
			count = 3
		}
		if b.Periodic[axis] {
			count -= count % 3
		}
		side := b.L[axis] / float64(count)
		if side < cutoff {
			return nil, &BoxTooSmallError{Axis: axis, CellSide: side, Cutoff: cutoff}
		}
		g.Count[axis] = count
		g.Side[axis] = side
	}
	g.buildNeighborTable()
	g.buildChunks()
	return g, nil
}

// NumCells returns the total number of cells in the grid.
func (g *Grid) NumCells() int {
	return g.Count[0] * g.Count[1] * g.Count[2]
}

// Flatten converts a 3D cell coordinate to a flat cell index.
func (g *Grid) Flatten(ix, iy, iz int) int {
	return (iz*g.Count[1]+iy)*g.Count[0] + ix
}

// Unflatten converts a flat cell index back to a 3D coordinate.
func (g *Grid) Unflatten(cell int) (ix, iy, iz int) {
	ix = cell % g.Count[0]
	rest := cell / g.Count[0]
	iy = rest % g.Count[1]
	iz = rest / g.Count[1]
	return
}

// CellOf returns the clamped cell coordinate containing position (x,y,z).
func (g *Grid) CellOf(x, y, z float64) (ix, iy, iz int) {
	ix = clampIndex(int(x/g.Side[0]), g.Count[0])
	iy = clampIndex(int(y/g.Side[1]), g.Count[1])
	iz = clampIndex(int(z/g.Side[2]), g.Count[2])
	return
}

func clampIndex(i, count int) int {
	if i < 0 {
		return 0
	}
	if i >= count {
		return count - 1
	}
	return i
}

// Neighbors returns the precomputed forward-neighbor stencil of cell c.
func (g *Grid) Neighbors(c int) []CellNeighbor {
	return g.neighborTable[c]
}

// Chunks returns the deterministic cell-chunk partition: groups of cell
// indices whose forward-neighbor stencils never overlap, safe to process
// concurrently (spec.md §4.2, §4.3).
func (g *Grid) Chunks() [][]int {
	return g.chunks
}

// forwardOffsets are the 13 of 27 {-1,0,1}^3 offsets that, combined with
// in-cell pairs, enumerate every unordered cell pair exactly once
// (spec.md §4.2).
var forwardOffsets = [13][3]int{
	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{1, 1, 0}, {1, -1, 0},
	{1, 0, 1}, {1, 0, -1},
	{0, 1, 1}, {0, 1, -1},
	{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
}

func (g *Grid) buildNeighborTable() {
	n := g.NumCells()
	g.neighborTable = make([][]CellNeighbor, n)
	for c := 0; c < n; c++ {
		ix, iy, iz := g.Unflatten(c)
		list := make([]CellNeighbor, 0, 13)
		for _, off := range forwardOffsets {
			nx, wrapX, ok := g.wrapAxis(ix+off[0], 0)
			if !ok {
				continue
			}
			ny, wrapY, ok := g.wrapAxis(iy+off[1], 1)
			if !ok {
				continue
			}
			nz, wrapZ, ok := g.wrapAxis(iz+off[2], 2)
			if !ok {
				continue
			}
			list = append(list, CellNeighbor{
				Cell:  g.Flatten(nx, ny, nz),
				WrapX: wrapX, WrapY: wrapY, WrapZ: wrapZ,
			})
		}
		g.neighborTable[c] = list
	}
}

// wrapAxis folds a candidate cell coordinate back into [0,count) on the
// given axis if periodic, returning the image offset to add to a
// particle position sampled from that wrapped cell. ok is false when the
// offset would leave a non-periodic axis (the neighbor is omitted, per
// spec.md §4.2).
func (g *Grid) wrapAxis(coord, axis int) (wrapped int, imageOffset float64, ok bool) {
	count := g.Count[axis]
	switch {
	case coord < 0:
		if !g.B.Periodic[axis] {
			return 0, 0, false
		}
		return coord + count, -g.B.L[axis], true
	case coord >= count:
		if !g.B.Periodic[axis] {
			return 0, 0, false
		}
		return coord - count, g.B.L[axis], true
	default:
		return coord, 0, true
	}
}
