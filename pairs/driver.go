package pairs

import (
	"math"
	"sync"

	"github.com/pthm-cable/dpd/cells"
)

// Kernel receives one unordered candidate pair (i < j) plus the
// minimum-image-corrected displacement and squared distance.
type Kernel func(i, j int, dx, dy, dz, r2 float64)

// Mode selects how the driver obtains cell assignments / pair geometry
// for this invocation (spec.md §4.3).
type Mode int

const (
	// WithAssignments computes fresh cell assignments then iterates.
	WithAssignments Mode = iota
	// WithoutAssignments reuses the assignment from the prior call.
	WithoutAssignments
	// WithCache iterates a previously built PairCache, skipping geometry
	// re-derivation entirely.
	WithCache
)

// PairEntry is one cached candidate pair (spec.md §4.3 WITH_CACHE mode).
type PairEntry struct {
	I, J           int
	Dx, Dy, Dz, R2 float64
	R              float64
}

// PairCache is a reusable list of PairEntry, built once and consumed by
// later kernels of the same step without recomputing geometry.
type PairCache struct {
	Entries []PairEntry
}

// Driver iterates cell + forward-neighbor pairs for one cells.Grid and
// dispatches a kernel, using a shared WorkerPool for the per-cell-chunk
// parallel fan-out (spec.md §4.3, §5).
type Driver struct {
	Grid *cells.Grid
	Pool *WorkerPool

	assignment *cells.Assignment
	cache      *PairCache
}

// NewDriver constructs a pair driver over grid, parallelized via pool.
func NewDriver(grid *cells.Grid, pool *WorkerPool) *Driver {
	return &Driver{Grid: grid, Pool: pool}
}

// Cache returns the pair-distance cache built by the most recent
// populateCache=true Run call, or nil.
func (d *Driver) Cache() *PairCache { return d.cache }

// Run executes one pass of the pair driver. rx/ry/rz are the current
// particle positions. populateCache requests that Run additionally
// records every visited pair into a PairCache retrievable via Cache(),
// for later WithCache passes in the same step.
func (d *Driver) Run(rx, ry, rz []float64, mode Mode, kernel Kernel, populateCache bool) {
	switch mode {
	case WithAssignments:
		d.assignment = d.Grid.Assign(rx, ry, rz)
	case WithoutAssignments:
		if d.assignment == nil {
			d.assignment = d.Grid.Assign(rx, ry, rz)
		}
	case WithCache:
		d.runFromCache(kernel)
		return
	}

	var cacheMu chunkCache
	if populateCache {
		cacheMu.entries = make([][]PairEntry, len(d.Grid.Chunks()))
	}

	box := d.Grid.B
	for chunkIdx, chunk := range d.Grid.Chunks() {
		ci := chunkIdx
		d.Pool.RunChunked(len(chunk), func(start, end int) {
			var local []PairEntry
			for idx := start; idx < end; idx++ {
				cellA := chunk[idx]
				members := d.assignment.Members(cellA)

				for mi := 0; mi < len(members); mi++ {
					i := members[mi]
					for mj := mi + 1; mj < len(members); mj++ {
						j := members[mj]
						dx, dy, dz := box.Delta(rx[i], ry[i], rz[i], rx[j], ry[j], rz[j])
						r2 := dx*dx + dy*dy + dz*dz
						if r2 > d.Grid.Cutoff*d.Grid.Cutoff {
							continue
						}
						kernel(i, j, dx, dy, dz, r2)
						if populateCache {
							local = append(local, PairEntry{I: i, J: j, Dx: dx, Dy: dy, Dz: dz, R2: r2, R: math.Sqrt(r2)})
						}
					}
				}

				for _, nb := range d.Grid.Neighbors(cellA) {
					for _, j := range d.assignment.Members(nb.Cell) {
						for _, i := range members {
							dx := rx[i] - (rx[j] + nb.WrapX)
							dy := ry[i] - (ry[j] + nb.WrapY)
							dz := rz[i] - (rz[j] + nb.WrapZ)
							r2 := dx*dx + dy*dy + dz*dz
							if r2 > d.Grid.Cutoff*d.Grid.Cutoff {
								continue
							}
							lo, hi := i, j
							dxp, dyp, dzp := dx, dy, dz
							if lo > hi {
								lo, hi = hi, lo
								dxp, dyp, dzp = -dx, -dy, -dz
							}
							kernel(lo, hi, dxp, dyp, dzp, r2)
							if populateCache {
								local = append(local, PairEntry{I: lo, J: hi, Dx: dxp, Dy: dyp, Dz: dzp, R2: r2, R: math.Sqrt(r2)})
							}
						}
					}
				}
			}
			if populateCache && len(local) > 0 {
				cacheMu.append(ci, local)
			}
		})
	}

	if populateCache {
		entries := make([]PairEntry, 0)
		for _, l := range cacheMu.entries {
			entries = append(entries, l...)
		}
		d.cache = &PairCache{Entries: entries}
	}
}

func (d *Driver) runFromCache(kernel Kernel) {
	if d.cache == nil {
		return
	}
	for _, e := range d.cache.Entries {
		kernel(e.I, e.J, e.Dx, e.Dy, e.Dz, e.R2)
	}
}

// chunkCache collects cache entries per-chunk-index under a mutex; each
// RunChunked sub-call only appends once per (chunk, worker-range), so
// contention is negligible compared to the pair-kernel work itself.
type chunkCache struct {
	mu      sync.Mutex
	entries [][]PairEntry
}

func (c *chunkCache) append(chunkIdx int, entries []PairEntry) {
	c.mu.Lock()
	c.entries[chunkIdx] = append(c.entries[chunkIdx], entries...)
	c.mu.Unlock()
}
