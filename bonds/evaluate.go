package bonds

import (
	"sync"

	"github.com/pthm-cable/dpd/box"
	"github.com/pthm-cable/dpd/pairs"
)

// EvaluateChunks applies Force to every bond in chunks, writing into
// fx/fy/fz and returning the total bond potential energy (0 if
// wantPotential is false). Chunks are processed one at a time — a given
// particle index can appear in more than one chunk (scenario #4), so
// concurrent chunks would race on fx/fy/fz. Within a single chunk no
// index repeats, so the bonds of that chunk are dispatched across the
// pool concurrently (spec.md §4.5: "within each chunk the bond force
// evaluation is embarrassingly parallel").
func EvaluateChunks(pool *pairs.WorkerPool, b *box.Box, chunks []Chunk, rx, ry, rz, fx, fy, fz []float64, wantPotential bool) float64 {
	var mu sync.Mutex
	var total float64

	for _, chunk := range chunks {
		pool.RunChunked(len(chunk), func(start, end int) {
			var local float64
			for bi := start; bi < end; bi++ {
				bond := &chunk[bi]
				i, j := bond.IndexA, bond.IndexB
				dx, dy, dz := b.Delta(rx[i], ry[i], rz[i], rx[j], ry[j], rz[j])
				r2 := dx*dx + dy*dy + dz*dz
				bfx, bfy, bfz := Force(bond, dx, dy, dz, r2)
				fx[i] += bfx
				fy[i] += bfy
				fz[i] += bfz
				fx[j] -= bfx
				fy[j] -= bfy
				fz[j] -= bfz
				if wantPotential {
					local += Potential(bond, r2)
				}
			}
			if wantPotential && local != 0 {
				mu.Lock()
				total += local
				mu.Unlock()
			}
		})
	}
	return total
}
