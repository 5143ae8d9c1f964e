// Package bonds implements the harmonic bond list, its greedy
// race-free chunking, and the bond-force/potential evaluation (spec.md
// §3, §4.5).
package bonds

import "math"

// Behavior selects the bond's force-clamping rule (spec.md §3, §9).
type Behavior int

const (
	// Default applies the harmonic force unmodified.
	Default Behavior = iota
	// Attractive clamps the harmonic force to its attractive
	// (pulling-together) sign only; see DESIGN.md for the clamp-direction
	// decision resolving spec.md §9's open question.
	Attractive
)

// Bond is one harmonic bond record (spec.md §3).
type Bond struct {
	IndexA, IndexB int
	RestLength     float64
	ForceConstant  float64
	Behavior       Behavior
}

// Chunk is a slice of bonds in which every particle index appears at
// most once, enabling race-free parallel force evaluation within the
// chunk (spec.md §3, §4.5).
type Chunk []Bond

// BuildChunks greedily partitions bonds, in input order, into chunks
// whose touched-index sets are disjoint: each bond is placed in the
// first chunk whose touched set contains neither endpoint, opening a new
// chunk only when none fits (spec.md §4.5). Deterministic for a given
// input order (spec.md §8 scenario 4).
func BuildChunks(list []Bond) []Chunk {
	var chunks []Chunk
	var touched []map[int]bool

	for _, b := range list {
		placed := false
		for ci, set := range touched {
			if set[b.IndexA] || set[b.IndexB] {
				continue
			}
			chunks[ci] = append(chunks[ci], b)
			set[b.IndexA] = true
			set[b.IndexB] = true
			placed = true
			break
		}
		if !placed {
			chunks = append(chunks, Chunk{b})
			touched = append(touched, map[int]bool{b.IndexA: true, b.IndexB: true})
		}
	}
	return chunks
}

// Force returns F = -k(r-r0)*e, optionally clamped to the attractive
// (<=0 magnitude along e, i.e. pulling the pair together) branch only
// when b.Behavior is Attractive (spec.md §4.5, §9).
func Force(b *Bond, dx, dy, dz, r2 float64) (fx, fy, fz float64) {
	r := math.Sqrt(r2)
	if r == 0 {
		return 0, 0, 0
	}
	mag := -b.ForceConstant * (r - b.RestLength)
	if b.Behavior == Attractive && mag > 0 {
		mag = 0
	}
	inv := mag / r
	return dx * inv, dy * inv, dz * inv
}

// Potential returns the harmonic bond potential U = 0.5*k*(r-r0)^2, the
// antiderivative of the unclamped Force.
func Potential(b *Bond, r2 float64) float64 {
	r := math.Sqrt(r2)
	d := r - b.RestLength
	return 0.5 * b.ForceConstant * d * d
}
