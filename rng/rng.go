// Package rng provides the per-thread/per-seed reproducible random streams
// used by the random pair-force kernel (spec.md §4.4, §C3, §5).
//
// A run is reproducible at a fixed seed because every random draw for a
// pair comes from a fresh Stream seeded by PerPairSeed(seed, i, j, step),
// so the draws do not depend on the worker count or on which worker
// handles the pair. NewPool (one Stream per worker, derived from
// (seed, workerIndex)) is also provided; the force kernels and
// integrators do not use it.
package rng

import "math/rand"

// splitMix64 advances a 64-bit state and returns an avalanched value,
// the standard seed-expansion technique for decorrelating PRNG streams
// seeded from a common counter.
func splitMix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Stream is one reproducible random source, safe for use by exactly one
// goroutine at a time.
type Stream struct {
	r *rand.Rand
}

// NewStream derives a stream deterministically from seed.
func NewStream(seed int64) *Stream {
	state := uint64(seed)
	expanded := int64(splitMix64(&state))
	return &Stream{r: rand.New(rand.NewSource(expanded))}
}

// Rand exposes the underlying *rand.Rand, e.g. to drive a
// gonum.org/v1/gonum/stat/distuv distribution without copying state.
func (s *Stream) Rand() *rand.Rand { return s.r }

// UniformSymmetric draws a sample uniform on [-a, a].
func (s *Stream) UniformSymmetric(a float64) float64 {
	return (s.r.Float64()*2 - 1) * a
}

// UniformSqrt3 draws the zero-mean, unit-variance uniform variate spec.md
// §4.4 uses for the random pair force: uniform on [-sqrt(3), sqrt(3)].
func (s *Stream) UniformSqrt3() float64 {
	const sqrt3 = 1.7320508075688772
	return s.UniformSymmetric(sqrt3)
}

// NewPool derives n independent, deterministic streams from seed, one per
// parallel worker (spec.md §5).
func NewPool(seed int64, n int) []*Stream {
	pool := make([]*Stream, n)
	state := uint64(seed)
	for i := 0; i < n; i++ {
		// Mix in the worker index before deriving each stream's seed so
		// that streams remain distinct even if the caller passes seed==0.
		mixed := state ^ (uint64(i)*0x9E3779B97F4A7C15 + 1)
		sub := splitMix64(&mixed)
		pool[i] = NewStream(int64(sub))
	}
	return pool
}

// PerPairSeed derives a deterministic per-pair, per-step seed from a run
// seed and (i, j, step). This is the seeding the random pair force, the
// Shardlow S1 update and the PNHLN update use: each builds a fresh Stream
// from it, which makes the draws independent of worker count at the cost
// of constructing a Stream per pair.
func PerPairSeed(seed int64, i, j int, step int64) int64 {
	state := uint64(seed)
	state ^= uint64(i)*0x100000001B3 + 1
	_ = splitMix64(&state)
	state ^= uint64(j)*0x100000001B3 + 2
	_ = splitMix64(&state)
	state ^= uint64(step)*0x100000001B3 + 3
	return int64(splitMix64(&state))
}
