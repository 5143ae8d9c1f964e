// Package accum provides the many-producer scalar accumulators
// ("Adders") used for potential, pressure, and thermostat sums (spec.md
// §3 "Adders"), and the force/potential pass that runs the pair, bond,
// and electrostatics kernels for one integrator step (spec.md §4.3,
// §8.13). Each of those kernel families is its own traversal.
package accum

import "sync"

// Adder is a many-producer scalar accumulator with a final Sum. Add may
// be called concurrently from any number of goroutines; Sum must only be
// called after every contributor has finished (the barrier between a
// pair-driver pass and the next operator, spec.md §5). The total is a
// single float64 guarded by one mutex: it is neither sharded per
// goroutine nor lock-free, so concurrent Add calls contend on that mutex.
type Adder struct {
	mu    sync.Mutex
	total float64
}

// NewAdder returns a zeroed Adder.
func NewAdder() *Adder { return &Adder{} }

// Add accumulates delta. Safe for concurrent use by multiple goroutines.
func (a *Adder) Add(delta float64) {
	a.mu.Lock()
	a.total += delta
	a.mu.Unlock()
}

// Sum returns the accumulated total. Must not be called concurrently
// with Add.
func (a *Adder) Sum() float64 { return a.total }

// Reset zeroes the accumulator for reuse on the next pass.
func (a *Adder) Reset() { a.total = 0 }
