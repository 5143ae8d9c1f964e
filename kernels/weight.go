// Package kernels implements the pair-interaction force and potential
// formulas dispatched by package pairs' driver: the conservative, random,
// and dissipative DPD forces, their combined "full-force" one-pass
// variant, the Shardlow S1 and PNHLN pairwise velocity updates, and the
// damped-Coulomb electrostatics force/potential (spec.md §4.4).
//
// Every kernel here is a pure function of its scalar/vector arguments; it
// neither knows about particle.System nor performs any I/O, so each is
// directly unit-testable against the closed-form formulas in spec.md.
package kernels

// Weight is the standard DPD weight function w(r) = 1 - r/c for r < c,
// else 0.
func Weight(r, cutoff float64) float64 {
	if r >= cutoff {
		return 0
	}
	return 1 - r/cutoff
}

// PairForce is a force vector contribution to particle i; the reaction
// on particle j is its negation (Newton's third law, spec.md §4.4).
type PairForce struct {
	Fx, Fy, Fz float64
}

func scale(dx, dy, dz, r, factor float64) PairForce {
	if r == 0 {
		return PairForce{}
	}
	inv := factor / r
	return PairForce{Fx: dx * inv, Fy: dy * inv, Fz: dz * inv}
}
