package kernels

import "math"

// Conservative computes the DPD conservative pair force F_ij = a_ij *
// w(r) * e (spec.md §4.4). aij is the symmetric interaction-table entry
// for the pair's particle types.
func Conservative(aij, cutoff, dx, dy, dz, r2 float64) PairForce {
	r := math.Sqrt(r2)
	w := Weight(r, cutoff)
	if w == 0 {
		return PairForce{}
	}
	return scale(dx, dy, dz, r, aij*w)
}

// ConservativePotential returns the DPD conservative pair potential
// U(r) = a_ij*(c-r)^2/(2c), the antiderivative of Conservative's force
// with U(c) = 0.
func ConservativePotential(aij, cutoff, r2 float64) float64 {
	r := math.Sqrt(r2)
	if r >= cutoff {
		return 0
	}
	d := cutoff - r
	return aij * d * d / (2 * cutoff)
}
