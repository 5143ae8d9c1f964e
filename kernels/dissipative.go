package kernels

import "math"

// Dissipative computes the standard DPD dissipative pair force
// F_ij^D = -gamma * w(r)^2 * (e.v_ij) * e, v_ij = v_i - v_j (spec.md
// §4.4). Symmetric: the caller applies the negation to particle j.
func Dissipative(gamma, cutoff, dx, dy, dz, r2, vijx, vijy, vijz float64) PairForce {
	r := math.Sqrt(r2)
	w := Weight(r, cutoff)
	if w == 0 {
		return PairForce{}
	}
	ex, ey, ez := dx/r, dy/r, dz/r
	edotv := ex*vijx + ey*vijy + ez*vijz
	mag := -gamma * w * w * edotv
	return PairForce{Fx: mag * ex, Fy: mag * ey, Fz: mag * ez}
}

// Random computes the DPD random pair force F_ij^R = sigma * w(r) *
// zeta / sqrt(dt) * e (spec.md §4.4). zeta is a zero-mean unit-variance
// draw (uniform [-sqrt(3),sqrt(3)] or Gaussian per config, see package
// rng) supplied by the caller so this kernel stays a pure function.
func Random(sigma, cutoff, dt, dx, dy, dz, r2, zeta float64) PairForce {
	r := math.Sqrt(r2)
	w := Weight(r, cutoff)
	if w == 0 {
		return PairForce{}
	}
	mag := sigma * w * zeta / math.Sqrt(dt)
	return scale(dx, dy, dz, r, mag)
}

// Sigma returns the fluctuation-dissipation-consistent random-force
// amplitude sigma = sqrt(2 gamma kT) for a given gamma and target kT.
func Sigma(gamma, kT float64) float64 {
	return math.Sqrt(2 * gamma * kT)
}

// ConservativeRandom evaluates the conservative and random pair forces
// together, omitting the dissipative term (the "f" accumulator of SCMVV,
// spec.md §4.6.3, which is recomputed separately from "ftwo").
func ConservativeRandom(aij, sigma, cutoff, dt, dx, dy, dz, r2, zeta float64) PairForce {
	r := math.Sqrt(r2)
	w := Weight(r, cutoff)
	if w == 0 {
		return PairForce{}
	}
	ex, ey, ez := dx/r, dy/r, dz/r
	mag := aij*w + sigma*w*zeta/math.Sqrt(dt)
	return PairForce{Fx: mag * ex, Fy: mag * ey, Fz: mag * ez}
}

// FullForce evaluates the conservative, random, and dissipative pair
// forces in a single pass (the "full-force" one-pass Groot-Warren
// kernel, spec.md §4.4), halving traversal cost relative to calling the
// three kernels separately.
func FullForce(aij, gamma, sigma, cutoff, dt, dx, dy, dz, r2, vijx, vijy, vijz, zeta float64) PairForce {
	r := math.Sqrt(r2)
	w := Weight(r, cutoff)
	if w == 0 {
		return PairForce{}
	}
	ex, ey, ez := dx/r, dy/r, dz/r
	edotv := ex*vijx + ey*vijy + ez*vijz
	conservative := aij * w
	dissipative := -gamma * w * w * edotv
	random := sigma * w * zeta / math.Sqrt(dt)
	mag := conservative + dissipative + random
	return PairForce{Fx: mag * ex, Fy: mag * ey, Fz: mag * ez}
}
