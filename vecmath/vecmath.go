// Package vecmath provides the scalar and vector primitives shared by the
// rest of the DPD core: per-axis reductions, kinetic energy and
// temperature, and Berendsen-style velocity rescaling with center-of-mass
// momentum removal.
package vecmath

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// EpsTiny is the minimum-distance floor used throughout the core to avoid
// division by zero in radial pair kernels (spec.md §4.1, §6).
const EpsTiny = 1e-6

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Norm3 returns the Euclidean length of (x, y, z).
func Norm3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// Dot3 returns the dot product of (x1,y1,z1) and (x2,y2,z2).
func Dot3(x1, y1, z1, x2, y2, z2 float64) float64 {
	return x1*x2 + y1*y2 + z1*z2
}

// AxisSum returns the sum of a whole axis slice, delegating to gonum's
// vetted reduction rather than a hand-rolled loop (SPEC_FULL.md §4.11).
func AxisSum(axis []float64) float64 {
	return floats.Sum(axis)
}

// WeightedAxisSum returns sum_i weights[i]*axis[i].
func WeightedAxisSum(weights, axis []float64) float64 {
	return floats.Dot(weights, axis)
}

// KineticEnergy returns (1/2) * sum_i m_i * |v_i|^2 given per-particle
// mass and velocity-component slices of equal length.
func KineticEnergy(mass, vx, vy, vz []float64) float64 {
	n := len(mass)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += mass[i] * (vx[i]*vx[i] + vy[i]*vy[i] + vz[i]*vz[i])
	}
	return 0.5 * sum
}

// Temperature converts a kinetic energy to an instantaneous kT using the
// 3N-3 convention (three removed center-of-mass degrees of freedom),
// spec.md §4.7. Returns 0 when n <= 1.
func Temperature(ukin float64, n int) float64 {
	dof := 3*n - 3
	if dof <= 0 {
		return 0
	}
	return 2 * ukin / float64(dof)
}

// RemoveCOMMomentum subtracts the center-of-mass velocity (total momentum
// divided by total mass) from every particle so that sum_i m_i*v_i -> 0,
// in place.
func RemoveCOMMomentum(mass, vx, vy, vz []float64) {
	n := len(mass)
	if n == 0 {
		return
	}
	var totalMass, px, py, pz float64
	for i := 0; i < n; i++ {
		m := mass[i]
		totalMass += m
		px += m * vx[i]
		py += m * vy[i]
		pz += m * vz[i]
	}
	if totalMass == 0 {
		return
	}
	// Removing COM velocity (not momentum/N) keeps the correction mass
	// weighted consistently with how DPD masses differ between species.
	vxCOM := px / totalMass
	vyCOM := py / totalMass
	vzCOM := pz / totalMass
	for i := 0; i < n; i++ {
		vx[i] -= vxCOM
		vy[i] -= vyCOM
		vz[i] -= vzCOM
	}
}

// ScaleVelocities implements spec.md §4.7: it removes center-of-mass
// momentum, then rescales every velocity component by a single factor s
// so that the resulting instantaneous temperature equals targetKT. It
// returns s for logging.
func ScaleVelocities(mass, vx, vy, vz []float64, targetKT float64) float64 {
	n := len(mass)
	if n == 0 {
		return 1
	}
	RemoveCOMMomentum(mass, vx, vy, vz)

	var sumMV2 float64
	for i := 0; i < n; i++ {
		sumMV2 += mass[i] * (vx[i]*vx[i] + vy[i]*vy[i] + vz[i]*vz[i])
	}

	dof := float64(3*n - 3)
	if dof <= 0 || sumMV2 == 0 {
		return 1
	}

	s := math.Sqrt(dof * targetKT / sumMV2)
	for i := 0; i < n; i++ {
		vx[i] *= s
		vy[i] *= s
		vz[i] *= s
	}
	return s
}

// FiniteAll reports whether every value in the slices is finite (no
// NaN/Inf), the check behind spec.md §4.10's NumericError fatal.
func FiniteAll(slices ...[]float64) bool {
	for _, s := range slices {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
