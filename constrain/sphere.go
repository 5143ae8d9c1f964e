package constrain

import (
	"math"

	"github.com/pthm-cable/dpd/particle"
	"github.com/pthm-cable/dpd/vecmath"
)

// SphereKind selects whether particles are excluded from or confined to
// the sphere's interior (spec.md §4.9).
type SphereKind int

const (
	// Exclusion relocates particles found inside the sphere to the
	// antipodal point on the far side of its surface.
	Exclusion SphereKind = iota
	// Inclusion relocates particles found outside the sphere back onto
	// the antipodal point, symmetric to Exclusion.
	Inclusion
)

// Sphere is an inclusion/exclusion sphere constraint (spec.md §4.9).
type Sphere struct {
	Record
	Kind                   SphereKind
	CenterX, CenterY, CenterZ float64
	Diameter               float64
}

// Apply relocates every particle in the slice that violates the
// sphere's kind, reflecting it through the surface and inverting its
// velocity. When |Δ| (the offset from center) is smaller than
// vecmath.EpsTiny, the antipodal direction is taken along +x
// (DESIGN.md's resolution of spec.md §9's |Δ|->0 ambiguity).
func (c *Sphere) Apply(sys *particle.System, step int64) {
	if !c.active(step) {
		return
	}
	radius := c.Diameter / 2
	for i := c.First; i < c.ExclusiveLast; i++ {
		dx := sys.Rx[i] - c.CenterX
		dy := sys.Ry[i] - c.CenterY
		dz := sys.Rz[i] - c.CenterZ
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

		inside := dist < radius
		if (c.Kind == Exclusion && !inside) || (c.Kind == Inclusion && inside) {
			continue
		}

		ex, ey, ez := dx, dy, dz
		if dist < vecmath.EpsTiny {
			ex, ey, ez, dist = 1, 0, 0, vecmath.EpsTiny
		} else {
			ex, ey, ez = ex/dist, ey/dist, ez/dist
		}
		newDist := c.Diameter - dist
		sys.Rx[i] = c.CenterX + ex*newDist
		sys.Ry[i] = c.CenterY + ey*newDist
		sys.Rz[i] = c.CenterZ + ez*newDist
		sys.Vx[i] = -sys.Vx[i]
		sys.Vy[i] = -sys.Vy[i]
		sys.Vz[i] = -sys.Vz[i]
	}
}

// Acceleration adds a constant body-force contribution to the molecule
// slice every Frequency steps, up to MaxTimeStep (spec.md §4.9).
type Acceleration struct {
	Record
	Frequency          int64
	Ax, Ay, Az         float64
}

// Apply adds Ax/Ay/Az*mass to the force arrays of every particle in the
// slice, if step <= MaxTimeStep and step is a multiple of Frequency. It
// reports whether the acceleration fired this step, so callers can drive
// spec.md §4.6.1 step 12's "or accel was applied this step" rescale
// condition.
func (c *Acceleration) Apply(sys *particle.System, fx, fy, fz []float64, step int64) bool {
	if !c.active(step) {
		return false
	}
	if c.Frequency <= 0 || step%c.Frequency != 0 {
		return false
	}
	for i := c.First; i < c.ExclusiveLast; i++ {
		m := sys.DpdMass[i]
		fx[i] += c.Ax * m
		fy[i] += c.Ay * m
		fz[i] += c.Az * m
	}
	return true
}
