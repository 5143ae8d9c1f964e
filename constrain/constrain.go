// Package constrain implements the per-molecule constraint enforcers:
// fixation, velocity fixation, boundary planes, inclusion/exclusion
// spheres, and body accelerations (spec.md §4.9).
package constrain

import "github.com/pthm-cable/dpd/particle"

// Record is the common [First, ExclusiveLast) molecule slice plus the
// step at which this constraint stops applying (spec.md §3).
type Record struct {
	First, ExclusiveLast int
	MaxTimeStep           int64
}

func (r Record) active(step int64) bool {
	return step <= r.MaxTimeStep
}

// MoleculeFixation snaps r back to rOld on the configured axes for its
// molecule slice while active (spec.md §4.9).
type MoleculeFixation struct {
	Record
	FixX, FixY, FixZ bool
}

// Apply copies rOld into r on the fixed axes, for every particle in the
// fixation's slice, if step <= MaxTimeStep.
func (c *MoleculeFixation) Apply(sys *particle.System, step int64) {
	if !c.active(step) {
		return
	}
	for i := c.First; i < c.ExclusiveLast; i++ {
		if c.FixX {
			sys.Rx[i] = sys.ROldX[i]
		}
		if c.FixY {
			sys.Ry[i] = sys.ROldY[i]
		}
		if c.FixZ {
			sys.Rz[i] = sys.ROldZ[i]
		}
	}
}

// VelocityFixation overwrites v on the fixed axes with a configured
// constant velocity (spec.md §4.9).
type VelocityFixation struct {
	Record
	FixX, FixY, FixZ   bool
	Vx, Vy, Vz         float64
}

// Apply writes the configured velocity onto the fixed axes of every
// particle in the slice, if step <= MaxTimeStep.
func (c *VelocityFixation) Apply(sys *particle.System, step int64) {
	if !c.active(step) {
		return
	}
	for i := c.First; i < c.ExclusiveLast; i++ {
		if c.FixX {
			sys.Vx[i] = c.Vx
		}
		if c.FixY {
			sys.Vy[i] = c.Vy
		}
		if c.FixZ {
			sys.Vz[i] = c.Vz
		}
	}
}

// BoundaryPlane reflects r into [Min, Max] on one axis and inverts v on
// that axis (spec.md §4.9). If Min > Max the reflection is toward the
// nearer bound.
type BoundaryPlane struct {
	Record
	Axis     int // 0=x, 1=y, 2=z
	Min, Max float64
}

func axisSlices(sys *particle.System, axis int) (r, v []float64) {
	switch axis {
	case 0:
		return sys.Rx, sys.Vx
	case 1:
		return sys.Ry, sys.Vy
	default:
		return sys.Rz, sys.Vz
	}
}

// Apply reflects every particle in the plane's slice back into [Min,Max]
// on Axis, inverting velocity on reflection.
func (c *BoundaryPlane) Apply(sys *particle.System, step int64) {
	if !c.active(step) {
		return
	}
	lo, hi := c.Min, c.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	r, v := axisSlices(sys, c.Axis)
	for i := c.First; i < c.ExclusiveLast; i++ {
		switch {
		case r[i] < lo:
			r[i] = lo + (lo - r[i])
			v[i] = -v[i]
		case r[i] > hi:
			r[i] = hi - (r[i] - hi)
			v[i] = -v[i]
		}
	}
}
