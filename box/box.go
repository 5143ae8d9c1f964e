// Package box implements the rectangular simulation box: its extents,
// per-axis periodic/reflective policy, minimum-image position differences,
// and the position-and-velocity correction applied after every drift
// (spec.md §4.1).
package box

import (
	"fmt"
	"math"

	"github.com/pthm-cable/dpd/vecmath"
)

// Box describes a rectangular (axis-aligned, orthorhombic) simulation cell.
type Box struct {
	L       [3]float64 // extents
	Half    [3]float64 // L/2
	Double  [3]float64 // 2L
	Periodic [3]bool
}

// New validates and constructs a Box. All extents must be strictly
// positive (spec.md §7 ConfigError).
func New(lx, ly, lz float64, periodic [3]bool) (*Box, error) {
	for axis, l := range [3]float64{lx, ly, lz} {
		if !(l > 0) {
			return nil, fmt.Errorf("box: non-positive extent on axis %d: %v", axis, l)
		}
	}
	b := &Box{L: [3]float64{lx, ly, lz}, Periodic: periodic}
	for i := 0; i < 3; i++ {
		b.Half[i] = b.L[i] / 2
		b.Double[i] = b.L[i] * 2
	}
	return b, nil
}

// CorrectPositionDifference implements spec.md §4.1's
// correctPositionDifference for a single axis: it folds delta into
// (-L/2, L/2] under periodicity, and floors near-zero deltas to ±EpsTiny
// to avoid zero denominators in radial pair kernels. The sign convention
// for delta == 0 is documented as an open question in spec.md §9 and
// resolved in DESIGN.md (positive tiebreak, matching the floor-only
// formula below).
func CorrectPositionDifference(delta float64, periodic bool, half, l float64) float64 {
	if math.Abs(delta) < vecmath.EpsTiny {
		if delta < 0 {
			return -vecmath.EpsTiny
		}
		return vecmath.EpsTiny
	}
	if !periodic {
		return delta
	}
	if delta > half {
		return delta - l
	}
	if delta <= -half {
		return delta + l
	}
	return delta
}

// Delta computes the (possibly minimum-image corrected) per-axis
// difference r_i - r_j for all three axes.
func (b *Box) Delta(rix, riy, riz, rjx, rjy, rjz float64) (dx, dy, dz float64) {
	dx = CorrectPositionDifference(rix-rjx, b.Periodic[0], b.Half[0], b.L[0])
	dy = CorrectPositionDifference(riy-rjy, b.Periodic[1], b.Half[1], b.L[1])
	dz = CorrectPositionDifference(riz-rjz, b.Periodic[2], b.Half[2], b.L[2])
	return
}

// MaxCorrectionTrials bounds the retry loop in CorrectPositionAndVelocity
// (spec.md §4.1). Exceeding it is a fatal OutOfBox condition.
const MaxCorrectionTrials = 8

// OutOfBoxError reports a particle that could not be folded back into the
// box within MaxCorrectionTrials retries (spec.md §7 OutOfBox).
type OutOfBoxError struct {
	ParticleIndex int
	Axis          int
	Position      float64
}

func (e *OutOfBoxError) Error() string {
	return fmt.Sprintf("box: particle %d escaped box on axis %d (r=%v) after retries", e.ParticleIndex, e.Axis, e.Position)
}

// nextBelow repeatedly shrinks l by (1 - k*EpsTiny) until the result is
// strictly less than l (spec.md §4.1).
func nextBelow(l float64) float64 {
	for k := 1; ; k++ {
		candidate := l * (1 - float64(k)*vecmath.EpsTiny)
		if candidate < l {
			return candidate
		}
	}
}

// CorrectAxis applies spec.md §4.1's correct_r_and_v to a single
// coordinate/velocity pair on one axis, retrying up to maxTrials+1 times.
// particleIndex and axis are only used to annotate a failure.
func CorrectAxis(r, v float64, l float64, periodic bool, maxTrials, particleIndex, axis int) (float64, float64, error) {
	for trial := 0; trial <= maxTrials; trial++ {
		switch {
		case periodic:
			switch {
			case r > l:
				r -= l
				continue
			case r < 0:
				r += l
				continue
			case r == l:
				r = 0
				return r, v, nil
			default:
				return r, v, nil
			}
		default: // reflective
			switch {
			case r > l:
				r = 2*l - r
				v = -v
				continue
			case r < 0:
				r = -r
				v = -v
				continue
			case r == l:
				r = nextBelow(l)
				v = -v
				return r, v, nil
			default:
				return r, v, nil
			}
		}
	}
	return r, v, &OutOfBoxError{ParticleIndex: particleIndex, Axis: axis, Position: r}
}

// CorrectPositionAndVelocity applies CorrectAxis to all three axes of one
// particle in place.
func (b *Box) CorrectPositionAndVelocity(particleIndex int, rx, ry, rz, vx, vy, vz *float64, maxTrials int) error {
	var err error
	if *rx, *vx, err = CorrectAxis(*rx, *vx, b.L[0], b.Periodic[0], maxTrials, particleIndex, 0); err != nil {
		return err
	}
	if *ry, *vy, err = CorrectAxis(*ry, *vy, b.L[1], b.Periodic[1], maxTrials, particleIndex, 1); err != nil {
		return err
	}
	if *rz, *vz, err = CorrectAxis(*rz, *vz, b.L[2], b.Periodic[2], maxTrials, particleIndex, 2); err != nil {
		return err
	}
	return nil
}

// MinExtent returns min(Lx, Ly, Lz), used by the pre-minimizer's initial
// step length (spec.md §4.8).
func (b *Box) MinExtent() float64 {
	m := b.L[0]
	if b.L[1] < m {
		m = b.L[1]
	}
	if b.L[2] < m {
		m = b.L[2]
	}
	return m
}
