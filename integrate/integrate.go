// Package integrate implements the four DPD time-stepping schemes:
// Groot-Warren MVV, Shardlow S1-MVV, self-consistent MVV, and pairwise
// Nosé-Hoover-Langevin (spec.md §4.6). Each owns its own accumulator set
// and orchestrates its per-step operator sequence; none share mutable
// state with one another (spec.md §9's "force accumulators are owned by
// the integrator, not shared").
package integrate

import (
	"fmt"

	"github.com/pthm-cable/dpd/accum"
	"github.com/pthm-cable/dpd/box"
	"github.com/pthm-cable/dpd/constrain"
	"github.com/pthm-cable/dpd/particle"
	"github.com/pthm-cable/dpd/vecmath"
)

// Integrator is the common interface every scheme implements (spec.md
// §9's "small trait/interface with {calculate(step), shutdown()}").
type Integrator interface {
	// Step advances the system by one timestep. step is the 1-based
	// simulation step counter, used for per-pair RNG reproducibility and
	// for evaluating constraint MaxTimeStep/Frequency.
	Step(step int64) error
	// Close releases any resources owned by the integrator (currently a
	// no-op for every scheme; present for symmetry with sim.Driver's
	// shutdown sequence).
	Close()
}

// Params bundles the physical constants every integrator needs.
type Params struct {
	Dt                  float64
	Gamma, Sigma        float64
	TargetKT            float64
	Gravity             [3]float64
	ScaleSteps          int64 // N_scale, spec.md §4.6.1
	MaxCorrectionTrials int
}

// Constraints bundles every constraint-enforcer list an integrator
// applies in sequence (spec.md §4.9). Any slice may be empty.
type Constraints struct {
	MoleculeFixations []*constrain.MoleculeFixation
	VelocityFixations []*constrain.VelocityFixation
	Boundaries        []*constrain.BoundaryPlane
	Spheres           []*constrain.Sphere
	Accelerations     []*constrain.Acceleration
}

// Context is the shared state every integrator operates on.
type Context struct {
	Sys    *particle.System
	Box    *box.Box
	Pass   *accum.Pass
	Params Params
	C      Constraints
}

func (c *Context) applyFixations(step int64) {
	for _, f := range c.C.MoleculeFixations {
		f.Apply(c.Sys, step)
	}
}

func (c *Context) applyVelocityFixations(step int64) {
	for _, f := range c.C.VelocityFixations {
		f.Apply(c.Sys, step)
	}
}

func (c *Context) applyBoundariesAndSpheres(step int64) {
	for _, b := range c.C.Boundaries {
		b.Apply(c.Sys, step)
	}
	for _, s := range c.C.Spheres {
		s.Apply(c.Sys, step)
	}
}

// correctPositions runs box.CorrectPositionAndVelocity over every
// particle, surfacing the first OutOfBoxError encountered (spec.md §4.1,
// §7).
func (c *Context) correctPositions() error {
	sys := c.Sys
	for i := 0; i < sys.N; i++ {
		if err := c.Box.CorrectPositionAndVelocity(i, &sys.Rx[i], &sys.Ry[i], &sys.Rz[i], &sys.Vx[i], &sys.Vy[i], &sys.Vz[i], c.Params.MaxCorrectionTrials); err != nil {
			return fmt.Errorf("integrate: %w", err)
		}
	}
	return nil
}

// addGravityAndAccelerations adds the constant gravitational
// acceleration and any active molecule accelerations to fx/fy/fz
// (spec.md §4.6's "add gravity and molecule accelerations" steps). It
// reports whether any acceleration fired this step.
func (c *Context) addGravityAndAccelerations(fx, fy, fz []float64, step int64) bool {
	sys := c.Sys
	g := c.Params.Gravity
	if g[0] != 0 || g[1] != 0 || g[2] != 0 {
		for i := 0; i < sys.N; i++ {
			m := sys.DpdMass[i]
			fx[i] += g[0] * m
			fy[i] += g[1] * m
			fz[i] += g[2] * m
		}
	}
	fired := false
	for _, a := range c.C.Accelerations {
		if a.Apply(sys, fx, fy, fz, step) {
			fired = true
		}
	}
	return fired
}

// checkFinite returns a NumericError-flavored error when any force or
// velocity component is NaN/Inf (spec.md §4.10, §7).
func checkFinite(sys *particle.System) error {
	if !vecmath.FiniteAll(sys.Fx, sys.Fy, sys.Fz, sys.Vx, sys.Vy, sys.Vz) {
		return fmt.Errorf("integrate: non-finite force or velocity component detected")
	}
	return nil
}

// maybeRescale applies vecmath.ScaleVelocities when step is within the
// initial equilibration window or an acceleration fired this step
// (spec.md §4.6.1 step 12, generalized to every scheme that calls it).
func (c *Context) maybeRescale(step int64, accelApplied bool) {
	if step > c.Params.ScaleSteps && !accelApplied {
		return
	}
	vecmath.ScaleVelocities(c.Sys.DpdMass, c.Sys.Vx, c.Sys.Vy, c.Sys.Vz, c.Params.TargetKT)
}

func kick(sys *particle.System, fx, fy, fz []float64, halfH float64) {
	for i := 0; i < sys.N; i++ {
		m := sys.DpdMass[i]
		sys.Vx[i] += halfH * fx[i] / m
		sys.Vy[i] += halfH * fy[i] / m
		sys.Vz[i] += halfH * fz[i] / m
	}
}

func drift(sys *particle.System, h float64) {
	for i := 0; i < sys.N; i++ {
		sys.Rx[i] += h * sys.Vx[i]
		sys.Ry[i] += h * sys.Vy[i]
		sys.Rz[i] += h * sys.Vz[i]
	}
}
