package integrate

import (
	"github.com/pthm-cable/dpd/accum"
	"github.com/pthm-cable/dpd/pairs"
)

// SCMVV implements the self-consistent modified velocity-Verlet scheme
// (spec.md §4.6.3): the conservative+random force "f" is evaluated once
// per step, while the dissipative force "ftwo" is refined by a fixed
// number of self-consistent sub-iterations against the velocity it
// depends on.
type SCMVV struct {
	*Context

	Iterations int // M, number of self-consistent sub-iterations

	f         *accum.ForceSet // conservative + random, over sys.Fx/Fy/Fz
	ftwo      *accum.ForceSet // dissipative only, over sys.F2x/F2y/F2z
	firstCall bool
}

// NewSCMVV constructs an SCMVV integrator over ctx with m self-consistent
// sub-iterations (spec.md §4.6.3 step 5, "Iterate k=1..M").
func NewSCMVV(ctx *Context, m int) *SCMVV {
	sys := ctx.Sys
	return &SCMVV{
		Context:    ctx,
		Iterations: m,
		f:          accum.NewForceSet(sys.Fx, sys.Fy, sys.Fz),
		ftwo:       accum.NewForceSet(sys.F2x, sys.F2y, sys.F2z),
		firstCall:  true,
	}
}

func (s *SCMVV) computeF(step int64) bool {
	sys := s.Sys
	sys.ZeroForces()
	s.f.Reset()
	s.Pass.RunConservativeRandom(sys, s.f, pairs.WithAssignments, s.Params.Sigma, s.Params.Dt, step, false)
	s.Pass.RunBonds(sys, s.f, false)
	s.Pass.RunElectrostatics(sys, s.f, pairs.WithoutAssignments, false, false)
	return s.addGravityAndAccelerations(sys.Fx, sys.Fy, sys.Fz, step)
}

func (s *SCMVV) computeFtwo(vx, vy, vz []float64) {
	sys := s.Sys
	sys.ZeroSecondaryForces()
	s.ftwo.Reset()
	s.Pass.RunDissipativeOnly(sys, s.ftwo, pairs.WithoutAssignments, vx, vy, vz, s.Params.Gamma)
}

// Step advances the system by one SCMVV timestep (spec.md §4.6.3).
func (s *SCMVV) Step(step int64) error {
	sys := s.Sys
	h := s.Params.Dt

	if s.firstCall {
		s.computeF(step)
		s.computeFtwo(sys.Vx, sys.Vy, sys.Vz)
		s.firstCall = false
	}

	if sys.ROldX != nil {
		sys.SaveOld()
	}
	for i := 0; i < sys.N; i++ {
		m := sys.DpdMass[i]
		sys.Vx[i] += h / 2 * (sys.Fx[i] + sys.F2x[i]) / m
		sys.Vy[i] += h / 2 * (sys.Fy[i] + sys.F2y[i]) / m
		sys.Vz[i] += h / 2 * (sys.Fz[i] + sys.F2z[i]) / m
	}
	drift(sys, h)

	s.applyFixations(step)
	if err := s.correctPositions(); err != nil {
		return err
	}
	s.applyBoundariesAndSpheres(step)

	accelFired := s.computeF(step)

	for i := 0; i < sys.N; i++ {
		m := sys.DpdMass[i]
		sys.VNewX[i] = sys.Vx[i] + h/2*sys.Fx[i]/m
		sys.VNewY[i] = sys.Vy[i] + h/2*sys.Fy[i]/m
		sys.VNewZ[i] = sys.Vz[i] + h/2*sys.Fz[i]/m
	}

	for k := 0; k < s.Iterations; k++ {
		for i := 0; i < sys.N; i++ {
			m := sys.DpdMass[i]
			sys.Vx[i] = sys.VNewX[i] + h/2*sys.F2x[i]/m
			sys.Vy[i] = sys.VNewY[i] + h/2*sys.F2y[i]/m
			sys.Vz[i] = sys.VNewZ[i] + h/2*sys.F2z[i]/m
		}
		s.computeFtwo(sys.Vx, sys.Vy, sys.Vz)
	}
	for i := 0; i < sys.N; i++ {
		m := sys.DpdMass[i]
		sys.Vx[i] = sys.VNewX[i] + h/2*sys.F2x[i]/m
		sys.Vy[i] = sys.VNewY[i] + h/2*sys.F2y[i]/m
		sys.Vz[i] = sys.VNewZ[i] + h/2*sys.F2z[i]/m
	}

	s.applyVelocityFixations(step)

	if err := checkFinite(sys); err != nil {
		return err
	}
	s.maybeRescale(step, accelFired)
	return nil
}

// Close releases SCMVV's resources (none owned beyond the shared pool).
func (s *SCMVV) Close() {}
