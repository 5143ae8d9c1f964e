package integrate

import (
	"math"

	"github.com/pthm-cable/dpd/accum"
	"github.com/pthm-cable/dpd/kernels"
	"github.com/pthm-cable/dpd/pairs"
	"github.com/pthm-cable/dpd/rng"
)

// PNHLN implements the pairwise Nosé-Hoover-Langevin scheme (spec.md
// §4.6.4): a single scalar thermostat variable Xi modulates the
// dissipative/random pair friction every step, and is itself driven by
// the accumulated pairwise heating rate G.
type PNHLN struct {
	*Context

	Mu       float64 // thermostat "mass", spec.md §4.6.4
	ThermoGamma float64 // thermostat relaxation rate, spec.md §4.6.4

	xi float64 // current thermostat variable, initialized to Params.Gamma

	fs *accum.ForceSet
}

// NewPNHLN constructs a PNHLN integrator over ctx with thermostat mass mu
// and relaxation rate thermoGamma. Xi is initialized to ctx.Params.Gamma,
// the DPD friction coefficient, per spec.md §4.6.4's initial condition.
func NewPNHLN(ctx *Context, mu, thermoGamma float64) *PNHLN {
	sys := ctx.Sys
	return &PNHLN{
		Context:     ctx,
		Mu:          mu,
		ThermoGamma: thermoGamma,
		xi:          ctx.Params.Gamma,
		fs:          accum.NewForceSet(sys.Fx, sys.Fy, sys.Fz),
	}
}

func (p *PNHLN) runConservative(step int64) bool {
	sys := p.Sys
	sys.ZeroForces()
	p.fs.Reset()
	p.Pass.RunConservative(sys, p.fs, pairs.WithAssignments, false, false)
	p.Pass.RunBonds(sys, p.fs, false)
	p.Pass.RunElectrostatics(sys, p.fs, pairs.WithoutAssignments, false, false)
	return p.addGravityAndAccelerations(sys.Fx, sys.Fy, sys.Fz, step)
}

// pairwisePass runs one PNHLN velocity-update traversal. When
// accumulateG is true it returns the sum of each pair's heating-rate
// contribution (spec.md §4.6.4 step 3's ΣG).
func (p *PNHLN) pairwisePass(step int64, accumulateG bool) float64 {
	sys := p.Sys
	h := p.Params.Dt
	cutoff := p.Pass.Driver.Grid.Cutoff
	var sumG accum.Adder
	kernel := func(i, j int, dx, dy, dz, r2 float64) {
		mi, mj := sys.DpdMass[i], sys.DpdMass[j]
		zeta := rng.NewStream(rng.PerPairSeed(p.Pass.Seed, i, j, step)).UniformSqrt3()
		u, g := kernels.PNHLN(mi, mj, p.Params.Gamma, p.Params.Sigma, cutoff, h, dx, dy, dz, r2,
			sys.Vx[i], sys.Vy[i], sys.Vz[i], sys.Vx[j], sys.Vy[j], sys.Vz[j], p.xi, zeta, accumulateG)
		sys.Vx[i], sys.Vy[i], sys.Vz[i] = u.Vix, u.Viy, u.Viz
		sys.Vx[j], sys.Vy[j], sys.Vz[j] = u.Vjx, u.Vjy, u.Vjz
		if accumulateG {
			sumG.Add(g)
		}
	}
	p.Pass.Driver.Run(sys.Rx, sys.Ry, sys.Rz, pairs.WithAssignments, kernel, false)
	return sumG.Sum()
}

// updateThermostat advances Xi by one step's worth of the
// Ornstein-Uhlenbeck-driven Nosé-Hoover-Langevin equation (spec.md
// §4.6.4 step 4): Xi relaxes exponentially toward zero at rate
// ThermoGamma, is driven by the accumulated heating rate sumG/Mu split
// across the half-step boundary, and receives a thermal noise kick
// consistent with the fluctuation-dissipation balance of the OU process.
func (p *PNHLN) updateThermostat(sumG float64, step int64) {
	h := p.Params.Dt
	drive := sumG / p.Mu * (h / 2)
	decay := math.Exp(-p.ThermoGamma * h)
	noiseStd := math.Sqrt(p.Params.TargetKT / p.Mu * (1 - decay*decay))
	noise := rng.NewStream(rng.PerPairSeed(p.Pass.Seed, -1, -1, step)).NewGaussianSource().Sample() * noiseStd
	p.xi = decay*(p.xi+drive) + noise + drive
}

// Step advances the system by one PNHLN timestep, following spec.md
// §4.6.4's strict operator sequence: half-drift (1), conservative
// recompute + half-kick (2-3), pairwise(G) / xi-update / pairwise(noG)
// (4-6), a second half-drift (7), and a final recompute + half-kick
// (8-9).
func (p *PNHLN) Step(step int64) error {
	sys := p.Sys
	h := p.Params.Dt

	if sys.ROldX != nil {
		sys.SaveOld()
	}
	drift(sys, h/2)

	p.applyFixations(step)
	if err := p.correctPositions(); err != nil {
		return err
	}
	p.applyBoundariesAndSpheres(step)

	accelFired1 := p.runConservative(step)
	kick(sys, sys.Fx, sys.Fy, sys.Fz, h/2)

	sumG := p.pairwisePass(step, true)
	p.updateThermostat(sumG, step)
	p.pairwisePass(step, false)

	if sys.ROldX != nil {
		sys.SaveOld()
	}
	drift(sys, h/2)

	p.applyFixations(step)
	if err := p.correctPositions(); err != nil {
		return err
	}
	p.applyBoundariesAndSpheres(step)

	accelFired2 := p.runConservative(step)
	kick(sys, sys.Fx, sys.Fy, sys.Fz, h/2)

	p.applyVelocityFixations(step)

	if err := checkFinite(sys); err != nil {
		return err
	}
	p.maybeRescale(step, accelFired1 || accelFired2)
	return nil
}

// Close releases PNHLN's resources (none owned beyond the shared pool).
func (p *PNHLN) Close() {}
