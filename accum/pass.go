package accum

import (
	"github.com/pthm-cable/dpd/bonds"
	"github.com/pthm-cable/dpd/box"
	"github.com/pthm-cable/dpd/kernels"
	"github.com/pthm-cable/dpd/pairs"
	"github.com/pthm-cable/dpd/particle"
	"github.com/pthm-cable/dpd/rng"
)

// Pass bundles the pair driver, the DPD kernels, the bond chunker, and
// the electrostatics kernel that write the force arrays and, when
// requested, the potential/pressure Adders of a ForceSet. The kernel
// families are not fused into one traversal: each DPD Run* method is one
// pairs.Driver.Run call, RunElectrostatics is a second pairs.Driver.Run
// call, and RunBonds is one bonds.EvaluateChunks call.
type Pass struct {
	Box    *box.Box
	Driver *pairs.Driver
	Pool   *pairs.WorkerPool
	Table  *kernels.InteractionTable

	BondChunks []bonds.Chunk
	Electro    *kernels.ElectrostaticsParams // nil disables electrostatics

	Seed     int64
	Gaussian bool
}

// RunConservative evaluates only the conservative DPD force (used by the
// pre-minimizer and by the conservative-only recompute steps of S1MVV,
// SCMVV, and PNHLN, spec.md §4.6). wantPotential/wantPressure select
// whether UpotConservative / Pxx..PzzDPD are also accumulated.
func (p *Pass) RunConservative(sys *particle.System, fs *ForceSet, mode pairs.Mode, wantPotential, wantPressure bool) {
	var upotLocal Adder
	kernel := func(i, j int, dx, dy, dz, r2 float64) {
		aij := p.Table.Get(int(sys.ParticleTypeIndex[i]), int(sys.ParticleTypeIndex[j]))
		f := kernels.Conservative(aij, p.Driver.Grid.Cutoff, dx, dy, dz, r2)
		fs.Fx[i] += f.Fx
		fs.Fy[i] += f.Fy
		fs.Fz[i] += f.Fz
		fs.Fx[j] -= f.Fx
		fs.Fy[j] -= f.Fy
		fs.Fz[j] -= f.Fz
		if wantPotential {
			upotLocal.Add(kernels.ConservativePotential(aij, p.Driver.Grid.Cutoff, r2))
		}
		if wantPressure {
			fs.Pxx.Add(dx * f.Fx)
			fs.Pyy.Add(dy * f.Fy)
			fs.Pzz.Add(dz * f.Fz)
			fs.PxxDPD.Add(dx * f.Fx)
			fs.PyyDPD.Add(dy * f.Fy)
			fs.PzzDPD.Add(dz * f.Fz)
		}
	}
	p.Driver.Run(sys.Rx, sys.Ry, sys.Rz, mode, kernel, false)
	if wantPotential {
		fs.UpotConservative.Add(upotLocal.Sum())
	}
}

// RunFullForce evaluates the combined conservative+random+dissipative
// "full-force" kernel (spec.md §4.4, §4.6.1 GWMVV). vx/vy/vz are the
// velocities used to form v_ij for the dissipative term (GWMVV uses the
// predicted vnew on the second call of a step, per spec.md §4.6.1 step 8).
func (p *Pass) RunFullForce(sys *particle.System, fs *ForceSet, mode pairs.Mode, vx, vy, vz []float64, gamma, sigma, dt float64, step int64, wantPotential, wantPressure bool) {
	cutoff := p.Driver.Grid.Cutoff
	var upotLocal Adder
	kernel := func(i, j int, dx, dy, dz, r2 float64) {
		aij := p.Table.Get(int(sys.ParticleTypeIndex[i]), int(sys.ParticleTypeIndex[j]))
		zeta := p.drawZeta(i, j, step)
		vijx, vijy, vijz := vx[i]-vx[j], vy[i]-vy[j], vz[i]-vz[j]
		f := kernels.FullForce(aij, gamma, sigma, cutoff, dt, dx, dy, dz, r2, vijx, vijy, vijz, zeta)
		fs.Fx[i] += f.Fx
		fs.Fy[i] += f.Fy
		fs.Fz[i] += f.Fz
		fs.Fx[j] -= f.Fx
		fs.Fy[j] -= f.Fy
		fs.Fz[j] -= f.Fz
		if wantPotential {
			upotLocal.Add(kernels.ConservativePotential(aij, cutoff, r2))
		}
		if wantPressure {
			fs.Pxx.Add(dx * f.Fx)
			fs.Pyy.Add(dy * f.Fy)
			fs.Pzz.Add(dz * f.Fz)
			fs.PxxDPD.Add(dx * f.Fx)
			fs.PyyDPD.Add(dy * f.Fy)
			fs.PzzDPD.Add(dz * f.Fz)
		}
	}
	p.Driver.Run(sys.Rx, sys.Ry, sys.Rz, mode, kernel, false)
	if wantPotential {
		fs.UpotConservative.Add(upotLocal.Sum())
	}
}

// RunConservativeRandom evaluates the combined conservative+random pair
// force, omitting the dissipative term (SCMVV's "f" accumulator, spec.md
// §4.6.3).
func (p *Pass) RunConservativeRandom(sys *particle.System, fs *ForceSet, mode pairs.Mode, sigma, dt float64, step int64, wantPotential bool) {
	cutoff := p.Driver.Grid.Cutoff
	var upotLocal Adder
	kernel := func(i, j int, dx, dy, dz, r2 float64) {
		aij := p.Table.Get(int(sys.ParticleTypeIndex[i]), int(sys.ParticleTypeIndex[j]))
		zeta := p.drawZeta(i, j, step)
		f := kernels.ConservativeRandom(aij, sigma, cutoff, dt, dx, dy, dz, r2, zeta)
		fs.Fx[i] += f.Fx
		fs.Fy[i] += f.Fy
		fs.Fz[i] += f.Fz
		fs.Fx[j] -= f.Fx
		fs.Fy[j] -= f.Fy
		fs.Fz[j] -= f.Fz
		if wantPotential {
			upotLocal.Add(kernels.ConservativePotential(aij, cutoff, r2))
		}
	}
	p.Driver.Run(sys.Rx, sys.Ry, sys.Rz, mode, kernel, false)
	if wantPotential {
		fs.UpotConservative.Add(upotLocal.Sum())
	}
}

// RunDissipativeOnly evaluates only the dissipative pair force, using
// v[x/y/z] as the velocity for v_ij (SCMVV's "ftwo" accumulator,
// recomputed every self-consistent sub-iteration with the current
// velocity estimate, spec.md §4.6.3 step 5).
func (p *Pass) RunDissipativeOnly(sys *particle.System, fs *ForceSet, mode pairs.Mode, vx, vy, vz []float64, gamma float64) {
	cutoff := p.Driver.Grid.Cutoff
	kernel := func(i, j int, dx, dy, dz, r2 float64) {
		vijx, vijy, vijz := vx[i]-vx[j], vy[i]-vy[j], vz[i]-vz[j]
		f := kernels.Dissipative(gamma, cutoff, dx, dy, dz, r2, vijx, vijy, vijz)
		fs.Fx[i] += f.Fx
		fs.Fy[i] += f.Fy
		fs.Fz[i] += f.Fz
		fs.Fx[j] -= f.Fx
		fs.Fy[j] -= f.Fy
		fs.Fz[j] -= f.Fz
	}
	p.Driver.Run(sys.Rx, sys.Ry, sys.Rz, mode, kernel, false)
}

// drawZeta draws the zero-mean unit-variance random-force variate for
// pair (i,j) at the given step, from a fresh per-pair stream seeded
// deterministically by (p.Seed, i, j, step) (spec.md §5's per-pair
// reproducibility strategy, chosen here because the pair driver does not
// expose a worker index to the kernel callback).
func (p *Pass) drawZeta(i, j int, step int64) float64 {
	stream := rng.NewStream(rng.PerPairSeed(p.Seed, i, j, step))
	if p.Gaussian {
		return stream.NewGaussianSource().Sample()
	}
	return stream.UniformSqrt3()
}

// RunElectrostatics evaluates the damped-Coulomb pair kernel over only
// the charged-particle subset (spec.md §3 chargedParticleIndices),
// reusing the same cell assignment as the DPD pass (mode is normally
// pairs.WithoutAssignments, since this runs after a DPD pass in the same
// step already built the assignment).
func (p *Pass) RunElectrostatics(sys *particle.System, fs *ForceSet, mode pairs.Mode, wantPotential, wantPressure bool) {
	if p.Electro == nil {
		return
	}
	var upotLocal Adder
	kernel := func(i, j int, dx, dy, dz, r2 float64) {
		qi, qj := sys.Charge[i], sys.Charge[j]
		if qi == 0 || qj == 0 {
			return
		}
		f := kernels.ElectrostaticForce(p.Electro, qi, qj, dx, dy, dz, r2)
		fs.Fx[i] += f.Fx
		fs.Fy[i] += f.Fy
		fs.Fz[i] += f.Fz
		fs.Fx[j] -= f.Fx
		fs.Fy[j] -= f.Fy
		fs.Fz[j] -= f.Fz
		if wantPotential {
			upotLocal.Add(kernels.ElectrostaticPotential(p.Electro, qi, qj, r2))
		}
		if wantPressure {
			fs.Pxx.Add(dx * f.Fx)
			fs.Pyy.Add(dy * f.Fy)
			fs.Pzz.Add(dz * f.Fz)
		}
	}
	p.Driver.Run(sys.Rx, sys.Ry, sys.Rz, mode, kernel, false)
	if wantPotential {
		fs.UpotElectrostatic.Add(upotLocal.Sum())
	}
}

// RunBonds evaluates every chunk of p.BondChunks, writing into fs's force
// arrays and, when wantPotential, fs.UpotBond.
func (p *Pass) RunBonds(sys *particle.System, fs *ForceSet, wantPotential bool) {
	if len(p.BondChunks) == 0 {
		return
	}
	upot := bonds.EvaluateChunks(p.Pool, p.Box, p.BondChunks, sys.Rx, sys.Ry, sys.Rz, fs.Fx, fs.Fy, fs.Fz, wantPotential)
	if wantPotential {
		fs.UpotBond.Add(upot)
	}
}
