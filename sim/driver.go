// Package sim wires the box, cell list, pair driver, kernels, bonds,
// accumulator pass, constraints, and one of the four integrators into a
// single runnable simulation driver (spec.md §NEW 4.14): the seam
// between the narrow, out-of-scope input-file parser and this module's
// in-scope numerical core.
package sim

import (
	"context"
	"fmt"
	"runtime"

	"github.com/pthm-cable/dpd/accum"
	"github.com/pthm-cable/dpd/bonds"
	"github.com/pthm-cable/dpd/box"
	"github.com/pthm-cable/dpd/cells"
	"github.com/pthm-cable/dpd/integrate"
	"github.com/pthm-cable/dpd/minimize"
	"github.com/pthm-cable/dpd/pairs"
	"github.com/pthm-cable/dpd/particle"
	"github.com/pthm-cable/dpd/vecmath"
)

// RestartInfo is the persisted state needed to resume a run: the last
// completed time step and the current positions/velocities.
type RestartInfo struct {
	LastTimeStep int64
	Rx, Ry, Rz   []float64
	Vx, Vy, Vz   []float64
	Stopped      bool
}

// PropertyRecord is one row of step-level output (spec.md §NEW 4.16).
type PropertyRecord struct {
	Step              int64
	UpotConservative  float64
	UpotBond          float64
	UpotElectrostatic float64
	Ukin              float64
	Temperature       float64
	Pxx, Pyy, Pzz     float64
}

// OutputWriter is the out-of-scope property-output sink (spec.md §1's
// "narrow interfaces" boundary).
type OutputWriter interface {
	WriteProperty(rec PropertyRecord) error
	Close() error
}

// Logger is the out-of-scope structured-logging sink.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopWriter/noopLogger let Driver run standalone without a caller-
// supplied OutputWriter/Logger.
type noopWriter struct{}

func (noopWriter) WriteProperty(PropertyRecord) error { return nil }
func (noopWriter) Close() error                       { return nil }

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Driver owns everything one simulation run needs: the particle system,
// the chosen integrator, the shared worker pool, and the output/logging
// sinks.
type Driver struct {
	Params Params
	Sys    *particle.System
	Box    *box.Box
	Pool   *pairs.WorkerPool

	ctx *integrate.Context
	it  integrate.Integrator

	Output OutputWriter
	Log    Logger
}

// New validates p and constructs a Driver ready to Run. output/log may
// be nil, in which case a no-op sink is used.
func New(p Params, output OutputWriter, log Logger) (*Driver, error) {
	if p.N <= 0 {
		return nil, newError(ConfigError, "N must be positive", nil)
	}
	if p.Dt <= 0 {
		return nil, newError(ConfigError, "Dt must be positive", nil)
	}
	if output == nil {
		output = noopWriter{}
	}
	if log == nil {
		log = noopLogger{}
	}

	b, err := box.New(p.Lx, p.Ly, p.Lz, p.Periodic)
	if err != nil {
		return nil, newError(ConfigError, "constructing box", err)
	}

	grid, err := cells.New(b, p.Cutoff)
	if err != nil {
		if _, ok := err.(*cells.BoxTooSmallError); ok {
			return nil, newError(BoxTooSmall, "box too small for cutoff", err)
		}
		return nil, newError(ConfigError, "constructing cell grid", err)
	}

	poolSize := p.WorkerPoolSize
	if poolSize <= 0 {
		poolSize = runtime.GOMAXPROCS(0)
	}
	pool := pairs.NewWorkerPool(poolSize)
	driver := pairs.NewDriver(grid, pool)

	sys, err := buildSystem(p)
	if err != nil {
		return nil, newError(ConfigError, "building particle system", err)
	}

	pass := &accum.Pass{
		Box:        b,
		Driver:     driver,
		Pool:       pool,
		Table:      p.InteractionTable,
		BondChunks: bonds.BuildChunks(p.Bonds),
		Electro:    p.Electro,
		Seed:       p.Seed,
		Gaussian:   p.GaussianNoise,
	}

	if hasFixations(p.Constraints) {
		sys.EnableMoleculeFixationScratch()
	}

	ctx := &integrate.Context{
		Sys:  sys,
		Box:  b,
		Pass: pass,
		Params: integrate.Params{
			Dt:                  p.Dt,
			Gamma:               p.Gamma,
			Sigma:               p.Sigma,
			TargetKT:            p.TargetKT,
			Gravity:             p.Gravity,
			ScaleSteps:          p.ScaleSteps,
			MaxCorrectionTrials: p.MaxCorrectionTrials,
		},
		C: p.Constraints,
	}

	it, err := newIntegrator(ctx, p)
	if err != nil {
		return nil, err
	}

	return &Driver{Params: p, Sys: sys, Box: b, Pool: pool, ctx: ctx, it: it, Output: output, Log: log}, nil
}

func hasFixations(c integrate.Constraints) bool {
	return len(c.MoleculeFixations) > 0
}

func newIntegrator(ctx *integrate.Context, p Params) (integrate.Integrator, error) {
	switch p.Integrator {
	case GWMVVIntegrator:
		lambda := p.Lambda
		if lambda == 0 {
			lambda = 0.5
		}
		return integrate.NewGWMVV(ctx, lambda), nil
	case S1MVVIntegrator:
		return integrate.NewS1MVV(ctx), nil
	case SCMVVIntegrator:
		m := p.SCMVVIterations
		if m <= 0 {
			m = 1
		}
		return integrate.NewSCMVV(ctx, m), nil
	case PNHLNIntegrator:
		return integrate.NewPNHLN(ctx, p.ThermoMu, p.ThermoGamma), nil
	default:
		return nil, newError(ConfigError, fmt.Sprintf("unknown integrator kind %d", p.Integrator), nil)
	}
}

func buildSystem(p Params) (*particle.System, error) {
	sys := particle.New(p.N)
	copyOrZero := func(dst, src []float64) error {
		if src == nil {
			return nil
		}
		if len(src) != p.N {
			return fmt.Errorf("length %d, want %d", len(src), p.N)
		}
		copy(dst, src)
		return nil
	}
	for _, pair := range []struct {
		dst, src []float64
	}{
		{sys.Rx, p.Rx}, {sys.Ry, p.Ry}, {sys.Rz, p.Rz},
		{sys.Vx, p.Vx}, {sys.Vy, p.Vy}, {sys.Vz, p.Vz},
		{sys.Charge, p.Charge}, {sys.MolarMass, p.MolarMass},
	} {
		if err := copyOrZero(pair.dst, pair.src); err != nil {
			return nil, err
		}
	}
	if p.ParticleTypeIndex != nil {
		copy(sys.ParticleTypeIndex, p.ParticleTypeIndex)
	}
	if p.MoleculeTypeIndex != nil {
		copy(sys.MoleculeTypeIndex, p.MoleculeTypeIndex)
	}
	if p.MoleculeIndex != nil {
		copy(sys.MoleculeIndex, p.MoleculeIndex)
	}
	if p.Token != nil {
		copy(sys.Token, p.Token)
	}
	if err := sys.ComputeDerivedMasses(p.UnitMass); err != nil {
		return nil, err
	}
	sys.ComputeChargedIndices()
	return sys, nil
}

// Run executes the time-step loop: an optional pre-minimization pass,
// then Params.Steps integrator steps, polling ctx.Done() at
// output-cadence boundaries and returning a RestartInfo plus a Stopped
// flag on cooperative cancellation (spec.md §5, §NEW 4.14).
func (d *Driver) Run(runCtx context.Context) (RestartInfo, error) {
	defer d.it.Close()
	defer d.Pool.Close()

	if d.Params.MinimizeSteps > 0 {
		d.Log.Info("minimizer_start", "steps", d.Params.MinimizeSteps)
		result, err := minimize.Run(d.Sys, d.Box, d.ctx.Pass, minimize.Params{
			Steps:               d.Params.MinimizeSteps,
			DPDOnly:             d.Params.MinimizeDPDOnly,
			MaxCorrectionTrials: d.Params.MaxCorrectionTrials,
		})
		if err != nil {
			return RestartInfo{}, newError(NumericError, "pre-minimization failed", err)
		}
		d.Log.Info("minimizer_done", "steps_taken", result.StepsTaken, "final_upot", result.FinalUpot, "aborted", result.Aborted)
	}

	var step int64
	for step = 1; step <= d.Params.Steps; step++ {
		if err := d.it.Step(step); err != nil {
			return d.restartInfo(step-1, false), newError(NumericError, "integrator step failed", err)
		}

		if d.Params.OutputStepFrequency > 0 && step%d.Params.OutputStepFrequency == 0 {
			if err := d.writeProperty(step); err != nil {
				// IoError is transient per spec.md §4.10/§7: report and
				// keep the step loop running rather than aborting the run.
				d.Log.Error("property_output_failed", "step", step, "err", err)
			}

			select {
			case <-runCtx.Done():
				d.Log.Info("driver_stopped", "step", step)
				return d.restartInfo(step, true), nil
			default:
			}
		}
	}

	return d.restartInfo(d.Params.Steps, false), nil
}

func (d *Driver) writeProperty(step int64) error {
	fs := accum.NewForceSet(d.Sys.Fx, d.Sys.Fy, d.Sys.Fz)
	d.ctx.Pass.RunConservative(d.Sys, fs, pairs.WithoutAssignments, true, true)
	if len(d.Params.Bonds) > 0 {
		d.ctx.Pass.RunBonds(d.Sys, fs, true)
	}
	if d.Params.Electro != nil {
		d.ctx.Pass.RunElectrostatics(d.Sys, fs, pairs.WithoutAssignments, true, true)
	}

	ukin := vecmath.KineticEnergy(d.Sys.DpdMass, d.Sys.Vx, d.Sys.Vy, d.Sys.Vz)
	rec := PropertyRecord{
		Step:              step,
		UpotConservative:  fs.UpotConservative.Sum(),
		UpotBond:          fs.UpotBond.Sum(),
		UpotElectrostatic: fs.UpotElectrostatic.Sum(),
		Ukin:              ukin,
		Temperature:       vecmath.Temperature(ukin, d.Sys.N),
		Pxx:               fs.Pxx.Sum(),
		Pyy:               fs.Pyy.Sum(),
		Pzz:               fs.Pzz.Sum(),
	}
	return d.Output.WriteProperty(rec)
}

func (d *Driver) restartInfo(step int64, stopped bool) RestartInfo {
	return RestartInfo{
		LastTimeStep: step,
		Rx:           append([]float64(nil), d.Sys.Rx...),
		Ry:           append([]float64(nil), d.Sys.Ry...),
		Rz:           append([]float64(nil), d.Sys.Rz...),
		Vx:           append([]float64(nil), d.Sys.Vx...),
		Vy:           append([]float64(nil), d.Sys.Vy...),
		Vz:           append([]float64(nil), d.Sys.Vz...),
		Stopped:      stopped,
	}
}
