// Package minimize implements the adaptive steepest-descent
// pre-minimizer (spec.md §4.8): before time integration begins, relax
// gross particle overlaps by walking down the conservative potential
// with a step length that doubles on improvement and halves on
// rejection.
package minimize

import (
	"fmt"

	"github.com/pthm-cable/dpd/accum"
	"github.com/pthm-cable/dpd/box"
	"github.com/pthm-cable/dpd/pairs"
	"github.com/pthm-cable/dpd/particle"
)

// Params configures one minimization run.
type Params struct {
	Steps               int
	DPDOnly             bool // restrict the force set to conservative DPD pairs, skipping bonds/electrostatics
	MaxCorrectionTrials int
}

// Result reports the outcome of Run.
type Result struct {
	StepsTaken  int
	FinalUpot   float64
	FinalDelta  float64
	Aborted     bool // true if delta fell below the 1e-12 floor before Steps was exhausted
}

// Run executes the adaptive steepest-descent pre-minimizer over sys,
// returning once Params.Steps accepted-or-rejected iterations have run
// or the step length collapses below the 1e-12 floor (spec.md §4.8).
func Run(sys *particle.System, b *box.Box, pass *accum.Pass, p Params) (Result, error) {
	delta0 := 1e-5 * b.MinExtent()
	delta := delta0

	sys.EnableMoleculeFixationScratch()

	fs := accum.NewForceSet(sys.Fx, sys.Fy, sys.Fz)
	computeUpot := func() float64 {
		sys.ZeroForces()
		fs.Reset()
		pass.RunConservative(sys, fs, pairs.WithAssignments, true, false)
		if !p.DPDOnly {
			pass.RunBonds(sys, fs, true)
			pass.RunElectrostatics(sys, fs, pairs.WithoutAssignments, true, false)
		}
		return fs.UpotTotal()
	}

	upotMin := computeUpot()
	result := Result{FinalUpot: upotMin, FinalDelta: delta}

	for step := 0; step < p.Steps; step++ {
		sys.SaveOld()

		maxComponent := 0.0
		for i := 0; i < sys.N; i++ {
			for _, f := range [3]float64{sys.Fx[i], sys.Fy[i], sys.Fz[i]} {
				if a := abs(f); a > maxComponent {
					maxComponent = a
				}
			}
		}
		if maxComponent == 0 {
			result.StepsTaken = step
			result.FinalUpot = upotMin
			result.FinalDelta = delta
			return result, nil
		}
		scale := delta / maxComponent

		for i := 0; i < sys.N; i++ {
			sys.Rx[i] += scale * sys.Fx[i]
			sys.Ry[i] += scale * sys.Fy[i]
			sys.Rz[i] += scale * sys.Fz[i]
		}
		for i := 0; i < sys.N; i++ {
			var v float64
			if err := b.CorrectPositionAndVelocity(i, &sys.Rx[i], &sys.Ry[i], &sys.Rz[i], &v, &v, &v, p.MaxCorrectionTrials); err != nil {
				return result, fmt.Errorf("minimize: %w", err)
			}
		}

		upot := computeUpot()
		if upot < upotMin {
			upotMin = upot
			delta *= 2
		} else {
			copy(sys.Rx, sys.ROldX)
			copy(sys.Ry, sys.ROldY)
			copy(sys.Rz, sys.ROldZ)
			delta /= 2
			if delta < 1e-12 {
				result.StepsTaken = step + 1
				result.FinalUpot = upotMin
				result.FinalDelta = delta
				result.Aborted = true
				return result, nil
			}
		}
		result.StepsTaken = step + 1
		result.FinalUpot = upotMin
		result.FinalDelta = delta
	}
	return result, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
