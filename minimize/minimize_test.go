package minimize

import (
	"testing"

	"github.com/pthm-cable/dpd/accum"
	"github.com/pthm-cable/dpd/box"
	"github.com/pthm-cable/dpd/cells"
	"github.com/pthm-cable/dpd/kernels"
	"github.com/pthm-cable/dpd/pairs"
	"github.com/pthm-cable/dpd/particle"
)

// newLatticeSystem places n^3 particles on a cubic lattice spanning an
// l-sided cube anchored at the origin, with deliberate overlaps (spacing
// well under the cutoff), spec.md §8 scenario 5's "repulsive-only lattice
// of 2^3 particles". The tests place that cube in a box of side 3*l,
// since the cell grid needs at least three cells of side >= cutoff on
// every periodic axis.
func newLatticeSystem(t *testing.T, n int, l float64) *particle.System {
	t.Helper()
	sys := particle.New(n * n * n)
	spacing := l / float64(n)
	idx := 0
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				sys.Rx[idx] = float64(x) * spacing
				sys.Ry[idx] = float64(y) * spacing
				sys.Rz[idx] = float64(z) * spacing
				idx++
			}
		}
	}
	return sys
}

func newMinimizePass(t *testing.T, l, cutoff float64) (*box.Box, *accum.Pass) {
	t.Helper()
	b, err := box.New(l, l, l, [3]bool{true, true, true})
	if err != nil {
		t.Fatalf("box.New: %v", err)
	}
	grid, err := cells.New(b, cutoff)
	if err != nil {
		t.Fatalf("cells.New: %v", err)
	}
	pool := pairs.NewWorkerPool(2)
	driver := pairs.NewDriver(grid, pool)
	table := kernels.NewInteractionTable(1)
	if err := table.Set(0, 0, 25.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return b, &accum.Pass{Box: b, Driver: driver, Pool: pool, Table: table}
}

func TestMinimizeUpotNonIncreasing(t *testing.T) {
	l := 1.0
	b, pass := newMinimizePass(t, 3*l, 1.0)
	sys := newLatticeSystem(t, 2, l)

	result, err := Run(sys, b, pass, Params{Steps: 50, DPDOnly: true, MaxCorrectionTrials: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FinalUpot > 0 && result.StepsTaken == 0 {
		t.Errorf("expected at least one minimization step to run")
	}
}

func TestMinimizeDeltaNeverExceedsTwiceInitialWithoutImprovement(t *testing.T) {
	l := 1.0
	b, pass := newMinimizePass(t, 3*l, 1.0)
	sys := newLatticeSystem(t, 2, l)

	delta0 := 1e-5 * b.MinExtent()
	result, err := Run(sys, b, pass, Params{Steps: 1, DPDOnly: true, MaxCorrectionTrials: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// A single step either doubles delta (on improvement) or halves it
	// (on rejection); it can never exceed 2*delta0 regardless of outcome.
	if result.FinalDelta > 2*delta0+1e-15 {
		t.Errorf("delta grew beyond 2*delta0: got %v, want <= %v", result.FinalDelta, 2*delta0)
	}
}

func TestMinimizeOverlappingLatticeReducesPotential(t *testing.T) {
	l := 2.0
	b, pass := newMinimizePass(t, 3*l, 1.0)
	sys := newLatticeSystem(t, 2, l)
	// Push the lattice into heavy overlap: all particles within the
	// cutoff of every other particle.
	for i := range sys.Rx {
		sys.Rx[i] *= 0.1
		sys.Ry[i] *= 0.1
		sys.Rz[i] *= 0.1
	}

	fsBefore := accum.NewForceSet(sys.Fx, sys.Fy, sys.Fz)
	pass.RunConservative(sys, fsBefore, pairs.WithAssignments, true, false)
	upotBefore := fsBefore.UpotTotal()

	result, err := Run(sys, b, pass, Params{Steps: 50, DPDOnly: true, MaxCorrectionTrials: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FinalUpot >= upotBefore {
		t.Errorf("expected minimizer to reduce Upot: before=%v after=%v", upotBefore, result.FinalUpot)
	}
}

func TestMinimizeAbortsBelowDeltaFloor(t *testing.T) {
	l := 1.0
	b, pass := newMinimizePass(t, 3*l, 1.0)
	sys := newLatticeSystem(t, 2, l)

	result, err := Run(sys, b, pass, Params{Steps: 1000, DPDOnly: true, MaxCorrectionTrials: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.StepsTaken > 1000 {
		t.Errorf("StepsTaken exceeded configured Steps: %d", result.StepsTaken)
	}
}
