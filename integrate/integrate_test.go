package integrate

import (
	"math"
	"testing"

	"github.com/pthm-cable/dpd/accum"
	"github.com/pthm-cable/dpd/box"
	"github.com/pthm-cable/dpd/cells"
	"github.com/pthm-cable/dpd/kernels"
	"github.com/pthm-cable/dpd/pairs"
	"github.com/pthm-cable/dpd/particle"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// newTwoParticleContext builds a minimal two-particle Context with a
// single repulsive interaction type, used by every scheme's momentum
// and finiteness tests.
func newTwoParticleContext(t *testing.T) *Context {
	t.Helper()
	b, err := box.New(10, 10, 10, [3]bool{true, true, true})
	if err != nil {
		t.Fatalf("box.New: %v", err)
	}
	grid, err := cells.New(b, 1.0)
	if err != nil {
		t.Fatalf("cells.New: %v", err)
	}
	pool := pairs.NewWorkerPool(2)
	driver := pairs.NewDriver(grid, pool)

	sys := particle.New(2)
	sys.Rx[0], sys.Ry[0], sys.Rz[0] = 5, 5, 5
	sys.Rx[1], sys.Ry[1], sys.Rz[1] = 5.5, 5, 5
	sys.Vx[0], sys.Vx[1] = 0.2, -0.2

	table := kernels.NewInteractionTable(1)
	if err := table.Set(0, 0, 25.0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	pass := &accum.Pass{Box: b, Driver: driver, Pool: pool, Table: table, Seed: 7, Gaussian: false}

	return &Context{
		Sys:  sys,
		Box:  b,
		Pass: pass,
		Params: Params{
			Dt:                  0.01,
			Gamma:               4.5,
			Sigma:               3.0,
			TargetKT:            1.0,
			ScaleSteps:          0,
			MaxCorrectionTrials: 10,
		},
	}
}

func totalMomentum(sys *particle.System) (px, py, pz float64) {
	for i := 0; i < sys.N; i++ {
		m := sys.DpdMass[i]
		px += m * sys.Vx[i]
		py += m * sys.Vy[i]
		pz += m * sys.Vz[i]
	}
	return
}

func TestGWMVVConservesMomentum(t *testing.T) {
	ctx := newTwoParticleContext(t)
	px0, py0, pz0 := totalMomentum(ctx.Sys)

	g := NewGWMVV(ctx, 0.5)
	for step := int64(1); step <= 5; step++ {
		if err := g.Step(step); err != nil {
			t.Fatalf("Step(%d): %v", step, err)
		}
	}

	px1, py1, pz1 := totalMomentum(ctx.Sys)
	if !almostEqual(px0, px1, 1e-9) || !almostEqual(py0, py1, 1e-9) || !almostEqual(pz0, pz1, 1e-9) {
		t.Errorf("momentum not conserved: (%v,%v,%v) -> (%v,%v,%v)", px0, py0, pz0, px1, py1, pz1)
	}
}

func TestGWMVVParticlesStayInBox(t *testing.T) {
	ctx := newTwoParticleContext(t)
	g := NewGWMVV(ctx, 0.5)
	for step := int64(1); step <= 20; step++ {
		if err := g.Step(step); err != nil {
			t.Fatalf("Step(%d): %v", step, err)
		}
	}
	if !ctx.Sys.InvariantPositionsInBox(10, 10, 10) {
		t.Errorf("positions left [0, L) after stepping")
	}
}

func TestS1MVVConservesMomentum(t *testing.T) {
	ctx := newTwoParticleContext(t)
	px0, py0, pz0 := totalMomentum(ctx.Sys)

	s := NewS1MVV(ctx)
	for step := int64(1); step <= 5; step++ {
		if err := s.Step(step); err != nil {
			t.Fatalf("Step(%d): %v", step, err)
		}
	}

	px1, py1, pz1 := totalMomentum(ctx.Sys)
	if !almostEqual(px0, px1, 1e-9) || !almostEqual(py0, py1, 1e-9) || !almostEqual(pz0, pz1, 1e-9) {
		t.Errorf("momentum not conserved: (%v,%v,%v) -> (%v,%v,%v)", px0, py0, pz0, px1, py1, pz1)
	}
}

func TestSCMVVConservesMomentum(t *testing.T) {
	ctx := newTwoParticleContext(t)
	px0, py0, pz0 := totalMomentum(ctx.Sys)

	s := NewSCMVV(ctx, 3)
	for step := int64(1); step <= 5; step++ {
		if err := s.Step(step); err != nil {
			t.Fatalf("Step(%d): %v", step, err)
		}
	}

	px1, py1, pz1 := totalMomentum(ctx.Sys)
	if !almostEqual(px0, px1, 1e-9) || !almostEqual(py0, py1, 1e-9) || !almostEqual(pz0, pz1, 1e-9) {
		t.Errorf("momentum not conserved: (%v,%v,%v) -> (%v,%v,%v)", px0, py0, pz0, px1, py1, pz1)
	}
}

func TestSCMVVFiniteAfterManySteps(t *testing.T) {
	ctx := newTwoParticleContext(t)
	s := NewSCMVV(ctx, 3)
	for step := int64(1); step <= 50; step++ {
		if err := s.Step(step); err != nil {
			t.Fatalf("Step(%d): %v", step, err)
		}
	}
}

func TestPNHLNConservesMomentumFromPairwisePass(t *testing.T) {
	// PNHLN's pairwise update is itself momentum-conserving (reduced-mass
	// impulse); the conservative-force kick/drift half is shared with
	// every other scheme, so the combined step should conserve momentum.
	ctx := newTwoParticleContext(t)
	px0, py0, pz0 := totalMomentum(ctx.Sys)

	p := NewPNHLN(ctx, 1.0, 1.0)
	for step := int64(1); step <= 5; step++ {
		if err := p.Step(step); err != nil {
			t.Fatalf("Step(%d): %v", step, err)
		}
	}

	px1, py1, pz1 := totalMomentum(ctx.Sys)
	if !almostEqual(px0, px1, 1e-9) || !almostEqual(py0, py1, 1e-9) || !almostEqual(pz0, pz1, 1e-9) {
		t.Errorf("momentum not conserved: (%v,%v,%v) -> (%v,%v,%v)", px0, py0, pz0, px1, py1, pz1)
	}
}

func TestPNHLNThermostatStaysFinite(t *testing.T) {
	ctx := newTwoParticleContext(t)
	p := NewPNHLN(ctx, 1.0, 1.0)
	for step := int64(1); step <= 30; step++ {
		if err := p.Step(step); err != nil {
			t.Fatalf("Step(%d): %v", step, err)
		}
	}
	if math.IsNaN(p.xi) || math.IsInf(p.xi, 0) {
		t.Errorf("thermostat variable became non-finite: %v", p.xi)
	}
}

func TestConservativeOnlyTwoParticlesRepelApart(t *testing.T) {
	// With gamma=sigma=0, GWMVV degenerates to conservative-only
	// dynamics: two overlapping repulsive particles should separate.
	ctx := newTwoParticleContext(t)
	ctx.Params.Gamma, ctx.Params.Sigma = 0, 0
	d0 := ctx.Sys.Rx[1] - ctx.Sys.Rx[0]

	g := NewGWMVV(ctx, 0.5)
	for step := int64(1); step <= 10; step++ {
		if err := g.Step(step); err != nil {
			t.Fatalf("Step(%d): %v", step, err)
		}
	}

	d1 := ctx.Sys.Rx[1] - ctx.Sys.Rx[0]
	if d1 <= d0 {
		t.Errorf("expected particles to separate further under pure repulsion: d0=%v d1=%v", d0, d1)
	}
}
