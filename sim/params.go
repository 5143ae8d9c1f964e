package sim

import (
	"github.com/pthm-cable/dpd/bonds"
	"github.com/pthm-cable/dpd/integrate"
	"github.com/pthm-cable/dpd/kernels"
)

// IntegratorKind selects one of the four time-stepping schemes
// (spec.md §4.6).
type IntegratorKind int

const (
	GWMVVIntegrator IntegratorKind = iota
	S1MVVIntegrator
	SCMVVIntegrator
	PNHLNIntegrator
)

// Params is the fully-parsed, already-validated configuration that the
// (out-of-scope) text-file parser would produce: the seam between the
// narrow input grammar and the in-scope numerical core (spec.md §NEW
// 4.14).
type Params struct {
	// Box geometry.
	Lx, Ly, Lz float64
	Periodic   [3]bool
	Cutoff     float64

	// Initial particle state; all slices must share length N.
	N                 int
	Rx, Ry, Rz        []float64
	Vx, Vy, Vz        []float64
	ParticleTypeIndex []int32
	MoleculeTypeIndex []int32
	MoleculeIndex     []int32
	Token             []string
	Charge            []float64
	MolarMass         []float64

	NumParticleTypes int
	InteractionTable *kernels.InteractionTable
	Bonds            []bonds.Bond

	Electro *kernels.ElectrostaticsParams // nil disables electrostatics

	Integrator     IntegratorKind
	Lambda         float64 // GWMVV predictor weight
	SCMVVIterations int
	ThermoMu        float64 // PNHLN thermostat mass
	ThermoGamma     float64 // PNHLN thermostat relaxation rate

	Dt                  float64
	Gamma, Sigma        float64
	TargetKT            float64
	Gravity             [3]float64
	ScaleSteps          int64
	MaxCorrectionTrials int

	Steps                int64
	OutputStepFrequency  int64
	RestartStepFrequency int64

	MinimizeSteps   int
	MinimizeDPDOnly bool

	Seed          int64
	GaussianNoise bool
	UnitMass      bool

	WorkerPoolSize int // 0 means runtime.GOMAXPROCS(0)

	Constraints integrate.Constraints
}
