package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/dpd/integrate"
	"github.com/pthm-cable/dpd/kernels"
	"github.com/pthm-cable/dpd/sim"
)

// runInput is a minimal YAML convenience format standing in for the
// whitespace/[SECTION] input-file grammar spec.md §6 keeps out of scope.
// Swapping in the real grammar only requires a function returning
// sim.Params; this type and loadParams are that seam's current
// implementation.
type runInput struct {
	Box struct {
		Lx, Ly, Lz float64
		Periodic   [3]bool
		Cutoff     float64
	}
	Particles struct {
		N          int
		Rx, Ry, Rz []float64
		Vx, Vy, Vz []float64
		TypeIndex  []int32 `yaml:"type_index"`
		Charge     []float64
	}
	InteractionTable struct {
		NumTypes int `yaml:"num_types"`
		A        [][3]float64 // [typeI, typeJ, a_ij] triples
	} `yaml:"interaction_table"`
	Integrator struct {
		Kind            string
		Lambda          float64
		SCMVVIterations int `yaml:"scmvv_iterations"`
		ThermoMu        float64 `yaml:"thermo_mu"`
		ThermoGamma     float64 `yaml:"thermo_gamma"`
	}
	Dt                  float64
	Gamma, Sigma        float64
	TargetKT            float64 `yaml:"target_kt"`
	Gravity             [3]float64
	ScaleSteps          int64 `yaml:"scale_steps"`
	MaxCorrectionTrials int   `yaml:"max_correction_trials"`
	Steps               int64
	OutputStepFrequency int64 `yaml:"output_step_frequency"`
	MinimizeSteps       int   `yaml:"minimize_steps"`
	MinimizeDPDOnly     bool  `yaml:"minimize_dpd_only"`
	Seed                int64
	GaussianNoise       bool `yaml:"gaussian_noise"`
	UnitMass            bool `yaml:"unit_mass"`
	WorkerPoolSize      int  `yaml:"worker_pool_size"`
}

func integratorKind(name string) (sim.IntegratorKind, error) {
	switch name {
	case "gwmvv", "":
		return sim.GWMVVIntegrator, nil
	case "s1mvv":
		return sim.S1MVVIntegrator, nil
	case "scmvv":
		return sim.SCMVVIntegrator, nil
	case "pnhln":
		return sim.PNHLNIntegrator, nil
	default:
		return 0, fmt.Errorf("unknown integrator kind %q", name)
	}
}

// loadParams parses the minimal YAML convenience format at path into a
// validated sim.Params.
func loadParams(path string) (sim.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Params{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var in runInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return sim.Params{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	kind, err := integratorKind(in.Integrator.Kind)
	if err != nil {
		return sim.Params{}, err
	}

	table := kernels.NewInteractionTable(in.InteractionTable.NumTypes)
	for _, triple := range in.InteractionTable.A {
		typeI, typeJ, a := int(triple[0]), int(triple[1]), triple[2]
		if err := table.Set(typeI, typeJ, a); err != nil {
			return sim.Params{}, fmt.Errorf("interaction_table: %w", err)
		}
	}

	return sim.Params{
		Lx: in.Box.Lx, Ly: in.Box.Ly, Lz: in.Box.Lz,
		Periodic: in.Box.Periodic,
		Cutoff:   in.Box.Cutoff,

		N:  in.Particles.N,
		Rx: in.Particles.Rx, Ry: in.Particles.Ry, Rz: in.Particles.Rz,
		Vx: in.Particles.Vx, Vy: in.Particles.Vy, Vz: in.Particles.Vz,
		ParticleTypeIndex: in.Particles.TypeIndex,
		Charge:            in.Particles.Charge,

		NumParticleTypes: in.InteractionTable.NumTypes,
		InteractionTable: table,

		Integrator:      kind,
		Lambda:          in.Integrator.Lambda,
		SCMVVIterations: in.Integrator.SCMVVIterations,
		ThermoMu:        in.Integrator.ThermoMu,
		ThermoGamma:     in.Integrator.ThermoGamma,

		Dt:                  in.Dt,
		Gamma:               in.Gamma,
		Sigma:               in.Sigma,
		TargetKT:            in.TargetKT,
		Gravity:             in.Gravity,
		ScaleSteps:          in.ScaleSteps,
		MaxCorrectionTrials: in.MaxCorrectionTrials,

		Steps:               in.Steps,
		OutputStepFrequency: in.OutputStepFrequency,

		MinimizeSteps:   in.MinimizeSteps,
		MinimizeDPDOnly: in.MinimizeDPDOnly,

		Seed:          in.Seed,
		GaussianNoise: in.GaussianNoise,
		UnitMass:      in.UnitMass,

		WorkerPoolSize: in.WorkerPoolSize,

		Constraints: integrate.Constraints{},
	}, nil
}
