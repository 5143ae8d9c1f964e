// Package particle holds the structure-of-arrays particle data model
// (spec.md §3): positions, velocities, force accumulators, and the
// per-particle metadata the rest of the core indexes into.
package particle

import "fmt"

// System is the structure-of-arrays particle state for one simulation.
// All slices share the same length N and are indexed by particle index.
type System struct {
	N int

	Rx, Ry, Rz []float64 // positions, always in [0, L) on each axis
	Vx, Vy, Vz []float64 // velocities

	Fx, Fy, Fz []float64 // primary force accumulator
	F2x, F2y, F2z []float64 // secondary (dissipative, SCMVV-only) accumulator

	VNewX, VNewY, VNewZ []float64 // predicted-velocity scratch (GWMVV, SCMVV)

	ROldX, ROldY, ROldZ []float64 // previous positions, only when fixation is active

	ParticleTypeIndex []int32 // index into the INTERACTION_DESCRIPTION a_ij table
	MoleculeTypeIndex []int32
	MoleculeIndex     []int32
	Token             []string // interned once at construction, I/O only

	Charge   []float64
	DpdMass  []float64
	MolarMass []float64

	ChargedParticleIndices []int
	BondChunks             [][]BondRef // set by the caller after bond chunking
}

// BondRef is a lightweight reference used by System.BondChunks; the
// authoritative Bond records live in package bonds.
type BondRef struct {
	IndexA, IndexB int
}

// New allocates a System for n particles with all force/velocity arrays
// zeroed. Positions/tokens/masses must be filled in by the caller (the
// out-of-scope input parser, or a test fixture).
func New(n int) *System {
	s := &System{N: n}
	alloc := func() []float64 { return make([]float64, n) }
	s.Rx, s.Ry, s.Rz = alloc(), alloc(), alloc()
	s.Vx, s.Vy, s.Vz = alloc(), alloc(), alloc()
	s.Fx, s.Fy, s.Fz = alloc(), alloc(), alloc()
	s.F2x, s.F2y, s.F2z = alloc(), alloc(), alloc()
	s.VNewX, s.VNewY, s.VNewZ = alloc(), alloc(), alloc()
	s.ParticleTypeIndex = make([]int32, n)
	s.MoleculeTypeIndex = make([]int32, n)
	s.MoleculeIndex = make([]int32, n)
	s.Token = make([]string, n)
	s.Charge = alloc()
	s.DpdMass = make([]float64, n)
	s.MolarMass = alloc()
	for i := range s.DpdMass {
		s.DpdMass[i] = 1
	}
	return s
}

// EnableMoleculeFixationScratch allocates the rOld slices, only needed
// when at least one MoleculeFixation constraint is configured.
func (s *System) EnableMoleculeFixationScratch() {
	if s.ROldX != nil {
		return
	}
	s.ROldX = make([]float64, s.N)
	s.ROldY = make([]float64, s.N)
	s.ROldZ = make([]float64, s.N)
}

// SaveOld copies current positions into the rOld scratch slices.
func (s *System) SaveOld() {
	copy(s.ROldX, s.Rx)
	copy(s.ROldY, s.Ry)
	copy(s.ROldZ, s.Rz)
}

// ZeroForces clears the primary force accumulator.
func (s *System) ZeroForces() {
	clearF(s.Fx)
	clearF(s.Fy)
	clearF(s.Fz)
}

// ZeroSecondaryForces clears the secondary (dissipative) force accumulator.
func (s *System) ZeroSecondaryForces() {
	clearF(s.F2x)
	clearF(s.F2y)
	clearF(s.F2z)
}

func clearF(a []float64) {
	for i := range a {
		a[i] = 0
	}
}

// ComputeDerivedMasses fills DpdMass from MolarMass, either as unit mass
// (all 1) or normalized by the minimum molar mass across all particles
// (spec.md §3 invariant).
func (s *System) ComputeDerivedMasses(unitMass bool) error {
	if unitMass {
		for i := range s.DpdMass {
			s.DpdMass[i] = 1
		}
		return nil
	}
	if s.N == 0 {
		return nil
	}
	minMolar := s.MolarMass[0]
	for _, m := range s.MolarMass[1:] {
		if m < minMolar {
			minMolar = m
		}
	}
	if !(minMolar > 0) {
		return fmt.Errorf("particle: minimum molar mass must be positive, got %v", minMolar)
	}
	for i, m := range s.MolarMass {
		s.DpdMass[i] = m / minMolar
	}
	return nil
}

// ComputeChargedIndices (re)builds ChargedParticleIndices from Charge.
func (s *System) ComputeChargedIndices() {
	s.ChargedParticleIndices = s.ChargedParticleIndices[:0]
	for i, q := range s.Charge {
		if q != 0 {
			s.ChargedParticleIndices = append(s.ChargedParticleIndices, i)
		}
	}
}

// InvariantPositionsInBox reports whether every position component lies
// in [0, L) on its axis, the round-trip law spec.md §8 tests after every
// completed step.
func (s *System) InvariantPositionsInBox(lx, ly, lz float64) bool {
	inRange := func(v, l float64) bool { return v >= 0 && v < l }
	for i := 0; i < s.N; i++ {
		if !inRange(s.Rx[i], lx) || !inRange(s.Ry[i], ly) || !inRange(s.Rz[i], lz) {
			return false
		}
	}
	return true
}
