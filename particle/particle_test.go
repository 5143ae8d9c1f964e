package particle

import "testing"

func TestNewAllocatesUnitMass(t *testing.T) {
	s := New(3)
	for i, m := range s.DpdMass {
		if m != 1 {
			t.Errorf("DpdMass[%d] = %v, want 1", i, m)
		}
	}
	if len(s.Fx) != 3 || len(s.F2x) != 3 || len(s.VNewX) != 3 {
		t.Errorf("expected all scratch slices allocated to length 3")
	}
}

func TestComputeDerivedMassesUnitMass(t *testing.T) {
	s := New(2)
	s.MolarMass[0], s.MolarMass[1] = 10, 40
	if err := s.ComputeDerivedMasses(true); err != nil {
		t.Fatalf("ComputeDerivedMasses: %v", err)
	}
	if s.DpdMass[0] != 1 || s.DpdMass[1] != 1 {
		t.Errorf("expected unit masses, got %v", s.DpdMass)
	}
}

func TestComputeDerivedMassesNormalizesByMinimum(t *testing.T) {
	s := New(2)
	s.MolarMass[0], s.MolarMass[1] = 10, 40
	if err := s.ComputeDerivedMasses(false); err != nil {
		t.Fatalf("ComputeDerivedMasses: %v", err)
	}
	if s.DpdMass[0] != 1 {
		t.Errorf("DpdMass[0] = %v, want 1", s.DpdMass[0])
	}
	if s.DpdMass[1] != 4 {
		t.Errorf("DpdMass[1] = %v, want 4", s.DpdMass[1])
	}
}

func TestComputeDerivedMassesRejectsNonPositiveMinimum(t *testing.T) {
	s := New(2)
	s.MolarMass[0], s.MolarMass[1] = 0, 40
	if err := s.ComputeDerivedMasses(false); err == nil {
		t.Errorf("expected error for non-positive minimum molar mass")
	}
}

func TestComputeChargedIndices(t *testing.T) {
	s := New(4)
	s.Charge[1] = -1
	s.Charge[3] = 2
	s.ComputeChargedIndices()
	want := []int{1, 3}
	if len(s.ChargedParticleIndices) != len(want) {
		t.Fatalf("ChargedParticleIndices = %v, want %v", s.ChargedParticleIndices, want)
	}
	for i, idx := range want {
		if s.ChargedParticleIndices[i] != idx {
			t.Errorf("ChargedParticleIndices[%d] = %d, want %d", i, s.ChargedParticleIndices[i], idx)
		}
	}
}

func TestComputeChargedIndicesRebuildsFromScratch(t *testing.T) {
	s := New(2)
	s.Charge[0] = 1
	s.ComputeChargedIndices()
	s.Charge[0] = 0
	s.Charge[1] = 1
	s.ComputeChargedIndices()
	if len(s.ChargedParticleIndices) != 1 || s.ChargedParticleIndices[0] != 1 {
		t.Errorf("expected stale index 0 dropped, got %v", s.ChargedParticleIndices)
	}
}

func TestInvariantPositionsInBox(t *testing.T) {
	s := New(2)
	s.Rx[0], s.Ry[0], s.Rz[0] = 1, 1, 1
	s.Rx[1], s.Ry[1], s.Rz[1] = 9, 9, 9
	if !s.InvariantPositionsInBox(10, 10, 10) {
		t.Errorf("expected both particles inside box")
	}
	s.Rx[1] = 10
	if s.InvariantPositionsInBox(10, 10, 10) {
		t.Errorf("expected r==L to violate the half-open invariant")
	}
}

func TestEnableMoleculeFixationScratchIsIdempotent(t *testing.T) {
	s := New(2)
	s.Rx[0] = 3
	s.EnableMoleculeFixationScratch()
	s.ROldX[0] = 99
	s.EnableMoleculeFixationScratch()
	if s.ROldX[0] != 99 {
		t.Errorf("expected second call to be a no-op, ROldX[0] = %v", s.ROldX[0])
	}
}

func TestSaveOldCopiesPositions(t *testing.T) {
	s := New(2)
	s.EnableMoleculeFixationScratch()
	s.Rx[0], s.Ry[0], s.Rz[0] = 1, 2, 3
	s.SaveOld()
	s.Rx[0] = 100
	if s.ROldX[0] != 1 || s.ROldY[0] != 2 || s.ROldZ[0] != 3 {
		t.Errorf("ROld = (%v,%v,%v), want (1,2,3)", s.ROldX[0], s.ROldY[0], s.ROldZ[0])
	}
}

func TestZeroForcesOnlyClearsPrimary(t *testing.T) {
	s := New(2)
	s.Fx[0] = 5
	s.F2x[0] = 7
	s.ZeroForces()
	if s.Fx[0] != 0 {
		t.Errorf("Fx[0] = %v, want 0", s.Fx[0])
	}
	if s.F2x[0] != 7 {
		t.Errorf("ZeroForces should not touch F2x, got %v", s.F2x[0])
	}
}
