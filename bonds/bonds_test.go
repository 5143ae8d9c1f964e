package bonds

import (
	"math"
	"testing"

	"github.com/pthm-cable/dpd/box"
	"github.com/pthm-cable/dpd/pairs"
)

func TestBuildChunksDeterminism(t *testing.T) {
	// spec.md §8 scenario 4.
	list := []Bond{
		{IndexA: 0, IndexB: 1},
		{IndexA: 1, IndexB: 2},
		{IndexA: 0, IndexB: 2},
		{IndexA: 3, IndexB: 4},
	}
	chunks := BuildChunks(list)
	for _, chunk := range chunks {
		touched := map[int]bool{}
		for _, b := range chunk {
			if touched[b.IndexA] || touched[b.IndexB] {
				t.Fatalf("chunk has repeated index: bond (%d,%d)", b.IndexA, b.IndexB)
			}
			touched[b.IndexA] = true
			touched[b.IndexB] = true
		}
	}
	// Exact layout from spec.md: [[(0,1),(3,4)],[(1,2)],[(0,2)]]
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 2 || chunks[0][0] != list[0] || chunks[0][1] != list[3] {
		t.Errorf("chunk 0 = %+v, want [(0,1),(3,4)]", chunks[0])
	}
	if len(chunks[1]) != 1 || chunks[1][0] != list[1] {
		t.Errorf("chunk 1 = %+v, want [(1,2)]", chunks[1])
	}
	if len(chunks[2]) != 1 || chunks[2][0] != list[2] {
		t.Errorf("chunk 2 = %+v, want [(0,2)]", chunks[2])
	}
}

func TestBuildChunksNoRepeatedIndexAnyInput(t *testing.T) {
	list := []Bond{
		{IndexA: 0, IndexB: 1},
		{IndexA: 2, IndexB: 3},
		{IndexA: 4, IndexB: 5},
		{IndexA: 1, IndexB: 2},
		{IndexA: 0, IndexB: 5},
	}
	chunks := BuildChunks(list)
	total := 0
	for _, chunk := range chunks {
		touched := map[int]bool{}
		for _, b := range chunk {
			if touched[b.IndexA] || touched[b.IndexB] {
				t.Fatalf("repeated index in chunk: %+v", chunk)
			}
			touched[b.IndexA] = true
			touched[b.IndexB] = true
			total++
		}
	}
	if total != len(list) {
		t.Errorf("chunks contain %d bonds, want %d", total, len(list))
	}
}

func TestForceAtRestLengthIsZero(t *testing.T) {
	b := &Bond{RestLength: 1.0, ForceConstant: 10.0}
	fx, fy, fz := Force(b, 1.0, 0, 0, 1.0)
	if fx != 0 || fy != 0 || fz != 0 {
		t.Errorf("expected zero force at rest length, got (%v,%v,%v)", fx, fy, fz)
	}
}

func TestForcePullsTogetherWhenStretched(t *testing.T) {
	b := &Bond{RestLength: 1.0, ForceConstant: 10.0}
	r := 1.5
	fx, _, _ := Force(b, r, 0, 0, r*r)
	// Stretched bond (r > r0): force on particle i should point toward
	// j, i.e. negative x since dx = r_i - r_j = +r here.
	if fx >= 0 {
		t.Errorf("expected attractive (negative x) force when stretched, got %v", fx)
	}
}

func TestAttractiveBehaviorClampsRepulsiveContribution(t *testing.T) {
	b := &Bond{RestLength: 1.0, ForceConstant: 10.0, Behavior: Attractive}
	r := 0.5 // compressed: r < r0, force would normally push apart (positive along dx)
	fx, _, _ := Force(b, r, 0, 0, r*r)
	if fx != 0 {
		t.Errorf("expected clamped (zero) repulsive force under Attractive behavior, got %v", fx)
	}
}

func TestPotentialMinimalAtRestLength(t *testing.T) {
	b := &Bond{RestLength: 1.0, ForceConstant: 10.0}
	if u := Potential(b, 1.0); u != 0 {
		t.Errorf("potential at rest length = %v, want 0", u)
	}
	if u := Potential(b, 1.5*1.5); u <= 0 {
		t.Errorf("potential away from rest length should be positive, got %v", u)
	}
}

func TestEvaluateChunksRaceFreeAndSymmetric(t *testing.T) {
	b, err := box.New(10, 10, 10, [3]bool{true, true, true})
	if err != nil {
		t.Fatalf("box.New: %v", err)
	}
	n := 6
	rx := []float64{0, 1, 2, 3, 4, 5}
	ry := make([]float64, n)
	rz := make([]float64, n)
	fx := make([]float64, n)
	fy := make([]float64, n)
	fz := make([]float64, n)

	list := []Bond{
		{IndexA: 0, IndexB: 1, RestLength: 0.5, ForceConstant: 10},
		{IndexA: 2, IndexB: 3, RestLength: 0.5, ForceConstant: 10},
		{IndexA: 4, IndexB: 5, RestLength: 0.5, ForceConstant: 10},
	}
	chunks := BuildChunks(list)
	pool := pairs.NewWorkerPool(4)
	upot := EvaluateChunks(pool, b, chunks, rx, ry, rz, fx, fy, fz, true)

	for _, bond := range list {
		if !almostEqual(fx[bond.IndexA], -fx[bond.IndexB], 1e-9) {
			t.Errorf("bond (%d,%d) forces not equal/opposite: %v vs %v", bond.IndexA, bond.IndexB, fx[bond.IndexA], fx[bond.IndexB])
		}
	}
	if upot <= 0 {
		t.Errorf("expected positive bond potential for stretched bonds, got %v", upot)
	}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
