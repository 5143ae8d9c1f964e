package kernels

import "fmt"

// InteractionTable holds the symmetric a_ij conservative-coefficient
// table indexed by particle-type index (spec.md §3, §6
// INTERACTION_DESCRIPTION/InteractionTable). Populated once at
// construction from the (out-of-scope) input parser.
type InteractionTable struct {
	numTypes int
	a        []float64 // numTypes*numTypes, row-major
}

// NewInteractionTable allocates a zeroed table for numTypes particle
// types.
func NewInteractionTable(numTypes int) *InteractionTable {
	return &InteractionTable{numTypes: numTypes, a: make([]float64, numTypes*numTypes)}
}

// Set assigns a_ij = a_ji = value for the (typeI, typeJ) pair.
func (t *InteractionTable) Set(typeI, typeJ int, value float64) error {
	if typeI < 0 || typeI >= t.numTypes || typeJ < 0 || typeJ >= t.numTypes {
		return fmt.Errorf("kernels: type index out of range: (%d,%d) numTypes=%d", typeI, typeJ, t.numTypes)
	}
	t.a[typeI*t.numTypes+typeJ] = value
	t.a[typeJ*t.numTypes+typeI] = value
	return nil
}

// Get returns a_ij for the given type pair.
func (t *InteractionTable) Get(typeI, typeJ int) float64 {
	return t.a[typeI*t.numTypes+typeJ]
}
