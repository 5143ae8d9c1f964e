package accum

// ForceSet bundles one accumulator pass's destination force arrays with
// the scalar Adders it may populate: potential-energy components and the
// virial pressure-tensor diagonal, including the DPD-only subset spec.md
// §4.4 calls out separately from the full (DPD+bond+electrostatic)
// pressure (spec.md §3 "Adders").
type ForceSet struct {
	Fx, Fy, Fz []float64

	UpotConservative  *Adder
	UpotBond          *Adder
	UpotElectrostatic *Adder

	Pxx, Pyy, Pzz          *Adder
	PxxDPD, PyyDPD, PzzDPD *Adder

	G *Adder // PNHLN's sum of pairwise dH/dxi contributions
}

// NewForceSet allocates a ForceSet writing into the given force arrays,
// with every Adder freshly constructed.
func NewForceSet(fx, fy, fz []float64) *ForceSet {
	return &ForceSet{
		Fx: fx, Fy: fy, Fz: fz,
		UpotConservative:  NewAdder(),
		UpotBond:          NewAdder(),
		UpotElectrostatic: NewAdder(),
		Pxx:               NewAdder(),
		Pyy:               NewAdder(),
		Pzz:               NewAdder(),
		PxxDPD:            NewAdder(),
		PyyDPD:            NewAdder(),
		PzzDPD:            NewAdder(),
		G:                 NewAdder(),
	}
}

// Reset zeroes every Adder owned by fs for reuse on the next pass. The
// destination force arrays are zeroed separately by the caller
// (particle.System.ZeroForces) since ownership of those slices is the
// caller's, not the ForceSet's.
func (fs *ForceSet) Reset() {
	fs.UpotConservative.Reset()
	fs.UpotBond.Reset()
	fs.UpotElectrostatic.Reset()
	fs.Pxx.Reset()
	fs.Pyy.Reset()
	fs.Pzz.Reset()
	fs.PxxDPD.Reset()
	fs.PyyDPD.Reset()
	fs.PzzDPD.Reset()
	fs.G.Reset()
}

// UpotTotal sums every potential-energy component currently accumulated.
func (fs *ForceSet) UpotTotal() float64 {
	return fs.UpotConservative.Sum() + fs.UpotBond.Sum() + fs.UpotElectrostatic.Sum()
}
