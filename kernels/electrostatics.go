package kernels

import "math"

// ChargeDistribution selects the pairwise charge-smearing model used to
// soften the Coulomb singularity at short range (spec.md §3).
type ChargeDistribution int

const (
	// NoChargeDistribution leaves the bare damped-Coulomb law unmodified.
	NoChargeDistribution ChargeDistribution = iota
	// AlejandreDistribution applies the Alejandre smear
	// chi(r) = 1 - (1+r/lambda)*exp(-2r/lambda).
	AlejandreDistribution
)

// Splitting selects the short-range polynomial taper applied so the
// electrostatic force/potential reach zero smoothly at the electrostatics
// cutoff (spec.md §3).
type Splitting int

const (
	// NoSplitting leaves the electrostatics force unmodified out to its
	// cutoff (a hard truncation).
	NoSplitting Splitting = iota
	// FanourgakisSplitting applies the degree-7 polynomial taper whose
	// value and first derivative vanish at x=1 (spec.md §4.4).
	FanourgakisSplitting
)

// ElectrostaticsParams bundles the damped-Coulomb configuration (spec.md
// §3). Legacy selects the ad-hoc effective-charge-factor variant, which
// ignores Distribution/Splitting entirely.
type ElectrostaticsParams struct {
	Cutoff            float64
	MaxAbsForce       float64
	EffectiveExponent float64 // e in r^(e-1)
	DampingDistance   float64 // lambda, Alejandre smear
	DampingFactor     float64 // legacy ad-hoc damping
	Coupling          float64 // K

	Distribution ChargeDistribution
	Splitting    Splitting

	Legacy                bool
	EffectiveChargeFactor float64
}

func alejandreChi(r, lambda float64) float64 {
	x := r / lambda
	return 1 - (1+x)*math.Exp(-2*x)
}

func alejandreChiPrime(r, lambda float64) float64 {
	x := r / lambda
	return (1 + 2*x) * math.Exp(-2*x) / lambda
}

// fanourgakisPhi is the degree-7 polynomial splitting function in the
// reduced variable x = r/cutoff, equal to 1 at x=0 and 0 with zero slope
// at x=1.
func fanourgakisPhi(x float64) float64 {
	if x >= 1 {
		return 0
	}
	x5 := x * x * x * x * x
	return 1 - 1.75*x + 5.25*x5 - 7*x5*x + 2.5*x5*x*x
}

func fanourgakisPhiPrime(x float64) float64 {
	if x >= 1 {
		return 0
	}
	x4 := x * x * x * x
	return -1.75 + 26.25*x4 - 42*x4*x + 17.5*x4*x*x
}

func (p *ElectrostaticsParams) chi(r float64) (value, derivative float64) {
	if p.Distribution != AlejandreDistribution || p.DampingDistance <= 0 {
		return 1, 0
	}
	return alejandreChi(r, p.DampingDistance), alejandreChiPrime(r, p.DampingDistance)
}

func (p *ElectrostaticsParams) phi(r float64) (value, derivative float64) {
	if p.Splitting != FanourgakisSplitting || p.Cutoff <= 0 {
		return 1, 0
	}
	x := r / p.Cutoff
	return fanourgakisPhi(x), fanourgakisPhiPrime(x) / p.Cutoff
}

func clampAbs(v, maxAbs float64) float64 {
	if maxAbs <= 0 {
		return v
	}
	if v > maxAbs {
		return maxAbs
	}
	if v < -maxAbs {
		return -maxAbs
	}
	return v
}

// ElectrostaticPotential returns the damped-Coulomb pair potential
// U = K*qi*qj / r^(e-1) * chi(r) * phi(r) (spec.md §4.4), or the legacy
// ad-hoc variant K*qi*qj*EffectiveChargeFactor / r^(e-1) when Legacy.
func ElectrostaticPotential(p *ElectrostaticsParams, qi, qj, r2 float64) float64 {
	r := math.Sqrt(r2)
	if r >= p.Cutoff {
		return 0
	}
	base := p.Coupling * qi * qj * math.Pow(r, 1-p.EffectiveExponent)
	if p.Legacy {
		return base * p.EffectiveChargeFactor
	}
	chi, _ := p.chi(r)
	phi, _ := p.phi(r)
	return base * chi * phi
}

// ElectrostaticForce returns F = -dU/dr * e for the damped-Coulomb pair
// interaction, clamped to MaxAbsForce in magnitude.
func ElectrostaticForce(p *ElectrostaticsParams, qi, qj, dx, dy, dz, r2 float64) PairForce {
	r := math.Sqrt(r2)
	if r >= p.Cutoff || r == 0 {
		return PairForce{}
	}
	e := 1 - p.EffectiveExponent // r^e == r^(1-EffectiveExponent)
	rE := math.Pow(r, e)
	rEm1 := math.Pow(r, e-1)
	k := p.Coupling * qi * qj

	var mag float64
	if p.Legacy {
		dUdr := k * e * rEm1 * p.EffectiveChargeFactor
		mag = -dUdr
	} else {
		chi, chiP := p.chi(r)
		phi, phiP := p.phi(r)
		dUdr := k * (e*rEm1*chi*phi + rE*chiP*phi + rE*chi*phiP)
		mag = -dUdr
	}
	mag = clampAbs(mag, p.MaxAbsForce)
	return scale(dx, dy, dz, r, mag)
}
