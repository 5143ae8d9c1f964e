package rng

import "gonum.org/v1/gonum/stat/distuv"

// GaussianSource draws zero-mean, unit-variance Gaussian samples for the
// random pair force's "Gaussian" configuration option (spec.md §4.4,
// IsGaussianRandomDpdForce), backed by gonum's distribution package
// rather than a hand-rolled Box-Muller transform (SPEC_FULL.md §4.12).
type GaussianSource struct {
	dist distuv.Normal
}

// NewGaussianSource builds a standard-normal sampler driven by s.
func (s *Stream) NewGaussianSource() *GaussianSource {
	return &GaussianSource{dist: distuv.Normal{Mu: 0, Sigma: 1, Src: s.r}}
}

// Sample draws one standard-normal variate.
func (g *GaussianSource) Sample() float64 {
	return g.dist.Rand()
}
