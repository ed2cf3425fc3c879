// Package gaussian provides the normal-distribution primitives shared by the
// option pricer and the Monte Carlo retirement engine.
//
// CDF uses the Abramowitz & Stegun rational approximation (formula 7.1.26),
// accurate to ~7.5e-8, which is ample for pricing and probability-of-profit
// work. Random normal draws use the Box-Muller transform behind a small Source
// interface so simulations can be seeded deterministically in tests.
//
// Reference: Abramowitz, M. & Stegun, I. (1964) "Handbook of Mathematical
// Functions", §7.1.26
package gaussian

import (
	"math"
	"math/rand"
)

// Abramowitz & Stegun 7.1.26 coefficients.
const (
	a1 = 0.254829592
	a2 = -0.284496736
	a3 = 1.421413741
	a4 = -1.453152027
	a5 = 1.061405429
	p  = 0.3275911
)

// CDF returns the standard normal cumulative distribution function Φ(x).
// Saturates to exactly 0 or 1 beyond ±10 standard deviations, where the
// approximation's error term is larger than the true tail mass.
func CDF(x float64) float64 {
	if x < -10 {
		return 0
	}
	if x > 10 {
		return 1
	}

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	absX := math.Abs(x)

	t := 1.0 / (1.0 + p*absX)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-absX*absX/2)

	return 0.5 * (1.0 + sign*y)
}

// PDF returns the standard normal probability density function φ(x).
func PDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// Source produces standard normal variates. Implementations are not required
// to be safe for concurrent use; give each simulation worker its own Source.
type Source interface {
	// Norm returns one draw from N(0, 1).
	Norm() float64
}

// BoxMuller generates standard normal variates from uniform draws via the
// Box-Muller transform. The second variate of each pair is cached so no
// uniform draw is wasted.
type BoxMuller struct {
	rng      *rand.Rand
	spare    float64
	hasSpare bool
}

// NewBoxMuller creates a Box-Muller source over the given PRNG.
func NewBoxMuller(rng *rand.Rand) *BoxMuller {
	return &BoxMuller{rng: rng}
}

// NewSeeded is shorthand for a Box-Muller source with its own seeded PRNG.
func NewSeeded(seed int64) *BoxMuller {
	return NewBoxMuller(rand.New(rand.NewSource(seed)))
}

// Norm returns one standard normal draw.
func (b *BoxMuller) Norm() float64 {
	if b.hasSpare {
		b.hasSpare = false
		return b.spare
	}

	// u1 must be strictly positive for the log.
	u1 := b.rng.Float64()
	for u1 == 0 {
		u1 = b.rng.Float64()
	}
	u2 := b.rng.Float64()

	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2

	b.spare = r * math.Sin(theta)
	b.hasSpare = true
	return r * math.Cos(theta)
}
