// Package blackscholes implements the Black-Scholes-Merton pricing model for
// European options, including the full set of first-order Greeks and a
// Newton-Raphson implied-volatility solver.
//
// Conventions match standard market quoting: theta is per calendar day,
// vega and rho are per 1% move in volatility / rates. At or past expiry the
// model degrades to intrinsic value with a binary delta and zero gamma,
// theta, vega and rho.
//
// Reference: Black, F. & Scholes, M. (1973) "The Pricing of Options and
// Corporate Liabilities"
package blackscholes

import (
	"errors"
	"math"

	"github.com/finwheel/calc-engine/internal/gaussian"
)

// OptionType distinguishes calls from puts.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

var (
	// ErrInvalidOptionType is returned for option types other than call/put.
	ErrInvalidOptionType = errors.New("blackscholes: option type must be call or put")

	// ErrNoConvergence is returned when the implied-volatility solver fails
	// to converge. Callers should treat this as "volatility unavailable",
	// not a fatal condition.
	ErrNoConvergence = errors.New("blackscholes: implied volatility did not converge")
)

// Implied-volatility solver tuning.
const (
	ivInitialGuess  = 0.3
	ivMin           = 0.001
	ivMax           = 5.0
	ivMaxIterations = 100
	ivTolerance     = 0.0001 // convergence tolerance on price difference
	ivVegaFloor     = 0.00001
)

// Params are the five Black-Scholes inputs plus the option type.
// Rates and volatility are decimals (0.05 = 5%), time is in years.
type Params struct {
	Spot         float64    `json:"spot"`
	Strike       float64    `json:"strike"`
	TimeToExpiry float64    `json:"time_to_expiry"`
	RiskFree     float64    `json:"risk_free"`
	Volatility   float64    `json:"volatility"`
	Type         OptionType `json:"type"`
}

// Result is the model price with its sensitivities.
type Result struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"` // per calendar day
	Vega  float64 `json:"vega"`  // per 1% vol move
	Rho   float64 `json:"rho"`   // per 1% rate move
	D1    float64 `json:"d1"`
	D2    float64 `json:"d2"`
}

// Price evaluates the Black-Scholes formula and Greeks.
func Price(p Params) (*Result, error) {
	if p.Type != Call && p.Type != Put {
		return nil, ErrInvalidOptionType
	}

	if p.TimeToExpiry <= 0 {
		return expiredResult(p), nil
	}

	S, K, T, r, sigma := p.Spot, p.Strike, p.TimeToExpiry, p.RiskFree, p.Volatility

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	nd1 := gaussian.CDF(d1)
	nd2 := gaussian.CDF(d2)
	pdf1 := gaussian.PDF(d1)
	discount := math.Exp(-r * T)

	res := &Result{D1: d1, D2: d2}

	if p.Type == Call {
		res.Price = S*nd1 - K*discount*nd2
		res.Delta = nd1
		res.Rho = K * T * discount * nd2 / 100
		res.Theta = (-(S*pdf1*sigma)/(2*sqrtT) - r*K*discount*nd2) / 365
	} else {
		res.Price = K*discount*gaussian.CDF(-d2) - S*gaussian.CDF(-d1)
		res.Delta = nd1 - 1
		res.Rho = -K * T * discount * gaussian.CDF(-d2) / 100
		res.Theta = (-(S*pdf1*sigma)/(2*sqrtT) + r*K*discount*gaussian.CDF(-d2)) / 365
	}

	res.Gamma = pdf1 / (S * sigma * sqrtT)
	res.Vega = S * pdf1 * sqrtT / 100

	return res, nil
}

// expiredResult is the T <= 0 degenerate case: pure intrinsic value,
// binary delta, no remaining optionality.
func expiredResult(p Params) *Result {
	res := &Result{}
	if p.Type == Call {
		res.Price = math.Max(p.Spot-p.Strike, 0)
		if p.Spot > p.Strike {
			res.Delta = 1
		}
	} else {
		res.Price = math.Max(p.Strike-p.Spot, 0)
		if p.Spot < p.Strike {
			res.Delta = -1
		}
	}
	return res
}

// ImpliedVolatility solves for the volatility that reproduces marketPrice,
// using Newton-Raphson on the pricing formula. Returns ErrNoConvergence when
// the iteration limit is reached or vega collapses below the working floor
// (deep in/out-of-the-money, near expiry).
func ImpliedVolatility(marketPrice, spot, strike, timeToExpiry, riskFree float64, optType OptionType) (float64, error) {
	if optType != Call && optType != Put {
		return 0, ErrInvalidOptionType
	}

	sigma := ivInitialGuess
	sqrtT := math.Sqrt(timeToExpiry)

	for i := 0; i < ivMaxIterations; i++ {
		res, err := Price(Params{
			Spot:         spot,
			Strike:       strike,
			TimeToExpiry: timeToExpiry,
			RiskFree:     riskFree,
			Volatility:   sigma,
			Type:         optType,
		})
		if err != nil {
			return 0, err
		}

		diff := res.Price - marketPrice
		if math.Abs(diff) < ivTolerance {
			return sigma, nil
		}

		// Unscaled vega for the Newton step (Vega in Result is per 1%).
		vega := spot * gaussian.PDF(res.D1) * sqrtT
		if vega < ivVegaFloor {
			return 0, ErrNoConvergence
		}

		sigma -= diff / vega

		if sigma <= ivMin {
			sigma = ivMin
		}
		if sigma > ivMax {
			sigma = ivMax
		}
	}

	return 0, ErrNoConvergence
}
