package options

import (
	"math"

	"github.com/finwheel/calc-engine/internal/blackscholes"
)

// Named strategy presets. Strikes are derived from the current price and
// rounded to whole dollars; premiums are placeholder estimates the caller is
// expected to replace with market quotes.
const (
	StrategyLongCall       = "long-call"
	StrategyLongPut        = "long-put"
	StrategyCoveredCall    = "covered-call"
	StrategyCashSecuredPut = "cash-secured-put"
	StrategyBullCallSpread = "bull-call-spread"
	StrategyBearPutSpread  = "bear-put-spread"
	StrategyIronCondor     = "iron-condor"
	StrategyStraddle       = "straddle"
	StrategyStrangle       = "strangle"
	StrategyButterfly      = "butterfly"
)

// StrategyLegs builds the leg set for a named strategy around the current
// price. Unknown names fall back to a long call.
func StrategyLegs(strategy string, currentPrice float64) []Leg {
	atm := math.Round(currentPrice)
	pct := func(mult float64) float64 { return math.Round(currentPrice * mult) }

	switch strategy {
	case StrategyLongPut:
		return []Leg{NewLeg(blackscholes.Put, Buy, atm, 5, 1)}
	case StrategyCoveredCall:
		return []Leg{NewLeg(blackscholes.Call, Sell, pct(1.05), 3, 1)}
	case StrategyCashSecuredPut:
		return []Leg{NewLeg(blackscholes.Put, Sell, pct(0.95), 3, 1)}
	case StrategyBullCallSpread:
		return []Leg{
			NewLeg(blackscholes.Call, Buy, atm, 5, 1),
			NewLeg(blackscholes.Call, Sell, pct(1.1), 2, 1),
		}
	case StrategyBearPutSpread:
		return []Leg{
			NewLeg(blackscholes.Put, Buy, atm, 5, 1),
			NewLeg(blackscholes.Put, Sell, pct(0.9), 2, 1),
		}
	case StrategyIronCondor:
		return []Leg{
			NewLeg(blackscholes.Put, Buy, pct(0.9), 1.5, 1),
			NewLeg(blackscholes.Put, Sell, pct(0.95), 3, 1),
			NewLeg(blackscholes.Call, Sell, pct(1.05), 3, 1),
			NewLeg(blackscholes.Call, Buy, pct(1.1), 1.5, 1),
		}
	case StrategyStraddle:
		return []Leg{
			NewLeg(blackscholes.Call, Buy, atm, 5, 1),
			NewLeg(blackscholes.Put, Buy, atm, 5, 1),
		}
	case StrategyStrangle:
		return []Leg{
			NewLeg(blackscholes.Call, Buy, pct(1.05), 3, 1),
			NewLeg(blackscholes.Put, Buy, pct(0.95), 3, 1),
		}
	case StrategyButterfly:
		return []Leg{
			NewLeg(blackscholes.Call, Buy, pct(0.95), 7, 1),
			NewLeg(blackscholes.Call, Sell, atm, 4, 2),
			NewLeg(blackscholes.Call, Buy, pct(1.05), 2, 1),
		}
	default:
		return []Leg{NewLeg(blackscholes.Call, Buy, atm, 5, 1)}
	}
}

// DefaultInputs returns a long call at the money on a $100 underlying.
func DefaultInputs() Inputs {
	return Inputs{
		Legs:              StrategyLegs(StrategyLongCall, 100),
		CurrentPrice:      100,
		ImpliedVolatility: 30,
		RiskFreeRate:      5,
		DaysToExpiration:  30,
	}
}
