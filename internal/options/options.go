// Package options evaluates multi-leg option strategies at expiration:
// payoff curve, breakevens, capital required, and, when an implied
// volatility is supplied, aggregated Greeks, probability of profit, and a
// profit/loss surface over time.
package options

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwheel/calc-engine/internal/blackscholes"
	"github.com/finwheel/calc-engine/internal/gaussian"
)

// Direction is which side of a leg the strategy holds.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// Standard 100-share contract multiplier.
const contractSize = 100

// payoffSamples is the approximate sample count across the price range.
const payoffSamples = 200

var (
	ErrInvalidLeg   = errors.New("options: leg requires positive strike and quantity and non-negative premium")
	ErrInvalidPrice = errors.New("options: current price must be positive")
)

// Leg is one option position within a strategy.
type Leg struct {
	ID        string                  `json:"id"`
	Type      blackscholes.OptionType `json:"type"`
	Direction Direction               `json:"direction"`
	Strike    float64                 `json:"strike"`
	Premium   float64                 `json:"premium"`
	Quantity  int                     `json:"quantity"`
}

// NewLeg constructs a leg with a generated ID.
func NewLeg(optType blackscholes.OptionType, dir Direction, strike, premium float64, quantity int) Leg {
	return Leg{
		ID:        uuid.NewString(),
		Type:      optType,
		Direction: dir,
		Strike:    strike,
		Premium:   premium,
		Quantity:  quantity,
	}
}

// Inputs drive one evaluation. ImpliedVolatility and RiskFreeRate are
// percentages; an ImpliedVolatility of zero disables the Greeks,
// probability-of-profit, and surface outputs.
type Inputs struct {
	Legs              []Leg   `json:"legs"`
	CurrentPrice      float64 `json:"current_price"`
	ImpliedVolatility float64 `json:"implied_volatility"`
	RiskFreeRate      float64 `json:"risk_free_rate"`
	DaysToExpiration  int     `json:"days_to_expiration"`
}

// PayoffPoint is the strategy profit at one sampled expiry price.
type PayoffPoint struct {
	Price         float64 `json:"price"`
	Profit        float64 `json:"profit"`
	ProfitPercent float64 `json:"profit_percent"`
}

// Greeks are the signed, quantity-scaled aggregates across all legs.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// SurfacePoint is the strategy mark-to-model P&L at one price and one
// days-to-expiration step.
type SurfacePoint struct {
	Price float64 `json:"price"`
	DTE   int     `json:"dte"`
	PL    float64 `json:"pl"`
}

// Result is the full strategy evaluation. MaxProfit and MaxLoss are nil when
// unbounded; Greeks, ProbabilityOfProfit, and PLSurface are nil when no
// implied volatility was supplied.
type Result struct {
	PayoffData          []PayoffPoint  `json:"payoff_data"`
	MaxProfit           *float64       `json:"max_profit"`
	MaxLoss             *float64       `json:"max_loss"`
	Breakevens          []float64      `json:"breakevens"`
	RiskRewardRatio     *float64       `json:"risk_reward_ratio"`
	CapitalRequired     float64        `json:"capital_required"`
	Greeks              *Greeks        `json:"greeks"`
	ProbabilityOfProfit *float64       `json:"probability_of_profit"`
	PLSurface           []SurfacePoint `json:"pl_surface"`
}

// Compute evaluates the strategy. Zero legs produce a flat zero payoff
// rather than an error.
func Compute(in Inputs) (*Result, error) {
	if in.CurrentPrice <= 0 {
		return nil, ErrInvalidPrice
	}
	for _, leg := range in.Legs {
		if leg.Strike <= 0 || leg.Quantity <= 0 || leg.Premium < 0 {
			return nil, ErrInvalidLeg
		}
	}

	prices := priceRange(in.CurrentPrice, in.Legs)
	payoff := make([]PayoffPoint, len(prices))
	for i, p := range prices {
		payoff[i] = payoffAtPrice(p, in.Legs)
	}

	res := &Result{
		PayoffData:      payoff,
		MaxProfit:       maxProfit(payoff),
		MaxLoss:         maxLoss(payoff),
		Breakevens:      breakevens(payoff),
		CapitalRequired: capitalRequired(in.Legs, in.CurrentPrice),
	}

	if res.MaxProfit != nil && res.MaxLoss != nil && *res.MaxLoss != 0 {
		ratio := math.Abs(*res.MaxProfit / *res.MaxLoss)
		res.RiskRewardRatio = &ratio
	}

	if in.ImpliedVolatility > 0 {
		iv := in.ImpliedVolatility / 100
		rate := in.RiskFreeRate / 100
		t := float64(in.DaysToExpiration) / 365

		g, err := aggregateGreeks(in.Legs, in.CurrentPrice, iv, rate, t)
		if err != nil {
			return nil, err
		}
		res.Greeks = g

		pop := probabilityOfProfit(in.Legs, in.CurrentPrice, iv, rate, t)
		res.ProbabilityOfProfit = &pop

		surface, err := plSurface(in.Legs, in.CurrentPrice, iv, rate, in.DaysToExpiration)
		if err != nil {
			return nil, err
		}
		res.PLSurface = surface
	}

	return res, nil
}

// priceRange spans below the lowest strike/spot to above the highest, padded
// by half the span or 30% of spot, whichever is larger. Sampled prices are
// rounded to the cent.
func priceRange(currentPrice float64, legs []Leg) []float64 {
	min, max := currentPrice, currentPrice
	for _, leg := range legs {
		min = math.Min(min, leg.Strike)
		max = math.Max(max, leg.Strike)
	}
	padding := math.Max((max-min)*0.5, currentPrice*0.3)

	low := math.Max(0, min-padding)
	high := max + padding
	step := (high - low) / payoffSamples

	var prices []float64
	for p := low; p <= high; p += step {
		prices = append(prices, cents(p))
	}
	return prices
}

func payoffAtPrice(priceAtExpiry float64, legs []Leg) PayoffPoint {
	var totalProfit, totalCost float64
	for _, leg := range legs {
		sign := directionSign(leg.Direction)
		totalProfit += (intrinsic(leg, priceAtExpiry) - leg.Premium) * sign * float64(leg.Quantity) * contractSize
		totalCost += leg.Premium * float64(leg.Quantity) * contractSize * sign
	}

	point := PayoffPoint{Price: priceAtExpiry, Profit: totalProfit}
	if totalCost != 0 {
		point.ProfitPercent = totalProfit / math.Abs(totalCost) * 100
	}
	return point
}

func intrinsic(leg Leg, price float64) float64 {
	if leg.Type == blackscholes.Call {
		return math.Max(0, price-leg.Strike)
	}
	return math.Max(0, leg.Strike-price)
}

func directionSign(d Direction) float64 {
	if d == Sell {
		return -1
	}
	return 1
}

// maxProfit reads the curve's maximum, returning nil when profit is still
// climbing at the upper boundary (unlimited upside).
func maxProfit(data []PayoffPoint) *float64 {
	last := len(data) - 1
	max := data[0].Profit
	for _, p := range data[1:] {
		max = math.Max(max, p.Profit)
	}
	if data[last].Profit > data[last-1].Profit && data[last].Profit > data[last/2].Profit {
		return nil
	}
	return &max
}

// maxLoss reads the curve's minimum, returning nil when loss is still
// deepening at the lower boundary, unless that boundary is already at a
// price of ~0 where the underlying cannot fall further.
func maxLoss(data []PayoffPoint) *float64 {
	min := data[0].Profit
	for _, p := range data[1:] {
		min = math.Min(min, p.Profit)
	}
	if data[0].Profit < data[1].Profit && data[0].Profit < data[len(data)/2].Profit {
		if data[0].Price <= 0.01 {
			return &min
		}
		return nil
	}
	return &min
}

// breakevens finds every sign change between adjacent samples and refines
// each crossing by linear interpolation.
func breakevens(data []PayoffPoint) []float64 {
	var out []float64
	for i := 1; i < len(data); i++ {
		prev, cur := data[i-1].Profit, data[i].Profit
		if (prev <= 0 && cur >= 0) || (prev >= 0 && cur <= 0) {
			denom := math.Abs(prev) + math.Abs(cur)
			if denom == 0 {
				continue
			}
			ratio := math.Abs(prev) / denom
			out = append(out, cents(data[i-1].Price+ratio*(data[i].Price-data[i-1].Price)))
		}
	}
	return out
}

// capitalRequired sums premiums for bought legs plus collateral estimates
// for sold legs: spot-value for naked calls, strike-value for cash-secured
// puts. A simplification, not margin-engine accuracy.
func capitalRequired(legs []Leg, currentPrice float64) float64 {
	var capital float64
	for _, leg := range legs {
		qty := float64(leg.Quantity) * contractSize
		switch {
		case leg.Direction == Buy:
			capital += leg.Premium * qty
		case leg.Type == blackscholes.Call:
			capital += currentPrice * qty
		default:
			capital += leg.Strike * qty
		}
	}
	return capital
}

func aggregateGreeks(legs []Leg, spot, iv, rate, timeToExpiry float64) (*Greeks, error) {
	var g Greeks
	for _, leg := range legs {
		mult := directionSign(leg.Direction) * float64(leg.Quantity) * contractSize
		bs, err := blackscholes.Price(blackscholes.Params{
			Spot:         spot,
			Strike:       leg.Strike,
			TimeToExpiry: timeToExpiry,
			RiskFree:     rate,
			Volatility:   iv,
			Type:         leg.Type,
		})
		if err != nil {
			return nil, err
		}
		g.Delta += bs.Delta * mult
		g.Gamma += bs.Gamma * mult
		g.Theta += bs.Theta * mult
		g.Vega += bs.Vega * mult
		g.Rho += bs.Rho * mult
	}
	return &g, nil
}

// probabilityOfProfit weights the profitable slices of the payoff curve by
// the log-normal terminal price distribution. Result is a percentage
// clamped to [0, 100].
func probabilityOfProfit(legs []Leg, spot, iv, rate, timeToExpiry float64) float64 {
	prices := priceRange(spot, legs)
	drift := (rate - 0.5*iv*iv) * timeToExpiry
	sigmaT := iv * math.Sqrt(timeToExpiry)

	var prob float64
	for i := 1; i < len(prices); i++ {
		if prices[i] <= 0 || prices[i-1] <= 0 {
			continue
		}
		dHigh := (math.Log(prices[i]/spot) - drift) / sigmaT
		dLow := (math.Log(prices[i-1]/spot) - drift) / sigmaT
		if payoffAtPrice(prices[i], legs).Profit > 0 {
			prob += math.Abs(gaussian.CDF(dHigh) - gaussian.CDF(dLow))
		}
	}
	return math.Min(100, math.Max(0, prob*100))
}

// plSurface marks the strategy to model at a coarse price grid for a fixed
// set of days-to-expiration steps (expiry, near dates, halfway, full).
func plSurface(legs []Leg, spot, iv, rate float64, daysToExpiration int) ([]SurfacePoint, error) {
	prices := priceRange(spot, legs)
	priceStep := len(prices) / 30
	if priceStep < 1 {
		priceStep = 1
	}

	var dteSteps []int
	seen := make(map[int]bool)
	for _, d := range []int{0, 1, 3, 7, 14, 21, daysToExpiration / 2, daysToExpiration} {
		if d <= daysToExpiration && !seen[d] {
			seen[d] = true
			dteSteps = append(dteSteps, d)
		}
	}

	var surface []SurfacePoint
	for _, dte := range dteSteps {
		t := float64(dte) / 365
		for i := 0; i < len(prices); i += priceStep {
			price := prices[i]
			var pl float64
			for _, leg := range legs {
				mult := directionSign(leg.Direction) * float64(leg.Quantity) * contractSize
				if t <= 0 {
					pl += (intrinsic(leg, price) - leg.Premium) * mult
					continue
				}
				bs, err := blackscholes.Price(blackscholes.Params{
					Spot:         price,
					Strike:       leg.Strike,
					TimeToExpiry: t,
					RiskFree:     rate,
					Volatility:   iv,
					Type:         leg.Type,
				})
				if err != nil {
					return nil, err
				}
				pl += (bs.Price - leg.Premium) * mult
			}
			surface = append(surface, SurfacePoint{Price: price, DTE: dte, PL: pl})
		}
	}
	return surface, nil
}

func cents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
