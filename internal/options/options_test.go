package options

import (
	"errors"
	"math"
	"testing"

	"github.com/finwheel/calc-engine/internal/blackscholes"
)

func longCall(strike, premium float64) []Leg {
	return []Leg{NewLeg(blackscholes.Call, Buy, strike, premium, 1)}
}

func evaluate(t *testing.T, in Inputs) *Result {
	t.Helper()
	res, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func TestCompute_LongCallBounds(t *testing.T) {
	res := evaluate(t, Inputs{Legs: longCall(100, 5), CurrentPrice: 100})

	if res.MaxProfit != nil {
		t.Errorf("long call max profit = %v, want nil (unbounded)", *res.MaxProfit)
	}
	if res.MaxLoss == nil {
		t.Fatal("long call max loss should be bounded")
	}
	if *res.MaxLoss != -500 {
		t.Errorf("long call max loss = %v, want -500 (premium x quantity x 100)", *res.MaxLoss)
	}
}

func TestCompute_PayoffIsIntrinsicMinusPremium(t *testing.T) {
	strike, premium := 100.0, 5.0
	res := evaluate(t, Inputs{Legs: longCall(strike, premium), CurrentPrice: 100})

	for _, p := range res.PayoffData {
		want := (math.Max(0, p.Price-strike) - premium) * 100
		if math.Abs(p.Profit-want) > 1e-9 {
			t.Fatalf("price %v: profit = %v, want %v", p.Price, p.Profit, want)
		}
	}
}

func TestCompute_LongCallBreakeven(t *testing.T) {
	res := evaluate(t, Inputs{Legs: longCall(100, 5), CurrentPrice: 100})

	if len(res.Breakevens) != 1 {
		t.Fatalf("breakevens = %v, want exactly one", res.Breakevens)
	}
	if math.Abs(res.Breakevens[0]-105) > 0.01 {
		t.Errorf("breakeven = %v, want 105 (strike + premium)", res.Breakevens[0])
	}
}

func TestCompute_BullCallSpreadBounded(t *testing.T) {
	legs := []Leg{
		NewLeg(blackscholes.Call, Buy, 100, 5, 1),
		NewLeg(blackscholes.Call, Sell, 110, 2, 1),
	}
	res := evaluate(t, Inputs{Legs: legs, CurrentPrice: 100})

	if res.MaxProfit == nil || res.MaxLoss == nil {
		t.Fatal("debit spread should have bounded profit and loss")
	}
	if math.Abs(*res.MaxProfit-700) > 1e-6 {
		t.Errorf("max profit = %v, want 700", *res.MaxProfit)
	}
	if math.Abs(*res.MaxLoss+300) > 1e-6 {
		t.Errorf("max loss = %v, want -300", *res.MaxLoss)
	}
	if res.RiskRewardRatio == nil {
		t.Fatal("bounded spread should report a risk/reward ratio")
	}
	if math.Abs(*res.RiskRewardRatio-700.0/300.0) > 1e-6 {
		t.Errorf("risk/reward = %v, want %v", *res.RiskRewardRatio, 700.0/300.0)
	}
}

func TestCompute_LongPutBounded(t *testing.T) {
	legs := []Leg{NewLeg(blackscholes.Put, Buy, 100, 5, 1)}
	res := evaluate(t, Inputs{Legs: legs, CurrentPrice: 100})

	if res.MaxLoss == nil || *res.MaxLoss != -500 {
		t.Errorf("long put max loss = %v, want -500", res.MaxLoss)
	}
	// Downside is capped by the underlying hitting zero, so profit is
	// finite even though the curve rises toward the left boundary.
	if res.MaxProfit == nil {
		t.Error("long put max profit should be finite")
	}
}

func TestCompute_StraddleBreakevens(t *testing.T) {
	legs := []Leg{
		NewLeg(blackscholes.Call, Buy, 100, 5, 1),
		NewLeg(blackscholes.Put, Buy, 100, 5, 1),
	}
	res := evaluate(t, Inputs{Legs: legs, CurrentPrice: 100})

	if len(res.Breakevens) != 2 {
		t.Fatalf("straddle breakevens = %v, want two", res.Breakevens)
	}
	if math.Abs(res.Breakevens[0]-90) > 0.01 || math.Abs(res.Breakevens[1]-110) > 0.01 {
		t.Errorf("breakevens = %v, want [90 110]", res.Breakevens)
	}
}

func TestCompute_CapitalRequired(t *testing.T) {
	tests := []struct {
		name string
		legs []Leg
		want float64
	}{
		{"long call premium", longCall(100, 5), 500},
		{"naked call spot collateral", []Leg{NewLeg(blackscholes.Call, Sell, 105, 3, 1)}, 10000},
		{"cash-secured put strike collateral", []Leg{NewLeg(blackscholes.Put, Sell, 95, 3, 1)}, 9500},
	}
	for _, tt := range tests {
		res := evaluate(t, Inputs{Legs: tt.legs, CurrentPrice: 100})
		if res.CapitalRequired != tt.want {
			t.Errorf("%s: capital = %v, want %v", tt.name, res.CapitalRequired, tt.want)
		}
	}
}

func TestCompute_GreeksRequireVolatility(t *testing.T) {
	in := Inputs{Legs: longCall(100, 5), CurrentPrice: 100}
	res := evaluate(t, in)
	if res.Greeks != nil || res.ProbabilityOfProfit != nil || res.PLSurface != nil {
		t.Error("Greeks, PoP, and surface should be absent without implied volatility")
	}

	in.ImpliedVolatility = 30
	in.RiskFreeRate = 5
	in.DaysToExpiration = 30
	res = evaluate(t, in)

	if res.Greeks == nil {
		t.Fatal("Greeks should be present with implied volatility")
	}
	if res.Greeks.Delta < 40 || res.Greeks.Delta > 70 {
		t.Errorf("ATM long call aggregate delta = %v, want roughly 50 (contract-scaled)", res.Greeks.Delta)
	}
	if res.ProbabilityOfProfit == nil {
		t.Fatal("probability of profit should be present")
	}
	if *res.ProbabilityOfProfit < 0 || *res.ProbabilityOfProfit > 100 {
		t.Errorf("probability of profit = %v, want within [0,100]", *res.ProbabilityOfProfit)
	}
	if len(res.PLSurface) == 0 {
		t.Fatal("P&L surface should be present")
	}
}

func TestCompute_SurfaceCoversExpiryAndFullDTE(t *testing.T) {
	in := DefaultInputs()
	res := evaluate(t, in)

	sawExpiry, sawFull := false, false
	for _, p := range res.PLSurface {
		if p.DTE == 0 {
			sawExpiry = true
		}
		if p.DTE == in.DaysToExpiration {
			sawFull = true
		}
		if p.DTE > in.DaysToExpiration {
			t.Fatalf("surface contains dte %d beyond expiration %d", p.DTE, in.DaysToExpiration)
		}
	}
	if !sawExpiry || !sawFull {
		t.Errorf("surface should include dte 0 and dte %d", in.DaysToExpiration)
	}
}

func TestCompute_NoLegs(t *testing.T) {
	res := evaluate(t, Inputs{CurrentPrice: 100})

	for _, p := range res.PayoffData {
		if p.Profit != 0 {
			t.Fatalf("empty strategy profit at %v = %v, want 0", p.Price, p.Profit)
		}
	}
	if res.CapitalRequired != 0 {
		t.Errorf("empty strategy capital = %v, want 0", res.CapitalRequired)
	}
}

func TestCompute_InvalidInputs(t *testing.T) {
	if _, err := Compute(Inputs{Legs: longCall(100, 5)}); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
	bad := []Leg{NewLeg(blackscholes.Call, Buy, 0, 5, 1)}
	if _, err := Compute(Inputs{Legs: bad, CurrentPrice: 100}); !errors.Is(err, ErrInvalidLeg) {
		t.Errorf("expected ErrInvalidLeg, got %v", err)
	}
}

func TestStrategyLegs(t *testing.T) {
	condor := StrategyLegs(StrategyIronCondor, 100)
	if len(condor) != 4 {
		t.Fatalf("iron condor legs = %d, want 4", len(condor))
	}

	butterfly := StrategyLegs(StrategyButterfly, 100)
	if len(butterfly) != 3 || butterfly[1].Quantity != 2 {
		t.Errorf("butterfly should sell two ATM calls, got %+v", butterfly)
	}

	fallback := StrategyLegs("unknown", 100)
	if len(fallback) != 1 || fallback[0].Type != blackscholes.Call || fallback[0].Direction != Buy {
		t.Errorf("unknown strategy should fall back to a long call, got %+v", fallback)
	}
}
