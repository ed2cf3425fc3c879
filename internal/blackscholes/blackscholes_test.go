package blackscholes

import (
	"errors"
	"math"
	"testing"
)

func price(t *testing.T, p Params) *Result {
	t.Helper()
	res, err := Price(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func TestPrice_ATMCallKnownValue(t *testing.T) {
	// S=100, K=100, T=1y, r=5%, σ=20%: textbook value ≈ 10.45.
	res := price(t, Params{Spot: 100, Strike: 100, TimeToExpiry: 1, RiskFree: 0.05, Volatility: 0.2, Type: Call})
	if math.Abs(res.Price-10.45) > 0.05 {
		t.Errorf("ATM call price = %v, want ≈ 10.45", res.Price)
	}
}

func TestPrice_PutCallParity(t *testing.T) {
	p := Params{Spot: 105, Strike: 100, TimeToExpiry: 0.5, RiskFree: 0.03, Volatility: 0.25}

	p.Type = Call
	call := price(t, p)
	p.Type = Put
	put := price(t, p)

	// C - P = S - K·e^{-rT}
	lhs := call.Price - put.Price
	rhs := p.Spot - p.Strike*math.Exp(-p.RiskFree*p.TimeToExpiry)
	if math.Abs(lhs-rhs) > 1e-3 {
		t.Errorf("put-call parity violated: C-P = %v, S-Ke^-rT = %v", lhs, rhs)
	}
}

func TestPrice_ConvergesToIntrinsicNearExpiry(t *testing.T) {
	intrinsic := 10.0
	res := price(t, Params{Spot: 110, Strike: 100, TimeToExpiry: 1e-6, RiskFree: 0.05, Volatility: 0.2, Type: Call})
	if math.Abs(res.Price-intrinsic) > 0.01 {
		t.Errorf("near-expiry ITM call price = %v, want ≈ %v", res.Price, intrinsic)
	}
}

func TestPrice_ATMDeltaNearHalfAtShortExpiry(t *testing.T) {
	res := price(t, Params{Spot: 100, Strike: 100, TimeToExpiry: 0.0001, RiskFree: 0, Volatility: 0.2, Type: Call})
	if math.Abs(res.Delta-0.5) > 0.01 {
		t.Errorf("ATM short-dated call delta = %v, want ≈ 0.5", res.Delta)
	}
}

func TestPrice_Expired(t *testing.T) {
	tests := []struct {
		name      string
		spot      float64
		optType   OptionType
		wantPrice float64
		wantDelta float64
	}{
		{"ITM call", 110, Call, 10, 1},
		{"OTM call", 90, Call, 0, 0},
		{"ITM put", 90, Put, 10, -1},
		{"OTM put", 110, Put, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := price(t, Params{Spot: tt.spot, Strike: 100, TimeToExpiry: 0, RiskFree: 0.05, Volatility: 0.2, Type: tt.optType})
			if res.Price != tt.wantPrice {
				t.Errorf("price = %v, want %v", res.Price, tt.wantPrice)
			}
			if res.Delta != tt.wantDelta {
				t.Errorf("delta = %v, want %v", res.Delta, tt.wantDelta)
			}
			if res.Gamma != 0 || res.Theta != 0 || res.Vega != 0 || res.Rho != 0 {
				t.Error("expired option should have zero gamma/theta/vega/rho")
			}
		})
	}
}

func TestPrice_GreekSigns(t *testing.T) {
	p := Params{Spot: 100, Strike: 100, TimeToExpiry: 0.25, RiskFree: 0.05, Volatility: 0.3}

	p.Type = Call
	call := price(t, p)
	if call.Delta <= 0 || call.Delta >= 1 {
		t.Errorf("call delta = %v, want in (0,1)", call.Delta)
	}
	if call.Gamma <= 0 || call.Vega <= 0 {
		t.Errorf("gamma/vega should be positive: gamma=%v vega=%v", call.Gamma, call.Vega)
	}
	if call.Theta >= 0 {
		t.Errorf("long ATM call theta = %v, want negative", call.Theta)
	}

	p.Type = Put
	put := price(t, p)
	if put.Delta >= 0 || put.Delta <= -1 {
		t.Errorf("put delta = %v, want in (-1,0)", put.Delta)
	}
}

func TestPrice_InvalidType(t *testing.T) {
	_, err := Price(Params{Spot: 100, Strike: 100, TimeToExpiry: 1, Volatility: 0.2, Type: "straddle"})
	if !errors.Is(err, ErrInvalidOptionType) {
		t.Errorf("expected ErrInvalidOptionType, got %v", err)
	}
}

func TestImpliedVolatility_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		sigma float64
		typ   OptionType
	}{
		{"call 20%", 0.20, Call},
		{"call 45%", 0.45, Call},
		{"put 30%", 0.30, Put},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{Spot: 100, Strike: 105, TimeToExpiry: 0.5, RiskFree: 0.04, Volatility: tt.sigma, Type: tt.typ}
			res := price(t, p)

			iv, err := ImpliedVolatility(res.Price, p.Spot, p.Strike, p.TimeToExpiry, p.RiskFree, tt.typ)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(iv-tt.sigma) > 0.001 {
				t.Errorf("recovered IV = %v, want ≈ %v", iv, tt.sigma)
			}
		})
	}
}

func TestImpliedVolatility_NoConvergence(t *testing.T) {
	// Deep OTM at near-zero expiry: vega collapses, price carries no vol signal.
	_, err := ImpliedVolatility(5, 100, 300, 0.0001, 0.05, Call)
	if !errors.Is(err, ErrNoConvergence) {
		t.Errorf("expected ErrNoConvergence, got %v", err)
	}
}
