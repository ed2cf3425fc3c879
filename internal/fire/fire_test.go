package fire

import (
	"errors"
	"math"
	"testing"
)

func TestCompute_TargetNumbers(t *testing.T) {
	res, err := Compute(DefaultInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.FireNumber != 50000*25 {
		t.Errorf("fire number = %v, want 1250000", res.FireNumber)
	}
	if res.LeanFireNumber != 50000*0.7*25 {
		t.Errorf("lean fire number = %v, want 875000", res.LeanFireNumber)
	}
	if res.FatFireNumber != 50000*1.5*25 {
		t.Errorf("fat fire number = %v, want 1875000", res.FatFireNumber)
	}
	if res.BaristaFireNumber != 50000*0.5*25 {
		t.Errorf("barista fire number = %v, want 625000", res.BaristaFireNumber)
	}
}

func TestCompute_CoastNumberBelowFireNumber(t *testing.T) {
	for _, rate := range []float64{0, 2, 8, 12} {
		in := DefaultInputs()
		in.ExpectedReturnPreRetirement = rate
		res, err := Compute(in)
		if err != nil {
			t.Fatalf("rate %v: unexpected error: %v", rate, err)
		}
		if res.CoastFireNumber > res.FireNumber {
			t.Errorf("rate %v: coast number %v exceeds fire number %v",
				rate, res.CoastFireNumber, res.FireNumber)
		}
	}
}

func TestCompute_ProjectionSpansLifeExpectancy(t *testing.T) {
	in := DefaultInputs()
	res, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := in.LifeExpectancy - in.CurrentAge + 1
	if len(res.YearlyProjection) != want {
		t.Fatalf("projection length = %d, want %d", len(res.YearlyProjection), want)
	}

	for i, e := range res.YearlyProjection {
		if e.Age != in.CurrentAge+i {
			t.Fatalf("entry %d: age = %d, want %d", i, e.Age, in.CurrentAge+i)
		}
		wantPhase := PhaseAccumulation
		if e.Age >= in.RetirementAge {
			wantPhase = PhaseRetirement
		}
		if e.Phase != wantPhase {
			t.Errorf("age %d: phase = %s, want %s", e.Age, e.Phase, wantPhase)
		}
	}
}

func TestCompute_MoneyRunsOut(t *testing.T) {
	in := DefaultInputs()
	in.CurrentSavings = 1000
	in.SavingsRate = 0
	in.AnnualSpendingInRetirement = 200000
	in.SocialSecurityMonthly = 0

	res, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := in.LifeExpectancy - in.CurrentAge + 1
	if len(res.YearlyProjection) != want {
		t.Fatalf("projection length = %d, want %d even after money runs out",
			len(res.YearlyProjection), want)
	}

	last := res.YearlyProjection[len(res.YearlyProjection)-1]
	if last.Savings != 0 {
		t.Errorf("final savings = %v, want 0", last.Savings)
	}
	for _, e := range res.YearlyProjection {
		if e.Savings < 0 {
			t.Fatalf("age %d: negative savings %v", e.Age, e.Savings)
		}
	}
}

func TestCompute_RequiredSavingsRateClamped(t *testing.T) {
	in := DefaultInputs()
	in.AnnualIncome = 20000
	in.AnnualSpendingInRetirement = 500000
	res, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RequiredSavingsRate != 100 {
		t.Errorf("required savings rate = %v, want clamped to 100", res.RequiredSavingsRate)
	}

	in = DefaultInputs()
	in.CurrentSavings = 10_000_000
	res, err = Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RequiredSavingsRate != 0 {
		t.Errorf("required savings rate = %v, want 0 when already funded", res.RequiredSavingsRate)
	}
}

func TestCompute_RequiredRateReachesTarget(t *testing.T) {
	in := DefaultInputs()
	res, err := Compute(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Contributing at the required rate should land on the FIRE number at
	// retirement under the annuity formula.
	r := in.ExpectedReturnPreRetirement / 100
	n := float64(in.RetirementAge - in.CurrentAge)
	annual := in.AnnualIncome * res.RequiredSavingsRate / 100
	fv := in.CurrentSavings*math.Pow(1+r, n) + annual*(math.Pow(1+r, n)-1)/r
	if math.Abs(fv-res.FireNumber) > 1 {
		t.Errorf("future value at required rate = %v, want %v", fv, res.FireNumber)
	}
}

func TestCompute_InvalidAges(t *testing.T) {
	in := DefaultInputs()
	in.RetirementAge = 25
	if _, err := Compute(in); !errors.Is(err, ErrInvalidAges) {
		t.Errorf("expected ErrInvalidAges, got %v", err)
	}
}

func TestMonteCarlo_Deterministic(t *testing.T) {
	in := DefaultInputs()
	cfg := MonteCarloConfig{Paths: 200, Seed: 7}

	a, err := MonteCarlo(in, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := MonteCarlo(in, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.SuccessRate != b.SuccessRate {
		t.Errorf("success rates differ across identical runs: %v vs %v", a.SuccessRate, b.SuccessRate)
	}
	for i := range a.P50 {
		if a.P50[i] != b.P50[i] {
			t.Fatalf("median differs at age %d: %v vs %v", a.Ages[i], a.P50[i], b.P50[i])
		}
	}
}

func TestMonteCarlo_IndependentOfWorkerCount(t *testing.T) {
	in := DefaultInputs()

	serial, err := MonteCarlo(in, MonteCarloConfig{Paths: 200, Seed: 11, Workers: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parallel, err := MonteCarlo(in, MonteCarloConfig{Paths: 200, Seed: 11, Workers: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if serial.SuccessRate != parallel.SuccessRate {
		t.Errorf("success rate depends on worker count: %v vs %v",
			serial.SuccessRate, parallel.SuccessRate)
	}
	for i := range serial.P10 {
		if serial.P10[i] != parallel.P10[i] || serial.P90[i] != parallel.P90[i] {
			t.Fatalf("percentiles depend on worker count at age %d", serial.Ages[i])
		}
	}
}

func TestMonteCarlo_PercentilesOrdered(t *testing.T) {
	res, err := MonteCarlo(DefaultInputs(), MonteCarloConfig{Paths: 300, Seed: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range res.Ages {
		if res.P10[i] > res.P25[i] || res.P25[i] > res.P50[i] ||
			res.P50[i] > res.P75[i] || res.P75[i] > res.P90[i] {
			t.Fatalf("percentile bands out of order at age %d: %v %v %v %v %v",
				res.Ages[i], res.P10[i], res.P25[i], res.P50[i], res.P75[i], res.P90[i])
		}
	}
}

func TestMonteCarlo_SuccessMonotoneInSavingsRate(t *testing.T) {
	low := DefaultInputs()
	low.SavingsRate = 5
	high := DefaultInputs()
	high.SavingsRate = 50

	cfg := MonteCarloConfig{Paths: 500, Seed: 42}
	lowRes, err := MonteCarlo(low, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	highRes, err := MonteCarlo(high, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if highRes.SuccessRate < lowRes.SuccessRate {
		t.Errorf("success rate fell when saving more: %v%% at 5%% vs %v%% at 50%%",
			lowRes.SuccessRate, highRes.SuccessRate)
	}
}

func TestMonteCarlo_PathCountValidation(t *testing.T) {
	if _, err := MonteCarlo(DefaultInputs(), MonteCarloConfig{Paths: -1}); !errors.Is(err, ErrInvalidPaths) {
		t.Errorf("expected ErrInvalidPaths for negative paths, got %v", err)
	}
	if _, err := MonteCarlo(DefaultInputs(), MonteCarloConfig{Paths: MaxPaths + 1}); !errors.Is(err, ErrInvalidPaths) {
		t.Errorf("expected ErrInvalidPaths above cap, got %v", err)
	}
}
