// Package fire projects retirement savings from the current age to life
// expectancy. The deterministic projection uses fixed expected returns; the
// Monte Carlo engine reruns the same year step with normally distributed
// returns across many independent paths.
package fire

import (
	"errors"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/finwheel/calc-engine/internal/gaussian"
)

// Phase labels which side of the retirement age a projection year falls on.
type Phase string

const (
	PhaseAccumulation Phase = "accumulation"
	PhaseRetirement   Phase = "retirement"
)

// Safe-withdrawal multiple behind the FIRE number (the 4% rule) and the
// spending multipliers for the lean, fat, and barista variants.
const (
	withdrawalMultiple  = 25.0
	leanSpendingMult    = 0.7
	fatSpendingMult     = 1.5
	baristaSpendingMult = 0.5
)

var (
	ErrInvalidAges    = errors.New("fire: ages must satisfy current <= retirement <= life expectancy")
	ErrInvalidTaxRate = errors.New("fire: retirement tax rate must be below 100 percent")
	ErrInvalidPaths   = errors.New("fire: monte carlo path count must be positive")
)

// Inputs are the projection assumptions. Rates are annual percentages.
type Inputs struct {
	CurrentAge                   int     `json:"current_age"`
	RetirementAge                int     `json:"retirement_age"`
	LifeExpectancy               int     `json:"life_expectancy"`
	CurrentSavings               float64 `json:"current_savings"`
	AnnualIncome                 float64 `json:"annual_income"`
	SavingsRate                  float64 `json:"savings_rate"`
	ExpectedReturnPreRetirement  float64 `json:"expected_return_pre_retirement"`
	ExpectedReturnPostRetirement float64 `json:"expected_return_post_retirement"`
	AnnualSpendingInRetirement   float64 `json:"annual_spending_in_retirement"`
	SocialSecurityMonthly        float64 `json:"social_security_monthly"`
	SocialSecurityStartAge       int     `json:"social_security_start_age"`
	InflationRate                float64 `json:"inflation_rate"`
	TaxRateInRetirement          float64 `json:"tax_rate_in_retirement"`
}

// YearEntry is one projected year.
type YearEntry struct {
	Age              int     `json:"age"`
	Year             int     `json:"year"`
	Savings          float64 `json:"savings"`
	Contributions    float64 `json:"contributions"`
	InvestmentReturn float64 `json:"investment_return"`
	Withdrawals      float64 `json:"withdrawals"`
	SocialSecurity   float64 `json:"social_security"`
	Phase            Phase   `json:"phase"`
}

// Result is the deterministic projection outcome. CoastFireAge is nil when
// the projection never reaches a coastable balance during accumulation.
type Result struct {
	FireNumber          float64     `json:"fire_number"`
	LeanFireNumber      float64     `json:"lean_fire_number"`
	FatFireNumber       float64     `json:"fat_fire_number"`
	BaristaFireNumber   float64     `json:"barista_fire_number"`
	CoastFireNumber     float64     `json:"coast_fire_number"`
	CoastFireAge        *int        `json:"coast_fire_age"`
	YearsToFire         int         `json:"years_to_fire"`
	RequiredSavingsRate float64     `json:"required_savings_rate"`
	YearlyProjection    []YearEntry `json:"yearly_projection"`
}

// Compute runs the deterministic projection and derives the FIRE targets.
func Compute(in Inputs) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	spending := in.AnnualSpendingInRetirement
	fireNumber := spending * withdrawalMultiple
	yearsToRetirement := in.RetirementAge - in.CurrentAge
	preRate := in.ExpectedReturnPreRetirement / 100

	projection := buildProjection(in)

	yearsToFire := yearsToRetirement
	for _, e := range projection {
		if e.Phase == PhaseAccumulation && e.Savings >= fireNumber {
			yearsToFire = e.Age - in.CurrentAge
			break
		}
	}

	// Discount the target back to today: the balance that coasts to the
	// FIRE number by retirement with no further contributions.
	coastFireNumber := fireNumber / math.Pow(1+preRate, float64(yearsToRetirement))

	var coastFireAge *int
	for _, e := range projection {
		if e.Phase != PhaseAccumulation {
			continue
		}
		yearsLeft := in.RetirementAge - e.Age
		futureValue := e.Savings * math.Pow(1+preRate, float64(yearsLeft))
		if futureValue >= fireNumber {
			age := e.Age
			coastFireAge = &age
			break
		}
	}

	return &Result{
		FireNumber:          fireNumber,
		LeanFireNumber:      spending * leanSpendingMult * withdrawalMultiple,
		FatFireNumber:       spending * fatSpendingMult * withdrawalMultiple,
		BaristaFireNumber:   spending * baristaSpendingMult * withdrawalMultiple,
		CoastFireNumber:     coastFireNumber,
		CoastFireAge:        coastFireAge,
		YearsToFire:         yearsToFire,
		RequiredSavingsRate: requiredSavingsRate(in, fireNumber, preRate, yearsToRetirement),
		YearlyProjection:    projection,
	}, nil
}

// requiredSavingsRate solves the future-value-of-annuity equation for the
// annual contribution that reaches the FIRE number by retirement, after
// crediting the current savings' own growth. Clamped to [0, 100].
func requiredSavingsRate(in Inputs, fireNumber, preRate float64, yearsToRetirement int) float64 {
	n := float64(yearsToRetirement)
	fvFactor := n
	if preRate > 0 {
		fvFactor = (math.Pow(1+preRate, n) - 1) / preRate
	}
	fvCurrent := in.CurrentSavings * math.Pow(1+preRate, n)
	needed := fireNumber - fvCurrent
	if needed <= 0 || in.AnnualIncome <= 0 || fvFactor <= 0 {
		return 0
	}
	rate := needed / fvFactor / in.AnnualIncome * 100
	return math.Min(math.Max(rate, 0), 100)
}

func validate(in Inputs) error {
	if in.CurrentAge < 0 || in.RetirementAge < in.CurrentAge || in.LifeExpectancy < in.RetirementAge {
		return ErrInvalidAges
	}
	if in.TaxRateInRetirement >= 100 {
		return ErrInvalidTaxRate
	}
	return nil
}

func buildProjection(in Inputs) []YearEntry {
	var projection []YearEntry
	savings := in.CurrentSavings
	annualSavings := in.AnnualIncome * in.SavingsRate / 100

	for age := in.CurrentAge; age <= in.LifeExpectancy; age++ {
		isRetired := age >= in.RetirementAge
		phase := PhaseAccumulation
		var contributions, withdrawals, socialSecurity, investmentReturn float64

		if !isRetired {
			contributions = annualSavings
			investmentReturn = savings * in.ExpectedReturnPreRetirement / 100
			savings += contributions + investmentReturn
		} else {
			phase = PhaseRetirement
			withdrawals, socialSecurity = netWithdrawal(in, age)
			investmentReturn = savings * in.ExpectedReturnPostRetirement / 100
			savings += investmentReturn - withdrawals
		}

		projection = append(projection, YearEntry{
			Age:              age,
			Year:             age - in.CurrentAge,
			Savings:          math.Max(0, savings),
			Contributions:    contributions,
			InvestmentReturn: investmentReturn,
			Withdrawals:      withdrawals,
			SocialSecurity:   socialSecurity,
			Phase:            phase,
		})

		if savings <= 0 && isRetired {
			// Money ran out. Fill the remaining years with zeros so the
			// projection always spans to life expectancy.
			for a := age + 1; a <= in.LifeExpectancy; a++ {
				var ss float64
				if a >= in.SocialSecurityStartAge {
					ss = in.SocialSecurityMonthly * 12
				}
				projection = append(projection, YearEntry{
					Age:            a,
					Year:           a - in.CurrentAge,
					SocialSecurity: ss,
					Phase:          PhaseRetirement,
				})
			}
			break
		}
	}

	return projection
}

// netWithdrawal inflates the target spending to the given age, grosses it up
// for the retirement tax rate, and offsets Social Security once it starts.
func netWithdrawal(in Inputs, age int) (withdrawal, socialSecurity float64) {
	inflationFactor := math.Pow(1+in.InflationRate/100, float64(age-in.RetirementAge))
	adjustedSpending := in.AnnualSpendingInRetirement * inflationFactor
	if age >= in.SocialSecurityStartAge {
		socialSecurity = in.SocialSecurityMonthly * 12
	}
	gross := adjustedSpending / (1 - in.TaxRateInRetirement/100)
	return math.Max(0, gross-socialSecurity), socialSecurity
}

// DefaultInputs returns a representative starting scenario.
func DefaultInputs() Inputs {
	return Inputs{
		CurrentAge:                   30,
		RetirementAge:                55,
		LifeExpectancy:               90,
		CurrentSavings:               50000,
		AnnualIncome:                 100000,
		SavingsRate:                  30,
		ExpectedReturnPreRetirement:  8,
		ExpectedReturnPostRetirement: 5,
		AnnualSpendingInRetirement:   50000,
		SocialSecurityMonthly:        2000,
		SocialSecurityStartAge:       67,
		InflationRate:                3,
		TaxRateInRetirement:          20,
	}
}

// Monte Carlo defaults. Volatility approximates broad stock-market annual
// standard deviation.
const (
	DefaultPaths      = 1000
	DefaultVolatility = 0.15
	MaxPaths          = 100000
)

// MonteCarloConfig tunes the stochastic run. Zero values fall back to the
// defaults above; Workers falls back to GOMAXPROCS. Source, when set,
// supplies the normal draws for a given path index; otherwise each path is
// seeded deterministically from Seed so results do not depend on Workers.
type MonteCarloConfig struct {
	Paths      int
	Workers    int
	Volatility float64
	Seed       int64
	Source     func(path int) gaussian.Source
}

// MonteCarloResult reports per-age percentile bands across all paths.
type MonteCarloResult struct {
	Ages        []int     `json:"ages"`
	P10         []float64 `json:"p10"`
	P25         []float64 `json:"p25"`
	P50         []float64 `json:"p50"`
	P75         []float64 `json:"p75"`
	P90         []float64 `json:"p90"`
	SuccessRate float64   `json:"success_rate"`
	Paths       int       `json:"paths"`
}

// MonteCarlo simulates cfg.Paths independent savings paths with yearly
// returns drawn from a Normal distribution around the phase-appropriate
// expected return. Success means the final-year balance is still positive.
func MonteCarlo(in Inputs, cfg MonteCarloConfig) (*MonteCarloResult, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if cfg.Paths == 0 {
		cfg.Paths = DefaultPaths
	}
	if cfg.Paths < 0 || cfg.Paths > MaxPaths {
		return nil, ErrInvalidPaths
	}
	if cfg.Volatility == 0 {
		cfg.Volatility = DefaultVolatility
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	source := cfg.Source
	if source == nil {
		source = func(path int) gaussian.Source {
			return gaussian.NewSeeded(cfg.Seed + int64(path))
		}
	}

	years := in.LifeExpectancy - in.CurrentAge + 1
	ages := make([]int, years)
	for i := range ages {
		ages[i] = in.CurrentAge + i
	}

	// Paths are fully independent: each goroutine writes only its own row.
	paths := make([][]float64, cfg.Paths)
	sem := make(chan struct{}, cfg.Workers)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Paths; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			paths[i] = simulatePath(in, cfg.Volatility, source(i))
		}(i)
	}
	wg.Wait()

	res := &MonteCarloResult{
		Ages:  ages,
		P10:   make([]float64, years),
		P25:   make([]float64, years),
		P50:   make([]float64, years),
		P75:   make([]float64, years),
		P90:   make([]float64, years),
		Paths: cfg.Paths,
	}

	successes := 0
	for _, p := range paths {
		if p[len(p)-1] > 0 {
			successes++
		}
	}
	res.SuccessRate = float64(successes) / float64(cfg.Paths) * 100

	column := make([]float64, cfg.Paths)
	for i := 0; i < years; i++ {
		for j, p := range paths {
			column[j] = p[i]
		}
		sort.Float64s(column)
		res.P10[i] = column[cfg.Paths/10]
		res.P25[i] = column[cfg.Paths/4]
		res.P50[i] = column[cfg.Paths/2]
		res.P75[i] = column[cfg.Paths*3/4]
		res.P90[i] = column[cfg.Paths*9/10]
	}

	return res, nil
}

func simulatePath(in Inputs, volatility float64, src gaussian.Source) []float64 {
	annualSavings := in.AnnualIncome * in.SavingsRate / 100
	preMean := in.ExpectedReturnPreRetirement / 100
	postMean := in.ExpectedReturnPostRetirement / 100

	path := make([]float64, 0, in.LifeExpectancy-in.CurrentAge+1)
	savings := in.CurrentSavings

	for age := in.CurrentAge; age <= in.LifeExpectancy; age++ {
		isRetired := age >= in.RetirementAge
		mean := preMean
		if isRetired {
			mean = postMean
		}
		ret := mean + volatility*src.Norm()

		if !isRetired {
			savings += annualSavings
			savings *= 1 + ret
		} else {
			withdrawal, _ := netWithdrawal(in, age)
			savings *= 1 + ret
			savings -= withdrawal
		}
		path = append(path, math.Max(0, savings))
	}

	return path
}
