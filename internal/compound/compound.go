// Package compound projects investment growth under periodic compounding,
// contribution escalation, inflation adjustment and capital-gains tax drag.
package compound

import (
	"errors"
	"math"
)

// Frequency selects how often growth compounds within a year.
type Frequency string

const (
	Daily     Frequency = "daily"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annually  Frequency = "annually"
)

// ErrInvalidFrequency is returned for an unknown compounding frequency.
var ErrInvalidFrequency = errors.New("compound: invalid compounding frequency")

// Within a period, the contribution slice is deposited BEFORE growth is
// applied, so contributions earn that same period's growth. This ordering is
// a deliberate policy: swapping it changes every downstream balance.
const contributionsBeforeGrowth = true

// milestoneTargets are the fixed balance milestones reported to clients.
var milestoneTargets = []struct {
	Amount float64
	Label  string
}{
	{100000, "$100K"},
	{250000, "$250K"},
	{500000, "$500K"},
	{1000000, "$1M"},
	{2000000, "$2M"},
	{5000000, "$5M"},
}

// scenarioRates are the fixed comparison rates, always computed with
// inflation and tax drag off.
var scenarioRates = []struct {
	Label string
	Rate  float64
}{
	{"Conservative (6%)", 6},
	{"Moderate (8%)", 8},
	{"Aggressive (10%)", 10},
}

// Inputs configure a growth projection. Rates are annual percentages.
type Inputs struct {
	InitialInvestment        float64   `json:"initial_investment"`
	MonthlyContribution      float64   `json:"monthly_contribution"`
	AnnualReturnRate         float64   `json:"annual_return_rate"`
	TimeHorizonYears         int       `json:"time_horizon_years"`
	ContributionIncreaseRate float64   `json:"contribution_increase_rate"`
	CompoundFrequency        Frequency `json:"compound_frequency"`
	TaxDragEnabled           bool      `json:"tax_drag_enabled"`
	CapitalGainsRate         float64   `json:"capital_gains_rate"`
	InflationEnabled         bool      `json:"inflation_enabled"`
	InflationRate            float64   `json:"inflation_rate"`
}

// YearEntry is one year of the projection. InflationAdjustedBalance and
// TaxDragBalance are nil when the corresponding toggle is off.
type YearEntry struct {
	Year                     int      `json:"year"`
	Contributions            float64  `json:"contributions"`
	TotalContributions       float64  `json:"total_contributions"`
	Earnings                 float64  `json:"earnings"`
	TotalEarnings            float64  `json:"total_earnings"`
	Balance                  float64  `json:"balance"`
	InflationAdjustedBalance *float64 `json:"inflation_adjusted_balance,omitempty"`
	TaxDragBalance           *float64 `json:"tax_drag_balance,omitempty"`
}

// Milestone reports the first year a fixed balance target is reached.
type Milestone struct {
	Amount float64 `json:"amount"`
	Label  string  `json:"label"`
	Year   *int    `json:"year,omitempty"`
}

// Scenario is one fixed-rate comparison run.
type Scenario struct {
	Label              string  `json:"label"`
	ReturnRate         float64 `json:"return_rate"`
	FinalBalance       float64 `json:"final_balance"`
	TotalContributions float64 `json:"total_contributions"`
	TotalEarnings      float64 `json:"total_earnings"`
}

// Result is the full projection.
type Result struct {
	YearlyData              []YearEntry `json:"yearly_data"`
	TotalContributed        float64     `json:"total_contributed"`
	TotalEarnings           float64     `json:"total_earnings"`
	FinalBalance            float64     `json:"final_balance"`
	EffectiveGrowthMultiple float64     `json:"effective_growth_multiple"`
	Milestones              []Milestone `json:"milestones"`
	Scenarios               []Scenario  `json:"scenarios"`
	InflationAdjustedFinal  *float64    `json:"inflation_adjusted_final,omitempty"`
}

// PeriodsPerYear maps a compounding frequency to its period count.
func PeriodsPerYear(f Frequency) (int, error) {
	switch f {
	case Daily:
		return 365, nil
	case Monthly:
		return 12, nil
	case Quarterly:
		return 4, nil
	case Annually:
		return 1, nil
	default:
		return 0, ErrInvalidFrequency
	}
}

// Compute runs the projection plus milestones and the fixed-rate scenarios.
func Compute(in Inputs) (*Result, error) {
	yearly, err := projectYears(in)
	if err != nil {
		return nil, err
	}

	res := &Result{
		YearlyData:       yearly,
		TotalContributed: in.InitialInvestment,
		FinalBalance:     in.InitialInvestment,
		Milestones:       findMilestones(yearly),
	}

	if len(yearly) > 0 {
		last := yearly[len(yearly)-1]
		res.TotalContributed = last.TotalContributions
		res.FinalBalance = last.Balance
		if in.InflationEnabled {
			res.InflationAdjustedFinal = last.InflationAdjustedBalance
		}
	}
	res.TotalEarnings = res.FinalBalance - res.TotalContributed
	if res.TotalContributed > 0 {
		res.EffectiveGrowthMultiple = res.FinalBalance / res.TotalContributed
	}

	res.Scenarios, err = buildScenarios(in)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func projectYears(in Inputs) ([]YearEntry, error) {
	periods, err := PeriodsPerYear(in.CompoundFrequency)
	if err != nil {
		return nil, err
	}

	ratePerPeriod := in.AnnualReturnRate / 100 / float64(periods)
	taxRate := 0.0
	if in.TaxDragEnabled {
		taxRate = in.CapitalGainsRate / 100
	}

	balance := in.InitialInvestment
	taxDragBalance := in.InitialInvestment
	totalContributions := in.InitialInvestment
	monthlyContrib := in.MonthlyContribution

	var data []YearEntry
	for year := 1; year <= in.TimeHorizonYears; year++ {
		yearStart := balance

		// Escalation kicks in from year 2; year 1 uses the base contribution.
		if year > 1 && in.ContributionIncreaseRate > 0 {
			monthlyContrib *= 1 + in.ContributionIncreaseRate/100
		}
		yearContributions := monthlyContrib * 12
		perPeriod := yearContributions / float64(periods)

		for period := 0; period < periods; period++ {
			// Policy: deposit first, then grow (contributionsBeforeGrowth).
			balance += perPeriod
			taxDragBalance += perPeriod

			balance += balance * ratePerPeriod

			// Tax drag only hits growth, never contributions.
			taxDragBalance += taxDragBalance * ratePerPeriod * (1 - taxRate)
		}

		totalContributions += yearContributions

		entry := YearEntry{
			Year:               year,
			Contributions:      yearContributions,
			TotalContributions: totalContributions,
			Earnings:           balance - yearStart - yearContributions,
			TotalEarnings:      balance - totalContributions,
			Balance:            balance,
		}
		if in.InflationEnabled {
			adjusted := balance / math.Pow(1+in.InflationRate/100, float64(year))
			entry.InflationAdjustedBalance = &adjusted
		}
		if in.TaxDragEnabled {
			td := taxDragBalance
			entry.TaxDragBalance = &td
		}

		data = append(data, entry)
	}

	return data, nil
}

// findMilestones reports, per fixed target, the first year the nominal
// balance meets it.
func findMilestones(data []YearEntry) []Milestone {
	milestones := make([]Milestone, 0, len(milestoneTargets))
	for _, target := range milestoneTargets {
		m := Milestone{Amount: target.Amount, Label: target.Label}
		for _, e := range data {
			if e.Balance >= target.Amount {
				y := e.Year
				m.Year = &y
				break
			}
		}
		milestones = append(milestones, m)
	}
	return milestones
}

func buildScenarios(in Inputs) ([]Scenario, error) {
	scenarios := make([]Scenario, 0, len(scenarioRates))
	for _, sc := range scenarioRates {
		modified := in
		modified.AnnualReturnRate = sc.Rate
		modified.InflationEnabled = false
		modified.TaxDragEnabled = false

		data, err := projectYears(modified)
		if err != nil {
			return nil, err
		}

		s := Scenario{
			Label:              sc.Label,
			ReturnRate:         sc.Rate,
			FinalBalance:       in.InitialInvestment,
			TotalContributions: in.InitialInvestment,
		}
		if len(data) > 0 {
			last := data[len(data)-1]
			s.FinalBalance = last.Balance
			s.TotalContributions = last.TotalContributions
			s.TotalEarnings = last.Balance - last.TotalContributions
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// DefaultInputs returns the reference projection settings.
func DefaultInputs() Inputs {
	return Inputs{
		InitialInvestment:        10000,
		MonthlyContribution:      500,
		AnnualReturnRate:         8,
		TimeHorizonYears:         30,
		ContributionIncreaseRate: 2,
		CompoundFrequency:        Monthly,
		TaxDragEnabled:           false,
		CapitalGainsRate:         15,
		InflationEnabled:         false,
		InflationRate:            3,
	}
}
