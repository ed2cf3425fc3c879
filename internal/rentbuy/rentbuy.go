// Package rentbuy compares buying a home against renting and investing the
// difference. Two net-worth tracks are simulated month by month over the
// time horizon: the owner builds equity in an appreciating home while paying
// carrying costs, the renter invests the down payment, closing costs, and
// any monthly cash saved relative to owning.
package rentbuy

import (
	"errors"
	"math"
)

// Advantage labels which track is ahead.
type Advantage string

const (
	AdvantageBuy   Advantage = "buy"
	AdvantageRent  Advantage = "rent"
	AdvantageEqual Advantage = "equal"
)

var ErrInvalidInputs = errors.New("rentbuy: home price, loan term, and time horizon must be positive and down payment within home price")

// Inputs are the purchase, rental, and macro assumptions. Rates are annual
// percentages.
type Inputs struct {
	HomePrice              float64 `json:"home_price"`
	DownPayment            float64 `json:"down_payment"`
	MortgageRate           float64 `json:"mortgage_rate"`
	LoanTermYears          int     `json:"loan_term_years"`
	MonthlyRent            float64 `json:"monthly_rent"`
	TimeHorizonYears       int     `json:"time_horizon_years"`
	HomeAppreciation       float64 `json:"home_appreciation"`
	RentIncreaseRate       float64 `json:"rent_increase_rate"`
	InvestmentReturnRate   float64 `json:"investment_return_rate"`
	PropertyTaxRate        float64 `json:"property_tax_rate"`
	MaintenanceRate        float64 `json:"maintenance_rate"`
	BuyingClosingCostRate  float64 `json:"buying_closing_cost_rate"`
	SellingClosingCostRate float64 `json:"selling_closing_cost_rate"`
	MarginalTaxRate        float64 `json:"marginal_tax_rate"`
	AnnualInsurance        float64 `json:"annual_insurance"`
}

// YearEntry is the end-of-year state of both tracks.
type YearEntry struct {
	Year                int       `json:"year"`
	HomeValue           float64   `json:"home_value"`
	MortgageBalance     float64   `json:"mortgage_balance"`
	Equity              float64   `json:"equity"`
	BuyNetWorth         float64   `json:"buy_net_worth"`
	CumulativeBuyCosts  float64   `json:"cumulative_buy_costs"`
	MonthlyRent         float64   `json:"monthly_rent"`
	InvestmentPortfolio float64   `json:"investment_portfolio"`
	RentNetWorth        float64   `json:"rent_net_worth"`
	CumulativeRentCosts float64   `json:"cumulative_rent_costs"`
	Advantage           Advantage `json:"advantage"`
	AdvantageAmount     float64   `json:"advantage_amount"`
}

// Result is the comparison outcome. BreakEvenYear is nil when the leading
// track never changes within the horizon.
type Result struct {
	YearlyData             []YearEntry `json:"yearly_data"`
	BreakEvenYear          *int        `json:"break_even_year"`
	FinalBuyNetWorth       float64     `json:"final_buy_net_worth"`
	FinalRentNetWorth      float64     `json:"final_rent_net_worth"`
	Winner                 Advantage   `json:"winner"`
	WinnerAdvantage        float64     `json:"winner_advantage"`
	MonthlyMortgagePayment float64     `json:"monthly_mortgage_payment"`
	InitialMonthlyCostDiff float64     `json:"initial_monthly_cost_diff"`
}

// Compute runs the month-stepped comparison over the full horizon.
func Compute(in Inputs) (*Result, error) {
	if in.HomePrice <= 0 || in.LoanTermYears <= 0 || in.TimeHorizonYears <= 0 ||
		in.DownPayment < 0 || in.DownPayment > in.HomePrice {
		return nil, ErrInvalidInputs
	}

	loanAmount := in.HomePrice - in.DownPayment
	monthlyRate := in.MortgageRate / 100 / 12
	termMonths := float64(in.LoanTermYears * 12)

	var mortgagePayment float64
	if monthlyRate > 0 {
		growth := math.Pow(1+monthlyRate, termMonths)
		mortgagePayment = loanAmount * monthlyRate * growth / (growth - 1)
	} else {
		mortgagePayment = loanAmount / termMonths
	}

	buyingClosingCosts := in.HomePrice * in.BuyingClosingCostRate / 100

	monthlyInvestRate := in.InvestmentReturnRate / 100 / 12
	monthlyAppreciation := in.HomeAppreciation / 100 / 12
	monthlyRentIncrease := in.RentIncreaseRate / 100 / 12
	monthlyMaintRate := in.MaintenanceRate / 100 / 12
	monthlyTaxRate := in.PropertyTaxRate / 100 / 12
	monthlyInsurance := in.AnnualInsurance / 12

	// The renter's portfolio starts with the cash a buyer would have sunk
	// into the purchase.
	portfolio := in.DownPayment + buyingClosingCosts
	rent := in.MonthlyRent

	mortgageBalance := loanAmount
	homeValue := in.HomePrice
	cumulativeBuyCosts := in.DownPayment + buyingClosingCosts
	cumulativeRentCosts := 0.0

	res := &Result{MonthlyMortgagePayment: mortgagePayment}
	var prevBuyAhead bool

	for year := 1; year <= in.TimeHorizonYears; year++ {
		for month := 0; month < 12; month++ {
			homeValue *= 1 + monthlyAppreciation

			interest := mortgageBalance * monthlyRate
			if mortgageBalance > 0 {
				principal := mortgagePayment - interest
				if principal > mortgageBalance {
					principal = mortgageBalance
				}
				mortgageBalance -= principal
				if mortgageBalance < 0.01 {
					mortgageBalance = 0
				}
			}

			deduction := interest * in.MarginalTaxRate / 100
			propertyTax := homeValue * monthlyTaxRate
			maintenance := homeValue * monthlyMaintRate

			// Cash out of pocket for the owner; principal builds equity
			// and the interest deduction offsets the rest.
			buyCost := propertyTax + maintenance + monthlyInsurance - deduction
			if mortgageBalance > 0 {
				buyCost += mortgagePayment
			}
			cumulativeBuyCosts += buyCost
			cumulativeRentCosts += rent

			// Transfer the monthly differential into the renter's
			// portfolio; withdrawals are floored at an empty portfolio.
			portfolio += buyCost - rent
			if portfolio < 0 {
				portfolio = 0
			}
			portfolio *= 1 + monthlyInvestRate

			rent *= 1 + monthlyRentIncrease
		}

		sellingCosts := homeValue * in.SellingClosingCostRate / 100
		equity := homeValue - mortgageBalance
		buyNetWorth := equity - sellingCosts
		rentNetWorth := portfolio

		advantage := AdvantageEqual
		switch {
		case buyNetWorth > rentNetWorth:
			advantage = AdvantageBuy
		case buyNetWorth < rentNetWorth:
			advantage = AdvantageRent
		}

		buyAhead := buyNetWorth > rentNetWorth
		if year > 1 && buyAhead != prevBuyAhead && res.BreakEvenYear == nil {
			y := year
			res.BreakEvenYear = &y
		}
		prevBuyAhead = buyAhead

		res.YearlyData = append(res.YearlyData, YearEntry{
			Year:                year,
			HomeValue:           homeValue,
			MortgageBalance:     mortgageBalance,
			Equity:              equity,
			BuyNetWorth:         buyNetWorth,
			CumulativeBuyCosts:  cumulativeBuyCosts,
			MonthlyRent:         rent,
			InvestmentPortfolio: portfolio,
			RentNetWorth:        rentNetWorth,
			CumulativeRentCosts: cumulativeRentCosts,
			Advantage:           advantage,
			AdvantageAmount:     math.Abs(buyNetWorth - rentNetWorth),
		})
	}

	last := res.YearlyData[len(res.YearlyData)-1]
	res.FinalBuyNetWorth = last.BuyNetWorth
	res.FinalRentNetWorth = last.RentNetWorth
	res.Winner = last.Advantage
	res.WinnerAdvantage = last.AdvantageAmount
	res.InitialMonthlyCostDiff = initialCostDiff(in, loanAmount, mortgagePayment, monthlyInsurance)

	return res, nil
}

// initialCostDiff is the first-month cash gap between owning and renting,
// positive when owning costs more.
func initialCostDiff(in Inputs, loanAmount, mortgagePayment, monthlyInsurance float64) float64 {
	propertyTax := in.HomePrice * in.PropertyTaxRate / 100 / 12
	maintenance := in.HomePrice * in.MaintenanceRate / 100 / 12
	deduction := loanAmount * in.MortgageRate / 100 / 12 * in.MarginalTaxRate / 100
	buyCost := mortgagePayment + propertyTax + maintenance + monthlyInsurance - deduction
	return buyCost - in.MonthlyRent
}

// DefaultInputs returns a representative starting scenario.
func DefaultInputs() Inputs {
	return Inputs{
		HomePrice:              500000,
		DownPayment:            100000,
		MortgageRate:           6.5,
		LoanTermYears:          30,
		MonthlyRent:            2500,
		TimeHorizonYears:       10,
		HomeAppreciation:       3.0,
		RentIncreaseRate:       3.0,
		InvestmentReturnRate:   7.0,
		PropertyTaxRate:        1.2,
		MaintenanceRate:        1.0,
		BuyingClosingCostRate:  3.0,
		SellingClosingCostRate: 6.0,
		MarginalTaxRate:        24,
		AnnualInsurance:        1500,
	}
}
