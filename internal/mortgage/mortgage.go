// Package mortgage produces fixed-rate amortization schedules with recurring
// ownership costs (property tax, insurance, PMI, HOA) and equity milestones.
package mortgage

import (
	"errors"
	"math"
)

var (
	// ErrInvalidLoan is returned when the down payment exceeds the home
	// price or the price/term is non-positive.
	ErrInvalidLoan = errors.New("mortgage: down payment must not exceed home price and price/term must be positive")
)

// PMI applies while the loan-to-value ratio is strictly above this threshold.
const pmiLTVThreshold = 0.8

// Rates below this are treated as zero and amortized linearly to avoid a
// degenerate annuity denominator.
const nearZeroRate = 1e-12

// Inputs describe the loan and its recurring costs. Rates are annual
// percentages (6.5 = 6.5%).
type Inputs struct {
	HomePrice           float64 `json:"home_price"`
	DownPayment         float64 `json:"down_payment"`
	LoanTermYears       int     `json:"loan_term_years"`
	InterestRate        float64 `json:"interest_rate"`
	PropertyTaxRate     float64 `json:"property_tax_rate"`
	PMIRate             float64 `json:"pmi_rate"`
	HOAMonthly          float64 `json:"hoa_monthly"`
	HomeInsuranceAnnual float64 `json:"home_insurance_annual"`
	ExtraMonthlyPayment float64 `json:"extra_monthly_payment"`
}

// Entry is one month of an amortization schedule.
type Entry struct {
	Month          int     `json:"month"`
	Year           int     `json:"year"`
	Payment        float64 `json:"payment"`
	Principal      float64 `json:"principal"`
	Interest       float64 `json:"interest"`
	ExtraPayment   float64 `json:"extra_payment"`
	Balance        float64 `json:"balance"`
	TotalInterest  float64 `json:"total_interest"`
	TotalPrincipal float64 `json:"total_principal"`
	Equity         float64 `json:"equity"`
	EquityPercent  float64 `json:"equity_percent"`
}

// PaymentBreakdown splits the first month's total payment.
type PaymentBreakdown struct {
	Principal     float64 `json:"principal"`
	Interest      float64 `json:"interest"`
	PropertyTax   float64 `json:"property_tax"`
	HomeInsurance float64 `json:"home_insurance"`
	PMI           float64 `json:"pmi"`
	HOA           float64 `json:"hoa"`
	Total         float64 `json:"total"`
}

// Result is the complete amortization outcome. Extra-payment fields and
// milestone months are nil when not applicable.
type Result struct {
	LoanAmount             float64          `json:"loan_amount"`
	MonthlyPayment         PaymentBreakdown `json:"monthly_payment"`
	Schedule               []Entry          `json:"schedule"`
	TotalInterest          float64          `json:"total_interest"`
	TotalCost              float64          `json:"total_cost"`
	PayoffMonths           int              `json:"payoff_months"`
	ScheduleWithExtra      []Entry          `json:"schedule_with_extra,omitempty"`
	TotalInterestWithExtra *float64         `json:"total_interest_with_extra,omitempty"`
	InterestSaved          *float64         `json:"interest_saved,omitempty"`
	MonthsSaved            *int             `json:"months_saved,omitempty"`
	PMIRemovalMonth        *int             `json:"pmi_removal_month,omitempty"`
	HalfEquityMonth        *int             `json:"half_equity_month,omitempty"`
}

// Compute builds the baseline schedule and, when an extra monthly payment is
// configured, a second accelerated schedule alongside the savings it buys.
func Compute(in Inputs) (*Result, error) {
	if in.HomePrice <= 0 || in.LoanTermYears <= 0 || in.DownPayment > in.HomePrice || in.DownPayment < 0 {
		return nil, ErrInvalidLoan
	}

	loanAmount := in.HomePrice - in.DownPayment
	monthlyRate := in.InterestRate / 100 / 12
	totalMonths := in.LoanTermYears * 12

	monthlyPI := levelPayment(loanAmount, monthlyRate, totalMonths)

	monthlyPropertyTax := in.HomePrice * in.PropertyTaxRate / 100 / 12
	monthlyInsurance := in.HomeInsuranceAnnual / 12

	// PMI only while LTV is strictly above 80%; exactly 80% carries none.
	ltv := 0.0
	if in.HomePrice > 0 {
		ltv = loanAmount / in.HomePrice
	}
	monthlyPMI := 0.0
	if ltv > pmiLTVThreshold {
		monthlyPMI = loanAmount * in.PMIRate / 100 / 12
	}

	schedule := buildSchedule(loanAmount, monthlyRate, monthlyPI, totalMonths, 0, in.HomePrice)

	breakdown := PaymentBreakdown{
		PropertyTax:   monthlyPropertyTax,
		HomeInsurance: monthlyInsurance,
		PMI:           monthlyPMI,
		HOA:           in.HOAMonthly,
		Total:         monthlyPI + monthlyPropertyTax + monthlyInsurance + monthlyPMI + in.HOAMonthly,
	}
	if len(schedule) > 0 {
		breakdown.Principal = schedule[0].Principal
		breakdown.Interest = schedule[0].Interest
	}

	res := &Result{
		LoanAmount:     loanAmount,
		MonthlyPayment: breakdown,
		Schedule:       schedule,
		PayoffMonths:   len(schedule),
	}

	if len(schedule) > 0 {
		last := schedule[len(schedule)-1]
		res.TotalInterest = last.TotalInterest
		res.TotalCost = last.TotalInterest + loanAmount +
			(monthlyPropertyTax+monthlyInsurance+monthlyPMI+in.HOAMonthly)*float64(totalMonths)
	}

	if in.ExtraMonthlyPayment > 0 && len(schedule) > 0 {
		withExtra := buildSchedule(loanAmount, monthlyRate, monthlyPI, totalMonths, in.ExtraMonthlyPayment, in.HomePrice)
		res.ScheduleWithExtra = withExtra

		lastExtra := withExtra[len(withExtra)-1]
		totalWithExtra := lastExtra.TotalInterest
		saved := res.TotalInterest - totalWithExtra
		monthsSaved := len(schedule) - len(withExtra)

		res.TotalInterestWithExtra = &totalWithExtra
		res.InterestSaved = &saved
		res.MonthsSaved = &monthsSaved
	}

	res.PMIRemovalMonth = firstMonthAtEquity(schedule, 20)
	res.HalfEquityMonth = firstMonthAtEquity(schedule, 50)

	return res, nil
}

// levelPayment is the closed-form annuity payment, falling back to straight
// amortization when the rate is (near) zero.
func levelPayment(principal, monthlyRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	if monthlyRate < nearZeroRate {
		return principal / float64(months)
	}
	pow := math.Pow(1+monthlyRate, float64(months))
	return principal * monthlyRate * pow / (pow - 1)
}

func buildSchedule(loanAmount, monthlyRate, monthlyPayment float64, maxMonths int, extraPayment, homePrice float64) []Entry {
	var schedule []Entry
	balance := loanAmount
	totalInterest := 0.0
	totalPrincipal := 0.0

	for month := 1; month <= maxMonths && balance > 0.01; month++ {
		interest := balance * monthlyRate
		principal := monthlyPayment - interest

		extra := math.Min(extraPayment, balance-principal)
		if extra < 0 {
			extra = 0
		}

		// Final payment: never take the balance negative.
		if principal+extra > balance {
			principal = balance
			extra = 0
		}

		balance -= principal + extra
		if balance < 0.01 {
			balance = 0
		}

		totalInterest += interest
		totalPrincipal += principal + extra

		equity := homePrice - balance
		equityPercent := 0.0
		if homePrice > 0 {
			equityPercent = equity / homePrice * 100
		}

		schedule = append(schedule, Entry{
			Month:          month,
			Year:           (month + 11) / 12,
			Payment:        monthlyPayment + extra,
			Principal:      principal,
			Interest:       interest,
			ExtraPayment:   extra,
			Balance:        balance,
			TotalInterest:  totalInterest,
			TotalPrincipal: totalPrincipal,
			Equity:         equity,
			EquityPercent:  equityPercent,
		})
	}

	return schedule
}

// firstMonthAtEquity scans for the first month whose equity percentage meets
// the threshold. Returns nil when the schedule never reaches it.
func firstMonthAtEquity(schedule []Entry, pct float64) *int {
	for _, e := range schedule {
		if e.EquityPercent >= pct {
			m := e.Month
			return &m
		}
	}
	return nil
}

// DefaultInputs returns the reference loan used by clients as a starting
// point.
func DefaultInputs() Inputs {
	return Inputs{
		HomePrice:           400000,
		DownPayment:         80000,
		LoanTermYears:       30,
		InterestRate:        6.5,
		PropertyTaxRate:     1.2,
		PMIRate:             0.5,
		HOAMonthly:          0,
		HomeInsuranceAnnual: 1500,
		ExtraMonthlyPayment: 0,
	}
}
