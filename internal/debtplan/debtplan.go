// Package debtplan simulates multi-debt payoff month by month under a
// prioritization strategy (avalanche, snowball, or the caller's own order).
//
// Interest accrues onto each unpaid balance at the start of the month, every
// unpaid debt then receives at least its minimum payment, and exactly one
// priority debt receives the whole extra budget. A debt whose balance falls
// to the payoff tolerance is retired permanently and its freed minimum joins
// the extra pool within the same month.
package debtplan

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Strategy selects which unpaid debt receives the extra budget each month.
type Strategy string

const (
	// Avalanche targets the highest interest rate first.
	Avalanche Strategy = "avalanche"
	// Snowball targets the lowest balance first.
	Snowball Strategy = "snowball"
	// Custom targets debts in the caller's input order.
	Custom Strategy = "custom"
)

const (
	// maxMonths caps the simulation so pathological inputs terminate.
	maxMonths = 600

	// payoffTolerance is the balance at or below which a debt counts as paid.
	payoffTolerance = 0.01
)

var (
	// ErrInvalidStrategy is returned for an unknown strategy.
	ErrInvalidStrategy = errors.New("debtplan: invalid strategy")

	// ErrInvalidDebt is returned for a debt with non-positive balance or
	// negative rate/minimum.
	ErrInvalidDebt = errors.New("debtplan: debt balance must be positive and rate/minimum non-negative")

	// ErrMinimumBelowInterest is returned when a debt's minimum payment does
	// not cover its first month's interest accrual: the balance would never
	// shrink and the simulation would only stop at the safety cap, reporting
	// a misleading payoff month.
	ErrMinimumBelowInterest = errors.New("debtplan: minimum payment below monthly interest accrual")

	// ErrPayoffCapExceeded is returned when the simulation hits the month
	// cap without retiring every debt.
	ErrPayoffCapExceeded = errors.New("debtplan: payoff exceeds 600-month simulation cap")
)

// Debt is one liability. ID may be left empty; NewDebt assigns one.
type Debt struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Balance        float64 `json:"balance"`
	InterestRate   float64 `json:"interest_rate"` // annual percent
	MinimumPayment float64 `json:"minimum_payment"`
}

// NewDebt constructs a debt with a collision-resistant ID. IDs are random so
// independently constructed debt sets never collide.
func NewDebt(name string, balance, rate, minimum float64) Debt {
	return Debt{
		ID:             uuid.NewString(),
		Name:           name,
		Balance:        balance,
		InterestRate:   rate,
		MinimumPayment: minimum,
	}
}

// Inputs configure a payoff simulation.
type Inputs struct {
	Debts               []Debt   `json:"debts"`
	ExtraMonthlyPayment float64  `json:"extra_monthly_payment"`
	Strategy            Strategy `json:"strategy"`
}

// MonthSnapshot aggregates all debts at the end of one simulated month.
type MonthSnapshot struct {
	Month          int     `json:"month"`
	TotalBalance   float64 `json:"total_balance"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
	TotalPrincipal float64 `json:"total_principal"`
	DebtsRemaining int     `json:"debts_remaining"`
}

// DebtSummary is the per-debt outcome.
type DebtSummary struct {
	DebtID            string  `json:"debt_id"`
	Name              string  `json:"name"`
	OriginalBalance   float64 `json:"original_balance"`
	TotalInterestPaid float64 `json:"total_interest_paid"`
	PayoffMonth       int     `json:"payoff_month"`
}

// Result is the full simulation outcome, including the zero-extra baseline
// comparison.
type Result struct {
	Strategy            Strategy        `json:"strategy"`
	MonthlySnapshots    []MonthSnapshot `json:"monthly_snapshots"`
	DebtSummaries       []DebtSummary   `json:"debt_summaries"`
	TotalMonths         int             `json:"total_months"`
	TotalInterestPaid   float64         `json:"total_interest_paid"`
	TotalAmountPaid     float64         `json:"total_amount_paid"`
	MinimumOnlyMonths   int             `json:"minimum_only_months"`
	MinimumOnlyInterest float64         `json:"minimum_only_interest"`
	InterestSaved       float64         `json:"interest_saved"`
	MonthsSaved         int             `json:"months_saved"`
}

// Compute simulates the payoff plan and a minimum-only baseline.
// Zero debts yield a well-defined zeroed result.
func Compute(in Inputs) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	if len(in.Debts) == 0 {
		return &Result{Strategy: in.Strategy}, nil
	}

	run, err := simulate(in.Debts, in.ExtraMonthlyPayment, in.Strategy)
	if err != nil {
		return nil, err
	}
	baseline, err := simulate(in.Debts, 0, in.Strategy)
	if err != nil {
		return nil, err
	}

	originalTotal := 0.0
	for _, d := range in.Debts {
		originalTotal += d.Balance
	}

	return &Result{
		Strategy:            in.Strategy,
		MonthlySnapshots:    run.snapshots,
		DebtSummaries:       run.summaries,
		TotalMonths:         run.months,
		TotalInterestPaid:   run.totalInterest,
		TotalAmountPaid:     originalTotal + run.totalInterest,
		MinimumOnlyMonths:   baseline.months,
		MinimumOnlyInterest: baseline.totalInterest,
		InterestSaved:       baseline.totalInterest - run.totalInterest,
		MonthsSaved:         baseline.months - run.months,
	}, nil
}

func validate(in Inputs) error {
	switch in.Strategy {
	case Avalanche, Snowball, Custom:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, in.Strategy)
	}

	for _, d := range in.Debts {
		if d.Balance <= 0 || d.InterestRate < 0 || d.MinimumPayment < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidDebt, d.Name)
		}
		monthlyInterest := d.Balance * d.InterestRate / 100 / 12
		if d.MinimumPayment < monthlyInterest {
			return fmt.Errorf("%w: %s pays %.2f against %.2f interest",
				ErrMinimumBelowInterest, d.Name, d.MinimumPayment, monthlyInterest)
		}
	}
	return nil
}

// account is the mutable per-debt simulation state. Input debts are never
// touched.
type account struct {
	Debt
	remaining    float64
	interestPaid float64
	paidOff      bool
	payoffMonth  int
}

type runOutcome struct {
	snapshots     []MonthSnapshot
	summaries     []DebtSummary
	months        int
	totalInterest float64
}

func simulate(debts []Debt, extraPayment float64, strategy Strategy) (*runOutcome, error) {
	accounts := make([]*account, len(debts))
	for i, d := range debts {
		accounts[i] = &account{Debt: d, remaining: d.Balance}
	}

	var snapshots []MonthSnapshot
	month := 0

	for anyUnpaid(accounts) {
		if month >= maxMonths {
			return nil, ErrPayoffCapExceeded
		}
		month++

		// Accrue interest onto every unpaid balance.
		monthInterest := 0.0
		for _, a := range accounts {
			if a.paidOff {
				continue
			}
			interest := a.remaining * a.InterestRate / 100 / 12
			a.interestPaid += interest
			a.remaining += interest
			monthInterest += interest
		}

		priority := selectPriority(accounts, strategy)
		extraBudget := extraPayment

		totalPayment := 0.0
		for _, a := range accounts {
			if a.paidOff {
				continue
			}

			payment := math.Min(a.MinimumPayment, a.remaining)
			if a == priority && extraBudget > 0 {
				payment += extraBudget
				extraBudget = 0
			}
			payment = math.Min(payment, a.remaining)

			a.remaining -= payment
			totalPayment += payment

			if a.remaining <= payoffTolerance {
				a.remaining = 0
				a.paidOff = true
				a.payoffMonth = month
				// Freed minimum boosts the extra pool for the rest of
				// this month's allocation.
				extraBudget += a.MinimumPayment
			}
		}

		totalBalance := 0.0
		remaining := 0
		for _, a := range accounts {
			totalBalance += a.remaining
			if !a.paidOff {
				remaining++
			}
		}

		snapshots = append(snapshots, MonthSnapshot{
			Month:          month,
			TotalBalance:   totalBalance,
			TotalPayment:   totalPayment,
			TotalInterest:  monthInterest,
			TotalPrincipal: totalPayment - monthInterest,
			DebtsRemaining: remaining,
		})
	}

	out := &runOutcome{snapshots: snapshots, months: month}
	for _, a := range accounts {
		out.totalInterest += a.interestPaid
		out.summaries = append(out.summaries, DebtSummary{
			DebtID:            a.ID,
			Name:              a.Name,
			OriginalBalance:   a.Balance,
			TotalInterestPaid: a.interestPaid,
			PayoffMonth:       a.payoffMonth,
		})
	}
	return out, nil
}

func anyUnpaid(accounts []*account) bool {
	for _, a := range accounts {
		if !a.paidOff {
			return true
		}
	}
	return false
}

// selectPriority picks the debt receiving the extra budget this month.
// Re-evaluated fresh every month: the avalanche/snowball target shifts as
// debts retire. Custom keeps the caller's order.
func selectPriority(accounts []*account, strategy Strategy) *account {
	var best *account
	for _, a := range accounts {
		if a.paidOff {
			continue
		}
		if best == nil {
			best = a
			continue
		}
		switch strategy {
		case Avalanche:
			if a.InterestRate > best.InterestRate {
				best = a
			}
		case Snowball:
			if a.remaining < best.remaining {
				best = a
			}
		case Custom:
			// First unpaid in input order already held.
		}
	}
	return best
}

// DefaultInputs returns a representative three-debt household.
func DefaultInputs() Inputs {
	return Inputs{
		Debts: []Debt{
			NewDebt("Credit Card A", 5000, 22.99, 100),
			NewDebt("Car Loan", 12000, 6.5, 250),
			NewDebt("Student Loan", 20000, 4.5, 200),
		},
		ExtraMonthlyPayment: 200,
		Strategy:            Avalanche,
	}
}
