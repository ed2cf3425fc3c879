// Package model defines the persisted calculation record shared across the
// service layers. Headline money figures in summaries use shopspring/decimal
// so stored and broadcast values are exact to the cent.
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which calculator produced a record.
type Kind string

const (
	KindMortgage   Kind = "mortgage"
	KindCompound   Kind = "compound"
	KindDebts      Kind = "debts"
	KindFire       Kind = "fire"
	KindMonteCarlo Kind = "montecarlo"
	KindOptions    Kind = "options"
	KindRentBuy    Kind = "rentbuy"
)

// Valid reports whether k names a known calculator.
func (k Kind) Valid() bool {
	switch k {
	case KindMortgage, KindCompound, KindDebts, KindFire, KindMonteCarlo, KindOptions, KindRentBuy:
		return true
	}
	return false
}

// Summary holds a calculation's headline figures keyed by name, rounded at
// the persistence boundary.
type Summary map[string]decimal.Decimal

// Calculation is one stored calculator run. Inputs are kept verbatim so a
// run can be shared and replayed; the summary carries only the headline
// numbers for listings and broadcasts.
type Calculation struct {
	ID        string          `json:"id" db:"id"`
	Kind      Kind            `json:"kind" db:"kind"`
	Inputs    json.RawMessage `json:"inputs" db:"inputs"`
	Summary   Summary         `json:"summary" db:"summary"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
