// Package store defines the persistence interface for calculation history.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"
	"errors"

	"github.com/finwheel/calc-engine/internal/model"
)

// ErrNotFound is returned when no calculation exists for the requested ID.
var ErrNotFound = errors.New("store: calculation not found")

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// SaveCalculation persists one calculator run.
	SaveCalculation(ctx context.Context, calc *model.Calculation) error

	// GetCalculation retrieves a stored run by its ID.
	GetCalculation(ctx context.Context, id string) (*model.Calculation, error)

	// ListRecent returns the most recent runs, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.Calculation, error)

	// CountByKind returns how many runs are stored per calculator.
	CountByKind(ctx context.Context) (map[model.Kind]int, error)
}
