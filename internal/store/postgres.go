package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finwheel/calc-engine/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Inputs and summaries are stored as JSONB; summary money values travel as
// decimal strings inside the JSON so no float rounding occurs in transit.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) SaveCalculation(ctx context.Context, c *model.Calculation) error {
	summaryJSON, err := json.Marshal(c.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO calculations (id, kind, inputs, summary, created_at)
		 VALUES ($1, $2, $3::JSONB, $4::JSONB, $5)`,
		c.ID, string(c.Kind), string(c.Inputs), string(summaryJSON), c.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetCalculation(ctx context.Context, id string) (*model.Calculation, error) {
	var c model.Calculation
	var kind string
	var inputs, summary []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, kind, inputs, summary, created_at
		 FROM calculations WHERE id = $1`, id).
		Scan(&c.ID, &kind, &inputs, &summary, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get calculation %s: %w", id, err)
	}

	c.Kind = model.Kind(kind)
	c.Inputs = inputs
	if err := json.Unmarshal(summary, &c.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary for %s: %w", id, err)
	}
	return &c, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]model.Calculation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, inputs, summary, created_at
		 FROM calculations ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Calculation
	for rows.Next() {
		var c model.Calculation
		var kind string
		var inputs, summary []byte
		if err := rows.Scan(&c.ID, &kind, &inputs, &summary, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Kind = model.Kind(kind)
		c.Inputs = inputs
		if err := json.Unmarshal(summary, &c.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary for %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByKind(ctx context.Context) (map[model.Kind]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT kind, COUNT(*) FROM calculations GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[model.Kind(kind)] = n
	}
	return counts, rows.Err()
}
