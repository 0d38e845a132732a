package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mizanhq/mizan/internal/domain/calculation"
)

const (
	createCalculationSQL = `INSERT INTO calculations (id, user_id, tool, input, result)
		VALUES ($1, $2, $3, $4, $5)`

	listCalculationsSQL = `SELECT id, user_id, tool, input, result, created_at
		FROM calculations WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	deleteCalculationSQL = `DELETE FROM calculations WHERE id = $1 AND user_id = $2`

	countCalculationsSQL = `SELECT count(*) FROM calculations`
)

var _ calculation.Repository = (*CalculationRepository)(nil)

// CalculationRepository implements calculation.Repository backed by PostgreSQL.
type CalculationRepository struct {
	pool *pgxpool.Pool
}

// NewCalculationRepository returns a CalculationRepository that uses the given pool.
func NewCalculationRepository(pool *pgxpool.Pool) *CalculationRepository {
	return &CalculationRepository{pool: pool}
}

// Create persists a calculator run. Input and result are stored in JSONB
// columns verbatim.
func (r *CalculationRepository) Create(ctx context.Context, c *calculation.Calculation) error {
	_, err := r.pool.Exec(ctx, createCalculationSQL,
		c.ID, c.UserID, string(c.Tool), []byte(c.Input), []byte(c.Result),
	)
	if err != nil {
		return fmt.Errorf("creating calculation %q: %w", c.ID, err)
	}
	return nil
}

// ListByUser returns the user's saved calculations, newest first.
func (r *CalculationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]calculation.Calculation, error) {
	rows, err := r.pool.Query(ctx, listCalculationsSQL, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing calculations: %w", err)
	}
	return pgx.CollectRows(rows, scanCalculation)
}

// Delete removes one of the user's calculations. Rows owned by someone
// else look exactly like missing rows.
func (r *CalculationRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, deleteCalculationSQL, id, userID)
	if err != nil {
		return fmt.Errorf("deleting calculation %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return calculation.ErrNotFound
	}
	return nil
}

// Count returns the total number of saved calculations across all users.
func (r *CalculationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countCalculationsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting calculations: %w", err)
	}
	return n, nil
}

func scanCalculation(row pgx.CollectableRow) (calculation.Calculation, error) {
	var (
		c    calculation.Calculation
		tool string
	)
	err := row.Scan(&c.ID, &c.UserID, &tool, &c.Input, &c.Result, &c.CreatedAt)
	c.Tool = calculation.Tool(tool)
	return c, err
}
