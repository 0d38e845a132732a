package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mizanhq/mizan/internal/domain/ad"
)

const (
	blocklistContainsSQL = `SELECT EXISTS (SELECT 1 FROM blocklist WHERE source = $1)`

	blocklistUpsertSQL = `INSERT INTO blocklist (source, reason)
		VALUES ($1, $2)
		ON CONFLICT (source) DO UPDATE SET reason = $2`

	blocklistCountSQL = `SELECT count(*) FROM blocklist`
)

var _ ad.Blocklist = (*BlocklistRepository)(nil)

// BlocklistRepository stores known fraudulent traffic sources.
type BlocklistRepository struct {
	pool *pgxpool.Pool
}

// NewBlocklistRepository returns a BlocklistRepository that uses the given pool.
func NewBlocklistRepository(pool *pgxpool.Pool) *BlocklistRepository {
	return &BlocklistRepository{pool: pool}
}

// Contains reports whether the source is blocklisted.
func (r *BlocklistRepository) Contains(ctx context.Context, source string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, blocklistContainsSQL, source).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "check blocklist for %q", source)
	}
	return exists, nil
}

// Upsert adds or refreshes a blocklist entry.
func (r *BlocklistRepository) Upsert(ctx context.Context, source, reason string) error {
	if _, err := r.pool.Exec(ctx, blocklistUpsertSQL, source, reason); err != nil {
		return errors.Wrapf(err, "upsert blocklist entry %q", source)
	}
	return nil
}

// Count returns the number of blocklisted sources.
func (r *BlocklistRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, blocklistCountSQL).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count blocklist")
	}
	return n, nil
}
