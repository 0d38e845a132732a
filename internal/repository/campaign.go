package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mizanhq/mizan/internal/domain/ad"
)

const (
	campaignColumns = `id, code, name, text_en, text_ar, target_url, placement,
		starts_at, ends_at, total_budget, cost_per_impression, cost_per_click,
		spend, impressions, clicks, status, created_at, updated_at`

	createCampaignSQL = `INSERT INTO campaigns (id, code, name, text_en, text_ar, target_url,
		placement, starts_at, ends_at, total_budget, cost_per_impression, cost_per_click, spend, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	updateCampaignSQL = `UPDATE campaigns SET name = $2, text_en = $3, text_ar = $4,
		target_url = $5, placement = $6, starts_at = $7, ends_at = $8, total_budget = $9,
		cost_per_impression = $10, cost_per_click = $11, status = $12, updated_at = now()
		WHERE id = $1`

	getCampaignByIDSQL = `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	getCampaignByCodeSQL = `SELECT ` + campaignColumns + ` FROM campaigns WHERE code = $1`

	listActiveCampaignsSQL = `SELECT ` + campaignColumns + ` FROM campaigns
		WHERE placement = $1 AND status = 'active' AND starts_at <= $2 AND ends_at >= $2`

	listCampaignsSQL = `SELECT ` + campaignColumns + ` FROM campaigns
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	countCampaignsSQL = `SELECT count(*) FROM campaigns`

	recordEventSQL = `UPDATE campaigns SET spend = spend + $2,
		impressions = impressions + $3, clicks = clicks + $4, updated_at = now()
		WHERE id = $1`

	totalSpendSQL = `SELECT COALESCE(sum(spend), 0) FROM campaigns`
)

var _ ad.Repository = (*CampaignRepository)(nil)

// CampaignRepository implements ad.Repository backed by PostgreSQL.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository returns a CampaignRepository that uses the given pool.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// Create inserts a new campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *ad.Campaign) error {
	_, err := r.pool.Exec(ctx, createCampaignSQL,
		c.ID, c.Code, c.Name, c.TextEN, c.TextAR, c.TargetURL,
		c.Placement, c.StartsAt, c.EndsAt, c.TotalBudget,
		c.CostPerImpression, c.CostPerClick, c.Spend, string(c.Status),
	)
	if err != nil {
		return fmt.Errorf("creating campaign %q: %w", c.Code, err)
	}
	return nil
}

// Update persists the editable campaign fields. Spend and the counters are
// only written through RecordEvent.
func (r *CampaignRepository) Update(ctx context.Context, c *ad.Campaign) error {
	tag, err := r.pool.Exec(ctx, updateCampaignSQL,
		c.ID, c.Name, c.TextEN, c.TextAR, c.TargetURL, c.Placement,
		c.StartsAt, c.EndsAt, c.TotalBudget, c.CostPerImpression,
		c.CostPerClick, string(c.Status),
	)
	if err != nil {
		return fmt.Errorf("updating campaign %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ad.ErrNotFound
	}
	return nil
}

// GetByID returns the campaign with the given id, or ad.ErrNotFound.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*ad.Campaign, error) {
	return r.getOne(ctx, getCampaignByIDSQL, id)
}

// GetByCode returns the campaign with the given public code, or ad.ErrNotFound.
func (r *CampaignRepository) GetByCode(ctx context.Context, code string) (*ad.Campaign, error) {
	return r.getOne(ctx, getCampaignByCodeSQL, code)
}

func (r *CampaignRepository) getOne(ctx context.Context, sql, arg string) (*ad.Campaign, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting campaign: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCampaign)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ad.ErrNotFound
		}
		return nil, fmt.Errorf("getting campaign: %w", err)
	}
	return &c, nil
}

// ListActive returns active campaigns for a placement whose window
// contains now.
func (r *CampaignRepository) ListActive(ctx context.Context, placement string, now time.Time) ([]ad.Campaign, error) {
	rows, err := r.pool.Query(ctx, listActiveCampaignsSQL, placement, now)
	if err != nil {
		return nil, fmt.Errorf("listing active campaigns: %w", err)
	}
	return pgx.CollectRows(rows, scanCampaign)
}

// List returns campaigns newest first.
func (r *CampaignRepository) List(ctx context.Context, limit, offset int) ([]ad.Campaign, error) {
	rows, err := r.pool.Query(ctx, listCampaignsSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	return pgx.CollectRows(rows, scanCampaign)
}

// Count returns the total number of campaigns.
func (r *CampaignRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countCampaignsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting campaigns: %w", err)
	}
	return n, nil
}

// RecordEvent applies a spend delta and counter increments in one UPDATE.
func (r *CampaignRepository) RecordEvent(ctx context.Context, id string, spendDelta decimal.Decimal, impressions, clicks int64) error {
	tag, err := r.pool.Exec(ctx, recordEventSQL, id, spendDelta, impressions, clicks)
	if err != nil {
		return fmt.Errorf("recording event for campaign %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ad.ErrNotFound
	}
	return nil
}

// TotalSpend returns the sum of spend across all campaigns.
func (r *CampaignRepository) TotalSpend(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, totalSpendSQL).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing campaign spend: %w", err)
	}
	return total, nil
}

func scanCampaign(row pgx.CollectableRow) (ad.Campaign, error) {
	var (
		c      ad.Campaign
		status string
	)
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.TextEN, &c.TextAR, &c.TargetURL, &c.Placement,
		&c.StartsAt, &c.EndsAt, &c.TotalBudget, &c.CostPerImpression, &c.CostPerClick,
		&c.Spend, &c.Impressions, &c.Clicks, &status, &c.CreatedAt, &c.UpdatedAt,
	)
	c.Status = ad.Status(status)
	return c, err
}
