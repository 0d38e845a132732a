// Package ad implements ad campaign management and serving: eligibility,
// budget-weighted selection, and impression/click accounting.
package ad

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for campaign operations.
var (
	// ErrNotFound is returned when no campaign matches the lookup.
	ErrNotFound = errors.New("campaign not found")
	// ErrNoEligibleCampaign is returned by Serve when nothing can be shown.
	ErrNoEligibleCampaign = errors.New("no eligible campaign")
	// ErrBudgetExhausted is returned when activating a campaign whose
	// budget is already spent.
	ErrBudgetExhausted = errors.New("campaign budget exhausted")
)

// Status is the lifecycle state of a campaign.
type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusEnded  Status = "ended"
)

// Campaign is an ad campaign with bilingual creative text and a spend
// budget. Monetary fields use decimal; counters are plain integers.
type Campaign struct {
	ID                string
	Code              string // public nanoid used in serve/click URLs
	Name              string
	TextEN            string
	TextAR            string
	TargetURL         string
	Placement         string
	StartsAt          time.Time
	EndsAt            time.Time
	TotalBudget       decimal.Decimal
	CostPerImpression decimal.Decimal
	CostPerClick      decimal.Decimal
	Spend             decimal.Decimal
	Impressions       int64
	Clicks            int64
	Status            Status
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RemainingBudget returns the unspent budget, floored at zero.
func (c *Campaign) RemainingBudget() decimal.Decimal {
	rem := c.TotalBudget.Sub(c.Spend)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// Eligible reports whether the campaign can be served at the given time:
// active, inside its window, and with budget left for one impression.
func (c *Campaign) Eligible(now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if now.Before(c.StartsAt) || now.After(c.EndsAt) {
		return false
	}
	return c.RemainingBudget().GreaterThanOrEqual(c.CostPerImpression)
}

// Repository defines persistence operations for campaigns.
type Repository interface {
	Create(ctx context.Context, c *Campaign) error
	Update(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id string) (*Campaign, error)
	GetByCode(ctx context.Context, code string) (*Campaign, error)
	// ListActive returns campaigns in StatusActive for a placement whose
	// window contains now. Budget filtering happens in the service.
	ListActive(ctx context.Context, placement string, now time.Time) ([]Campaign, error)
	List(ctx context.Context, limit, offset int) ([]Campaign, error)
	Count(ctx context.Context) (int64, error)
	// RecordEvent applies a spend delta and counter increments atomically.
	RecordEvent(ctx context.Context, id string, spendDelta decimal.Decimal, impressions, clicks int64) error
	// TotalSpend returns the sum of spend across all campaigns.
	TotalSpend(ctx context.Context) (decimal.Decimal, error)
}

// Blocklist answers whether a traffic source (IP or domain) is known to
// be fraudulent. Blocked sources are never served ads.
type Blocklist interface {
	Contains(ctx context.Context, source string) (bool, error)
}
