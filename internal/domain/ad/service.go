package ad

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/shopspring/decimal"
)

// codeAlphabet excludes ambiguous characters so codes survive being read
// aloud or retyped from printed material.
const (
	codeAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"
	codeLength   = 10
)

// CreateCampaignRequest holds the input for creating a campaign.
type CreateCampaignRequest struct {
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
}

// Event is a single impression or click reported against a campaign.
type Event struct {
	Code        string
	Impressions int64
	Clicks      int64
}

// Service encapsulates campaign management and serving logic.
type Service struct {
	campaigns Repository
	blocklist Blocklist
	now       func() time.Time
	// pick chooses an index from the given weights; replaced in tests.
	pick func(weights []float64) int
}

// NewService creates an ad Service with the required dependencies.
func NewService(campaigns Repository, blocklist Blocklist) *Service {
	return &Service{
		campaigns: campaigns,
		blocklist: blocklist,
		now:       time.Now,
		pick:      weightedPick,
	}
}

// Create stores a new campaign in StatusActive with a fresh public code.
func (s *Service) Create(ctx context.Context, req CreateCampaignRequest) (*Campaign, error) {
	code, err := gonanoid.Generate(codeAlphabet, codeLength)
	if err != nil {
		return nil, errors.Wrap(err, "generate campaign code")
	}

	c := &Campaign{
		ID:                uuid.New().String(),
		Code:              code,
		Name:              req.Name,
		TextEN:            req.TextEN,
		TextAR:            req.TextAR,
		TargetURL:         req.TargetURL,
		Placement:         req.Placement,
		StartsAt:          req.StartsAt,
		EndsAt:            req.EndsAt,
		TotalBudget:       req.TotalBudget,
		CostPerImpression: req.CostPerImpression,
		CostPerClick:      req.CostPerClick,
		Spend:             decimal.Zero,
		Status:            StatusActive,
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create campaign")
	}
	return c, nil
}

// SetStatus pauses, resumes, or ends a campaign. A campaign whose budget
// is already spent cannot be set back to active.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == StatusActive && !c.Spend.LessThan(c.TotalBudget) {
		return nil, ErrBudgetExhausted
	}
	c.Status = status
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, errors.Wrap(err, "update campaign")
	}
	return c, nil
}

// Serve selects a campaign for the placement and records the impression.
// Selection is weighted by remaining budget so campaigns with more budget
// left surface more often. Blocklisted sources get nothing.
func (s *Service) Serve(ctx context.Context, placement, source string) (*Campaign, error) {
	if source != "" {
		blocked, err := s.blocklist.Contains(ctx, source)
		if err != nil {
			return nil, errors.Wrap(err, "check blocklist")
		}
		if blocked {
			return nil, ErrNoEligibleCampaign
		}
	}

	now := s.now()
	candidates, err := s.campaigns.ListActive(ctx, placement, now)
	if err != nil {
		return nil, errors.Wrap(err, "list active campaigns")
	}

	eligible := candidates[:0]
	for _, c := range candidates {
		if c.Eligible(now) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleCampaign
	}

	weights := make([]float64, len(eligible))
	for i, c := range eligible {
		weights[i] = c.RemainingBudget().InexactFloat64()
	}
	chosen := eligible[s.pick(weights)]

	if err := s.campaigns.RecordEvent(ctx, chosen.ID, chosen.CostPerImpression, 1, 0); err != nil {
		return nil, errors.Wrap(err, "record impression")
	}
	chosen.Impressions++
	chosen.Spend = chosen.Spend.Add(chosen.CostPerImpression)

	if err := s.endIfExhausted(ctx, &chosen); err != nil {
		return nil, err
	}
	return &chosen, nil
}

// Click records a click on the campaign with the given public code and
// returns the target URL to redirect to. Clicks on paused or ended
// campaigns still redirect but are not billed.
func (s *Service) Click(ctx context.Context, code string) (string, error) {
	c, err := s.campaigns.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}

	if c.Status == StatusActive {
		if err := s.campaigns.RecordEvent(ctx, c.ID, c.CostPerClick, 0, 1); err != nil {
			return "", errors.Wrap(err, "record click")
		}
		c.Spend = c.Spend.Add(c.CostPerClick)
		if err := s.endIfExhausted(ctx, c); err != nil {
			return "", err
		}
	}
	return c.TargetURL, nil
}

// ApplyEvents applies a batch of externally-reported events (e.g. from an
// edge cache that served creatives directly). Unknown codes are skipped;
// the count of applied events is returned.
func (s *Service) ApplyEvents(ctx context.Context, events []Event) (int, error) {
	applied := 0
	for _, ev := range events {
		c, err := s.campaigns.GetByCode(ctx, ev.Code)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return applied, errors.Wrapf(err, "lookup campaign %q", ev.Code)
		}

		delta := c.CostPerImpression.Mul(decimal.NewFromInt(ev.Impressions)).
			Add(c.CostPerClick.Mul(decimal.NewFromInt(ev.Clicks)))
		if err := s.campaigns.RecordEvent(ctx, c.ID, delta, ev.Impressions, ev.Clicks); err != nil {
			return applied, errors.Wrapf(err, "record events for %q", ev.Code)
		}
		c.Spend = c.Spend.Add(delta)
		if err := s.endIfExhausted(ctx, c); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// endIfExhausted transitions a campaign to StatusEnded once its spend
// reaches the budget.
func (s *Service) endIfExhausted(ctx context.Context, c *Campaign) error {
	if c.Status != StatusActive || c.Spend.LessThan(c.TotalBudget) {
		return nil
	}
	c.Status = StatusEnded
	if err := s.campaigns.Update(ctx, c); err != nil {
		return errors.Wrap(err, "end exhausted campaign")
	}
	return nil
}

// weightedPick returns a random index with probability proportional to
// its weight. Uniform fallback when all weights are zero.
func weightedPick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return rand.IntN(len(weights))
	}

	r := rand.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}
