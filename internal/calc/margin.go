// Package calc implements the pure calculator tools: profit margin,
// ad break-even, discount impact, size conversion, color conversion,
// and duplicate-line removal. All monetary arithmetic uses
// shopspring/decimal; results are rounded to 2 decimal places at the
// edges only.
package calc

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input validation errors shared by the money calculators.
var (
	ErrNonPositivePrice = errors.New("selling price must be greater than 0")
	ErrNegativeInput    = errors.New("input must not be negative")
)

// MarginInput holds the inputs for the profit margin calculator.
type MarginInput struct {
	// CostPrice is the per-unit cost of goods.
	CostPrice decimal.Decimal
	// SellingPrice is the per-unit selling price.
	SellingPrice decimal.Decimal
	// UnitFees are optional per-unit fees (payment processing, packaging).
	UnitFees decimal.Decimal
	// MonthlyUnits is the expected sales volume; zero skips the monthly figures.
	MonthlyUnits int64
}

// MarginResult holds the outputs of the profit margin calculator.
type MarginResult struct {
	// ProfitPerUnit = selling price - cost - fees.
	ProfitPerUnit decimal.Decimal
	// MarginPercent is profit as a share of revenue.
	MarginPercent decimal.Decimal
	// MarkupPercent is profit as a share of cost. Zero cost yields zero
	// markup rather than a division error.
	MarkupPercent decimal.Decimal
	// MonthlyProfit = profit per unit * monthly units.
	MonthlyProfit decimal.Decimal
}

// ProfitMargin computes per-unit profit, margin, markup, and projected
// monthly profit. A negative profit (selling below cost) is returned as-is;
// only structurally invalid inputs produce errors.
func ProfitMargin(in MarginInput) (*MarginResult, error) {
	if !in.SellingPrice.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	if in.CostPrice.IsNegative() || in.UnitFees.IsNegative() {
		return nil, ErrNegativeInput
	}
	if in.MonthlyUnits < 0 {
		return nil, ErrNegativeInput
	}

	profit := in.SellingPrice.Sub(in.CostPrice).Sub(in.UnitFees)
	margin := profit.Div(in.SellingPrice).Mul(hundred)

	markup := decimal.Zero
	if in.CostPrice.IsPositive() {
		markup = profit.Div(in.CostPrice).Mul(hundred)
	}

	monthly := profit.Mul(decimal.NewFromInt(in.MonthlyUnits))

	return &MarginResult{
		ProfitPerUnit: profit.Round(2),
		MarginPercent: margin.Round(2),
		MarkupPercent: markup.Round(2),
		MonthlyProfit: monthly.Round(2),
	}, nil
}
