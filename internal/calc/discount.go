package calc

import (
	"github.com/shopspring/decimal"
)

// DiscountImpactInput holds the inputs for the discount impact calculator.
type DiscountImpactInput struct {
	// Price is the current per-unit selling price.
	Price decimal.Decimal
	// UnitCost is the per-unit cost of goods.
	UnitCost decimal.Decimal
	// DiscountPercent is the planned discount in (0, 100).
	DiscountPercent decimal.Decimal
	// MonthlyUnits is the current monthly sales volume.
	MonthlyUnits int64
}

// DiscountImpactResult holds the outputs of the discount impact calculator.
type DiscountImpactResult struct {
	// DiscountedPrice is the price after the discount.
	DiscountedPrice decimal.Decimal
	// OldMarginPercent and NewMarginPercent are the margins before and
	// after the discount.
	OldMarginPercent decimal.Decimal
	NewMarginPercent decimal.Decimal
	// OldProfit and NewProfit are total profits at the current volume.
	OldProfit decimal.Decimal
	NewProfit decimal.Decimal
	// RequiredUnits is the volume needed to recover the old total profit
	// at the discounted price. Nil when the discounted price no longer
	// covers cost, i.e. no volume can recover the profit.
	RequiredUnits *int64
	// RequiredUpliftPercent is the relative volume increase RequiredUnits
	// represents. Nil whenever RequiredUnits is nil.
	RequiredUpliftPercent *decimal.Decimal
}

// DiscountImpact shows what a price discount does to margins and how much
// extra volume is needed to keep total profit unchanged.
func DiscountImpact(in DiscountImpactInput) (*DiscountImpactResult, error) {
	if !in.Price.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	if in.UnitCost.IsNegative() || in.MonthlyUnits < 0 {
		return nil, ErrNegativeInput
	}
	if !in.DiscountPercent.IsPositive() || !in.DiscountPercent.LessThan(hundred) {
		return nil, ErrInvalidRate
	}

	newPrice := in.Price.Mul(hundred.Sub(in.DiscountPercent)).Div(hundred)

	oldUnitProfit := in.Price.Sub(in.UnitCost)
	newUnitProfit := newPrice.Sub(in.UnitCost)

	units := decimal.NewFromInt(in.MonthlyUnits)
	oldProfit := oldUnitProfit.Mul(units)
	newProfit := newUnitProfit.Mul(units)

	res := &DiscountImpactResult{
		DiscountedPrice:  newPrice.Round(2),
		OldMarginPercent: oldUnitProfit.Div(in.Price).Mul(hundred).Round(2),
		NewMarginPercent: newUnitProfit.Div(newPrice).Mul(hundred).Round(2),
		OldProfit:        oldProfit.Round(2),
		NewProfit:        newProfit.Round(2),
	}

	// The old profit can only be recovered while the discounted price still
	// clears cost. At or below cost every extra unit digs deeper.
	if newUnitProfit.IsPositive() && in.MonthlyUnits > 0 {
		required := oldProfit.Div(newUnitProfit).Ceil().IntPart()
		uplift := decimal.NewFromInt(required).Sub(units).
			Div(units).Mul(hundred).Round(2)
		res.RequiredUnits = &required
		res.RequiredUpliftPercent = &uplift
	}

	return res, nil
}
