package calc

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidRate is returned when a percentage rate falls outside (0, 100].
var ErrInvalidRate = errors.New("rate must be within (0, 100]")

// BreakEvenInput holds the inputs for the ad break-even calculator.
type BreakEvenInput struct {
	// AdSpend is the planned advertising budget.
	AdSpend decimal.Decimal
	// CostPerClick is the expected average CPC.
	CostPerClick decimal.Decimal
	// SellingPrice is the per-unit selling price.
	SellingPrice decimal.Decimal
	// UnitCost is the per-unit cost of goods.
	UnitCost decimal.Decimal
	// ConversionPercent is the expected click-to-order conversion rate.
	ConversionPercent decimal.Decimal
}

// BreakEvenResult holds the outputs of the ad break-even calculator.
type BreakEvenResult struct {
	// Clicks the budget buys at the given CPC, truncated to whole clicks.
	Clicks int64
	// ExpectedOrders = clicks * conversion rate, truncated.
	ExpectedOrders int64
	// Revenue from the expected orders.
	Revenue decimal.Decimal
	// GrossProfit = revenue - cost of goods for the expected orders.
	GrossProfit decimal.Decimal
	// NetProfit = gross profit - ad spend.
	NetProfit decimal.Decimal
	// BreakEvenROAS is the revenue-per-ad-dollar at which the campaign
	// neither earns nor loses: price / (price - cost).
	BreakEvenROAS decimal.Decimal
	// BreakEvenConversionPercent is the conversion rate at which the
	// campaign breaks even at the given CPC.
	BreakEvenConversionPercent decimal.Decimal
}

// AdBreakEven projects the outcome of an ad campaign and the break-even
// thresholds for ROAS and conversion rate.
func AdBreakEven(in BreakEvenInput) (*BreakEvenResult, error) {
	if !in.AdSpend.IsPositive() || !in.CostPerClick.IsPositive() {
		return nil, ErrNegativeInput
	}
	if !in.SellingPrice.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	if in.UnitCost.IsNegative() {
		return nil, ErrNegativeInput
	}
	if !in.ConversionPercent.IsPositive() || in.ConversionPercent.GreaterThan(hundred) {
		return nil, ErrInvalidRate
	}

	clicks := in.AdSpend.Div(in.CostPerClick).IntPart()
	orders := decimal.NewFromInt(clicks).Mul(in.ConversionPercent).Div(hundred).IntPart()

	ordersDec := decimal.NewFromInt(orders)
	revenue := ordersDec.Mul(in.SellingPrice)
	gross := ordersDec.Mul(in.SellingPrice.Sub(in.UnitCost))
	net := gross.Sub(in.AdSpend)

	unitProfit := in.SellingPrice.Sub(in.UnitCost)

	// Break-even ROAS is undefined when each sale loses money; report zero
	// so callers can distinguish "never profitable" from a real threshold.
	roas := decimal.Zero
	if unitProfit.IsPositive() {
		roas = in.SellingPrice.Div(unitProfit)
	}

	// Conversion rate at which profit per click covers CPC:
	// cpc / unit profit, as a percentage.
	beConv := decimal.Zero
	if unitProfit.IsPositive() {
		beConv = in.CostPerClick.Div(unitProfit).Mul(hundred)
	}

	return &BreakEvenResult{
		Clicks:                     clicks,
		ExpectedOrders:             orders,
		Revenue:                    revenue.Round(2),
		GrossProfit:                gross.Round(2),
		NetProfit:                  net.Round(2),
		BreakEvenROAS:              roas.Round(2),
		BreakEvenConversionPercent: beConv.Round(2),
	}, nil
}
