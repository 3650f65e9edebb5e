package trade

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Profit is the per-line result of the cost/profit calculation
type Profit struct {
	UnitCost decimal.Decimal
	Amount   decimal.Decimal
	Margin   decimal.Decimal
}

// CalculateProfit returns (price - cost) x qty and (price - cost) / price x 100.
// Margin is zero when price is zero; both are rounded to two places.
func CalculateProfit(unitPrice, unitCost, quantity decimal.Decimal) Profit {
	perUnit := unitPrice.Sub(unitCost)
	margin := decimal.Zero
	if !unitPrice.IsZero() {
		margin = perUnit.Div(unitPrice).Mul(hundred).Round(2)
	}
	return Profit{
		UnitCost: unitCost.Round(2),
		Amount:   perUnit.Mul(quantity).Round(2),
		Margin:   margin,
	}
}
