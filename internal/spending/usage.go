package spending

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Usage describes how much of a budget has been consumed.
type Usage struct {
	Remaining  decimal.Decimal `json:"remaining"`
	OverBy     decimal.Decimal `json:"over_by"`
	Percentage float64         `json:"percentage"`
	OverBudget bool            `json:"over_budget"`
}

// ComputeUsage compares spent against a budget amount. Percentage is capped
// at 100 and is 0 for a non-positive amount; OverBudget requires spent to
// strictly exceed amount.
func ComputeUsage(spent, amount decimal.Decimal) Usage {
	u := Usage{
		Remaining:  decimal.Max(amount.Sub(spent), decimal.Zero),
		OverBy:     decimal.Max(spent.Sub(amount), decimal.Zero),
		OverBudget: spent.GreaterThan(amount),
	}
	if amount.IsPositive() {
		ratio := decimal.Min(spent.Div(amount), decimal.NewFromInt(1))
		u.Percentage = ratio.Mul(hundred).Round(2).InexactFloat64()
	}
	return u
}
