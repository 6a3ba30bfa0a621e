package models

import "github.com/shopspring/decimal"

// Budget is a spending target for one calendar month. A nil CategoryID makes
// it the overall budget for the month.
type Budget struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index:idx_budgets_user_month" json:"user_id"`
	Month      int             `gorm:"not null;index:idx_budgets_user_month" json:"month"`
	CategoryID *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
}

// IsOverall reports whether the budget applies to total monthly spend.
func (b *Budget) IsOverall() bool {
	return b.CategoryID == nil
}
