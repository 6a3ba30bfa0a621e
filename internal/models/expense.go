package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is money spent by a user. When SavingsAccountID is set the expense
// was paid from that account and SavingsTransactionID points at the
// withdrawal recorded for it. Date is stored in UTC; callers convert.
type Expense struct {
	Base
	UserID               string          `gorm:"type:uuid;not null;index:idx_expenses_user_date" json:"user_id"`
	CategoryID           string          `gorm:"type:uuid;not null" json:"category_id"`
	SavingsAccountID     *string         `gorm:"type:uuid;index" json:"savings_account_id,omitempty"`
	SavingsTransactionID *string         `gorm:"type:uuid" json:"savings_transaction_id,omitempty"`
	Amount               decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description          string          `gorm:"not null" json:"description"`
	Date                 time.Time       `gorm:"not null;index:idx_expenses_user_date" json:"date"`
	Notes                string          `json:"notes,omitempty"`
	AICategorized        bool            `gorm:"not null;default:false" json:"ai_categorized"`
	AIConfidence         *float64        `json:"ai_confidence,omitempty"`

	SavingsAccount     *SavingsAccount     `gorm:"foreignKey:SavingsAccountID" json:"-"`
	SavingsTransaction *SavingsTransaction `gorm:"foreignKey:SavingsTransactionID" json:"-"`
}

// IsLinked reports whether the expense was paid from a savings account.
func (e *Expense) IsLinked() bool {
	return e.SavingsAccountID != nil
}
