package models

import (
	"time"

	"pitaka/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SavingsAccountType distinguishes ordinary savings from fixed-term deposits.
type SavingsAccountType string

const (
	SavingsAccountTypeSavings     SavingsAccountType = "savings"
	SavingsAccountTypeTimeDeposit SavingsAccountType = "time_deposit"
)

// SavingsAccount holds a stored running balance. Every ledger insert updates
// Balance in the same database transaction.
type SavingsAccount struct {
	Base
	UserID       string             `gorm:"type:uuid;not null;index" json:"user_id"`
	BankID       string             `gorm:"type:uuid;not null" json:"bank_id"`
	AccountName  string             `json:"account_name,omitempty"`
	Balance      decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	AccountType  SavingsAccountType `gorm:"not null" json:"account_type"`
	InterestRate *float64           `json:"interest_rate,omitempty"`
	MaturityDate *time.Time         `json:"maturity_date,omitempty"`

	Bank *Bank `gorm:"foreignKey:BankID" json:"bank,omitempty"`
}

// SavingsTransactionType classifies a ledger entry.
type SavingsTransactionType string

const (
	SavingsTransactionDeposit    SavingsTransactionType = "deposit"
	SavingsTransactionWithdrawal SavingsTransactionType = "withdrawal"
	SavingsTransactionInterest   SavingsTransactionType = "interest"
)

// Valid reports whether t is a known ledger entry type.
func (t SavingsTransactionType) Valid() bool {
	switch t {
	case SavingsTransactionDeposit, SavingsTransactionWithdrawal, SavingsTransactionInterest:
		return true
	}
	return false
}

// Signed returns amount with the sign it applies to an account balance.
func (t SavingsTransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == SavingsTransactionWithdrawal {
		return amount.Neg()
	}
	return amount
}

// SavingsTransaction is an immutable ledger entry. No Base embed and no soft
// deletes: rows are only removed together with their account.
type SavingsTransaction struct {
	ID          string                 `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string                 `gorm:"type:uuid;not null;index:idx_savings_tx_user_date" json:"user_id"`
	AccountID   string                 `gorm:"type:uuid;not null;index" json:"account_id"`
	Type        SavingsTransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description string                 `gorm:"not null" json:"description"`
	Date        time.Time              `gorm:"not null;index:idx_savings_tx_user_date" json:"date"`
	CreatedAt   time.Time              `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 and normalises the date to UTC.
func (s *SavingsTransaction) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	s.Date = s.Date.UTC()
	return nil
}
