package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// savingsService handles savings accounts and their ledger.
type savingsService struct {
	db *gorm.DB
}

// NewSavingsService creates a new SavingsServicer.
func NewSavingsService(db *gorm.DB) SavingsServicer {
	return &savingsService{db: db}
}

// CreateAccount opens an account with an opening balance. The opening
// balance is not recorded as a ledger entry.
func (s *savingsService) CreateAccount(userID string, in SavingsAccountInput) (*models.SavingsAccount, error) {
	if in.AccountType != models.SavingsAccountTypeSavings && in.AccountType != models.SavingsAccountTypeTimeDeposit {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account type must be savings or time_deposit")
	}

	var bank models.Bank
	if err := s.db.Where("id = ?", in.BankID).First(&bank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBankNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	account := &models.SavingsAccount{
		UserID:       userID,
		BankID:       bank.ID,
		AccountName:  in.AccountName,
		Balance:      in.OpeningBalance.Round(2),
		AccountType:  in.AccountType,
		InterestRate: in.InterestRate,
		MaturityDate: utcPtr(in.MaturityDate),
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Bank = &bank
	return account, nil
}

// ListAccounts returns the user's accounts, optionally of one type.
func (s *savingsService) ListAccounts(userID string, accountType *models.SavingsAccountType) ([]models.SavingsAccount, error) {
	q := s.db.Preload("Bank").Where("user_id = ?", userID)
	if accountType != nil {
		q = q.Where("account_type = ?", *accountType)
	}
	var accounts []models.SavingsAccount
	if err := q.Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccountByID returns an account if it belongs to the user.
func (s *savingsService) GetAccountByID(userID, accountID string) (*models.SavingsAccount, error) {
	var account models.SavingsAccount
	if err := s.db.Preload("Bank").Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSavingsAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount edits the descriptive fields of an account.
func (s *savingsService) UpdateAccount(userID, accountID string, in SavingsAccountUpdate) (*models.SavingsAccount, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.AccountName != nil {
		updates["account_name"] = *in.AccountName
	}
	if in.InterestRate != nil {
		updates["interest_rate"] = *in.InterestRate
	}
	if in.MaturityDate != nil {
		updates["maturity_date"] = in.MaturityDate.UTC()
	}
	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return account, nil
}

// SetBalance overwrites the stored balance without a ledger entry.
func (s *savingsService) SetBalance(userID, accountID string, balance decimal.Decimal) (*models.SavingsAccount, error) {
	var account *models.SavingsAccount
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		account, err = lockAccount(tx, userID, accountID)
		if err != nil {
			return err
		}
		account.Balance = balance.Round(2)
		if err := tx.Model(account).Update("balance", account.Balance).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes an account together with its ledger. Expenses that
// were paid from it stay, but lose the link.
func (s *savingsService) DeleteAccount(userID, accountID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID, accountID)
		if err != nil {
			return err
		}

		// Soft-deleted expenses still reference their ledger rows.
		if err := tx.Unscoped().Model(&models.Expense{}).
			Where("savings_account_id = ?", account.ID).
			Updates(map[string]interface{}{"savings_account_id": nil, "savings_transaction_id": nil}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("account_id = ?", account.ID).Delete(&models.SavingsTransaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// PostTransaction records a ledger entry and applies it to the balance in
// one database transaction.
func (s *savingsService) PostTransaction(
	userID, accountID string,
	txType models.SavingsTransactionType,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*models.SavingsTransaction, error) {
	if !txType.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if date.IsZero() {
		date = time.Now()
	}

	var entry *models.SavingsTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID, accountID)
		if err != nil {
			return err
		}
		entry, err = postLedgerEntry(tx, account, txType, amount, description, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListTransactions returns ledger entries newest first, optionally for one
// account.
func (s *savingsService) ListTransactions(userID string, accountID *string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsTransaction], error) {
	query := s.db.Model(&models.SavingsTransaction{}).Where("user_id = ?", userID)
	if accountID != nil {
		if _, err := s.GetAccountByID(userID, *accountID); err != nil {
			return nil, err
		}
		query = query.Where("account_id = ?", *accountID)
	}

	result, err := pagination.Find[models.SavingsTransaction](query, page, "date DESC", "created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetSummary totals the user's balances by account type.
func (s *savingsService) GetSummary(userID string) (*SavingsSummary, error) {
	var accounts []models.SavingsAccount
	if err := s.db.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &SavingsSummary{
		Total:            decimal.Zero,
		SavingsTotal:     decimal.Zero,
		TimeDepositTotal: decimal.Zero,
		AccountCount:     len(accounts),
	}
	for _, a := range accounts {
		summary.Total = summary.Total.Add(a.Balance)
		switch a.AccountType {
		case models.SavingsAccountTypeSavings:
			summary.SavingsTotal = summary.SavingsTotal.Add(a.Balance)
		case models.SavingsAccountTypeTimeDeposit:
			summary.TimeDepositTotal = summary.TimeDepositTotal.Add(a.Balance)
		}
	}
	return summary, nil
}

// lockAccount loads an account owned by userID with a row lock held until
// tx ends.
func lockAccount(tx *gorm.DB, userID, accountID string) (*models.SavingsAccount, error) {
	var account models.SavingsAccount
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", accountID, userID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSavingsAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// postLedgerEntry inserts a ledger row for a locked account and applies it
// to the stored balance. There is no balance floor.
func postLedgerEntry(
	tx *gorm.DB,
	account *models.SavingsAccount,
	txType models.SavingsTransactionType,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*models.SavingsTransaction, error) {
	amount = amount.Round(2)
	entry := &models.SavingsTransaction{
		UserID:      account.UserID,
		AccountID:   account.ID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		Date:        date,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	account.Balance = account.Balance.Add(txType.Signed(amount))
	if err := tx.Model(account).Update("balance", account.Balance).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
