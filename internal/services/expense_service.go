package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
	"pitaka/internal/period"
	"pitaka/internal/spending"
)

const (
	// DefaultHistoryMonths is used when a history request names no length.
	DefaultHistoryMonths = 6
	// MaxHistoryMonths bounds the range a single history request may scan.
	MaxHistoryMonths = 60
	// DefaultRecentExpenses is the length of the recent expenses list.
	DefaultRecentExpenses = 5
)

// expenseService handles expense bookkeeping and spending aggregation.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense records an expense. When it is paid from a savings account
// the matching withdrawal is posted in the same transaction.
func (s *expenseService) CreateExpense(userID string, in ExpenseInput) (*models.Expense, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.AIConfidence != nil && (*in.AIConfidence < 0 || *in.AIConfidence > 1) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "ai_confidence must be between 0 and 1")
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	expense := &models.Expense{
		UserID:           userID,
		CategoryID:       in.CategoryID,
		SavingsAccountID: in.SavingsAccountID,
		Amount:           in.Amount.Round(2),
		Description:      strings.TrimSpace(in.Description),
		Date:             in.Date.UTC(),
		Notes:            in.Notes,
		AICategorized:    in.AICategorized,
		AIConfidence:     in.AIConfidence,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findCategory(tx, userID, in.CategoryID); err != nil {
			return err
		}

		if in.SavingsAccountID != nil {
			account, err := lockAccount(tx, userID, *in.SavingsAccountID)
			if err != nil {
				return err
			}
			entry, err := postLedgerEntry(tx, account, models.SavingsTransactionWithdrawal,
				expense.Amount, fmt.Sprintf("Expense: %s", expense.Description), expense.Date)
			if err != nil {
				return err
			}
			expense.SavingsTransactionID = &entry.ID
		}

		if err := tx.Create(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// GetExpenseByID returns an expense if it belongs to the user.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	return findExpense(s.db, userID, expenseID)
}

func findExpense(db *gorm.DB, userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// ListExpenses returns a page of the user's expenses, newest first.
func (s *expenseService) ListExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	query := applyExpenseFilters(s.db.Model(&models.Expense{}).Where("user_id = ?", userID), filter)
	result, err := pagination.Find[models.Expense](query, page, "date DESC", "id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", f.ToDate.UTC())
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.SavingsAccountID != nil {
		q = q.Where("savings_account_id = ?", *f.SavingsAccountID)
	}
	return q
}

// GetRecentExpenses returns the user's latest expenses.
func (s *expenseService) GetRecentExpenses(userID string, limit int) ([]models.Expense, error) {
	if limit <= 0 {
		limit = DefaultRecentExpenses
	}
	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC").Order("id DESC").Limit(limit).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// UpdateExpense edits an expense. Changing the amount of an expense paid
// from a savings account posts an adjustment entry for the difference.
func (s *expenseService) UpdateExpense(userID, expenseID string, in ExpenseUpdate) (*models.Expense, error) {
	if in.Amount != nil && !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	var expense *models.Expense
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		expense, err = findExpense(tx, userID, expenseID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if in.CategoryID != nil {
			if _, err := findCategory(tx, userID, *in.CategoryID); err != nil {
				return err
			}
			updates["category_id"] = *in.CategoryID
		}
		if in.Description != nil {
			updates["description"] = strings.TrimSpace(*in.Description)
		}
		if in.Date != nil {
			updates["date"] = in.Date.UTC()
		}
		if in.Notes != nil {
			updates["notes"] = *in.Notes
		}
		if in.Amount != nil {
			amount := in.Amount.Round(2)
			if expense.IsLinked() && !amount.Equal(expense.Amount) {
				if err := s.adjustLinkedAccount(tx, expense, amount); err != nil {
					return err
				}
			}
			updates["amount"] = amount
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(expense).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) adjustLinkedAccount(tx *gorm.DB, expense *models.Expense, newAmount decimal.Decimal) error {
	account, err := lockAccount(tx, expense.UserID, *expense.SavingsAccountID)
	if err != nil {
		return err
	}
	delta := newAmount.Sub(expense.Amount)
	txType := models.SavingsTransactionWithdrawal
	if delta.IsNegative() {
		txType = models.SavingsTransactionDeposit
	}
	_, err = postLedgerEntry(tx, account, txType, delta.Abs(),
		fmt.Sprintf("Adjustment: %s", expense.Description), time.Now())
	return err
}

// DeleteExpense removes an expense. An expense paid from a savings account
// is refunded to it with a reversal entry.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		expense, err := findExpense(tx, userID, expenseID)
		if err != nil {
			return err
		}

		if expense.IsLinked() {
			account, err := lockAccount(tx, userID, *expense.SavingsAccountID)
			if err != nil {
				return err
			}
			if _, err := postLedgerEntry(tx, account, models.SavingsTransactionDeposit, expense.Amount,
				fmt.Sprintf("Reversal: %s", expense.Description), time.Now()); err != nil {
				return err
			}
		}

		if err := tx.Delete(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetMonthlySpending totals the user's spending in one calendar month as
// seen from loc.
func (s *expenseService) GetMonthlySpending(userID string, month period.MonthKey, loc *time.Location) (*spending.Summary, error) {
	if !month.Valid() {
		return nil, apperrors.ErrInvalidMonth
	}
	w := month.Window(loc)
	expenses, err := loadExpenses(s.db, userID, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	summary := spending.Aggregate(expenses, w)
	return &summary, nil
}

// GetSpendingHistory returns one summary per month for the monthsBack
// months ending with the month containing now, most recent first. Windows
// are resolved in now's location.
func (s *expenseService) GetSpendingHistory(userID string, monthsBack int, now time.Time) ([]spending.Summary, error) {
	return spendingHistory(s.db, userID, monthsBack, now)
}

func spendingHistory(db *gorm.DB, userID string, monthsBack int, now time.Time) ([]spending.Summary, error) {
	if monthsBack < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must not be negative")
	}
	if monthsBack == 0 {
		monthsBack = DefaultHistoryMonths
	}
	if monthsBack > MaxHistoryMonths {
		monthsBack = MaxHistoryMonths
	}

	windows := period.Trailing(monthsBack, now)
	start, end, _ := period.Span(windows)
	expenses, err := loadExpenses(db, userID, start, end)
	if err != nil {
		return nil, err
	}
	return spending.BuildHistory(expenses, windows), nil
}

// GetMonthCalendar groups one month's expenses by local day.
func (s *expenseService) GetMonthCalendar(userID string, month period.MonthKey, loc *time.Location) (*spending.Calendar, error) {
	if !month.Valid() {
		return nil, apperrors.ErrInvalidMonth
	}
	w := month.Window(loc)
	expenses, err := loadExpenses(s.db, userID, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	cal := spending.BuildCalendar(expenses, w)
	return &cal, nil
}

// loadExpenses fetches the user's expenses dated within [start, end].
func loadExpenses(db *gorm.DB, userID string, start, end time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := db.
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start.UTC(), end.UTC()).
		Order("date ASC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}
