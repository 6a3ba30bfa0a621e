package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/period"
	"pitaka/internal/spending"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// SetBudget creates the budget for (month, category) or, when one already
// exists, replaces its amount. A nil categoryID targets the overall budget.
func (s *budgetService) SetBudget(userID string, month period.MonthKey, categoryID *string, amount decimal.Decimal) (*models.Budget, error) {
	if !month.Valid() {
		return nil, apperrors.ErrInvalidMonth
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	amount = amount.Round(2)

	var budget models.Budget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if categoryID != nil {
			if _, err := findCategory(tx, userID, *categoryID); err != nil {
				return err
			}
		}

		q := tx.Where("user_id = ? AND month = ?", userID, int(month))
		if categoryID != nil {
			q = q.Where("category_id = ?", *categoryID)
		} else {
			q = q.Where("category_id IS NULL")
		}

		err := q.First(&budget).Error
		switch {
		case err == nil:
			if err := tx.Model(&budget).Update("amount", amount).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		budget = models.Budget{UserID: userID, Month: int(month), CategoryID: categoryID, Amount: amount}
		if err := tx.Create(&budget).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateBudget
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// GetBudgetsByMonth returns every budget the user set for month, the
// overall budget first.
func (s *budgetService) GetBudgetsByMonth(userID string, month period.MonthKey) ([]models.Budget, error) {
	if !month.Valid() {
		return nil, apperrors.ErrInvalidMonth
	}
	return loadBudgets(s.db, userID, month)
}

func loadBudgets(db *gorm.DB, userID string, month period.MonthKey) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := db.Where("user_id = ? AND month = ?", userID, int(month)).
		Order("category_id IS NOT NULL").Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudgetAmount changes the target of an existing budget.
func (s *budgetService) UpdateBudgetAmount(userID, budgetID string, amount decimal.Decimal) (*models.Budget, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(budget).Update("amount", amount.Round(2)).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budget, nil
}

// DeleteBudget removes a budget permanently so the slot can be set again.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}
	if err := s.db.Unscoped().Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetCurrentMonthStatus compares the budgets of the month containing now
// against that month's spend. Budgets and expenses are read in one
// transaction so both describe the same snapshot.
func (s *budgetService) GetCurrentMonthStatus(userID string, now time.Time) (*BudgetStatus, error) {
	w := period.Current(now)

	var (
		budgets  []models.Budget
		expenses []models.Expense
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if budgets, err = loadBudgets(tx, userID, w.Month); err != nil {
			return err
		}
		expenses, err = loadExpenses(tx, userID, w.Start, w.End)
		return err
	})
	if err != nil {
		return nil, err
	}

	return evaluateBudgets(budgets, spending.Aggregate(expenses, w)), nil
}

// evaluateBudgets pairs each budget with the spend it covers. Categories
// with no spend in the summary read as zero.
func evaluateBudgets(budgets []models.Budget, summary spending.Summary) *BudgetStatus {
	status := &BudgetStatus{
		Month:           summary.Month,
		TotalSpent:      summary.Total,
		CategoryBudgets: []CategoryBudgetStatus{},
	}
	for i := range budgets {
		b := budgets[i]
		if b.IsOverall() {
			if status.OverallBudget == nil {
				status.OverallBudget = &b
				usage := spending.ComputeUsage(summary.Total, b.Amount)
				status.Overall = &usage
			}
			continue
		}
		spent := summary.CategoryTotal(*b.CategoryID)
		status.CategoryBudgets = append(status.CategoryBudgets, CategoryBudgetStatus{
			Budget: b,
			Spent:  spent,
			Usage:  spending.ComputeUsage(spent, b.Amount),
		})
	}
	return status
}
