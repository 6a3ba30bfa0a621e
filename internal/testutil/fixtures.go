package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pitaka/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Amount parses a decimal literal and fails the test when it is malformed.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid amount %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a unique subject and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	user := &models.User{
		ExternalID: fmt.Sprintf("subject-%d", n),
		Email:      fmt.Sprintf("user%d@test.com", n),
		Name:       fmt.Sprintf("Test User %d", n),
		Currency:   "PHP",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a custom category owned by userID.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: &userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Icon:   "tag",
		Color:  "#123456",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateDefaultCategory creates a shared default category.
func CreateDefaultCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:      fmt.Sprintf("Default Category %d", nextID()),
		Icon:      "tag",
		Color:     "#654321",
		IsDefault: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create default category: %v", err)
	}
	return category
}

// CreateTestBank creates a bank of the given type.
func CreateTestBank(t *testing.T, db *gorm.DB, bankType models.BankType) *models.Bank {
	t.Helper()

	n := nextID()
	bank := &models.Bank{
		Name:      fmt.Sprintf("Test Bank %d", n),
		ShortName: fmt.Sprintf("TB%d", n),
		Color:     "#000000",
		Type:      bankType,
		IsDefault: true,
	}
	if err := db.Create(bank).Error; err != nil {
		t.Fatalf("failed to create test bank: %v", err)
	}
	return bank
}

// CreateTestSavingsAccount creates a savings account with the given balance.
func CreateTestSavingsAccount(t *testing.T, db *gorm.DB, userID string, balance string) *models.SavingsAccount {
	t.Helper()
	return CreateTestSavingsAccountOfType(t, db, userID, models.SavingsAccountTypeSavings, balance)
}

// CreateTestSavingsAccountOfType creates an account of the given type and balance.
func CreateTestSavingsAccountOfType(t *testing.T, db *gorm.DB, userID string, accountType models.SavingsAccountType, balance string) *models.SavingsAccount {
	t.Helper()

	bank := CreateTestBank(t, db, models.BankTypeDigitalBank)
	account := &models.SavingsAccount{
		UserID:      userID,
		BankID:      bank.ID,
		AccountName: fmt.Sprintf("Test Account %d", nextID()),
		Balance:     Amount(t, balance),
		AccountType: accountType,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test savings account: %v", err)
	}
	return account
}

// CreateTestExpense creates an unlinked expense.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID, amount string, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      Amount(t, amount),
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		Date:        date.UTC(),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestBudget creates a budget; a nil categoryID makes it the overall
// budget for month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, month int, categoryID *string, amount string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		Month:      month,
		CategoryID: categoryID,
		Amount:     Amount(t, amount),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestInsight creates an insight expiring at expiresAt.
func CreateTestInsight(t *testing.T, db *gorm.DB, userID string, insightType models.InsightType, expiresAt time.Time) *models.Insight {
	t.Helper()

	insight := &models.Insight{
		UserID:    userID,
		Type:      insightType,
		Title:     fmt.Sprintf("Insight %d", nextID()),
		Content:   "Spend less on coffee.",
		ExpiresAt: expiresAt,
	}
	if err := db.Create(insight).Error; err != nil {
		t.Fatalf("failed to create test insight: %v", err)
	}
	return insight
}

// AssertDecimal fails the test when got does not equal want numerically.
func AssertDecimal(t *testing.T, got decimal.Decimal, want string, what string) {
	t.Helper()
	if !got.Equal(Amount(t, want)) {
		t.Errorf("expected %s %s, got %s", what, want, got.String())
	}
}
