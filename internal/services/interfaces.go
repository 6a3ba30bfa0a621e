package services

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"pitaka/internal/forecast"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
	"pitaka/internal/period"
	"pitaka/internal/spending"

	"github.com/shopspring/decimal"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	EnsureUser(externalID, email, name string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	UpdateProfile(userID string, name, currency *string) (*models.User, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	SeedDefaults() error
	ListCategories(userID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	CreateCategory(userID, name, icon, color string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, name, icon, color *string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// BankServicer defines the contract for the bank directory.
type BankServicer interface {
	SeedBanks() error
	ListBanks(bankType *models.BankType) ([]models.Bank, error)
	GetBankByID(bankID string) (*models.Bank, error)
}

// ExpenseInput holds the fields of a new expense.
type ExpenseInput struct {
	CategoryID       string
	SavingsAccountID *string
	Amount           decimal.Decimal
	Description      string
	Date             time.Time
	Notes            string
	AICategorized    bool
	AIConfidence     *float64
}

// ExpenseUpdate holds the optional fields of an expense edit.
type ExpenseUpdate struct {
	CategoryID  *string
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
	Notes       *string
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	FromDate         *time.Time
	ToDate           *time.Time
	CategoryID       *string
	SavingsAccountID *string
}

// ExpenseServicer defines the contract for expense bookkeeping and the
// spending aggregations derived from it.
type ExpenseServicer interface {
	CreateExpense(userID string, in ExpenseInput) (*models.Expense, error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	ListExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetRecentExpenses(userID string, limit int) ([]models.Expense, error)
	UpdateExpense(userID, expenseID string, in ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
	GetMonthlySpending(userID string, month period.MonthKey, loc *time.Location) (*spending.Summary, error)
	GetSpendingHistory(userID string, monthsBack int, now time.Time) ([]spending.Summary, error)
	GetMonthCalendar(userID string, month period.MonthKey, loc *time.Location) (*spending.Calendar, error)
}

// CategoryBudgetStatus is one category budget with its month-to-date spend.
type CategoryBudgetStatus struct {
	Budget models.Budget   `json:"budget"`
	Spent  decimal.Decimal `json:"spent"`
	Usage  spending.Usage  `json:"usage"`
}

// BudgetStatus is the current month's budgets against actual spend.
type BudgetStatus struct {
	Month           period.MonthKey        `json:"month"`
	OverallBudget   *models.Budget         `json:"overall_budget,omitempty"`
	TotalSpent      decimal.Decimal        `json:"total_spent"`
	Overall         *spending.Usage        `json:"overall,omitempty"`
	CategoryBudgets []CategoryBudgetStatus `json:"category_budgets"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	SetBudget(userID string, month period.MonthKey, categoryID *string, amount decimal.Decimal) (*models.Budget, error)
	GetBudgetsByMonth(userID string, month period.MonthKey) ([]models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudgetAmount(userID, budgetID string, amount decimal.Decimal) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetCurrentMonthStatus(userID string, now time.Time) (*BudgetStatus, error)
}

// ForecastServicer defines the contract for spend projections.
type ForecastServicer interface {
	PredictBudget(userID string, categoryID *string, now time.Time) (*forecast.Prediction, error)
}

// SavingsAccountInput holds the fields of a new savings account.
type SavingsAccountInput struct {
	BankID         string
	AccountName    string
	OpeningBalance decimal.Decimal
	AccountType    models.SavingsAccountType
	InterestRate   *float64
	MaturityDate   *time.Time
}

// SavingsAccountUpdate holds the optional fields of an account edit.
type SavingsAccountUpdate struct {
	AccountName  *string
	InterestRate *float64
	MaturityDate *time.Time
}

// SavingsSummary totals balances across a user's accounts.
type SavingsSummary struct {
	Total            decimal.Decimal `json:"total"`
	SavingsTotal     decimal.Decimal `json:"savings_total"`
	TimeDepositTotal decimal.Decimal `json:"time_deposit_total"`
	AccountCount     int             `json:"account_count"`
}

// SavingsServicer defines the contract for savings accounts and their ledger.
type SavingsServicer interface {
	CreateAccount(userID string, in SavingsAccountInput) (*models.SavingsAccount, error)
	ListAccounts(userID string, accountType *models.SavingsAccountType) ([]models.SavingsAccount, error)
	GetAccountByID(userID, accountID string) (*models.SavingsAccount, error)
	UpdateAccount(userID, accountID string, in SavingsAccountUpdate) (*models.SavingsAccount, error)
	SetBalance(userID, accountID string, balance decimal.Decimal) (*models.SavingsAccount, error)
	DeleteAccount(userID, accountID string) error
	PostTransaction(userID, accountID string, txType models.SavingsTransactionType, amount decimal.Decimal, description string, date time.Time) (*models.SavingsTransaction, error)
	ListTransactions(userID string, accountID *string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsTransaction], error)
	GetSummary(userID string) (*SavingsSummary, error)
}

// InsightInput is one generated insight delivered by the generator.
type InsightInput struct {
	Type    models.InsightType
	Title   string
	Content string
	Data    json.RawMessage
}

// InsightServicer defines the contract for the per-user insight cache.
type InsightServicer interface {
	GetActiveInsights(userID string, insightType *models.InsightType, now time.Time) ([]models.Insight, error)
	ReplaceInsights(userID string, batch []InsightInput, now time.Time) ([]models.Insight, error)
	DeleteInsight(userID, insightID string) error
	ClearExpired(userID string, now time.Time) (int64, error)
	RequestRegeneration(ctx context.Context, userID string, now time.Time) (string, error)
}

// ReportServicer defines the contract for downloadable spending reports.
type ReportServicer interface {
	WriteSpendingHistory(w io.Writer, userID string, monthsBack int, now time.Time) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
