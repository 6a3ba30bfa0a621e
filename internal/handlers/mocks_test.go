package handlers

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"pitaka/internal/forecast"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
	"pitaka/internal/period"
	"pitaka/internal/services"
	"pitaka/internal/spending"
)

// --- expenses ---

type mockExpenseService struct {
	createExpenseFn      func(userID string, in services.ExpenseInput) (*models.Expense, error)
	getExpenseByIDFn     func(userID, expenseID string) (*models.Expense, error)
	listExpensesFn       func(userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	getRecentExpensesFn  func(userID string, limit int) ([]models.Expense, error)
	updateExpenseFn      func(userID, expenseID string, in services.ExpenseUpdate) (*models.Expense, error)
	deleteExpenseFn      func(userID, expenseID string) error
	getMonthlySpendingFn func(userID string, month period.MonthKey, loc *time.Location) (*spending.Summary, error)
	getSpendingHistoryFn func(userID string, monthsBack int, now time.Time) ([]spending.Summary, error)
	getMonthCalendarFn   func(userID string, month period.MonthKey, loc *time.Location) (*spending.Calendar, error)
}

func (m *mockExpenseService) CreateExpense(userID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, in)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) ListExpenses(userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if m.listExpensesFn != nil {
		return m.listExpensesFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) GetRecentExpenses(userID string, limit int) ([]models.Expense, error) {
	if m.getRecentExpensesFn != nil {
		return m.getRecentExpensesFn(userID, limit)
	}
	return []models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(userID, expenseID string, in services.ExpenseUpdate) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(userID, expenseID, in)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(userID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

func (m *mockExpenseService) GetMonthlySpending(userID string, month period.MonthKey, loc *time.Location) (*spending.Summary, error) {
	if m.getMonthlySpendingFn != nil {
		return m.getMonthlySpendingFn(userID, month, loc)
	}
	return &spending.Summary{Month: month, ByCategory: map[string]decimal.Decimal{}}, nil
}

func (m *mockExpenseService) GetSpendingHistory(userID string, monthsBack int, now time.Time) ([]spending.Summary, error) {
	if m.getSpendingHistoryFn != nil {
		return m.getSpendingHistoryFn(userID, monthsBack, now)
	}
	return []spending.Summary{}, nil
}

func (m *mockExpenseService) GetMonthCalendar(userID string, month period.MonthKey, loc *time.Location) (*spending.Calendar, error) {
	if m.getMonthCalendarFn != nil {
		return m.getMonthCalendarFn(userID, month, loc)
	}
	return &spending.Calendar{Month: month}, nil
}

// --- reports ---

type mockReportService struct {
	writeSpendingHistoryFn func(w io.Writer, userID string, monthsBack int, now time.Time) error
}

func (m *mockReportService) WriteSpendingHistory(w io.Writer, userID string, monthsBack int, now time.Time) error {
	if m.writeSpendingHistoryFn != nil {
		return m.writeSpendingHistoryFn(w, userID, monthsBack, now)
	}
	return nil
}

// --- budgets ---

type mockBudgetService struct {
	setBudgetFn             func(userID string, month period.MonthKey, categoryID *string, amount decimal.Decimal) (*models.Budget, error)
	getBudgetsByMonthFn     func(userID string, month period.MonthKey) ([]models.Budget, error)
	getBudgetByIDFn         func(userID, budgetID string) (*models.Budget, error)
	updateBudgetAmountFn    func(userID, budgetID string, amount decimal.Decimal) (*models.Budget, error)
	deleteBudgetFn          func(userID, budgetID string) error
	getCurrentMonthStatusFn func(userID string, now time.Time) (*services.BudgetStatus, error)
}

func (m *mockBudgetService) SetBudget(userID string, month period.MonthKey, categoryID *string, amount decimal.Decimal) (*models.Budget, error) {
	if m.setBudgetFn != nil {
		return m.setBudgetFn(userID, month, categoryID, amount)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetsByMonth(userID string, month period.MonthKey) ([]models.Budget, error) {
	if m.getBudgetsByMonthFn != nil {
		return m.getBudgetsByMonthFn(userID, month)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) UpdateBudgetAmount(userID, budgetID string, amount decimal.Decimal) (*models.Budget, error) {
	if m.updateBudgetAmountFn != nil {
		return m.updateBudgetAmountFn(userID, budgetID, amount)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) GetCurrentMonthStatus(userID string, now time.Time) (*services.BudgetStatus, error) {
	if m.getCurrentMonthStatusFn != nil {
		return m.getCurrentMonthStatusFn(userID, now)
	}
	return &services.BudgetStatus{}, nil
}

type mockForecastService struct {
	predictBudgetFn func(userID string, categoryID *string, now time.Time) (*forecast.Prediction, error)
}

func (m *mockForecastService) PredictBudget(userID string, categoryID *string, now time.Time) (*forecast.Prediction, error) {
	if m.predictBudgetFn != nil {
		return m.predictBudgetFn(userID, categoryID, now)
	}
	return &forecast.Prediction{Trend: forecast.TrendStable}, nil
}

// --- savings ---

type mockSavingsService struct {
	createAccountFn    func(userID string, in services.SavingsAccountInput) (*models.SavingsAccount, error)
	listAccountsFn     func(userID string, accountType *models.SavingsAccountType) ([]models.SavingsAccount, error)
	getAccountByIDFn   func(userID, accountID string) (*models.SavingsAccount, error)
	updateAccountFn    func(userID, accountID string, in services.SavingsAccountUpdate) (*models.SavingsAccount, error)
	setBalanceFn       func(userID, accountID string, balance decimal.Decimal) (*models.SavingsAccount, error)
	deleteAccountFn    func(userID, accountID string) error
	postTransactionFn  func(userID, accountID string, txType models.SavingsTransactionType, amount decimal.Decimal, description string, date time.Time) (*models.SavingsTransaction, error)
	listTransactionsFn func(userID string, accountID *string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsTransaction], error)
	getSummaryFn       func(userID string) (*services.SavingsSummary, error)
}

func (m *mockSavingsService) CreateAccount(userID string, in services.SavingsAccountInput) (*models.SavingsAccount, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(userID, in)
	}
	return &models.SavingsAccount{}, nil
}

func (m *mockSavingsService) ListAccounts(userID string, accountType *models.SavingsAccountType) ([]models.SavingsAccount, error) {
	if m.listAccountsFn != nil {
		return m.listAccountsFn(userID, accountType)
	}
	return []models.SavingsAccount{}, nil
}

func (m *mockSavingsService) GetAccountByID(userID, accountID string) (*models.SavingsAccount, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(userID, accountID)
	}
	return &models.SavingsAccount{}, nil
}

func (m *mockSavingsService) UpdateAccount(userID, accountID string, in services.SavingsAccountUpdate) (*models.SavingsAccount, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(userID, accountID, in)
	}
	return &models.SavingsAccount{}, nil
}

func (m *mockSavingsService) SetBalance(userID, accountID string, balance decimal.Decimal) (*models.SavingsAccount, error) {
	if m.setBalanceFn != nil {
		return m.setBalanceFn(userID, accountID, balance)
	}
	return &models.SavingsAccount{Balance: balance}, nil
}

func (m *mockSavingsService) DeleteAccount(userID, accountID string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(userID, accountID)
	}
	return nil
}

func (m *mockSavingsService) PostTransaction(userID, accountID string, txType models.SavingsTransactionType, amount decimal.Decimal, description string, date time.Time) (*models.SavingsTransaction, error) {
	if m.postTransactionFn != nil {
		return m.postTransactionFn(userID, accountID, txType, amount, description, date)
	}
	return &models.SavingsTransaction{Type: txType, Amount: amount}, nil
}

func (m *mockSavingsService) ListTransactions(userID string, accountID *string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsTransaction], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(userID, accountID, page)
	}
	resp := pagination.NewPageResponse([]models.SavingsTransaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockSavingsService) GetSummary(userID string) (*services.SavingsSummary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(userID)
	}
	return &services.SavingsSummary{}, nil
}

// --- categories ---

type mockCategoryService struct {
	seedDefaultsFn    func() error
	listCategoriesFn  func(userID string) ([]models.Category, error)
	getCategoryByIDFn func(userID, categoryID string) (*models.Category, error)
	createCategoryFn  func(userID, name, icon, color string) (*models.Category, error)
	updateCategoryFn  func(userID, categoryID string, name, icon, color *string) (*models.Category, error)
	deleteCategoryFn  func(userID, categoryID string) error
}

func (m *mockCategoryService) SeedDefaults() error {
	if m.seedDefaultsFn != nil {
		return m.seedDefaultsFn()
	}
	return nil
}

func (m *mockCategoryService) ListCategories(userID string) ([]models.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(userID)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) CreateCategory(userID, name, icon, color string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name, icon, color)
	}
	return &models.Category{Name: name, Icon: icon, Color: color}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID string, name, icon, color *string) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, name, icon, color)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

// --- banks ---

type mockBankService struct {
	listBanksFn   func(bankType *models.BankType) ([]models.Bank, error)
	getBankByIDFn func(bankID string) (*models.Bank, error)
}

func (m *mockBankService) SeedBanks() error { return nil }

func (m *mockBankService) ListBanks(bankType *models.BankType) ([]models.Bank, error) {
	if m.listBanksFn != nil {
		return m.listBanksFn(bankType)
	}
	return []models.Bank{}, nil
}

func (m *mockBankService) GetBankByID(bankID string) (*models.Bank, error) {
	if m.getBankByIDFn != nil {
		return m.getBankByIDFn(bankID)
	}
	return &models.Bank{}, nil
}

// --- insights ---

type mockInsightService struct {
	getActiveInsightsFn   func(userID string, insightType *models.InsightType, now time.Time) ([]models.Insight, error)
	replaceInsightsFn     func(userID string, batch []services.InsightInput, now time.Time) ([]models.Insight, error)
	deleteInsightFn       func(userID, insightID string) error
	clearExpiredFn        func(userID string, now time.Time) (int64, error)
	requestRegenerationFn func(ctx context.Context, userID string, now time.Time) (string, error)
}

func (m *mockInsightService) GetActiveInsights(userID string, insightType *models.InsightType, now time.Time) ([]models.Insight, error) {
	if m.getActiveInsightsFn != nil {
		return m.getActiveInsightsFn(userID, insightType, now)
	}
	return []models.Insight{}, nil
}

func (m *mockInsightService) ReplaceInsights(userID string, batch []services.InsightInput, now time.Time) ([]models.Insight, error) {
	if m.replaceInsightsFn != nil {
		return m.replaceInsightsFn(userID, batch, now)
	}
	return []models.Insight{}, nil
}

func (m *mockInsightService) DeleteInsight(userID, insightID string) error {
	if m.deleteInsightFn != nil {
		return m.deleteInsightFn(userID, insightID)
	}
	return nil
}

func (m *mockInsightService) ClearExpired(userID string, now time.Time) (int64, error) {
	if m.clearExpiredFn != nil {
		return m.clearExpiredFn(userID, now)
	}
	return 0, nil
}

func (m *mockInsightService) RequestRegeneration(ctx context.Context, userID string, now time.Time) (string, error) {
	if m.requestRegenerationFn != nil {
		return m.requestRegenerationFn(ctx, userID, now)
	}
	return "", nil
}

// --- users ---

type mockUserService struct {
	ensureUserFn    func(externalID, email, name string) (*models.User, error)
	getUserByIDFn   func(id string) (*models.User, error)
	updateProfileFn func(userID string, name, currency *string) (*models.User, error)
}

func (m *mockUserService) EnsureUser(externalID, email, name string) (*models.User, error) {
	if m.ensureUserFn != nil {
		return m.ensureUserFn(externalID, email, name)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) UpdateProfile(userID string, name, currency *string) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(userID, name, currency)
	}
	return &models.User{}, nil
}
