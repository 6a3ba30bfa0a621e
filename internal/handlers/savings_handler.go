package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
	"pitaka/internal/services"
)

// SavingsHandler handles savings account and ledger requests.
type SavingsHandler struct {
	savingsService services.SavingsServicer
	auditService   services.AuditServicer
	defaultLoc     *time.Location
}

// NewSavingsHandler creates a new SavingsHandler.
func NewSavingsHandler(savingsService services.SavingsServicer, auditService services.AuditServicer, defaultLoc *time.Location) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService, auditService: auditService, defaultLoc: defaultLoc}
}

// CreateSavingsAccountRequest represents the request payload for opening a savings account.
type CreateSavingsAccountRequest struct {
	BankID         string          `json:"bank_id" binding:"required,uuid"`
	AccountName    string          `json:"account_name" binding:"required,min=1,max=100"`
	OpeningBalance decimal.Decimal `json:"opening_balance" swaggertype:"string" example:"10000.00"`
	AccountType    string          `json:"account_type" binding:"required,savings_account_type" example:"savings"`
	InterestRate   *float64        `json:"interest_rate" binding:"omitempty,min=0,max=100"`
	MaturityDate   *string         `json:"maturity_date"`
}

// UpdateSavingsAccountRequest represents the request payload for editing a savings account.
type UpdateSavingsAccountRequest struct {
	AccountName  *string  `json:"account_name" binding:"omitempty,min=1,max=100"`
	InterestRate *float64 `json:"interest_rate" binding:"omitempty,min=0,max=100"`
	MaturityDate *string  `json:"maturity_date"`
}

// SetBalanceRequest represents the request payload for overwriting a balance.
type SetBalanceRequest struct {
	Balance decimal.Decimal `json:"balance" swaggertype:"string" example:"12500.00"`
}

// PostSavingsTransactionRequest represents the request payload for a ledger entry.
type PostSavingsTransactionRequest struct {
	Type        string          `json:"type" binding:"required,savings_tx_type" example:"deposit"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"500.00"`
	Description string          `json:"description" binding:"max=500"`
	Date        *string         `json:"date"`
}

func (h *SavingsHandler) optionalDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := parseFlexibleTime(*v, h.defaultLoc)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return &t, nil
}

// CreateAccount handles opening a savings account.
// @Summary     Create savings account
// @Description Open a savings account or time deposit at a bank from the directory
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSavingsAccountRequest true "Account details"
// @Success     201 {object} models.SavingsAccount "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bank not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/accounts [post]
func (h *SavingsHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSavingsAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	maturity, err := h.optionalDate(req.MaturityDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.savingsService.CreateAccount(userID, services.SavingsAccountInput{
		BankID:         req.BankID,
		AccountName:    req.AccountName,
		OpeningBalance: req.OpeningBalance,
		AccountType:    models.SavingsAccountType(req.AccountType),
		InterestRate:   req.InterestRate,
		MaturityDate:   maturity,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SAVINGS_ACCOUNT", "savings_account", account.ID, c.ClientIP(),
		map[string]interface{}{"bank_id": account.BankID, "account_type": account.AccountType, "balance": account.Balance.String()})

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// ListAccounts handles listing the user's savings accounts.
// @Summary     List savings accounts
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Filter by account type (savings, time_deposit)"
// @Success     200 {array}  models.SavingsAccount "Accounts"
// @Failure     400 {object} ErrorResponse "Invalid account type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/accounts [get]
func (h *SavingsHandler) ListAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var accountType *models.SavingsAccountType
	if v := c.Query("type"); v != "" {
		t := models.SavingsAccountType(v)
		if t != models.SavingsAccountTypeSavings && t != models.SavingsAccountTypeTimeDeposit {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account type"))
			return
		}
		accountType = &t
	}

	accounts, err := h.savingsService.ListAccounts(userID, accountType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// GetAccount handles retrieving one savings account.
// @Summary     Get savings account
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.SavingsAccount "Account"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/accounts/{id} [get]
func (h *SavingsHandler) GetAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.savingsService.GetAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateAccount handles editing account details.
// @Summary     Update savings account
// @Description Edit name, interest rate or maturity date; balances change through transactions
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                      true "Account ID"
// @Param       request body UpdateSavingsAccountRequest true "Changed fields"
// @Success     200 {object} models.SavingsAccount "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/accounts/{id} [put]
func (h *SavingsHandler) UpdateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSavingsAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	maturity, err := h.optionalDate(req.MaturityDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.savingsService.UpdateAccount(userID, accountID, services.SavingsAccountUpdate{
		AccountName:  req.AccountName,
		InterestRate: req.InterestRate,
		MaturityDate: maturity,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SAVINGS_ACCOUNT", "savings_account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// SetBalance handles overwriting an account balance.
// @Summary     Set savings balance
// @Description Overwrite the balance without writing a ledger entry
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Account ID"
// @Param       request body SetBalanceRequest true "New balance"
// @Success     200 {object} models.SavingsAccount "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/accounts/{id}/balance [put]
func (h *SavingsHandler) SetBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.savingsService.SetBalance(userID, accountID, req.Balance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SET_SAVINGS_BALANCE", "savings_account", accountID, c.ClientIP(),
		map[string]interface{}{"balance": account.Balance.String()})

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount handles closing a savings account.
// @Summary     Delete savings account
// @Description Delete an account and its ledger; expenses paid from it are kept unlinked
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/accounts/{id} [delete]
func (h *SavingsHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.savingsService.DeleteAccount(userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SAVINGS_ACCOUNT", "savings_account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Savings account deleted successfully"})
}

// PostTransaction handles recording a ledger entry against an account.
// @Summary     Post savings transaction
// @Description Record a deposit, withdrawal or interest credit and adjust the balance
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                        true "Account ID"
// @Param       request body PostSavingsTransactionRequest true "Transaction details"
// @Success     201 {object} models.SavingsTransaction "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/accounts/{id}/transactions [post]
func (h *SavingsHandler) PostTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PostSavingsTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date := timeNow()
	if d, dateErr := h.optionalDate(req.Date); dateErr != nil {
		respondWithError(c, dateErr)
		return
	} else if d != nil {
		date = *d
	}

	tx, err := h.savingsService.PostTransaction(userID, accountID, models.SavingsTransactionType(req.Type), req.Amount, req.Description, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "POST_SAVINGS_TRANSACTION", "savings_transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"account_id": accountID, "type": tx.Type, "amount": tx.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// ListTransactions handles listing ledger entries.
// @Summary     List savings transactions
// @Description Paginated ledger entries across all accounts, or one account
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       account_id query string false "Filter by account"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.SavingsTransaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/transactions [get]
func (h *SavingsHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := optionalUUIDQuery(c, "account_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.savingsService.ListTransactions(userID, accountID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSummary handles the savings totals.
// @Summary     Savings summary
// @Description Total balance split by account type
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SavingsSummary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/summary [get]
func (h *SavingsHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.savingsService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
