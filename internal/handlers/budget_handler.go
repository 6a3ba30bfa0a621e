package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/period"
	"pitaka/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService   services.BudgetServicer
	forecastService services.ForecastServicer
	auditService    services.AuditServicer
	defaultLoc      *time.Location
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(
	budgetService services.BudgetServicer,
	forecastService services.ForecastServicer,
	auditService services.AuditServicer,
	defaultLoc *time.Location,
) *BudgetHandler {
	return &BudgetHandler{
		budgetService:   budgetService,
		forecastService: forecastService,
		auditService:    auditService,
		defaultLoc:      defaultLoc,
	}
}

// SetBudgetRequest represents the request payload for setting a budget.
// Omitting category_id sets the overall budget for the month.
type SetBudgetRequest struct {
	Month      int             `json:"month" binding:"required,month_key"`
	CategoryID *string         `json:"category_id" binding:"omitempty,uuid"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"string" example:"5000.00"`
}

// UpdateBudgetRequest represents the request payload for changing a budget amount.
type UpdateBudgetRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"5000.00"`
}

// SetBudget handles creating or replacing a budget.
// @Summary     Set a budget
// @Description Create the budget for a month and category, or replace its amount if it exists
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetBudgetRequest true "Budget details"
// @Success     200 {object} models.Budget "Budget"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Concurrent duplicate"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.SetBudget(userID, period.MonthKey(req.Month), req.CategoryID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SET_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"month": req.Month, "category_id": req.CategoryID, "amount": req.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetBudgets handles listing the budgets of one month.
// @Summary     Get budgets
// @Description Budgets of one month, overall budget first
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month query int    false "Month as YYYYMM (default current month)"
// @Param       tz    query string false "IANA time zone used to pick the current month"
// @Success     200 {array}  models.Budget "Budgets"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loc, err := requestLocation(c, h.defaultLoc)
	if err != nil {
		respondWithError(c, err)
		return
	}
	month, err := monthQuery(c, "month", timeNow().In(loc))
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetBudgetsByMonth(userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// UpdateBudget handles changing the amount of a budget.
// @Summary     Update budget amount
// @Description Change the amount of an existing budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "New amount"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [patch]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudgetAmount(userID, budgetID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET", "budget", budgetID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Permanently delete a budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetBudgetStatus handles the current month's budget status.
// @Summary     Current budget status
// @Description Current month's budgets against month-to-date spending
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       tz query string false "IANA time zone used for the month window"
// @Success     200 {object} services.BudgetStatus "Budget status"
// @Failure     400 {object} ErrorResponse "Invalid time zone"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/status [get]
func (h *BudgetHandler) GetBudgetStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loc, err := requestLocation(c, h.defaultLoc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.budgetService.GetCurrentMonthStatus(userID, timeNow().In(loc))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetForecast handles the next-month spend projection.
// @Summary     Budget forecast
// @Description Projected spend for next month from the last six months, overall or for one category
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       category_id query string false "Restrict the forecast to one category"
// @Param       tz          query string false "IANA time zone used for the month windows"
// @Success     200 {object} forecast.Prediction "Forecast"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/forecast [get]
func (h *BudgetHandler) GetForecast(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loc, err := requestLocation(c, h.defaultLoc)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := optionalUUIDQuery(c, "category_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	prediction, err := h.forecastService.PredictBudget(userID, categoryID, timeNow().In(loc))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecast": prediction})
}
