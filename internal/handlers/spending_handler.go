package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pitaka/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SpendingHandler serves the spending aggregations.
type SpendingHandler struct {
	expenseService services.ExpenseServicer
	reportService  services.ReportServicer
	defaultLoc     *time.Location
}

// NewSpendingHandler creates a new SpendingHandler. Month windows are
// resolved in defaultLoc unless the request names a tz.
func NewSpendingHandler(expenseService services.ExpenseServicer, reportService services.ReportServicer, defaultLoc *time.Location) *SpendingHandler {
	return &SpendingHandler{expenseService: expenseService, reportService: reportService, defaultLoc: defaultLoc}
}

// GetMonthlySpending handles the monthly spending summary.
// @Summary     Monthly spending
// @Description Total and per-category spending for one calendar month
// @Tags        spending
// @Produce     json
// @Security    BearerAuth
// @Param       month query int    false "Month as YYYYMM (default current month)"
// @Param       tz    query string false "IANA time zone used for the month window"
// @Success     200 {object} spending.Summary "Monthly summary"
// @Failure     400 {object} ErrorResponse "Invalid month or time zone"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spending/monthly [get]
func (h *SpendingHandler) GetMonthlySpending(c *gin.Context) {
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

	summary, err := h.expenseService.GetMonthlySpending(userID, month, loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetSpendingHistory handles the month-by-month spending history.
// @Summary     Spending history
// @Description One summary per month, most recent first, with empty months included
// @Tags        spending
// @Produce     json
// @Security    BearerAuth
// @Param       months query int    false "Number of months (default 6, max 60)"
// @Param       tz     query string false "IANA time zone used for the month windows"
// @Success     200 {array}  spending.Summary "Spending history"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spending/history [get]
func (h *SpendingHandler) GetSpendingHistory(c *gin.Context) {
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
	months, err := intQuery(c, "months")
	if err != nil {
		respondWithError(c, err)
		return
	}

	history, err := h.expenseService.GetSpendingHistory(userID, months, timeNow().In(loc))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// ExportSpendingHistory handles the spreadsheet download of the history.
// @Summary     Export spending history
// @Description Spending history as an XLSX workbook with summary and per-category sheets
// @Tags        spending
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       months query int    false "Number of months (default 6, max 60)"
// @Param       tz     query string false "IANA time zone used for the month windows"
// @Success     200 {file}   file "XLSX workbook"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spending/history/export [get]
func (h *SpendingHandler) ExportSpendingHistory(c *gin.Context) {
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
	months, err := intQuery(c, "months")
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := timeNow().In(loc)
	var buf bytes.Buffer
	if err := h.reportService.WriteSpendingHistory(&buf, userID, months, now); err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("spending-%s.xlsx", now.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetMonthCalendar handles the per-day view of one month.
// @Summary     Spending calendar
// @Description One month's expenses grouped by local day
// @Tags        spending
// @Produce     json
// @Security    BearerAuth
// @Param       month query int    false "Month as YYYYMM (default current month)"
// @Param       tz    query string false "IANA time zone used for day boundaries"
// @Success     200 {object} spending.Calendar "Calendar"
// @Failure     400 {object} ErrorResponse "Invalid month or time zone"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spending/calendar [get]
func (h *SpendingHandler) GetMonthCalendar(c *gin.Context) {
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

	calendar, err := h.expenseService.GetMonthCalendar(userID, month, loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"calendar": calendar})
}
