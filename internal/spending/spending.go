// Package spending aggregates expenses into monthly summaries, gap-free
// histories and budget usage figures. It performs no I/O; callers load the
// expenses and hand them over together with the windows to bucket them into.
package spending

import (
	"sort"

	"pitaka/internal/models"
	"pitaka/internal/period"

	"github.com/shopspring/decimal"
)

// Summary is the spending of one user in one calendar month.
type Summary struct {
	Month        period.MonthKey            `json:"month"`
	Total        decimal.Decimal            `json:"total"`
	ByCategory   map[string]decimal.Decimal `json:"by_category"`
	ExpenseCount int                        `json:"expense_count"`
}

// CategoryTotal returns the spend recorded against categoryID, or zero.
func (s Summary) CategoryTotal(categoryID string) decimal.Decimal {
	if v, ok := s.ByCategory[categoryID]; ok {
		return v
	}
	return decimal.Zero
}

func newSummary(month period.MonthKey) Summary {
	return Summary{
		Month:      month,
		Total:      decimal.Zero,
		ByCategory: map[string]decimal.Decimal{},
	}
}

func (s *Summary) add(e models.Expense) {
	s.Total = s.Total.Add(e.Amount)
	s.ByCategory[e.CategoryID] = s.CategoryTotal(e.CategoryID).Add(e.Amount)
	s.ExpenseCount++
}

// Aggregate sums the expenses that fall inside w. Expenses outside the
// window are ignored, so Total always equals the sum of ByCategory.
func Aggregate(expenses []models.Expense, w period.Window) Summary {
	s := newSummary(w.Month)
	for _, e := range expenses {
		if w.Contains(e.Date) {
			s.add(e)
		}
	}
	return s
}

// BuildHistory buckets expenses into one Summary per window, in the order
// the windows are given. Months without expenses are present with zero
// totals.
func BuildHistory(expenses []models.Expense, windows []period.Window) []Summary {
	history := make([]Summary, len(windows))
	for i, w := range windows {
		history[i] = newSummary(w.Month)
	}
	for _, e := range expenses {
		for i, w := range windows {
			if w.Contains(e.Date) {
				history[i].add(e)
				break
			}
		}
	}
	return history
}

// Day is the spending recorded on one local calendar day.
type Day struct {
	Date     string           `json:"date"`
	Total    decimal.Decimal  `json:"total"`
	Count    int              `json:"count"`
	Expenses []models.Expense `json:"expenses"`
}

// Calendar is a month of expenses grouped by local day.
type Calendar struct {
	Month    period.MonthKey  `json:"month"`
	Total    decimal.Decimal  `json:"total"`
	Expenses []models.Expense `json:"expenses"`
	ByDay    []Day            `json:"by_day"`
}

// BuildCalendar groups the expenses inside w by calendar day in the
// window's location. Days are ordered ascending; days without expenses are
// omitted.
func BuildCalendar(expenses []models.Expense, w period.Window) Calendar {
	cal := Calendar{Month: w.Month, Total: decimal.Zero, Expenses: []models.Expense{}, ByDay: []Day{}}
	loc := w.Start.Location()
	index := map[string]int{}
	for _, e := range expenses {
		if !w.Contains(e.Date) {
			continue
		}
		key := e.Date.In(loc).Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(cal.ByDay)
			index[key] = i
			cal.ByDay = append(cal.ByDay, Day{Date: key, Total: decimal.Zero})
		}
		cal.ByDay[i].Total = cal.ByDay[i].Total.Add(e.Amount)
		cal.ByDay[i].Count++
		cal.ByDay[i].Expenses = append(cal.ByDay[i].Expenses, e)
		cal.Total = cal.Total.Add(e.Amount)
		cal.Expenses = append(cal.Expenses, e)
	}
	sort.Slice(cal.ByDay, func(a, b int) bool { return cal.ByDay[a].Date < cal.ByDay[b].Date })
	return cal
}
