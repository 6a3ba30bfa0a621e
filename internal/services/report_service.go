package services

import (
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
)

const (
	summarySheet  = "Summary"
	categorySheet = "By Category"
)

// reportService renders spending reports as XLSX workbooks.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// WriteSpendingHistory writes a workbook with one summary row per month and
// a per-category breakdown, most recent month first.
func (s *reportService) WriteSpendingHistory(w io.Writer, userID string, monthsBack int, now time.Time) error {
	history, err := spendingHistory(s.db, userID, monthsBack, now)
	if err != nil {
		return err
	}

	var categories []models.Category
	if err := s.db.Unscoped().
		Where("is_default = ? OR user_id = ?", true, userID).
		Find(&categories).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := f.NewSheet(categorySheet); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := writeRow(f, summarySheet, 1, "Month", "Total", "Expenses"); err != nil {
		return err
	}
	if err := writeRow(f, categorySheet, 1, "Month", "Category", "Amount"); err != nil {
		return err
	}

	categoryRow := 2
	for i, month := range history {
		if err := writeRow(f, summarySheet, i+2, month.Month.String(), month.Total.InexactFloat64(), month.ExpenseCount); err != nil {
			return err
		}

		ids := make([]string, 0, len(month.ByCategory))
		for id := range month.ByCategory {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(a, b int) bool { return categoryName(names, ids[a]) < categoryName(names, ids[b]) })
		for _, id := range ids {
			if err := writeRow(f, categorySheet, categoryRow,
				month.Month.String(), categoryName(names, id), month.ByCategory[id].InexactFloat64()); err != nil {
				return err
			}
			categoryRow++
		}
	}

	if err := f.Write(w); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

func categoryName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "Unknown"
}
