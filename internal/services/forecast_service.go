package services

import (
	"time"

	"gorm.io/gorm"

	"pitaka/internal/forecast"
)

// forecastHistoryMonths is the length of history the forecaster reads.
const forecastHistoryMonths = 6

// forecastService projects next month's spend.
type forecastService struct {
	db *gorm.DB
}

// NewForecastService creates a new ForecastServicer.
func NewForecastService(db *gorm.DB) ForecastServicer {
	return &forecastService{db: db}
}

// PredictBudget forecasts next month's spend, overall or for one category,
// from the six months ending with the month containing now.
func (s *forecastService) PredictBudget(userID string, categoryID *string, now time.Time) (*forecast.Prediction, error) {
	if categoryID != nil {
		if _, err := findCategory(s.db, userID, *categoryID); err != nil {
			return nil, err
		}
	}
	history, err := spendingHistory(s.db, userID, forecastHistoryMonths, now)
	if err != nil {
		return nil, err
	}
	prediction := forecast.Predict(history, categoryID)
	return &prediction, nil
}
