package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/events"
	"pitaka/internal/forecast"
	"pitaka/internal/logger"
	"pitaka/internal/models"
	"pitaka/internal/spending"
)

// insightHistoryMonths is how much history is sent to the generator.
const insightHistoryMonths = 3

// InsightPayload is the numeric summary the external generator works from.
type InsightPayload struct {
	UserID     string               `json:"user_id"`
	Currency   string               `json:"currency"`
	History    []spending.Summary   `json:"history"`
	Categories map[string]string    `json:"categories"`
	Budget     *BudgetStatus        `json:"budget"`
	Forecast   *forecast.Prediction `json:"forecast"`
}

// insightService manages the per-user insight cache.
type insightService struct {
	db        *gorm.DB
	publisher events.Publisher
	ttl       time.Duration
	budgets   BudgetServicer
	forecasts ForecastServicer
}

// NewInsightService creates a new InsightServicer. Generated insights live
// for ttl.
func NewInsightService(db *gorm.DB, publisher events.Publisher, ttl time.Duration) InsightServicer {
	return &insightService{
		db:        db,
		publisher: publisher,
		ttl:       ttl,
		budgets:   NewBudgetService(db),
		forecasts: NewForecastService(db),
	}
}

// GetActiveInsights returns the user's unexpired insights, newest first,
// optionally of one type.
func (s *insightService) GetActiveInsights(userID string, insightType *models.InsightType, now time.Time) ([]models.Insight, error) {
	q := s.db.Where("user_id = ? AND expires_at > ?", userID, now.UTC())
	if insightType != nil {
		q = q.Where("type = ?", *insightType)
	}
	var insights []models.Insight
	if err := q.Order("created_at DESC").Find(&insights).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return insights, nil
}

// ReplaceInsights swaps the user's active insights for batch. The user row
// is locked so concurrent replacements apply one after the other and never
// interleave.
func (s *insightService) ReplaceInsights(userID string, batch []InsightInput, now time.Time) ([]models.Insight, error) {
	insights := make([]models.Insight, 0, len(batch))
	expiresAt := now.Add(s.ttl).UTC()
	for _, in := range batch {
		if !in.Type.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown insight type: "+string(in.Type))
		}
		title, content := strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
		if title == "" || content == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "insight title and content are required")
		}
		insights = append(insights, models.Insight{
			UserID:    userID,
			Type:      in.Type,
			Title:     title,
			Content:   content,
			Data:      in.Data,
			ExpiresAt: expiresAt,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Where("user_id = ? AND expires_at > ?", userID, now.UTC()).
			Delete(&models.Insight{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(insights) == 0 {
			return nil
		}
		if err := tx.Create(&insights).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return insights, nil
}

// DeleteInsight removes one insight.
func (s *insightService) DeleteInsight(userID, insightID string) error {
	result := s.db.Where("id = ? AND user_id = ?", insightID, userID).Delete(&models.Insight{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrInsightNotFound
	}
	return nil
}

// ClearExpired deletes the user's expired insights and reports how many
// were removed.
func (s *insightService) ClearExpired(userID string, now time.Time) (int64, error) {
	result := s.db.Where("user_id = ? AND expires_at <= ?", userID, now.UTC()).Delete(&models.Insight{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// RequestRegeneration assembles the user's spending summary and hands it
// to the generator. Stored insights are left untouched; the new batch
// arrives later through ReplaceInsights. It returns the request id.
func (s *insightService) RequestRegeneration(ctx context.Context, userID string, now time.Time) (string, error) {
	payload, err := s.buildPayload(ctx, userID, now)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	req := events.NewInsightRequest(userID, body)
	if err := s.publisher.PublishInsightRequest(ctx, req); err != nil {
		logger.Get().Errorw("failed to publish insight request", "error", err, "user_id", userID)
		return "", apperrors.Wrap(apperrors.ErrInsightPublishFailed, err)
	}
	return req.RequestID, nil
}

// buildPayload gathers the generator's input with concurrent reads. Each
// part is consistent on its own; the parts are not read from one snapshot,
// so a write landing mid-build can make history and budget status disagree
// until the next regeneration.
func (s *insightService) buildPayload(ctx context.Context, userID string, now time.Time) (*InsightPayload, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	payload := &InsightPayload{UserID: userID, Currency: user.Currency, Categories: map[string]string{}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		history, err := spendingHistory(s.db.WithContext(gctx), userID, insightHistoryMonths, now)
		payload.History = history
		return err
	})
	g.Go(func() error {
		var categories []models.Category
		if err := s.db.WithContext(gctx).
			Where("is_default = ? OR user_id = ?", true, userID).
			Find(&categories).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		names := make(map[string]string, len(categories))
		for _, c := range categories {
			names[c.ID] = c.Name
		}
		payload.Categories = names
		return nil
	})
	g.Go(func() error {
		status, err := s.budgets.GetCurrentMonthStatus(userID, now)
		payload.Budget = status
		return err
	})
	g.Go(func() error {
		prediction, err := s.forecasts.PredictBudget(userID, nil, now)
		payload.Forecast = prediction
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return payload, nil
}
