package models

import (
	"encoding/json"
	"time"

	"pitaka/internal/uuid"

	"gorm.io/gorm"
)

// InsightType is the kind of generated insight.
type InsightType string

const (
	InsightSpendingPattern  InsightType = "spending_pattern"
	InsightBudgetPrediction InsightType = "budget_prediction"
	InsightAnomaly          InsightType = "anomaly"
	InsightSavingTip        InsightType = "saving_tip"
)

// Valid reports whether t is a known insight type.
func (t InsightType) Valid() bool {
	switch t {
	case InsightSpendingPattern, InsightBudgetPrediction, InsightAnomaly, InsightSavingTip:
		return true
	}
	return false
}

// Insight is a cached, expiring piece of generated advice. Batches replace
// each other wholesale, so rows are hard-deleted.
type Insight struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      InsightType     `gorm:"not null" json:"type"`
	Title     string          `gorm:"not null" json:"title"`
	Content   string          `gorm:"not null" json:"content"`
	Data      json.RawMessage `gorm:"type:text" json:"data,omitempty"`
	ExpiresAt time.Time       `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (i *Insight) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New()
	}
	i.ExpiresAt = i.ExpiresAt.UTC()
	return nil
}
