package events

import (
	"encoding/json"
	"time"

	"pitaka/internal/uuid"
)

// InsightRequest asks the external generator to produce a fresh insight
// batch for one user. Payload carries the numeric summary the generator
// works from; the generator answers through the internal ingestion route.
type InsightRequest struct {
	RequestID string          `json:"request_id"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewInsightRequest wraps payload in a request addressed to userID.
func NewInsightRequest(userID string, payload json.RawMessage) *InsightRequest {
	return &InsightRequest{
		RequestID: uuid.New(),
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ToJSON converts the message to JSON bytes
func (m *InsightRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InsightRequestFromJSON decodes a message produced by ToJSON.
func InsightRequestFromJSON(data []byte) (*InsightRequest, error) {
	var msg InsightRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
