package models

// User is the local record for an identity-provider subject.
type User struct {
	Base
	ExternalID string `gorm:"uniqueIndex;not null" json:"-"`
	Email      string `gorm:"not null" json:"email"`
	Name       string `json:"name,omitempty"`
	Currency   string `gorm:"size:3;not null;default:'PHP'" json:"currency"`
}
