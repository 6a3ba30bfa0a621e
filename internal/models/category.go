package models

// Category groups expenses. Default categories are shared by every user and
// have no owner; they can never be modified or deleted.
type Category struct {
	Base
	UserID    *string `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name      string  `gorm:"not null" json:"name"`
	Icon      string  `gorm:"not null" json:"icon"`
	Color     string  `gorm:"not null" json:"color"`
	IsDefault bool    `gorm:"not null;default:false" json:"is_default"`
}
