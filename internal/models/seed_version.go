package models

import "time"

// SeedVersion records which revision of a reference data set has been
// applied, so corrective passes run exactly once per revision.
type SeedVersion struct {
	Name      string    `gorm:"primaryKey" json:"name"`
	Version   int       `gorm:"not null" json:"version"`
	AppliedAt time.Time `gorm:"not null" json:"applied_at"`
}
