package models

// BankType classifies where a savings account is held.
type BankType string

const (
	BankTypeBank        BankType = "bank"
	BankTypeDigitalBank BankType = "digital_bank"
	BankTypeEWallet     BankType = "e_wallet"
)

// Bank is seeded reference data.
type Bank struct {
	Base
	Name         string   `gorm:"uniqueIndex;not null" json:"name"`
	ShortName    string   `gorm:"not null" json:"short_name"`
	Color        string   `gorm:"not null" json:"color"`
	InterestRate *string  `json:"interest_rate,omitempty"`
	Type         BankType `gorm:"not null" json:"type"`
	IsDefault    bool     `gorm:"not null;default:false" json:"is_default"`
}
