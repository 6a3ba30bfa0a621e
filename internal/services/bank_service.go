package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/logger"
	"pitaka/internal/models"
)

// bankSeedName keys the bank directory in the seed_versions table. Bump
// bankSeedVersion whenever DefaultBanks changes so existing rows are
// corrected on the next start.
const (
	bankSeedName    = "banks"
	bankSeedVersion = 2
)

func rate(s string) *string { return &s }

// DefaultBanks is the seeded bank directory.
var DefaultBanks = []models.Bank{
	{Name: "Maya Bank", ShortName: "Maya", Color: "#00D09C", InterestRate: rate("5.25% - 5.75%"), Type: models.BankTypeDigitalBank},
	{Name: "Tonik Digital Bank", ShortName: "Tonik", Color: "#7B68EE", InterestRate: rate("4.35% - 6%"), Type: models.BankTypeDigitalBank},
	{Name: "GoTyme Bank", ShortName: "GoTyme", Color: "#00CED1", InterestRate: rate("5% - 5.5%"), Type: models.BankTypeDigitalBank},
	{Name: "UnionDigital Bank", ShortName: "UDigital", Color: "#4B0082", InterestRate: rate("4% - 4.125%"), Type: models.BankTypeDigitalBank},
	{Name: "CIMB Bank", ShortName: "CIMB", Color: "#ED1C24", InterestRate: rate("5.5% - 5.75%"), Type: models.BankTypeDigitalBank},
	{Name: "ING Bank", ShortName: "ING", Color: "#FF6200", InterestRate: rate("4% - 4.5%"), Type: models.BankTypeDigitalBank},
	{Name: "Seabank", ShortName: "SeaBank", Color: "#00A9E0", InterestRate: rate("5% - 6%"), Type: models.BankTypeDigitalBank},
	{Name: "OwnBank", ShortName: "OwnBank", Color: "#000000", InterestRate: rate("5.3% - 6.5%"), Type: models.BankTypeDigitalBank},
	{Name: "NetBank Mobile", ShortName: "NetBank", Color: "#6B5B95", InterestRate: rate("6% - 7%"), Type: models.BankTypeDigitalBank},
	{Name: "UNO Digital Bank", ShortName: "UNO", Color: "#8B008B", InterestRate: rate("4.5% - 5.25%"), Type: models.BankTypeDigitalBank},

	{Name: "BPI", ShortName: "BPI", Color: "#C41E3A", InterestRate: rate("0.25% - 1%"), Type: models.BankTypeBank},
	{Name: "BDO", ShortName: "BDO", Color: "#003DA5", InterestRate: rate("0.25% - 0.5%"), Type: models.BankTypeBank},
	{Name: "Metrobank", ShortName: "Metrobank", Color: "#00529B", InterestRate: rate("0.25% - 0.5%"), Type: models.BankTypeBank},
	{Name: "Security Bank", ShortName: "SecBank", Color: "#0066B3", InterestRate: rate("0.25% - 1%"), Type: models.BankTypeBank},
	{Name: "Landbank", ShortName: "Landbank", Color: "#008751", InterestRate: rate("0.25% - 0.5%"), Type: models.BankTypeBank},
	{Name: "PNB", ShortName: "PNB", Color: "#003366", InterestRate: rate("0.25% - 0.5%"), Type: models.BankTypeBank},
	{Name: "RCBC", ShortName: "RCBC", Color: "#DAA520", InterestRate: rate("0.25% - 1%"), Type: models.BankTypeBank},
	{Name: "Chinabank", ShortName: "Chinabank", Color: "#B22222", InterestRate: rate("0.25% - 0.5%"), Type: models.BankTypeBank},
	{Name: "EastWest Bank", ShortName: "EastWest", Color: "#4169E1", InterestRate: rate("0.25% - 1%"), Type: models.BankTypeBank},
	{Name: "UnionBank", ShortName: "UnionBank", Color: "#FF8C00", InterestRate: rate("0.5% - 2%"), Type: models.BankTypeBank},

	{Name: "GCash", ShortName: "GCash", Color: "#007DFE", InterestRate: rate("4% - 6%"), Type: models.BankTypeEWallet},
	{Name: "PayMaya", ShortName: "PayMaya", Color: "#00D09C", InterestRate: rate("5%"), Type: models.BankTypeEWallet},
	{Name: "GrabPay", ShortName: "GrabPay", Color: "#00B14F", InterestRate: rate("3%"), Type: models.BankTypeEWallet},
	{Name: "ShopeePay", ShortName: "ShopeePay", Color: "#EE4D2D", InterestRate: rate("3%"), Type: models.BankTypeEWallet},
}

// bankService serves the seeded bank directory.
type bankService struct {
	db *gorm.DB
}

// NewBankService creates a new BankServicer.
func NewBankService(db *gorm.DB) BankServicer {
	return &bankService{db: db}
}

// SeedBanks inserts missing default banks and, when the recorded seed
// version is behind bankSeedVersion, rewrites the short names of existing
// default banks to the current values.
func (s *bankService) SeedBanks() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var seed models.SeedVersion
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", bankSeedName).First(&seed).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err == nil && seed.Version >= bankSeedVersion {
			return nil
		}

		var existing []models.Bank
		if err := tx.Find(&existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		byName := make(map[string]models.Bank, len(existing))
		for _, b := range existing {
			byName[b.Name] = b
		}

		var inserted, corrected int
		for _, def := range DefaultBanks {
			current, ok := byName[def.Name]
			if !ok {
				bank := def
				bank.IsDefault = true
				if err := tx.Create(&bank).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
				inserted++
				continue
			}
			if current.ShortName != def.ShortName {
				if err := tx.Model(&current).Update("short_name", def.ShortName).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
				corrected++
			}
		}

		seed = models.SeedVersion{Name: bankSeedName, Version: bankSeedVersion, AppliedAt: time.Now().UTC()}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"version", "applied_at"}),
		}).Create(&seed).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		logger.Get().Infow("Bank directory seeded",
			"version", bankSeedVersion,
			"inserted", inserted,
			"short_names_corrected", corrected,
		)
		return nil
	})
}

// ListBanks returns the directory ordered by type then name, optionally
// restricted to one type.
func (s *bankService) ListBanks(bankType *models.BankType) ([]models.Bank, error) {
	q := s.db.Model(&models.Bank{})
	if bankType != nil {
		q = q.Where("type = ?", *bankType)
	}
	var banks []models.Bank
	if err := q.Order("type ASC").Order("name ASC").Find(&banks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return banks, nil
}

// GetBankByID returns one bank.
func (s *bankService) GetBankByID(bankID string) (*models.Bank, error) {
	var bank models.Bank
	if err := s.db.Where("id = ?", bankID).First(&bank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBankNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &bank, nil
}
