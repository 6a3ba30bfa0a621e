package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/logger"
	"pitaka/internal/models"
)

// DefaultCategories is the catalogue every user starts with.
var DefaultCategories = []models.Category{
	{Name: "Food & Dining", Icon: "fork.knife", Color: "#ef4444"},
	{Name: "Transportation", Icon: "car.fill", Color: "#f97316"},
	{Name: "Shopping", Icon: "bag.fill", Color: "#eab308"},
	{Name: "Entertainment", Icon: "tv.fill", Color: "#84cc16"},
	{Name: "Bills & Utilities", Icon: "bolt.fill", Color: "#22c55e"},
	{Name: "Healthcare", Icon: "heart.fill", Color: "#14b8a6"},
	{Name: "Travel", Icon: "airplane", Color: "#06b6d4"},
	{Name: "Education", Icon: "book.fill", Color: "#3b82f6"},
	{Name: "Personal Care", Icon: "sparkles", Color: "#8b5cf6"},
	{Name: "Groceries", Icon: "cart.fill", Color: "#a855f7"},
	{Name: "Subscriptions", Icon: "repeat", Color: "#ec4899"},
	{Name: "Other", Icon: "ellipsis.circle.fill", Color: "#6b7280"},
}

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// SeedDefaults inserts the default catalogue once. It is a no-op when any
// default category already exists.
func (s *categoryService) SeedDefaults() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("is_default = ?", true).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil
		}

		defaults := make([]models.Category, len(DefaultCategories))
		for i, c := range DefaultCategories {
			defaults[i] = models.Category{Name: c.Name, Icon: c.Icon, Color: c.Color, IsDefault: true}
		}
		if err := tx.Create(&defaults).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		logger.Get().Infow("Seeded default categories", "count", len(defaults))
		return nil
	})
}

// ListCategories returns the default categories followed by the user's own.
func (s *categoryService) ListCategories(userID string) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.
		Where("is_default = ? OR user_id = ?", true, userID).
		Order("is_default DESC").Order("created_at ASC").Order("id ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID returns a default category or one owned by the user.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	return findCategory(s.db, userID, categoryID)
}

func findCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.
		Where("id = ? AND (is_default = ? OR user_id = ?)", categoryID, true, userID).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// CreateCategory creates a custom category for the user.
func (s *categoryService) CreateCategory(userID, name, icon, color string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	if err := s.checkNameAvailable(userID, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID: &userID,
		Name:   name,
		Icon:   icon,
		Color:  color,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

func (s *categoryService) checkNameAvailable(userID, name, exceptID string) error {
	q := s.db.Model(&models.Category{}).
		Where("(is_default = ? OR user_id = ?) AND LOWER(name) = ?", true, userID, strings.ToLower(name))
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

// UpdateCategory changes a custom category. Default categories are immutable.
func (s *categoryService) UpdateCategory(userID, categoryID string, name, icon, color *string) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.IsDefault {
		return nil, apperrors.ErrDefaultCategoryImmutable
	}

	updates := make(map[string]interface{})
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		if err := s.checkNameAvailable(userID, trimmed, category.ID); err != nil {
			return nil, err
		}
		updates["name"] = trimmed
	}
	if icon != nil {
		updates["icon"] = *icon
	}
	if color != nil {
		updates["color"] = *color
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return category, nil
}

// DeleteCategory soft-deletes a custom category. Existing expenses keep
// their reference.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return apperrors.ErrDefaultCategoryImmutable
	}
	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
