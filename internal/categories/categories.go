// Package categories manages per-user task category labels.
package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dbutil "github.com/syariahos/syariahos-api/internal/db"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/validation"
	"gorm.io/gorm"
)

// ErrNotFound is returned for missing or foreign categories.
var ErrNotFound = errors.New("categories: not found")

const messageNameTaken = "The name has already been taken."

// Service implements category operations scoped to one owner.
type Service struct {
	db *gorm.DB
}

// NewService constructs a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the owner's categories by name.
func (s *Service) List(ctx context.Context, userID uint64) ([]models.Category, error) {
	var rows []models.Category
	if errFind := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("categories: list: %w", errFind)
	}
	return rows, nil
}

// Create adds a category; names are unique per owner.
func (s *Service) Create(ctx context.Context, userID uint64, name, color string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, validation.Field("name", "The name field is required.")
	}
	conn := s.db.WithContext(ctx)
	var count int64
	if errCount := conn.Model(&models.Category{}).Where("user_id = ? AND name = ?", userID, name).Count(&count).Error; errCount != nil {
		return models.Category{}, fmt.Errorf("categories: check name: %w", errCount)
	}
	if count > 0 {
		return models.Category{}, validation.Field("name", messageNameTaken)
	}
	row := models.Category{UserID: userID, Name: name, Color: strings.TrimSpace(color)}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			return models.Category{}, validation.Field("name", messageNameTaken)
		}
		return models.Category{}, fmt.Errorf("categories: create: %w", errCreate)
	}
	return row, nil
}

// Delete removes an owned category. Tasks keep their label.
func (s *Service) Delete(ctx context.Context, userID, id uint64) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Category{})
	if res.Error != nil {
		return fmt.Errorf("categories: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
