// Package directory manages each user's tree of Islamic reference material.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotFound is returned for missing or foreign nodes.
var ErrNotFound = errors.New("directory: not found")

// Input holds the writable fields of a node.
type Input struct {
	ParentID  *uint64
	Name      string
	Type      string
	SortOrder int
	Content   *models.DirectoryContent
}

// Service implements owner-scoped tree operations.
type Service struct {
	db *gorm.DB
}

// NewService constructs a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Tree returns the owner's nodes assembled into a forest.
func (s *Service) Tree(ctx context.Context, userID uint64) ([]*Node, error) {
	rows, errRows := ownedRows(s.db.WithContext(ctx), userID)
	if errRows != nil {
		return nil, errRows
	}
	return BuildTree(rows), nil
}

func ownedRows(tx *gorm.DB, userID uint64) ([]models.DirectoryItem, error) {
	var rows []models.DirectoryItem
	if errFind := tx.Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("directory: list: %w", errFind)
	}
	return rows, nil
}

func findOwned(tx *gorm.DB, userID, id uint64) (models.DirectoryItem, error) {
	var item models.DirectoryItem
	if errFind := tx.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.DirectoryItem{}, ErrNotFound
		}
		return models.DirectoryItem{}, fmt.Errorf("directory: find: %w", errFind)
	}
	return item, nil
}

// Create adds a node under an owned folder or at the root.
func (s *Service) Create(ctx context.Context, userID uint64, in Input) (models.DirectoryItem, error) {
	var out models.DirectoryItem
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := models.DirectoryItem{UserID: userID}
		if errApply := apply(tx, &item, in); errApply != nil {
			return errApply
		}
		if errCreate := tx.Create(&item).Error; errCreate != nil {
			return fmt.Errorf("directory: create: %w", errCreate)
		}
		out = item
		return nil
	})
	return out, errTx
}

// Update rewrites a node. Moving a node under itself or one of its
// descendants is rejected.
func (s *Service) Update(ctx context.Context, userID, id uint64, in Input) (models.DirectoryItem, error) {
	var out models.DirectoryItem
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, errFind := findOwned(tx, userID, id)
		if errFind != nil {
			return errFind
		}
		if in.ParentID != nil {
			if *in.ParentID == item.ID {
				return validation.Field("parent_id", "A directory item cannot be its own parent.")
			}
			rows, errRows := ownedRows(tx, userID)
			if errRows != nil {
				return errRows
			}
			for _, descendant := range descendants(rows, item.ID) {
				if descendant == *in.ParentID {
					return validation.Field("parent_id", "A directory item cannot be moved into its own descendant.")
				}
			}
		}
		if item.IsFolder() && in.Type == models.DirectoryTypeItem {
			var children int64
			if errCount := tx.Model(&models.DirectoryItem{}).Where("parent_id = ?", item.ID).Count(&children).Error; errCount != nil {
				return fmt.Errorf("directory: count children: %w", errCount)
			}
			if children > 0 {
				return validation.Field("type", "A folder with children cannot become an item.")
			}
		}
		if errApply := apply(tx, &item, in); errApply != nil {
			return errApply
		}
		if errSave := tx.Save(&item).Error; errSave != nil {
			return fmt.Errorf("directory: update: %w", errSave)
		}
		out = item
		return nil
	})
	return out, errTx
}

// apply validates in and writes it onto item.
func apply(tx *gorm.DB, item *models.DirectoryItem, in Input) error {
	fieldErrs := validation.Errors{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fieldErrs.Add("name", "The name field is required.")
	}
	if in.Type != models.DirectoryTypeFolder && in.Type != models.DirectoryTypeItem {
		fieldErrs.Add("type", "The selected type is invalid.")
	}
	if in.ParentID != nil {
		parent, errParent := findOwned(tx, item.UserID, *in.ParentID)
		switch {
		case errors.Is(errParent, ErrNotFound):
			fieldErrs.Add("parent_id", "The selected parent is invalid.")
		case errParent != nil:
			return errParent
		case !parent.IsFolder():
			fieldErrs.Add("parent_id", "The selected parent must be a folder.")
		}
	}
	if len(fieldErrs) > 0 {
		return fieldErrs
	}

	item.Name = name
	item.Type = in.Type
	item.SortOrder = in.SortOrder
	item.ParentID = in.ParentID
	item.Content = nil
	if in.Type == models.DirectoryTypeItem && in.Content != nil {
		content := datatypes.NewJSONType(models.DirectoryContent{
			Dalil:       strings.TrimSpace(in.Content.Dalil),
			Source:      strings.TrimSpace(in.Content.Source),
			Explanation: strings.TrimSpace(in.Content.Explanation),
		})
		item.Content = &content
	}
	return nil
}

// Delete removes a node and its whole subtree.
func (s *Service) Delete(ctx context.Context, userID, id uint64) (int, error) {
	removed := 0
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, errFind := findOwned(tx, userID, id)
		if errFind != nil {
			return errFind
		}
		rows, errRows := ownedRows(tx, userID)
		if errRows != nil {
			return errRows
		}
		ids := append([]uint64{item.ID}, descendants(rows, item.ID)...)
		// Deepest rows first.
		for i := len(ids) - 1; i >= 0; i-- {
			if errDelete := tx.Where("id = ? AND user_id = ?", ids[i], userID).Delete(&models.DirectoryItem{}).Error; errDelete != nil {
				return fmt.Errorf("directory: delete: %w", errDelete)
			}
		}
		removed = len(ids)
		return nil
	})
	return removed, errTx
}
