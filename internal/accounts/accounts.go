// Package accounts holds user-account helpers shared by registration, the
// profile page and the admin panel.
package accounts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/settings"
	"github.com/syariahos/syariahos-api/internal/tasks"
	"github.com/syariahos/syariahos-api/internal/validation"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("accounts: user not found")
	// ErrLastAdmin is returned when deleting the only remaining admin.
	ErrLastAdmin = errors.New("accounts: cannot delete the last admin")
)

// MessageEmailTaken is the field error for duplicate emails.
const MessageEmailTaken = "The email has already been taken."

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EnsureEmailAvailable returns a field error when another user owns email.
func EnsureEmailAvailable(tx *gorm.DB, email string, exceptID uint64) error {
	q := tx.Model(&models.User{}).Where("email = ?", NormalizeEmail(email))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if errCount := q.Count(&count).Error; errCount != nil {
		return fmt.Errorf("accounts: check email: %w", errCount)
	}
	if count > 0 {
		return validation.Field("email", MessageEmailTaken)
	}
	return nil
}

// NewUser builds an unsaved user with default preferences.
func NewUser(name, email, passwordHash, role string) models.User {
	if role != models.RoleAdmin {
		role = models.RoleUser
	}
	return models.User{
		Name:              strings.TrimSpace(name),
		Email:             NormalizeEmail(email),
		Password:          passwordHash,
		Role:              role,
		Theme:             settings.DefaultTheme,
		ZakatRate:         settings.DefaultZakatRate,
		ContractType:      settings.DefaultContractType,
		CalculationMethod: settings.DefaultCalculationMethod,
	}
}

// Find loads a user by ID.
func Find(tx *gorm.DB, id uint64) (models.User, error) {
	var user models.User
	if errFind := tx.First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("accounts: find user: %w", errFind)
	}
	return user, nil
}

// HasAdmin reports whether at least one admin account exists.
func HasAdmin(tx *gorm.DB) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("nil db")
	}
	if !tx.Migrator().HasTable(&models.User{}) {
		return false, nil
	}
	var count int64
	if errCount := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; errCount != nil {
		return false, errCount
	}
	return count > 0, nil
}

// GuardLastAdmin rejects removing user when it is the only admin.
func GuardLastAdmin(tx *gorm.DB, user models.User) error {
	if !user.IsAdmin() {
		return nil
	}
	var others int64
	if errCount := tx.Model(&models.User{}).
		Where("role = ? AND id <> ?", models.RoleAdmin, user.ID).
		Count(&others).Error; errCount != nil {
		return fmt.Errorf("accounts: count admins: %w", errCount)
	}
	if others == 0 {
		return ErrLastAdmin
	}
	return nil
}

// SeedDefaults creates the default categories and starter tasks.
func SeedDefaults(tx *gorm.DB, userID uint64, now time.Time) error {
	categories := make([]models.Category, 0, len(settings.DefaultCategories))
	for _, name := range settings.DefaultCategories {
		categories = append(categories, models.Category{UserID: userID, Name: name})
	}
	if errCategories := tx.Create(&categories).Error; errCategories != nil {
		return fmt.Errorf("accounts: seed categories: %w", errCategories)
	}

	inputs := make([]tasks.Input, 0, len(settings.StarterTasks))
	for _, starter := range settings.StarterTasks {
		in := tasks.Input{
			Text:       starter.Text,
			Category:   starter.Category,
			ResetCycle: starter.ResetCycle,
			HasLimit:   starter.HasLimit,
		}
		if starter.HasLimit {
			target, unit := starter.TargetValue, starter.Unit
			in.TargetValue = &target
			in.Unit = &unit
		}
		inputs = append(inputs, in)
	}
	if _, errTasks := tasks.CreateAll(tx, userID, inputs, now); errTasks != nil {
		return fmt.Errorf("accounts: seed tasks: %w", errTasks)
	}
	return nil
}

// WipeData removes the user's tasks, history, categories and directory.
func WipeData(tx *gorm.DB, userID uint64) error {
	steps := []struct {
		name  string
		model any
	}{
		{"task history", &models.TaskHistory{}},
		{"tasks", &models.Task{}},
		{"categories", &models.Category{}},
		{"directory items", &models.DirectoryItem{}},
	}
	for _, step := range steps {
		if errDelete := tx.Where("user_id = ?", userID).Delete(step.model).Error; errDelete != nil {
			return fmt.Errorf("accounts: delete %s: %w", step.name, errDelete)
		}
	}
	return nil
}

// RevokeTokens deletes the user's tokens except the one identified by keepJTI.
func RevokeTokens(tx *gorm.DB, userID uint64, keepJTI string) error {
	query := tx.Where("user_id = ?", userID)
	if keepJTI != "" {
		query = query.Where("jti <> ?", keepJTI)
	}
	if errDelete := query.Delete(&models.AccessToken{}).Error; errDelete != nil {
		return fmt.Errorf("accounts: revoke tokens: %w", errDelete)
	}
	return nil
}

// Delete removes a user with everything they own, including their tokens and
// the audit rows they authored.
func Delete(tx *gorm.DB, userID uint64) error {
	if errWipe := WipeData(tx, userID); errWipe != nil {
		return errWipe
	}
	if errTokens := RevokeTokens(tx, userID, ""); errTokens != nil {
		return errTokens
	}
	if errLogs := tx.Where("user_id = ?", userID).Delete(&models.ActivityLog{}).Error; errLogs != nil {
		return fmt.Errorf("accounts: delete logs: %w", errLogs)
	}
	res := tx.Delete(&models.User{}, userID)
	if res.Error != nil {
		return fmt.Errorf("accounts: delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
