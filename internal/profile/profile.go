// Package profile implements the signed-in user's own account operations.
package profile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/syariahos/syariahos-api/internal/accounts"
	"github.com/syariahos/syariahos-api/internal/activity"
	dbutil "github.com/syariahos/syariahos-api/internal/db"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/security"
	"github.com/syariahos/syariahos-api/internal/settings"
	"github.com/syariahos/syariahos-api/internal/validation"
	"gorm.io/gorm"
)

// UpdateInput is a partial profile update; nil fields are left unchanged.
type UpdateInput struct {
	Name              *string
	Email             *string
	Theme             *string
	ZakatRate         *float64
	ContractType      *string
	CalculationMethod *string
	ProfilePicture    *string
	CurrentPassword   string
	NewPassword       *string
	SessionID         string // Token kept when the password changes.
}

// Export is everything a user owns.
type Export struct {
	User       models.User
	Categories []models.Category
	Tasks      []models.Task
	History    map[uint64][]models.TaskHistory
	Directory  []models.DirectoryItem
	ExportedAt time.Time
}

// Service implements profile operations.
type Service struct {
	db       *gorm.DB
	recorder *activity.Recorder
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB, recorder *activity.Recorder) *Service {
	return &Service{db: db, recorder: recorder, now: time.Now}
}

// Get loads the user.
func (s *Service) Get(ctx context.Context, userID uint64) (models.User, error) {
	return accounts.Find(s.db.WithContext(ctx), userID)
}

// Update applies in and records which fields changed, in one transaction.
func (s *Service) Update(ctx context.Context, userID uint64, in UpdateInput) (models.User, error) {
	var out models.User
	errTx := s.recorder.Within(ctx, activity.ByUser(userID), func(tx *gorm.DB) (activity.Entry, error) {
		user, errFind := accounts.Find(tx, userID)
		if errFind != nil {
			return activity.Entry{}, errFind
		}
		updates, errCollect := s.collect(tx, user, in)
		if errCollect != nil {
			return activity.Entry{}, errCollect
		}
		if len(updates) > 0 {
			updates["updated_at"] = s.now().UTC()
			if errUpdate := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; errUpdate != nil {
				if dbutil.IsUniqueViolation(errUpdate) {
					return activity.Entry{}, validation.Field("email", accounts.MessageEmailTaken)
				}
				return activity.Entry{}, fmt.Errorf("profile: update: %w", errUpdate)
			}
		}
		if _, changed := updates["password"]; changed {
			if errRevoke := accounts.RevokeTokens(tx, userID, in.SessionID); errRevoke != nil {
				return activity.Entry{}, errRevoke
			}
		}
		reloaded, errReload := accounts.Find(tx, userID)
		if errReload != nil {
			return activity.Entry{}, errReload
		}
		out = reloaded
		return activity.Entry{
			Action:   activity.ActionProfileUpdated,
			Subject:  activity.On(activity.SubjectProfile, userID),
			Metadata: map[string]any{"fields": changedFields(updates)},
		}, nil
	})
	return out, errTx
}

// collect validates in against user and returns the column updates.
func (s *Service) collect(tx *gorm.DB, user models.User, in UpdateInput) (map[string]any, error) {
	fieldErrs := validation.Errors{}
	updates := map[string]any{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			fieldErrs.Add("name", "The name field is required.")
		} else if name != user.Name {
			updates["name"] = name
		}
	}
	if in.Email != nil {
		email := accounts.NormalizeEmail(*in.Email)
		if email != user.Email {
			if errEmail := accounts.EnsureEmailAvailable(tx, email, user.ID); errEmail != nil {
				emailErrs, ok := validation.As(errEmail)
				if !ok {
					return nil, errEmail
				}
				for field, msgs := range emailErrs {
					fieldErrs[field] = append(fieldErrs[field], msgs...)
				}
			} else {
				updates["email"] = email
			}
		}
	}
	if in.Theme != nil {
		if !settings.Contains(settings.Themes, *in.Theme) {
			fieldErrs.Add("theme", "The selected theme is invalid.")
		} else {
			updates["theme"] = *in.Theme
		}
	}
	if in.ZakatRate != nil {
		if *in.ZakatRate < 0 || *in.ZakatRate > 100 {
			fieldErrs.Add("zakat_rate", "The zakat rate field must be between 0 and 100.")
		} else {
			updates["zakat_rate"] = *in.ZakatRate
		}
	}
	if in.ContractType != nil {
		if !settings.Contains(settings.ContractTypes, *in.ContractType) {
			fieldErrs.Add("contract_type", "The selected contract type is invalid.")
		} else {
			updates["contract_type"] = *in.ContractType
		}
	}
	if in.CalculationMethod != nil {
		if !settings.Contains(settings.CalculationMethods, *in.CalculationMethod) {
			fieldErrs.Add("calculation_method", "The selected calculation method is invalid.")
		} else {
			updates["calculation_method"] = *in.CalculationMethod
		}
	}
	if in.ProfilePicture != nil {
		updates["profile_picture"] = strings.TrimSpace(*in.ProfilePicture)
	}
	if in.NewPassword != nil {
		if !security.CheckPassword(user.Password, in.CurrentPassword) {
			fieldErrs.Add("current_password", "The current password is incorrect.")
		} else {
			hash, errHash := security.HashPassword(*in.NewPassword)
			if errHash != nil {
				return nil, fmt.Errorf("profile: hash password: %w", errHash)
			}
			updates["password"] = hash
		}
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}
	return updates, nil
}

func changedFields(updates map[string]any) []string {
	fields := make([]string, 0, len(updates))
	for field := range updates {
		if field == "updated_at" {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Export collects the user's data for download.
func (s *Service) Export(ctx context.Context, userID uint64) (Export, error) {
	conn := s.db.WithContext(ctx)
	user, errFind := accounts.Find(conn, userID)
	if errFind != nil {
		return Export{}, errFind
	}
	out := Export{User: user, History: map[uint64][]models.TaskHistory{}, ExportedAt: s.now().UTC()}
	if errCategories := conn.Where("user_id = ?", userID).Order("name ASC").Find(&out.Categories).Error; errCategories != nil {
		return Export{}, fmt.Errorf("profile: export categories: %w", errCategories)
	}
	if errTasks := conn.Where("user_id = ?", userID).Order("id ASC").Find(&out.Tasks).Error; errTasks != nil {
		return Export{}, fmt.Errorf("profile: export tasks: %w", errTasks)
	}
	var history []models.TaskHistory
	if errHistory := conn.Where("user_id = ?", userID).Order("created_at ASC").Order("id ASC").Find(&history).Error; errHistory != nil {
		return Export{}, fmt.Errorf("profile: export history: %w", errHistory)
	}
	for _, row := range history {
		out.History[row.TaskID] = append(out.History[row.TaskID], row)
	}
	if errDirectory := conn.Where("user_id = ?", userID).Order("sort_order ASC").Order("id ASC").Find(&out.Directory).Error; errDirectory != nil {
		return Export{}, fmt.Errorf("profile: export directory: %w", errDirectory)
	}
	if errLog := s.recorder.Record(ctx, activity.ByUser(userID), activity.Entry{
		Action:  activity.ActionProfileExported,
		Subject: activity.On(activity.SubjectProfile, userID),
	}); errLog != nil {
		return Export{}, errLog
	}
	return out, nil
}

// Reset wipes the user's data, restores default preferences and reseeds
// the default categories and starter tasks.
func (s *Service) Reset(ctx context.Context, userID uint64) (models.User, error) {
	var out models.User
	errTx := s.recorder.Within(ctx, activity.ByUser(userID), func(tx *gorm.DB) (activity.Entry, error) {
		if _, errFind := accounts.Find(tx, userID); errFind != nil {
			return activity.Entry{}, errFind
		}
		if errWipe := accounts.WipeData(tx, userID); errWipe != nil {
			return activity.Entry{}, errWipe
		}
		now := s.now().UTC()
		if errPrefs := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
			"theme":              settings.DefaultTheme,
			"zakat_rate":         settings.DefaultZakatRate,
			"contract_type":      settings.DefaultContractType,
			"calculation_method": settings.DefaultCalculationMethod,
			"updated_at":         now,
		}).Error; errPrefs != nil {
			return activity.Entry{}, fmt.Errorf("profile: reset preferences: %w", errPrefs)
		}
		if errSeed := accounts.SeedDefaults(tx, userID, now); errSeed != nil {
			return activity.Entry{}, errSeed
		}
		user, errReload := accounts.Find(tx, userID)
		if errReload != nil {
			return activity.Entry{}, errReload
		}
		out = user
		return activity.Entry{Action: activity.ActionProfileReset, Subject: activity.On(activity.SubjectProfile, userID)}, nil
	})
	return out, errTx
}
