package accounts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/syariahos/syariahos-api/internal/activity"
	dbutil "github.com/syariahos/syariahos-api/internal/db"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/security"
	"github.com/syariahos/syariahos-api/internal/validation"
	"gorm.io/gorm"
)

// ErrLastAdminDemotion is returned when the only admin would lose the role.
var ErrLastAdminDemotion = errors.New("accounts: cannot demote the last admin")

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search  string
	Role    string
	Page    int
	PerPage int
}

// UserPage is one page of users, newest first.
type UserPage struct {
	Items   []models.User
	Total   int64
	Page    int
	PerPage int
}

// CreateInput is an admin-created account.
type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateInput is an admin edit; nil fields are left unchanged.
type UpdateInput struct {
	Name     *string
	Email    *string
	Role     *string
	Password *string
}

// Manager implements admin user management.
type Manager struct {
	db       *gorm.DB
	recorder *activity.Recorder
	now      func() time.Time
}

// NewManager constructs a Manager.
func NewManager(db *gorm.DB, recorder *activity.Recorder) *Manager {
	return &Manager{db: db, recorder: recorder, now: time.Now}
}

// List pages through users.
func (m *Manager) List(ctx context.Context, filter UserFilter) (UserPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}

	q := m.db.WithContext(ctx).Model(&models.User{})
	if role := strings.TrimSpace(filter.Role); role != "" {
		q = q.Where("role = ?", role)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := dbutil.ContainsPattern(m.db, search)
		q = q.Where(
			"("+dbutil.CaseInsensitiveLikeExpr(m.db, "name")+" OR "+dbutil.CaseInsensitiveLikeExpr(m.db, "email")+")",
			pattern,
			pattern,
		)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		return UserPage{}, fmt.Errorf("accounts: count users: %w", errCount)
	}
	var rows []models.User
	if errFind := q.Order("created_at DESC").Order("id DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&rows).Error; errFind != nil {
		return UserPage{}, fmt.Errorf("accounts: list users: %w", errFind)
	}
	return UserPage{Items: rows, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}

// Get loads one user.
func (m *Manager) Get(ctx context.Context, id uint64) (models.User, error) {
	return Find(m.db.WithContext(ctx), id)
}

// Create adds an account with default data.
func (m *Manager) Create(ctx context.Context, actor activity.Actor, in CreateInput) (models.User, error) {
	fieldErrs := validation.Errors{}
	if strings.TrimSpace(in.Name) == "" {
		fieldErrs.Add("name", "The name field is required.")
	}
	if NormalizeEmail(in.Email) == "" {
		fieldErrs.Add("email", "The email field is required.")
	}
	if len(in.Password) < 8 {
		fieldErrs.Add("password", "The password field must be at least 8 characters.")
	}
	if in.Role != "" && in.Role != models.RoleAdmin && in.Role != models.RoleUser {
		fieldErrs.Add("role", "The selected role is invalid.")
	}
	if len(fieldErrs) > 0 {
		return models.User{}, fieldErrs
	}
	hash, errHash := security.HashPassword(in.Password)
	if errHash != nil {
		return models.User{}, fmt.Errorf("accounts: hash password: %w", errHash)
	}

	user := NewUser(in.Name, in.Email, hash, in.Role)
	errTx := m.recorder.Within(ctx, actor, func(tx *gorm.DB) (activity.Entry, error) {
		if errEmail := EnsureEmailAvailable(tx, user.Email, 0); errEmail != nil {
			return activity.Entry{}, errEmail
		}
		if errCreate := tx.Create(&user).Error; errCreate != nil {
			if dbutil.IsUniqueViolation(errCreate) {
				return activity.Entry{}, validation.Field("email", MessageEmailTaken)
			}
			return activity.Entry{}, fmt.Errorf("accounts: create user: %w", errCreate)
		}
		if errSeed := SeedDefaults(tx, user.ID, m.now().UTC()); errSeed != nil {
			return activity.Entry{}, errSeed
		}
		return activity.Entry{
			Action:   activity.ActionUserCreated,
			Subject:  activity.On(activity.SubjectUser, user.ID),
			Metadata: map[string]any{"email": user.Email, "role": user.Role},
		}, nil
	})
	if errTx != nil {
		return models.User{}, errTx
	}
	return user, nil
}

// Update edits an account. Changing the password revokes the user's tokens.
func (m *Manager) Update(ctx context.Context, actor activity.Actor, id uint64, in UpdateInput) (models.User, error) {
	var out models.User
	errTx := m.recorder.Within(ctx, actor, func(tx *gorm.DB) (activity.Entry, error) {
		user, errFind := Find(tx, id)
		if errFind != nil {
			return activity.Entry{}, errFind
		}
		updates, errCollect := m.collect(tx, user, in)
		if errCollect != nil {
			return activity.Entry{}, errCollect
		}
		if len(updates) > 0 {
			updates["updated_at"] = m.now().UTC()
			if errUpdate := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; errUpdate != nil {
				if dbutil.IsUniqueViolation(errUpdate) {
					return activity.Entry{}, validation.Field("email", MessageEmailTaken)
				}
				return activity.Entry{}, fmt.Errorf("accounts: update user: %w", errUpdate)
			}
		}
		if _, changed := updates["password"]; changed {
			if errRevoke := RevokeTokens(tx, user.ID, ""); errRevoke != nil {
				return activity.Entry{}, errRevoke
			}
		}
		reloaded, errReload := Find(tx, user.ID)
		if errReload != nil {
			return activity.Entry{}, errReload
		}
		out = reloaded
		return activity.Entry{
			Action:   activity.ActionUserUpdated,
			Subject:  activity.On(activity.SubjectUser, user.ID),
			Metadata: map[string]any{"fields": fieldNames(updates)},
		}, nil
	})
	if errTx != nil {
		return models.User{}, errTx
	}
	return out, nil
}

func (m *Manager) collect(tx *gorm.DB, user models.User, in UpdateInput) (map[string]any, error) {
	fieldErrs := validation.Errors{}
	updates := map[string]any{}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name == "" {
			fieldErrs.Add("name", "The name field is required.")
		} else if name != user.Name {
			updates["name"] = name
		}
	}
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		switch {
		case email == "":
			fieldErrs.Add("email", "The email field is required.")
		case email != user.Email:
			if errEmail := EnsureEmailAvailable(tx, email, user.ID); errEmail != nil {
				if emailErrs, ok := validation.As(errEmail); ok {
					for field, msgs := range emailErrs {
						fieldErrs[field] = append(fieldErrs[field], msgs...)
					}
				} else {
					return nil, errEmail
				}
			}
			updates["email"] = email
		}
	}
	if in.Role != nil && *in.Role != user.Role {
		switch *in.Role {
		case models.RoleAdmin:
			updates["role"] = models.RoleAdmin
		case models.RoleUser:
			if errGuard := GuardLastAdmin(tx, user); errGuard != nil {
				if errors.Is(errGuard, ErrLastAdmin) {
					return nil, ErrLastAdminDemotion
				}
				return nil, errGuard
			}
			updates["role"] = models.RoleUser
		default:
			fieldErrs.Add("role", "The selected role is invalid.")
		}
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			fieldErrs.Add("password", "The password field must be at least 8 characters.")
		} else {
			hash, errHash := security.HashPassword(*in.Password)
			if errHash != nil {
				return nil, fmt.Errorf("accounts: hash password: %w", errHash)
			}
			updates["password"] = hash
		}
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}
	return updates, nil
}

// Remove deletes an account unless it is the last admin.
func (m *Manager) Remove(ctx context.Context, actor activity.Actor, id uint64) error {
	return m.recorder.Within(ctx, actor, func(tx *gorm.DB) (activity.Entry, error) {
		user, errFind := Find(tx, id)
		if errFind != nil {
			return activity.Entry{}, errFind
		}
		if errGuard := GuardLastAdmin(tx, user); errGuard != nil {
			return activity.Entry{}, errGuard
		}
		if errDelete := Delete(tx, user.ID); errDelete != nil {
			return activity.Entry{}, errDelete
		}
		entry := activity.Entry{
			Action:   activity.ActionUserDeleted,
			Subject:  activity.On(activity.SubjectUser, user.ID),
			Metadata: map[string]any{"email": user.Email, "role": user.Role},
		}
		if actor.UserID != nil && *actor.UserID == user.ID {
			entry.By = &activity.System
		}
		return entry, nil
	})
}

func fieldNames(updates map[string]any) []string {
	names := make([]string, 0, len(updates))
	for name := range updates {
		if name == "updated_at" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
