// Package auth issues, validates and revokes bearer sessions and manages the
// optional TOTP second factor.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/syariahos/syariahos-api/internal/accounts"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/config"
	dbutil "github.com/syariahos/syariahos-api/internal/db"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/security"
	"github.com/syariahos/syariahos-api/internal/validation"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTOTPRequired       = errors.New("auth: totp code required")
	ErrInvalidTOTP        = errors.New("auth: invalid totp code")
	ErrUnauthenticated    = errors.New("auth: unauthenticated")
	ErrAlreadyInitialized = errors.New("auth: already initialized")
	ErrTOTPNotPrepared    = errors.New("auth: totp not prepared")
	ErrTOTPAlreadyEnabled = errors.New("auth: totp already enabled")
	ErrTOTPNotEnabled     = errors.New("auth: totp not enabled")
)

// defaultTokenName labels tokens issued without a client name.
const defaultTokenName = "web"

// RegisterInput holds the fields required to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput holds login credentials.
type LoginInput struct {
	Email      string
	Password   string
	TOTPCode   string
	ClientName string
}

// Session is an authenticated user with a freshly issued token.
type Session struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

// Service implements registration, login and token checks.
type Service struct {
	db       *gorm.DB
	recorder *activity.Recorder
	jwt      config.JWTConfig
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB, recorder *activity.Recorder, jwtCfg config.JWTConfig) *Service {
	return &Service{db: db, recorder: recorder, jwt: jwtCfg, now: time.Now}
}

// Register creates a user with default data and signs them in. The user row,
// its seed data and the audit entry commit together.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	return s.createAccount(ctx, in, models.RoleUser, activity.ActionUserRegistered)
}

// Setup creates the first admin account. It fails once any admin exists.
func (s *Service) Setup(ctx context.Context, in RegisterInput) (Session, error) {
	initialized, errCheck := accounts.HasAdmin(s.db.WithContext(ctx))
	if errCheck != nil {
		return Session{}, errCheck
	}
	if initialized {
		return Session{}, ErrAlreadyInitialized
	}
	return s.createAccount(ctx, in, models.RoleAdmin, activity.ActionAdminBootstrap)
}

func (s *Service) createAccount(ctx context.Context, in RegisterInput, role, action string) (Session, error) {
	hash, errHash := security.HashPassword(in.Password)
	if errHash != nil {
		return Session{}, fmt.Errorf("auth: hash password: %w", errHash)
	}
	now := s.now().UTC()

	var session Session
	user := accounts.NewUser(in.Name, in.Email, hash, role)
	errTx := s.recorder.Within(ctx, activity.System, func(tx *gorm.DB) (activity.Entry, error) {
		if errEmail := accounts.EnsureEmailAvailable(tx, user.Email, 0); errEmail != nil {
			return activity.Entry{}, errEmail
		}
		if errCreate := tx.Create(&user).Error; errCreate != nil {
			if dbutil.IsUniqueViolation(errCreate) {
				return activity.Entry{}, validation.Field("email", accounts.MessageEmailTaken)
			}
			return activity.Entry{}, fmt.Errorf("auth: create user: %w", errCreate)
		}
		if errSeed := accounts.SeedDefaults(tx, user.ID, now); errSeed != nil {
			return activity.Entry{}, errSeed
		}
		issued, errIssue := s.issue(tx, user, defaultTokenName, now)
		if errIssue != nil {
			return activity.Entry{}, errIssue
		}
		session = issued
		actor := activity.ByUser(user.ID)
		return activity.Entry{
			Action:  action,
			Subject: activity.On(activity.SubjectUser, user.ID),
			By:      &actor,
		}, nil
	})
	if errTx != nil {
		return Session{}, errTx
	}
	return session, nil
}

// Login verifies credentials and issues a token. Accounts with TOTP enabled
// must supply a valid code.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	var user models.User
	errFind := s.db.WithContext(ctx).Where("email = ?", accounts.NormalizeEmail(in.Email)).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("auth: find user: %w", errFind)
	}
	if !security.CheckPassword(user.Password, in.Password) {
		return Session{}, ErrInvalidCredentials
	}
	now := s.now().UTC()
	if user.TOTPEnabled {
		if strings.TrimSpace(in.TOTPCode) == "" {
			return Session{}, ErrTOTPRequired
		}
		if !security.ValidateTOTP(in.TOTPCode, user.TOTPSecret, now) {
			return Session{}, ErrInvalidTOTP
		}
	}
	name := strings.TrimSpace(in.ClientName)
	if name == "" {
		name = defaultTokenName
	}
	return s.issue(s.db.WithContext(ctx), user, name, now)
}

func (s *Service) issue(tx *gorm.DB, user models.User, name string, now time.Time) (Session, error) {
	issued, errIssue := security.IssueUserToken(s.jwt.Secret, user.ID, user.Role, s.jwt.Expiry, now)
	if errIssue != nil {
		return Session{}, errIssue
	}
	if len(name) > 64 {
		name = name[:64]
	}
	row := models.AccessToken{
		UserID:    user.ID,
		JTI:       issued.JTI,
		Name:      name,
		ExpiresAt: issued.ExpiresAt,
		CreatedAt: now,
	}
	if errCreate := tx.Create(&row).Error; errCreate != nil {
		return Session{}, fmt.Errorf("auth: store token: %w", errCreate)
	}
	return Session{User: user, Token: issued.Token, ExpiresAt: issued.ExpiresAt}, nil
}

// Authenticate validates a bearer token and loads its user.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, *security.UserClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.User{}, nil, ErrUnauthenticated
	}
	claims, errParse := security.ParseUserToken(s.jwt.Secret, token)
	if errParse != nil {
		return models.User{}, nil, ErrUnauthenticated
	}
	conn := s.db.WithContext(ctx)
	now := s.now().UTC()

	var row models.AccessToken
	if errFind := conn.Where("jti = ? AND user_id = ?", claims.ID, claims.UserID).First(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.User{}, nil, ErrUnauthenticated
		}
		return models.User{}, nil, fmt.Errorf("auth: find token: %w", errFind)
	}
	if !row.ExpiresAt.After(now) {
		return models.User{}, nil, ErrUnauthenticated
	}
	user, errUser := accounts.Find(conn, claims.UserID)
	if errUser != nil {
		if errors.Is(errUser, accounts.ErrNotFound) {
			return models.User{}, nil, ErrUnauthenticated
		}
		return models.User{}, nil, errUser
	}
	if errTouch := conn.Model(&models.AccessToken{}).Where("id = ?", row.ID).Update("last_used_at", now).Error; errTouch != nil {
		return models.User{}, nil, fmt.Errorf("auth: touch token: %w", errTouch)
	}
	return user, claims, nil
}

// Logout revokes the token identified by jti.
func (s *Service) Logout(ctx context.Context, userID uint64, jti string) error {
	if errDelete := s.db.WithContext(ctx).
		Where("jti = ? AND user_id = ?", jti, userID).
		Delete(&models.AccessToken{}).Error; errDelete != nil {
		return fmt.Errorf("auth: revoke token: %w", errDelete)
	}
	return nil
}

// PruneExpired deletes tokens past their expiry and returns how many.
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&models.AccessToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("auth: prune tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
