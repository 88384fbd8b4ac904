package auth

import (
	"context"
	"fmt"

	"github.com/syariahos/syariahos-api/internal/accounts"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/security"
	"github.com/syariahos/syariahos-api/internal/settings"
	"gorm.io/gorm"
)

// PrepareTOTP stores a new pending secret and returns it with its otpauth URL.
func (s *Service) PrepareTOTP(ctx context.Context, userID uint64) (security.TOTPKey, error) {
	conn := s.db.WithContext(ctx)
	user, errFind := accounts.Find(conn, userID)
	if errFind != nil {
		return security.TOTPKey{}, errFind
	}
	if user.TOTPEnabled {
		return security.TOTPKey{}, ErrTOTPAlreadyEnabled
	}
	key, errGenerate := security.GenerateTOTP(settings.DefaultSiteName, user.Email)
	if errGenerate != nil {
		return security.TOTPKey{}, fmt.Errorf("auth: generate totp: %w", errGenerate)
	}
	if errUpdate := conn.Model(&models.User{}).Where("id = ?", userID).Update("totp_secret", key.Secret).Error; errUpdate != nil {
		return security.TOTPKey{}, fmt.Errorf("auth: store totp secret: %w", errUpdate)
	}
	return key, nil
}

// ConfirmTOTP enables the second factor once a code from the pending secret
// checks out.
func (s *Service) ConfirmTOTP(ctx context.Context, userID uint64, code string) error {
	return s.recorder.Within(ctx, activity.ByUser(userID), func(tx *gorm.DB) (activity.Entry, error) {
		user, errFind := accounts.Find(tx, userID)
		if errFind != nil {
			return activity.Entry{}, errFind
		}
		if user.TOTPEnabled {
			return activity.Entry{}, ErrTOTPAlreadyEnabled
		}
		if user.TOTPSecret == "" {
			return activity.Entry{}, ErrTOTPNotPrepared
		}
		if !security.ValidateTOTP(code, user.TOTPSecret, s.now()) {
			return activity.Entry{}, ErrInvalidTOTP
		}
		if errUpdate := tx.Model(&models.User{}).Where("id = ?", userID).Update("totp_enabled", true).Error; errUpdate != nil {
			return activity.Entry{}, fmt.Errorf("auth: enable totp: %w", errUpdate)
		}
		return activity.Entry{Action: activity.ActionTwoFactorOn, Subject: activity.On(activity.SubjectProfile, userID)}, nil
	})
}

// DisableTOTP turns the second factor off after checking a current code.
func (s *Service) DisableTOTP(ctx context.Context, userID uint64, code string) error {
	return s.recorder.Within(ctx, activity.ByUser(userID), func(tx *gorm.DB) (activity.Entry, error) {
		user, errFind := accounts.Find(tx, userID)
		if errFind != nil {
			return activity.Entry{}, errFind
		}
		if !user.TOTPEnabled {
			return activity.Entry{}, ErrTOTPNotEnabled
		}
		if !security.ValidateTOTP(code, user.TOTPSecret, s.now()) {
			return activity.Entry{}, ErrInvalidTOTP
		}
		if errUpdate := tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]any{"totp_enabled": false, "totp_secret": ""}).Error; errUpdate != nil {
			return activity.Entry{}, fmt.Errorf("auth: disable totp: %w", errUpdate)
		}
		return activity.Entry{Action: activity.ActionTwoFactorOff, Subject: activity.On(activity.SubjectProfile, userID)}, nil
	})
}
