package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/auth"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/profile"
	"github.com/syariahos/syariahos-api/internal/validation"
)

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	profile *profile.Service
	auth    *auth.Service
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profileSvc *profile.Service, authSvc *auth.Service) *ProfileHandler {
	return &ProfileHandler{profile: profileSvc, auth: authSvc}
}

// updateProfileRequest defines the request body for profile updates.
type updateProfileRequest struct {
	Name                    *string  `json:"name" validate:"omitempty,max=255"`       // Display name.
	Email                   *string  `json:"email" validate:"omitempty,email"`        // Login email.
	Theme                   *string  `json:"theme"`                                   // UI theme.
	ZakatRate               *float64 `json:"zakat_rate"`                              // Zakat rate in percent.
	ContractType            *string  `json:"contract_type"`                           // Preferred contract.
	CalculationMethod       *string  `json:"calculation_method"`                      // Calendar for calculations.
	ProfilePicture          *string  `json:"profile_picture"`                         // Picture reference.
	CurrentPassword         string   `json:"current_password"`                        // Required to change the password.
	NewPassword             *string  `json:"new_password" validate:"omitempty,min=8"` // Replacement password.
	NewPasswordConfirmation *string  `json:"new_password_confirmation"`               // Must match NewPassword.
}

// totpRequest carries a one-time code.
type totpRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"` // Six-digit code.
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	user, errGet := h.profile.Get(c.Request.Context(), middleware.CurrentUserID(c))
	if errGet != nil {
		respond.Error(c, errGet)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": present.User(user)})
}

// Update edits the caller's profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	var body updateProfileRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.BadJSON(c)
		return
	}
	if errValidate := validation.Struct(body); errValidate != nil {
		respond.Error(c, errValidate)
		return
	}
	if body.NewPassword != nil {
		if body.NewPasswordConfirmation == nil || *body.NewPasswordConfirmation != *body.NewPassword {
			respond.Invalid(c, validation.Field("new_password", "The new password field confirmation does not match."))
			return
		}
	}
	var sessionID string
	if claims := middleware.CurrentClaims(c); claims != nil {
		sessionID = claims.ID
	}
	user, errUpdate := h.profile.Update(c.Request.Context(), middleware.CurrentUserID(c), profile.UpdateInput{
		Name:              body.Name,
		Email:             body.Email,
		Theme:             body.Theme,
		ZakatRate:         body.ZakatRate,
		ContractType:      body.ContractType,
		CalculationMethod: body.CalculationMethod,
		ProfilePicture:    body.ProfilePicture,
		CurrentPassword:   body.CurrentPassword,
		NewPassword:       body.NewPassword,
		SessionID:         sessionID,
	})
	if errUpdate != nil {
		respond.Error(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated.", "user": present.User(user)})
}

// Export streams the caller's data as a JSON download.
func (h *ProfileHandler) Export(c *gin.Context) {
	data, errExport := h.profile.Export(c.Request.Context(), middleware.CurrentUserID(c))
	if errExport != nil {
		respond.Error(c, errExport)
		return
	}
	tasksOut := make([]gin.H, 0, len(data.Tasks))
	for _, task := range data.Tasks {
		rendered := present.Task(task)
		rendered["history"] = present.Histories(data.History[task.ID])
		tasksOut = append(tasksOut, rendered)
	}
	directoryOut := make([]gin.H, 0, len(data.Directory))
	for _, item := range data.Directory {
		directoryOut = append(directoryOut, present.DirectoryItem(item))
	}
	filename := fmt.Sprintf("syariahos-export-%s.json", data.ExportedAt.Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.IndentedJSON(http.StatusOK, gin.H{
		"exported_at": data.ExportedAt,
		"user":        present.User(data.User),
		"categories":  present.Categories(data.Categories),
		"tasks":       tasksOut,
		"directory":   directoryOut,
	})
}

// Reset wipes and reseeds the caller's data.
func (h *ProfileHandler) Reset(c *gin.Context) {
	user, errReset := h.profile.Reset(c.Request.Context(), middleware.CurrentUserID(c))
	if errReset != nil {
		respond.Error(c, errReset)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data reset.", "user": present.User(user)})
}

// PrepareTOTP starts two-factor enrollment.
func (h *ProfileHandler) PrepareTOTP(c *gin.Context) {
	key, errPrepare := h.auth.PrepareTOTP(c.Request.Context(), middleware.CurrentUserID(c))
	if errPrepare != nil {
		respond.Error(c, errPrepare)
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": key.Secret, "otpauth_url": key.URL})
}

// ConfirmTOTP enables two-factor login.
func (h *ProfileHandler) ConfirmTOTP(c *gin.Context) {
	h.withCode(c, h.auth.ConfirmTOTP, "Two-factor authentication enabled.")
}

// DisableTOTP disables two-factor login.
func (h *ProfileHandler) DisableTOTP(c *gin.Context) {
	h.withCode(c, h.auth.DisableTOTP, "Two-factor authentication disabled.")
}

func (h *ProfileHandler) withCode(c *gin.Context, fn func(ctx context.Context, userID uint64, code string) error, done string) {
	var body totpRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.BadJSON(c)
		return
	}
	if errValidate := validation.Struct(body); errValidate != nil {
		respond.Error(c, errValidate)
		return
	}
	if errFn := fn(c.Request.Context(), middleware.CurrentUserID(c), body.Code); errFn != nil {
		respond.Error(c, errFn)
		return
	}
	respond.Message(c, http.StatusOK, done)
}
