package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/auth"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/validation"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// registerRequest defines the request body for registration and setup.
type registerRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`                  // Display name.
	Email                string `json:"email" validate:"required,email,max=255"`           // Login email.
	Password             string `json:"password" validate:"required,min=8"`                // Plain password.
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"` // Must match Password.
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email      string `json:"email" validate:"required,email"` // Login email.
	Password   string `json:"password" validate:"required"`    // Plain password.
	TOTPCode   string `json:"totp_code"`                       // Second factor, when enabled.
	DeviceName string `json:"device_name" validate:"max=64"`   // Token label.
}

func sessionBody(session auth.Session) gin.H {
	return gin.H{
		"user":       present.User(session.User),
		"token":      session.Token,
		"token_type": "Bearer",
		"expires_at": session.ExpiresAt,
	}
}

func bindRegister(c *gin.Context) (auth.RegisterInput, bool) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.BadJSON(c)
		return auth.RegisterInput{}, false
	}
	if errValidate := validation.Struct(body); errValidate != nil {
		respond.Error(c, errValidate)
		return auth.RegisterInput{}, false
	}
	return auth.RegisterInput{Name: body.Name, Email: body.Email, Password: body.Password}, true
}

// Register creates an account and returns its first token.
func (h *AuthHandler) Register(c *gin.Context) {
	in, ok := bindRegister(c)
	if !ok {
		return
	}
	session, errRegister := h.auth.Register(c.Request.Context(), in)
	if errRegister != nil {
		respond.Error(c, errRegister)
		return
	}
	c.JSON(http.StatusCreated, sessionBody(session))
}

// Setup creates the first admin account.
func (h *AuthHandler) Setup(c *gin.Context) {
	in, ok := bindRegister(c)
	if !ok {
		return
	}
	session, errSetup := h.auth.Setup(c.Request.Context(), in)
	if errSetup != nil {
		respond.Error(c, errSetup)
		return
	}
	c.JSON(http.StatusCreated, sessionBody(session))
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.BadJSON(c)
		return
	}
	if errValidate := validation.Struct(body); errValidate != nil {
		respond.Error(c, errValidate)
		return
	}
	session, errLogin := h.auth.Login(c.Request.Context(), auth.LoginInput{
		Email:      body.Email,
		Password:   body.Password,
		TOTPCode:   body.TOTPCode,
		ClientName: body.DeviceName,
	})
	if errLogin != nil {
		respond.Error(c, errLogin)
		return
	}
	c.JSON(http.StatusOK, sessionBody(session))
}

// Logout revokes the token used for this request.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		respond.Message(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}
	if errLogout := h.auth.Logout(c.Request.Context(), claims.UserID, claims.ID); errLogout != nil {
		respond.Error(c, errLogout)
		return
	}
	respond.Message(c, http.StatusOK, "Logged out.")
}
