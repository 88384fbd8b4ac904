package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/accounts"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
)

// UserHandler manages user account endpoints.
type UserHandler struct {
	manager *accounts.Manager
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(manager *accounts.Manager) *UserHandler {
	return &UserHandler{manager: manager}
}

// createUserRequest defines the request body for user creation.
type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`           // Display name.
	Email    string `json:"email" validate:"required,email,max=255"`    // Login email.
	Password string `json:"password" validate:"required,min=8"`         // Initial password.
	Role     string `json:"role" validate:"omitempty,oneof=user admin"` // Defaults to user.
}

// updateUserRequest defines the request body for user updates.
type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`          // Display name.
	Email    *string `json:"email" validate:"omitempty,email,max=255"`   // Login email.
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"` // user or admin.
	Password *string `json:"password" validate:"omitempty,min=8"`        // New password.
}

func actor(c *gin.Context) activity.Actor {
	return activity.ByUser(middleware.CurrentUserID(c))
}

// List returns users with optional filters.
func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	result, errList := h.manager.List(c.Request.Context(), accounts.UserFilter{
		Search:  strings.TrimSpace(c.Query("search")),
		Role:    strings.TrimSpace(c.Query("role")),
		Page:    page,
		PerPage: perPage,
	})
	if errList != nil {
		respond.Error(c, errList)
		return
	}
	c.JSON(http.StatusOK, present.UserPage(result))
}

// Get returns a user.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	user, errGet := h.manager.Get(c.Request.Context(), id)
	if errGet != nil {
		respond.Error(c, errGet)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": present.User(user)})
}

// Create creates a new user account.
func (h *UserHandler) Create(c *gin.Context) {
	var body createUserRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	user, errCreate := h.manager.Create(c.Request.Context(), actor(c), accounts.CreateInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
	})
	if errCreate != nil {
		respond.Error(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": present.User(user)})
}

// Update edits a user's profile, role or password.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	var body updateUserRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	user, errUpdate := h.manager.Update(c.Request.Context(), actor(c), id, accounts.UpdateInput{
		Name:     body.Name,
		Email:    body.Email,
		Role:     body.Role,
		Password: body.Password,
	})
	if errUpdate != nil {
		respond.Error(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": present.User(user)})
}

// Delete removes a user and their data.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	if errRemove := h.manager.Remove(c.Request.Context(), actor(c), id); errRemove != nil {
		respond.Error(c, errRemove)
		return
	}
	respond.Message(c, http.StatusOK, "User deleted.")
}
