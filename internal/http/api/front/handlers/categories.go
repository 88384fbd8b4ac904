package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/categories"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/validation"
)

// CategoryHandler serves the caller's categories.
type CategoryHandler struct {
	categories *categories.Service
}

// NewCategoryHandler constructs a CategoryHandler.
func NewCategoryHandler(svc *categories.Service) *CategoryHandler {
	return &CategoryHandler{categories: svc}
}

// createCategoryRequest defines the request body for category creation.
type createCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=64"` // Label.
	Color string `json:"color" validate:"max=16"`         // Display color.
}

// List returns the caller's categories.
func (h *CategoryHandler) List(c *gin.Context) {
	rows, errList := h.categories.List(c.Request.Context(), middleware.CurrentUserID(c))
	if errList != nil {
		respond.Error(c, errList)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": present.Categories(rows)})
}

// Create adds a category.
func (h *CategoryHandler) Create(c *gin.Context) {
	var body createCategoryRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respond.BadJSON(c)
		return
	}
	if errValidate := validation.Struct(body); errValidate != nil {
		respond.Error(c, errValidate)
		return
	}
	category, errCreate := h.categories.Create(c.Request.Context(), middleware.CurrentUserID(c), body.Name, body.Color)
	if errCreate != nil {
		respond.Error(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": present.Category(category)})
}

// Delete removes a category.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	if errDelete := h.categories.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); errDelete != nil {
		respond.Error(c, errDelete)
		return
	}
	respond.Message(c, http.StatusOK, "Category deleted.")
}
