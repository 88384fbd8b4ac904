package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/catalog"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
)

// ToolHandler serves the public tool catalog.
type ToolHandler struct {
	catalog *catalog.Service
}

// NewToolHandler constructs a ToolHandler.
func NewToolHandler(svc *catalog.Service) *ToolHandler {
	return &ToolHandler{catalog: svc}
}

// List returns tools filtered by category and search.
func (h *ToolHandler) List(c *gin.Context) {
	rows, errList := h.catalog.List(c.Request.Context(), catalog.Filter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if errList != nil {
		respond.Error(c, errList)
		return
	}
	categories, errCategories := h.catalog.Categories(c.Request.Context())
	if errCategories != nil {
		respond.Error(c, errCategories)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": present.Tools(rows), "categories": categories})
}

// Get returns one tool.
func (h *ToolHandler) Get(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	tool, errGet := h.catalog.Get(c.Request.Context(), id)
	if errGet != nil {
		respond.Error(c, errGet)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool": present.Tool(tool)})
}
