package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/catalog"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/models"
)

// ToolHandler manages the tool catalog.
type ToolHandler struct {
	catalog *catalog.Service
}

// NewToolHandler constructs a ToolHandler.
func NewToolHandler(svc *catalog.Service) *ToolHandler {
	return &ToolHandler{catalog: svc}
}

// toolSource is one citation in a tool request.
type toolSource struct {
	Title     string `json:"title" validate:"max=255"`             // Citation title.
	Reference string `json:"reference" validate:"max=500"`         // Book, verse or fatwa reference.
	URL       string `json:"url" validate:"omitempty,url,max=500"` // Optional link.
}

// toolRequest defines the request body for tool create and update.
type toolRequest struct {
	Name               string       `json:"name" validate:"required,max=255"`     // Display name.
	Category           string       `json:"category" validate:"required,max=100"` // Grouping.
	Description        string       `json:"description"`                          // Summary.
	Inputs             []string     `json:"inputs"`                               // What the tool takes.
	Outputs            []string     `json:"outputs"`                              // What the tool yields.
	Benefits           []string     `json:"benefits"`                             // Why it helps.
	ShariaBasis        string       `json:"sharia_basis"`                         // Jurisprudential basis.
	Link               string       `json:"link" validate:"omitempty,url"`        // External link.
	RelatedDirectories []string     `json:"related_directories"`                  // Directory names.
	Sources            []toolSource `json:"sources" validate:"dive"`              // Citations.
}

func (r toolRequest) input() catalog.Input {
	sources := make([]models.ToolSource, 0, len(r.Sources))
	for _, src := range r.Sources {
		sources = append(sources, models.ToolSource{Title: src.Title, Reference: src.Reference, URL: src.URL})
	}
	return catalog.Input{
		Name:               r.Name,
		Category:           r.Category,
		Description:        r.Description,
		Inputs:             r.Inputs,
		Outputs:            r.Outputs,
		Benefits:           r.Benefits,
		ShariaBasis:        r.ShariaBasis,
		Link:               r.Link,
		RelatedDirectories: r.RelatedDirectories,
		Sources:            sources,
	}
}

// List returns every tool.
func (h *ToolHandler) List(c *gin.Context) {
	rows, errList := h.catalog.List(c.Request.Context(), catalog.Filter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if errList != nil {
		respond.Error(c, errList)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": present.Tools(rows)})
}

// Create adds a tool.
func (h *ToolHandler) Create(c *gin.Context) {
	var body toolRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	tool, errCreate := h.catalog.Create(c.Request.Context(), actor(c), body.input())
	if errCreate != nil {
		respond.Error(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tool": present.Tool(tool)})
}

// Update replaces a tool's fields.
func (h *ToolHandler) Update(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	var body toolRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	tool, errUpdate := h.catalog.Update(c.Request.Context(), actor(c), id, body.input())
	if errUpdate != nil {
		respond.Error(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool": present.Tool(tool)})
}

// Delete removes a tool.
func (h *ToolHandler) Delete(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	if errDelete := h.catalog.Delete(c.Request.Context(), actor(c), id); errDelete != nil {
		respond.Error(c, errDelete)
		return
	}
	respond.Message(c, http.StatusOK, "Tool deleted.")
}
