package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/directory"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/models"
)

// DirectoryHandler serves the caller's reference tree.
type DirectoryHandler struct {
	directory *directory.Service
}

// NewDirectoryHandler constructs a DirectoryHandler.
func NewDirectoryHandler(svc *directory.Service) *DirectoryHandler {
	return &DirectoryHandler{directory: svc}
}

// directoryContent is the item payload.
type directoryContent struct {
	Dalil       string `json:"dalil"`       // Scriptural evidence.
	Source      string `json:"source"`      // Citation.
	Explanation string `json:"explanation"` // Commentary.
}

// directoryRequest defines the request body for node create and update.
type directoryRequest struct {
	ParentID  *uint64           `json:"parent_id"`                                  // Parent folder.
	Name      string            `json:"name" validate:"required,max=255"`           // Display name.
	Type      string            `json:"type" validate:"required,oneof=folder item"` // folder or item.
	SortOrder int               `json:"sort_order"`                                 // Ordering among siblings.
	Content   *directoryContent `json:"content"`                                    // Item payload.
}

func (r directoryRequest) input() directory.Input {
	in := directory.Input{
		ParentID:  r.ParentID,
		Name:      r.Name,
		Type:      r.Type,
		SortOrder: r.SortOrder,
	}
	if r.Content != nil {
		in.Content = &models.DirectoryContent{
			Dalil:       r.Content.Dalil,
			Source:      r.Content.Source,
			Explanation: r.Content.Explanation,
		}
	}
	return in
}

// Tree returns the caller's directory as nested nodes.
func (h *DirectoryHandler) Tree(c *gin.Context) {
	nodes, errTree := h.directory.Tree(c.Request.Context(), middleware.CurrentUserID(c))
	if errTree != nil {
		respond.Error(c, errTree)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tree": present.Tree(nodes)})
}

// Create adds a node.
func (h *DirectoryHandler) Create(c *gin.Context) {
	var body directoryRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	item, errCreate := h.directory.Create(c.Request.Context(), middleware.CurrentUserID(c), body.input())
	if errCreate != nil {
		respond.Error(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": present.DirectoryItem(item)})
}

// Update edits or moves a node.
func (h *DirectoryHandler) Update(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	var body directoryRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	item, errUpdate := h.directory.Update(c.Request.Context(), middleware.CurrentUserID(c), id, body.input())
	if errUpdate != nil {
		respond.Error(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": present.DirectoryItem(item)})
}

// Delete removes a node and its subtree.
func (h *DirectoryHandler) Delete(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	removed, errDelete := h.directory.Delete(c.Request.Context(), middleware.CurrentUserID(c), id)
	if errDelete != nil {
		respond.Error(c, errDelete)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Directory item deleted.", "deleted": removed})
}
