package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/export"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
)

// ExportHandler serves downloadable admin reports.
type ExportHandler struct {
	export *export.Service
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(svc *export.Service) *ExportHandler {
	return &ExportHandler{export: svc}
}

// Download renders a report as CSV or HTML.
func (h *ExportHandler) Download(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", export.FormatCSV)))
	contentType, errFormat := export.ContentType(format)
	if errFormat != nil {
		respond.Error(c, errFormat)
		return
	}
	report, errBuild := h.export.Build(c.Request.Context(), c.Param("kind"))
	if errBuild != nil {
		respond.Error(c, errBuild)
		return
	}

	var buf bytes.Buffer
	if errWrite := export.Write(&buf, report, format); errWrite != nil {
		respond.Error(c, errWrite)
		return
	}
	disposition := "attachment"
	if format == export.FormatHTML {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, report.Filename(format)))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
