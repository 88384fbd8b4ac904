// Package respond writes the JSON error envelope shared by every endpoint.
package respond

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/syariahos/syariahos-api/internal/accounts"
	"github.com/syariahos/syariahos-api/internal/ai"
	"github.com/syariahos/syariahos-api/internal/auth"
	"github.com/syariahos/syariahos-api/internal/catalog"
	"github.com/syariahos/syariahos-api/internal/categories"
	"github.com/syariahos/syariahos-api/internal/directory"
	"github.com/syariahos/syariahos-api/internal/export"
	"github.com/syariahos/syariahos-api/internal/reference"
	"github.com/syariahos/syariahos-api/internal/tasks"
	"github.com/syariahos/syariahos-api/internal/validation"
)

// Message writes {"message": msg} with status.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// Invalid writes a 422 with field errors.
func Invalid(c *gin.Context, fieldErrs validation.Errors) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": fieldErrs.Message(),
		"errors":  fieldErrs,
	})
}

// BadJSON rejects an unparsable request body.
func BadJSON(c *gin.Context) {
	Message(c, http.StatusBadRequest, "Invalid JSON payload.")
}

type mapping struct {
	target  error
	status  int
	message string
}

var mappings = []mapping{
	{tasks.ErrNotFound, http.StatusNotFound, "Task not found."},
	{tasks.ErrHistoryNotFound, http.StatusNotFound, "History entry not found."},
	{tasks.ErrNoLimit, http.StatusUnprocessableEntity, "This task has no target value."},
	{categories.ErrNotFound, http.StatusNotFound, "Category not found."},
	{directory.ErrNotFound, http.StatusNotFound, "Directory item not found."},
	{catalog.ErrNotFound, http.StatusNotFound, "Tool not found."},
	{accounts.ErrNotFound, http.StatusNotFound, "User not found."},
	{accounts.ErrLastAdmin, http.StatusUnprocessableEntity, "Cannot delete the last admin."},
	{accounts.ErrLastAdminDemotion, http.StatusUnprocessableEntity, "Cannot remove the admin role from the last admin."},
	{auth.ErrInvalidCredentials, http.StatusUnprocessableEntity, "These credentials do not match our records."},
	{auth.ErrTOTPRequired, http.StatusUnprocessableEntity, "A two-factor code is required."},
	{auth.ErrInvalidTOTP, http.StatusUnprocessableEntity, "The two-factor code is invalid."},
	{auth.ErrUnauthenticated, http.StatusUnauthorized, "Unauthenticated."},
	{auth.ErrAlreadyInitialized, http.StatusConflict, "System already initialized."},
	{auth.ErrTOTPNotPrepared, http.StatusUnprocessableEntity, "Two-factor setup has not been started."},
	{auth.ErrTOTPAlreadyEnabled, http.StatusUnprocessableEntity, "Two-factor authentication is already enabled."},
	{auth.ErrTOTPNotEnabled, http.StatusUnprocessableEntity, "Two-factor authentication is not enabled."},
	{reference.ErrNotFound, http.StatusNotFound, "Reference not found."},
	{reference.ErrUnavailable, http.StatusServiceUnavailable, "Reference service unavailable."},
	{ai.ErrUnavailable, http.StatusServiceUnavailable, "AI service unavailable"},
	{export.ErrUnknownKind, http.StatusNotFound, "Unknown export type."},
	{export.ErrUnknownFormat, http.StatusUnprocessableEntity, "Unsupported export format."},
}

// Error maps err to a status and message. Unknown errors are logged and
// reported as 500 without details.
func Error(c *gin.Context, err error) {
	if fieldErrs, ok := validation.As(err); ok {
		Invalid(c, fieldErrs)
		return
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			Message(c, m.status, m.message)
			return
		}
	}
	log.WithError(err).WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	Message(c, http.StatusInternalServerError, "Server error.")
}

// ParseID reads a positive integer path parameter, writing a 404 when it is
// malformed.
func ParseID(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil || id == 0 {
		Message(c, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

// BindJSON decodes and validates the request body, writing the error response on failure.
func BindJSON(c *gin.Context, body any) bool {
	if errBind := c.ShouldBindJSON(body); errBind != nil {
		BadJSON(c)
		return false
	}
	if errValidate := validation.Struct(body); errValidate != nil {
		Error(c, errValidate)
		return false
	}
	return true
}
