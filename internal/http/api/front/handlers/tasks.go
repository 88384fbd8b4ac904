package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/tasks"
	"github.com/syariahos/syariahos-api/internal/validation"
)

// TaskHandler serves the caller's tasks and their progress history.
type TaskHandler struct {
	tasks *tasks.Service
}

// NewTaskHandler constructs a TaskHandler.
func NewTaskHandler(svc *tasks.Service) *TaskHandler {
	return &TaskHandler{tasks: svc}
}

// taskRequest defines the request body for task create and full update.
type taskRequest struct {
	Text              string  `json:"text" validate:"required,max=1000"`          // Description.
	Category          string  `json:"category" validate:"max=64"`                 // Category label.
	Completed         bool    `json:"completed"`                                  // Completion flag.
	HasLimit          bool    `json:"has_limit"`                                  // Tracked by a target.
	CurrentValue      int     `json:"current_value" validate:"gte=0"`             // Accumulated value.
	TargetValue       *int    `json:"target_value"`                               // Target when has_limit.
	Unit              *string `json:"unit" validate:"omitempty,max=32"`           // Unit when has_limit.
	ResetCycle        string  `json:"reset_cycle"`                                // one-time, daily, weekly, monthly or yearly.
	IncrementPerCheck bool    `json:"increment_per_check"`                        // Checking adds increment_value.
	IncrementValue    int     `json:"increment_value" validate:"omitempty,gte=1"` // Default increment.
}

func (r taskRequest) input() tasks.Input {
	return tasks.Input{
		Text:              r.Text,
		Category:          r.Category,
		Completed:         r.Completed,
		HasLimit:          r.HasLimit,
		CurrentValue:      r.CurrentValue,
		TargetValue:       r.TargetValue,
		Unit:              r.Unit,
		ResetCycle:        r.ResetCycle,
		IncrementPerCheck: r.IncrementPerCheck,
		IncrementValue:    r.IncrementValue,
	}
}

// patchTaskRequest defines the request body for partial updates.
type patchTaskRequest struct {
	Text              *string `json:"text" validate:"omitempty,max=1000"`         // Description.
	Category          *string `json:"category" validate:"omitempty,max=64"`       // Category label.
	Completed         *bool   `json:"completed"`                                  // Completion flag.
	HasLimit          *bool   `json:"has_limit"`                                  // Tracked by a target.
	CurrentValue      *int    `json:"current_value" validate:"omitempty,gte=0"`   // Accumulated value.
	TargetValue       *int    `json:"target_value"`                               // Target when has_limit.
	Unit              *string `json:"unit" validate:"omitempty,max=32"`           // Unit when has_limit.
	ResetCycle        *string `json:"reset_cycle"`                                // Recurrence.
	IncrementPerCheck *bool   `json:"increment_per_check"`                        // Checking adds increment_value.
	IncrementValue    *int    `json:"increment_value" validate:"omitempty,gte=1"` // Default increment.
}

// progressRequest defines the request body for adding progress.
type progressRequest struct {
	Amount *int   `json:"amount" validate:"omitempty,gte=1"` // Increment, defaults to the task's.
	Note   string `json:"note" validate:"max=500"`           // Optional note.
}

// historyRequest defines the request body for correcting a history entry.
type historyRequest struct {
	Value *int    `json:"value" validate:"required"`         // Corrected value.
	Note  *string `json:"note" validate:"omitempty,max=500"` // Corrected note.
}

// List returns the caller's tasks.
func (h *TaskHandler) List(c *gin.Context) {
	filter := tasks.ListFilter{
		Category:   strings.TrimSpace(c.Query("category")),
		ResetCycle: strings.TrimSpace(c.Query("reset_cycle")),
		Search:     strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("completed")); raw != "" {
		completed, errParse := strconv.ParseBool(raw)
		if errParse != nil {
			respond.Invalid(c, validation.Field("completed", "The completed field must be true or false."))
			return
		}
		filter.Completed = &completed
	}
	rows, errList := h.tasks.List(c.Request.Context(), middleware.CurrentUserID(c), filter)
	if errList != nil {
		respond.Error(c, errList)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": present.Tasks(rows)})
}

// Get returns one task.
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	task, errGet := h.tasks.Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if errGet != nil {
		respond.Error(c, errGet)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": present.Task(task)})
}

// Create adds a task.
func (h *TaskHandler) Create(c *gin.Context) {
	var body taskRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	task, errCreate := h.tasks.Create(c.Request.Context(), middleware.CurrentUserID(c), body.input())
	if errCreate != nil {
		respond.Error(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": present.Task(task)})
}

// Update replaces a task's fields.
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	var body taskRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	task, errUpdate := h.tasks.Update(c.Request.Context(), middleware.CurrentUserID(c), id, body.input())
	if errUpdate != nil {
		respond.Error(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": present.Task(task)})
}

// Patch updates the given fields only.
func (h *TaskHandler) Patch(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	var body patchTaskRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	task, errPatch := h.tasks.Patch(c.Request.Context(), middleware.CurrentUserID(c), id, tasks.Patch{
		Text:              body.Text,
		Category:          body.Category,
		Completed:         body.Completed,
		HasLimit:          body.HasLimit,
		CurrentValue:      body.CurrentValue,
		TargetValue:       body.TargetValue,
		Unit:              body.Unit,
		ResetCycle:        body.ResetCycle,
		IncrementPerCheck: body.IncrementPerCheck,
		IncrementValue:    body.IncrementValue,
	})
	if errPatch != nil {
		respond.Error(c, errPatch)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": present.Task(task)})
}

// Delete removes a task.
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	if errDelete := h.tasks.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); errDelete != nil {
		respond.Error(c, errDelete)
		return
	}
	respond.Message(c, http.StatusOK, "Task deleted.")
}

// AddProgress records a progress event.
func (h *TaskHandler) AddProgress(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	var body progressRequest
	if c.Request.ContentLength != 0 && !respond.BindJSON(c, &body) {
		return
	}
	task, history, errProgress := h.tasks.AddProgress(c.Request.Context(), middleware.CurrentUserID(c), id, tasks.ProgressInput{
		Amount: body.Amount,
		Note:   body.Note,
	})
	if errProgress != nil {
		respond.Error(c, errProgress)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": present.Task(task), "history": present.History(history)})
}

// History lists a task's progress events.
func (h *TaskHandler) History(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	rows, errHistory := h.tasks.History(c.Request.Context(), middleware.CurrentUserID(c), id)
	if errHistory != nil {
		respond.Error(c, errHistory)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": present.Histories(rows)})
}

// UpdateHistory corrects a progress event.
func (h *TaskHandler) UpdateHistory(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	historyID, ok := respond.ParseID(c, "historyId")
	if !ok {
		return
	}
	var body historyRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	task, history, errUpdate := h.tasks.UpdateHistory(c.Request.Context(), middleware.CurrentUserID(c), id, historyID, tasks.HistoryInput{
		Value: *body.Value,
		Note:  body.Note,
	})
	if errUpdate != nil {
		respond.Error(c, errUpdate)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": present.Task(task), "history": present.History(history)})
}

// DeleteHistory removes a progress event.
func (h *TaskHandler) DeleteHistory(c *gin.Context) {
	id, ok := respond.ParseID(c, "id")
	if !ok {
		return
	}
	historyID, ok := respond.ParseID(c, "historyId")
	if !ok {
		return
	}
	task, errDelete := h.tasks.DeleteHistory(c.Request.Context(), middleware.CurrentUserID(c), id, historyID)
	if errDelete != nil {
		respond.Error(c, errDelete)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": present.Task(task)})
}
