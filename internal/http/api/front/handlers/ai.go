package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/ai"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/http/api/present"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/tasks"
)

// AIHandler serves the assistant endpoints.
type AIHandler struct {
	ai *ai.Service
}

// NewAIHandler constructs an AIHandler.
func NewAIHandler(svc *ai.Service) *AIHandler {
	return &AIHandler{ai: svc}
}

// chatTurn is one prior message.
type chatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user model assistant"` // Speaker.
	Content string `json:"content" validate:"required"`                         // Message text.
}

// chatRequest defines the request body for chat.
type chatRequest struct {
	Message string     `json:"message" validate:"required,max=4000"` // New user message.
	History []chatTurn `json:"history" validate:"max=50,dive"`       // Prior turns, oldest first.
}

// planRequest defines the request body for plan generation.
type planRequest struct {
	Goal string `json:"goal" validate:"required,max=1000"` // Goal to plan for.
}

// acceptPlanRequest defines the request body for accepting a plan.
type acceptPlanRequest struct {
	Tasks []taskRequest `json:"tasks" validate:"required,min=1,max=50,dive"` // Tasks to create.
}

// Chat answers a message.
func (h *AIHandler) Chat(c *gin.Context) {
	var body chatRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	history := make([]ai.Message, 0, len(body.History))
	for _, turn := range body.History {
		role := ai.RoleUser
		if turn.Role != ai.RoleUser {
			role = ai.RoleModel
		}
		history = append(history, ai.Message{Role: role, Text: turn.Content})
	}
	reply, errChat := h.ai.Chat(c.Request.Context(), body.Message, history)
	if errChat != nil {
		respond.Error(c, errChat)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// GeneratePlan drafts a plan for a goal.
func (h *AIHandler) GeneratePlan(c *gin.Context) {
	var body planRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	plan, errPlan := h.ai.GeneratePlan(c.Request.Context(), body.Goal)
	if errPlan != nil {
		respond.Error(c, errPlan)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// Insight comments on the caller's dashboard.
func (h *AIHandler) Insight(c *gin.Context) {
	insight, errInsight := h.ai.Insight(c.Request.Context(), middleware.CurrentUserID(c))
	if errInsight != nil {
		respond.Error(c, errInsight)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insight": insight})
}

// AcceptPlan creates the plan's tasks.
func (h *AIHandler) AcceptPlan(c *gin.Context) {
	var body acceptPlanRequest
	if !respond.BindJSON(c, &body) {
		return
	}
	inputs := make([]tasks.Input, 0, len(body.Tasks))
	for _, task := range body.Tasks {
		inputs = append(inputs, task.input())
	}
	created, errAccept := h.ai.AcceptPlan(c.Request.Context(), middleware.CurrentUserID(c), inputs)
	if errAccept != nil {
		respond.Error(c, errAccept)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tasks": present.Tasks(created)})
}
