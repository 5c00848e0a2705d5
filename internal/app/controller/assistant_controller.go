package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopgenie-backend/internal/app/service"
	apperrors "github.com/ikkim/shopgenie-backend/internal/errors"
)

type AssistantController struct {
	assistant service.AssistantService
}

func NewAssistantController(assistant service.AssistantService) *AssistantController {
	return &AssistantController{
		assistant: assistant,
	}
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

// CreateConversation starts a conversation with the welcome message
// POST /api/v1/assistant/conversations
func (ctrl *AssistantController) CreateConversation(c *gin.Context) {
	c.JSON(http.StatusCreated, ctrl.assistant.Create())
}

// GetConversation returns a conversation
// GET /api/v1/assistant/conversations/:id
func (ctrl *AssistantController) GetConversation(c *gin.Context) {
	conv, err := ctrl.assistant.Get(c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// SendMessage posts a user message and waits for the reply
// POST /api/v1/assistant/conversations/:id/messages
func (ctrl *AssistantController) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	conv, err := ctrl.assistant.Send(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}
