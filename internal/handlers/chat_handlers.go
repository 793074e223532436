package handlers

import (
	"net/http"

	"ninthwaka_backend/internal/services"
	"ninthwaka_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ChatHandler holds the chat service.
type ChatHandler struct {
	chatService services.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(cs services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: cs}
}

// SendMessage handles POST /orders/:id/chat.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	message, err := h.chatService.SendMessage(actor, orderID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, gin.H{"message": message})
}

// GetMessages handles GET /orders/:id/chat.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	messages, err := h.chatService.GetMessages(actor, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"messages": messages})
}
