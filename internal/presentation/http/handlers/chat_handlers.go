package handlers

import (
	"net/http"

	"github.com/AzurNet/azurnet-go/internal/application/services"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// ChatHandlers contains the chat widget HTTP handlers.
type ChatHandlers struct {
	chatService *services.ChatService
	logger      *logging.ChanneledLogger
}

// NewChatHandlers creates chat handlers with injected dependencies.
func NewChatHandlers(chatService *services.ChatService, logger *logging.ChanneledLogger) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
		logger:      logger,
	}
}

// PostStart handles POST /api/v1/chat/start
func (h *ChatHandlers) PostStart(c *gin.Context) {
	var req services.ChatStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Chat().Warn("Malformed chat start payload", "error", err.Error(), "ip", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	session := h.chatService.StartChat(c.Request.Context(), req, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"sessionId": session.ID,
	})
}

// PostMessage handles POST /api/v1/chat/message
func (h *ChatHandlers) PostMessage(c *gin.Context) {
	var req services.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Chat().Warn("Malformed chat message payload", "error", err.Error(), "ip", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	session, ok := h.chatService.ProcessMessage(req)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"intent":  session.Intent,
	})
}

// PostUserInfo handles POST /api/v1/chat/user-info
func (h *ChatHandlers) PostUserInfo(c *gin.Context) {
	var req services.ChatUserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Chat().Warn("Malformed chat user info payload", "error", err.Error(), "ip", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	updated := h.chatService.SetUserInfo(req)
	c.JSON(http.StatusOK, gin.H{"success": updated})
}

// PostEnd handles POST /api/v1/chat/end
func (h *ChatHandlers) PostEnd(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Chat().Warn("Malformed chat end payload", "error", err.Error(), "ip", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	_, ended := h.chatService.EndChat(req.SessionID)
	c.JSON(http.StatusOK, gin.H{"success": ended})
}
