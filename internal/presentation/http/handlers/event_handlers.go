// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"

	"github.com/AzurNet/azurnet-go/internal/application/services"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// EventHandlers contains the tracking-event HTTP handlers. Ingestion never
// surfaces validation detail to the caller: the tracking snippet has no use
// for it, so malformed payloads are logged and answered with a generic ack.
type EventHandlers struct {
	visitService *services.VisitService
	logger       *logging.ChanneledLogger
}

// NewEventHandlers creates event handlers with injected dependencies.
func NewEventHandlers(visitService *services.VisitService, logger *logging.ChanneledLogger) *EventHandlers {
	return &EventHandlers{
		visitService: visitService,
		logger:       logger,
	}
}

// PostPageView handles POST /api/v1/events/pageview
func (h *EventHandlers) PostPageView(c *gin.Context) {
	var req services.PageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Events().Warn("Malformed page view payload", "error", err.Error(), "ip", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	sessionID := h.visitService.ProcessPageView(req, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"sessionId": sessionID,
	})
}

// PostSessionEnd handles POST /api/v1/events/session-end
func (h *EventHandlers) PostSessionEnd(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Events().Warn("Malformed session end payload", "error", err.Error(), "ip", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	h.visitService.ProcessSessionEnd(req.SessionID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PostContactClick handles POST /api/v1/events/contact-click
func (h *EventHandlers) PostContactClick(c *gin.Context) {
	var req services.ContactClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Events().Warn("Malformed contact click payload", "error", err.Error(), "ip", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	h.visitService.ProcessContactClick(req)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
