package handlers

import (
	"net/http"

	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/manager"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// SystemHandlers exposes health and operational introspection.
type SystemHandlers struct {
	cacheManager *manager.Manager
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewSystemHandlers creates system handlers with injected dependencies.
func NewSystemHandlers(cacheManager *manager.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SystemHandlers {
	return &SystemHandlers{
		cacheManager: cacheManager,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// GetHealth handles GET /api/v1/health
func (h *SystemHandlers) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": h.perfTracker.Uptime().String(),
		"stores": h.cacheManager.Summary(),
	})
}

// GetPerformance handles GET /api/v1/system/performance
func (h *SystemHandlers) GetPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptime":     h.perfTracker.Uptime().String(),
		"operations": h.perfTracker.Stats(),
	})
}

// GetLogLevels handles GET /api/v1/system/logs/levels
func (h *SystemHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}

// SetLogLevel handles POST /api/v1/system/logs/levels
func (h *SystemHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel and level are required"})
		return
	}

	level, err := logging.ParseLevel(req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
