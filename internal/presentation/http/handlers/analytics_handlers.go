package handlers

import (
	"net/http"
	"time"

	"github.com/AzurNet/azurnet-go/internal/application/services"
	"github.com/AzurNet/azurnet-go/internal/domain/analytics"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandlers contains the admin dashboard reporting handlers.
type AnalyticsHandlers struct {
	dashboardService *services.DashboardAnalyticsService
	chatService      *services.ChatService
	logger           *logging.ChanneledLogger
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies.
func NewAnalyticsHandlers(dashboardService *services.DashboardAnalyticsService, chatService *services.ChatService, logger *logging.ChanneledLogger) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		dashboardService: dashboardService,
		chatService:      chatService,
		logger:           logger,
	}
}

// GetDashboard handles GET /api/v1/analytics/dashboard
//
// Query parameters: filter (today|7days|30days|all|custom), and for custom
// windows startDate and endDate as YYYY-MM-DD.
func (h *AnalyticsHandlers) GetDashboard(c *gin.Context) {
	filter := analytics.Filter(c.DefaultQuery("filter", string(analytics.Filter30Days)))
	switch filter {
	case analytics.FilterToday, analytics.Filter7Days, analytics.Filter30Days, analytics.FilterAll, analytics.FilterCustom:
	default:
		filter = analytics.Filter30Days
	}

	customStart := parseDayParam(c.Query("startDate"))
	customEnd := parseDayParam(c.Query("endDate"))

	report := h.dashboardService.ComputeDashboard(filter, customStart, customEnd)
	c.JSON(http.StatusOK, report)
}

// PostReclassify handles POST /api/v1/analytics/reclassify
func (h *AnalyticsHandlers) PostReclassify(c *gin.Context) {
	changed := h.chatService.ReclassifyAll()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"changed": changed,
	})
}

func parseDayParam(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
