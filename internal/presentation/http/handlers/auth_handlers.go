package handlers

import (
	"net/http"
	"strings"

	"github.com/AzurNet/azurnet-go/internal/application/services"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// AuthHandlers contains the admin authentication handlers.
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
}

// NewAuthHandlers creates auth handlers with injected dependencies.
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
	}
}

// PostLogin handles POST /api/v1/auth/login
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// PostRefresh handles POST /api/v1/auth/refresh
func (h *AuthHandlers) PostRefresh(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	refreshed, err := h.authService.Refresh(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": refreshed})
}

// GetStatus handles GET /api/v1/auth/status
func (h *AuthHandlers) GetStatus(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	if _, err := h.authService.Validate(token); err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// AuthMiddleware guards the admin-only route groups.
func (h *AuthHandlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		if _, err := h.authService.Validate(token); err != nil {
			h.logger.Auth().Warn("Rejected admin request", "path", c.Request.URL.Path, "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// The websocket client cannot set headers, so the live stream passes the
	// token as a query parameter.
	return c.Query("token")
}
