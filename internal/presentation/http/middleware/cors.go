// Package middleware provides shared HTTP middleware.
package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware provides the CORS configuration for the public site and
// the admin dashboard dev servers.
func CORSMiddleware(extraOrigins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowOrigins: append([]string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
			"https://www.azurnet.fr",
			"https://azurnet.fr",
		}, extraOrigins...),
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"X-Requested-With", "Cache-Control",
		},
		AllowCredentials: true,
		ExposeHeaders: []string{
			"Content-Type", "Cache-Control", "Connection",
		},
	}

	return cors.New(config)
}
