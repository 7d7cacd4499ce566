package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/muurk/lightbridge/internal/logging"
)

// SetupMiddleware configures the middleware stack for the Gin engine
func SetupMiddleware(r *gin.Engine, allowOrigins []string) {
	r.Use(gin.Recovery())
	r.Use(RequestLogger())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
		// Desktop webviews load from tauri:// origins.
		CustomSchemas: []string{"tauri"},
	}
	if len(allowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"*"}
	} else {
		corsConfig.AllowOrigins = allowOrigins
	}
	r.Use(cors.New(corsConfig))
}

// RequestLogger returns a Gin middleware that logs each completed request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logging.LogHTTPRequest(c.ClientIP(), c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
