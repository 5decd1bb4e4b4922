package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quickeats/internal/domain/notify"
)

// Version is the build version reported by /api/info and the CLI.
const Version = "1.0.0"

// Register mounts the health and info endpoints every service exposes.
// Extra key/value pairs land in the /api/info body (e.g. live session counts).
func Register(router *gin.Engine, application, version string, clock notify.Clock, extra func() gin.H) {
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "UP",
			"timestamp":   notify.FormatTimestamp(clock.Now()),
			"application": application,
			"version":     version,
		})
	})

	router.GET("/api/info", func(c *gin.Context) {
		body := gin.H{
			"application": application,
			"version":     version,
		}
		if extra != nil {
			for k, v := range extra() {
				body[k] = v
			}
		}
		c.JSON(http.StatusOK, body)
	})
}
