package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes wires the liveness endpoint.
func RegisterHealthRoutes(router *gin.Engine, environment string) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "environment": environment})
	})
}
