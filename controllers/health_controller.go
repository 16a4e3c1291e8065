package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Environment string
	Version     string
}

func NewHealthController(environment, version string) *HealthController {
	return &HealthController{Environment: environment, Version: version}
}

// GET /api/health
func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": hc.Environment,
		"version":     hc.Version,
	})
}
