package controllers

import (
	"net/http"
	"strconv"

	"nutribalance/services"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Alerts *services.AlertBus
}

func NewNotificationController(bus *services.AlertBus) *NotificationController {
	return &NotificationController{Alerts: bus}
}

// GET /api/alerts?limit=20
func (nc *NotificationController) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	alerts, err := nc.Alerts.Recent(c.Request.Context(), userID(c), limit)
	if err != nil {
		respondError(c, err, "Failed to fetch alerts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
