package controllers

import (
	"net/http"

	"nutribalance/models"
	"nutribalance/services"

	"github.com/gin-gonic/gin"
)

// DevController is mounted only outside production.
type DevController struct {
	Alerts *services.AlertBus
}

func NewDevController(bus *services.AlertBus) *DevController {
	return &DevController{Alerts: bus}
}

type testAlertReq struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// POST /api/dev/alerts/test
func (d *DevController) TestAlert(c *gin.Context) {
	var req testAlertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Type == "" {
		req.Type = models.AlertInfo
	}
	if req.Type != models.AlertInfo && req.Type != models.AlertWarning {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be info or warning"})
		return
	}
	if req.Message == "" {
		req.Message = "This is only a test."
	}

	if err := d.Alerts.Emit(c.Request.Context(), userID(c), req.Type, req.Message); err != nil {
		respondError(c, err, "Failed to emit alert")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
