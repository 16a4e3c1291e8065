package controllers

import (
	"net/http"

	"nutribalance/services"

	"github.com/gin-gonic/gin"
)

type DeviceController struct {
	Push *services.PushService
}

func NewDeviceController(ps *services.PushService) *DeviceController {
	return &DeviceController{Push: ps}
}

// POST /api/devices/register
func (dc *DeviceController) Register(c *gin.Context) {
	var req services.RegisterDeviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dev, err := dc.Push.RegisterDevice(c.Request.Context(), userID(c), req.Platform, req.Token)
	if err != nil {
		respondError(c, err, "Failed to register device")
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoint_arn": dev.EndpointARN})
}

type toggleReq struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// POST /api/notifications/toggle
func (dc *DeviceController) ToggleNotifications(c *gin.Context) {
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	n, err := dc.Push.SetEnabled(c.Request.Context(), userID(c), *req.Enabled)
	if err != nil {
		respondError(c, err, "Failed to update notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "notifications updated",
		"enabled": *req.Enabled,
		"devices": n,
	})
}
