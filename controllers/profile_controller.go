package controllers

import (
	"errors"
	"net/http"

	"nutribalance/middlewares"
	"nutribalance/models"
	"nutribalance/services"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	Profiles *services.ProfileService
}

func NewProfileController(ps *services.ProfileService) *ProfileController {
	return &ProfileController{Profiles: ps}
}

// GET /api/profile. A user without a profile gets {"profile": null}.
func (pc *ProfileController) Get(c *gin.Context) {
	p, err := pc.Profiles.Get(c.Request.Context(), userID(c))
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"profile": nil})
		return
	}
	if err != nil {
		respondError(c, err, "Failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// POST /api/profile
func (pc *ProfileController) Upsert(c *gin.Context) {
	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := pc.Profiles.Upsert(c.Request.Context(), userID(c), c.GetString(middlewares.EmailKey), in)
	if err != nil {
		respondError(c, err, "Failed to save profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// PUT /api/profile
func (pc *ProfileController) Update(c *gin.Context) {
	var upd services.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := pc.Profiles.Update(c.Request.Context(), userID(c), upd)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// DELETE /api/profile
func (pc *ProfileController) Delete(c *gin.Context) {
	if err := pc.Profiles.Delete(c.Request.Context(), userID(c)); err != nil {
		respondError(c, err, "Failed to delete profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted successfully"})
}

// GET /api/nutrition/targets
func (pc *ProfileController) Targets(c *gin.Context) {
	t, err := pc.Profiles.Targets(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to calculate targets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"targets": t})
}
