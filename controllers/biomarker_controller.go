package controllers

import (
	"net/http"

	"nutribalance/services"

	"github.com/gin-gonic/gin"
)

type BiomarkerController struct {
	Biomarkers *services.BiomarkerService
}

func NewBiomarkerController(bs *services.BiomarkerService) *BiomarkerController {
	return &BiomarkerController{Biomarkers: bs}
}

// GET /api/biomarkers
func (bc *BiomarkerController) List(c *gin.Context) {
	rows, err := bc.Biomarkers.List(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch biomarkers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"biomarkers": rows})
}

// GET /api/biomarkers/:date. A day without values gets {"biomarker": null}.
func (bc *BiomarkerController) GetByDate(c *gin.Context) {
	b, err := bc.Biomarkers.GetByDate(c.Request.Context(), userID(c), c.Param("date"))
	if err != nil {
		respondError(c, err, "Failed to fetch biomarker")
		return
	}
	if b == nil {
		c.JSON(http.StatusOK, gin.H{"biomarker": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"biomarker": b})
}

// POST /api/biomarkers
func (bc *BiomarkerController) Upsert(c *gin.Context) {
	var in services.BiomarkerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := bc.Biomarkers.Upsert(c.Request.Context(), userID(c), in)
	if err != nil {
		respondError(c, err, "Failed to save biomarker")
		return
	}
	c.JSON(http.StatusOK, gin.H{"biomarker": b})
}

// DELETE /api/biomarkers/:id
func (bc *BiomarkerController) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := bc.Biomarkers.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err, "Failed to delete biomarker")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Biomarker deleted successfully"})
}
