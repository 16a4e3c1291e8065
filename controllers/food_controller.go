package controllers

import (
	"net/http"

	"nutribalance/models"
	"nutribalance/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	Foods *services.FoodService
}

func NewFoodController(fs *services.FoodService) *FoodController {
	return &FoodController{Foods: fs}
}

// GET /api/nutrition/search?query=
func (fc *FoodController) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}
	results, err := fc.Foods.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Failed to search food")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GET /api/nutrition/food/:foodId
func (fc *FoodController) Nutrition(c *gin.Context) {
	food, err := fc.Foods.Nutrition(c.Request.Context(), c.Param("foodId"))
	if err != nil {
		respondError(c, err, "Failed to fetch nutrition data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"nutrition": food})
}

// POST /api/nutrition/calculate
func (fc *FoodController) Calculate(c *gin.Context) {
	var body struct {
		Foods []models.Food `json:"foods"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Foods == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Foods array is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalNutrition": services.Calculate(body.Foods)})
}

// POST /api/nutrition/recognize
func (fc *FoodController) Recognize(c *gin.Context) {
	var body struct {
		ImageBase64 string `json:"image_base64" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 is required"})
		return
	}
	res, err := fc.Foods.Recognize(c.Request.Context(), body.ImageBase64)
	if err != nil {
		respondError(c, err, "Failed to recognize food")
		return
	}
	c.JSON(http.StatusOK, res)
}
