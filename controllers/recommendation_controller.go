package controllers

import (
	"net/http"

	"nutribalance/services"

	"github.com/gin-gonic/gin"
)

type RecommendationController struct {
	Recs *services.RecommendationService
}

func NewRecommendationController(rs *services.RecommendationService) *RecommendationController {
	return &RecommendationController{Recs: rs}
}

// GET /api/recommendations
func (rc *RecommendationController) List(c *gin.Context) {
	recs, err := rc.Recs.List(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to fetch recommendations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// POST /api/recommendations/generate
func (rc *RecommendationController) Generate(c *gin.Context) {
	recs, err := rc.Recs.Generate(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to generate recommendations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// PUT /api/recommendations/:id/read
func (rc *RecommendationController) MarkRead(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := rc.Recs.MarkRead(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err, "Failed to mark recommendation as read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recommendation marked as read"})
}

// DELETE /api/recommendations/:id
func (rc *RecommendationController) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := rc.Recs.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err, "Failed to delete recommendation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recommendation deleted successfully"})
}
