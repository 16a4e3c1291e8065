package controllers

import (
	"net/http"
	"strconv"
	"time"

	"nutribalance/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Meals    *services.MealService
	Balances *services.BalanceService
}

func NewMealController(ms *services.MealService, bs *services.BalanceService) *MealController {
	return &MealController{Meals: ms, Balances: bs}
}

// GET /api/meals?startDate=&endDate=
func (mc *MealController) List(c *gin.Context) {
	from, ok := parseTimeQuery(c, "startDate", false)
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "endDate", true)
	if !ok {
		return
	}

	meals, err := mc.Meals.List(c.Request.Context(), userID(c), from, to)
	if err != nil {
		respondError(c, err, "Failed to fetch meals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

// GET /api/meals/:id
func (mc *MealController) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	meal, err := mc.Meals.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, err, "Failed to fetch meal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

// POST /api/meals
func (mc *MealController) Create(c *gin.Context) {
	var in services.MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := mc.Meals.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		respondError(c, err, "Failed to create meal")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal": meal})
}

// PUT /api/meals/:id
func (mc *MealController) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var upd services.MealUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meal, err := mc.Meals.Update(c.Request.Context(), userID(c), id, upd)
	if err != nil {
		respondError(c, err, "Failed to update meal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

// DELETE /api/meals/:id
func (mc *MealController) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := mc.Meals.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err, "Failed to delete meal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal deleted successfully"})
}

// GET /api/meals/summary/daily?date=YYYY-MM-DD
func (mc *MealController) DailySummary(c *gin.Context) {
	day, ok := parseTimeQuery(c, "date", false)
	if !ok {
		return
	}
	if day == nil {
		now := time.Now()
		day = &now
	}

	summary, err := mc.Balances.DailySummary(c.Request.Context(), userID(c), *day)
	if err != nil {
		respondError(c, err, "Failed to fetch daily nutrition")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GET /api/progress?days=30&date=YYYY-MM-DD
func (mc *MealController) Progress(c *gin.Context) {
	days := services.DefaultProgressDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > services.MaxProgressDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and " + strconv.Itoa(services.MaxProgressDays)})
			return
		}
		days = n
	}
	ref, ok := parseTimeQuery(c, "date", false)
	if !ok {
		return
	}
	if ref == nil {
		now := time.Now()
		ref = &now
	}

	p, err := mc.Balances.Progress(c.Request.Context(), userID(c), *ref, days)
	if err != nil {
		respondError(c, err, "Failed to fetch progress")
		return
	}
	c.JSON(http.StatusOK, p)
}
