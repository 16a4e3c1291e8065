package routes

import (
	"net/http"
	"time"

	"nutribalance/controllers"
	"nutribalance/metrics"
	"nutribalance/middlewares"

	"github.com/gin-gonic/gin"
)

// Options carries what the router needs beyond the controllers.
type Options struct {
	JWTSecret       string
	FrontendURL     string
	RateLimitWindow time.Duration
	RateLimitMax    int
	Dev             bool // mounts /api/dev
}

type Controllers struct {
	Health         *controllers.HealthController
	Profile        *controllers.ProfileController
	Meal           *controllers.MealController
	Food           *controllers.FoodController
	Biomarker      *controllers.BiomarkerController
	Recommendation *controllers.RecommendationController
	Notification   *controllers.NotificationController
	Device         *controllers.DeviceController
	Realtime       *controllers.RealtimeController
	Dev            *controllers.DevController
}

func SetupRouter(opts Options, ctl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(
		middlewares.Recovery(),
		middlewares.RequestID(),
		middlewares.RequestLogger(),
		middlewares.Metrics(),
		middlewares.CORS(opts.FrontendURL),
	)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(middlewares.RateLimit(opts.RateLimitWindow, opts.RateLimitMax))
	api.GET("/health", ctl.Health.Health)

	authed := api.Group("")
	authed.Use(middlewares.AuthMiddleware(opts.JWTSecret))
	{
		authed.GET("/profile", ctl.Profile.Get)
		authed.POST("/profile", ctl.Profile.Upsert)
		authed.PUT("/profile", ctl.Profile.Update)
		authed.DELETE("/profile", ctl.Profile.Delete)

		meals := authed.Group("/meals")
		meals.GET("", ctl.Meal.List)
		meals.GET("/summary/daily", ctl.Meal.DailySummary)
		meals.GET("/:id", ctl.Meal.Get)
		meals.POST("", ctl.Meal.Create)
		meals.PUT("/:id", ctl.Meal.Update)
		meals.DELETE("/:id", ctl.Meal.Delete)

		nut := authed.Group("/nutrition")
		nut.GET("/search", ctl.Food.Search)
		nut.GET("/food/:foodId", ctl.Food.Nutrition)
		nut.POST("/calculate", ctl.Food.Calculate)
		nut.POST("/recognize", ctl.Food.Recognize)
		nut.GET("/targets", ctl.Profile.Targets)

		authed.GET("/progress", ctl.Meal.Progress)

		// GET takes a date, DELETE takes a row id.
		bio := authed.Group("/biomarkers")
		bio.GET("", ctl.Biomarker.List)
		bio.GET("/:date", ctl.Biomarker.GetByDate)
		bio.POST("", ctl.Biomarker.Upsert)
		bio.DELETE("/:id", ctl.Biomarker.Delete)

		recs := authed.Group("/recommendations")
		recs.GET("", ctl.Recommendation.List)
		recs.POST("/generate", ctl.Recommendation.Generate)
		recs.PUT("/:id/read", ctl.Recommendation.MarkRead)
		recs.DELETE("/:id", ctl.Recommendation.Delete)

		authed.GET("/alerts", ctl.Notification.List)
		authed.POST("/devices", ctl.Device.Register)
		authed.POST("/notifications/toggle", ctl.Device.ToggleNotifications)
		authed.GET("/ws/alerts", ctl.Realtime.AlertsWS)

		if opts.Dev && ctl.Dev != nil {
			authed.POST("/dev/alerts/test", ctl.Dev.TestAlert)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
	return r
}
