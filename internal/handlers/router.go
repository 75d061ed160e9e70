package handlers

import (
	"net/http"

	"ecommerce-datagen/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterOptions configures the HTTP surface
type RouterOptions struct {
	JWTSecret    string
	RateLimitRPS float64
	Metrics      http.Handler
}

// SetupRouter wires every route of serve mode.
func SetupRouter(health *HealthHandler, runs *RunHandler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(opts.JWTSecret))
	if opts.RateLimitRPS > 0 {
		api.Use(middleware.NewRateLimiter(opts.RateLimitRPS, 5).Middleware())
	}
	{
		api.POST("/runs", runs.CreateRun)
		api.GET("/stats", runs.GetStats)
		api.GET("/verify", runs.Verify)
	}

	return router
}
