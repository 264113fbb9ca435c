package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-management-service/internal/adapter/gin/handler"
	"user-management-service/internal/adapter/gin/middleware"
)

// Options tunes the router's cross-cutting behaviour.
type Options struct {
	ServiceName        string
	CORSAllowedOrigins []string
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(cors.New(corsConfig(opts.CORSAllowedOrigins)))
	router.Use(rateLimiter.Handler())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}
		v1.GET("/email-availability", userHandler.CheckEmail)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
