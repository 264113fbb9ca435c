package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ginhandler "user-management-service/internal/adapter/gin/handler"
	"user-management-service/internal/adapter/gin/middleware"
	ginrouter "user-management-service/internal/adapter/gin/router"
	"user-management-service/internal/config"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	handler *ginhandler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	cfg *config.Config,
	l *zap.Logger,
) *http.Server {
	ginAddr := ":" + cfg.App.HTTPPort
	gin.SetMode(gin.ReleaseMode)

	// Setup Gin router with all middleware and routes
	router := ginrouter.SetupRouter(handler, rateLimiter, ginrouter.Options{
		ServiceName:        cfg.Logger.ServiceName,
		CORSAllowedOrigins: cfg.App.CORSAllowedOrigins,
	}, l)

	l.Info("Gin REST API configured", zap.String("address", ginAddr))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
