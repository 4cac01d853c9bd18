package main

import (
	"log/slog"
	"os"

	"github.com/SscSPs/caja_backoffice/internal/adapters/backendapi"
	"github.com/SscSPs/caja_backoffice/internal/core/services"
	"github.com/SscSPs/caja_backoffice/internal/handlers"
	"github.com/SscSPs/caja_backoffice/internal/middleware"
	"github.com/SscSPs/caja_backoffice/internal/platform/config"
	"github.com/SscSPs/caja_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
)

// @title Caja Backend API
// @version 1.0
// @description Cash register gateway for the driving school back-office.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := middleware.NewLogger(cfg.LogLevel, cfg.IsProduction)
	slog.SetDefault(logger)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit, cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to initialize rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	backendClient := backendapi.NewClient(cfg.BackendBaseURL, backendapi.WithTimeout(cfg.BackendTimeout))
	logger.Info("Backend client configured",
		slog.String("base_url", cfg.BackendBaseURL),
		slog.Duration("timeout", cfg.BackendTimeout),
	)

	serviceContainer := services.NewServiceContainer(cfg, backendClient, posthogClient)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, analytics)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.PosthogMiddleware(posthogClient),
	)

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, rateLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
