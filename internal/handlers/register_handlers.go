package handlers

import (
	"github.com/SscSPs/caja_backoffice/cmd/docs"
	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/SscSPs/caja_backoffice/internal/middleware"
	"github.com/SscSPs/caja_backoffice/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// limiterInstance may be nil to disable rate limiting.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	limiterInstance *limiter.Limiter,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, limiterInstance)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	limiterInstance *limiter.Limiter,
) {
	// Apply AuthMiddleware to the entire v1 group
	var authOpts []jwt.ParserOption
	if cfg.JWTIssuer != "" {
		authOpts = append(authOpts, jwt.WithIssuer(cfg.JWTIssuer))
	}
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, authOpts...))
	if limiterInstance != nil {
		// After auth so that limits are per operator
		v1.Use(middleware.RateLimit(limiterInstance))
	}

	// Delegate route registration to specific handlers, passing required services
	registerCajaRoutes(v1, service.Register)
	registerPaymentRoutes(v1, service.Payment)
	registerExpenseRoutes(v1, service.Expense)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
