package handlers

import (
	"net/http"

	"github.com/SscSPs/costshare_ledger/cmd/docs"
	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/middleware"
	"github.com/SscSPs/costshare_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteDeps carries the infrastructure the routes need besides the services.
type RouteDeps struct {
	// Pinger backs /health. Nil answers OK without touching the database.
	Pinger Pinger
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// MoneyLimiter guards the endpoints that move money. Nil disables limiting.
	MoneyLimiter gin.HandlerFunc
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	r.GET("/health", healthCheck(deps.Pinger))

	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, deps)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	moneyLimiter := deps.MoneyLimiter
	if moneyLimiter == nil {
		moneyLimiter = func(c *gin.Context) { c.Next() }
	}

	RegisterLedgerRoutes(v1, service.Ledger, moneyLimiter)
	RegisterActivityRoutes(v1, service.Activity, service.Registration)
	RegisterRegistrationRoutes(v1, service.Registration, moneyLimiter)
	RegisterBillRoutes(v1, service.Bill)
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
