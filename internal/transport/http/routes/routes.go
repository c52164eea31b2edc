package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/auth-service/internal/infra/config"
	"github.com/arklim/auth-service/internal/transport/http/handlers"
	"github.com/arklim/auth-service/internal/transport/http/middleware"
	"github.com/arklim/auth-service/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Registration  *usecase.RegistrationService
	PasswordReset *usecase.PasswordResetService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if len(deps.Config.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration)
		registerHandlers := appendRuleHandlers(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts, registrationHandler.Register)
		authGroup.POST("/register", registerHandlers...)
		authGroup.GET("/verify-email/:token", registrationHandler.VerifyEmail)

		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		loginHandlers := appendRuleHandlers(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts, authHandler.Login)
		authGroup.POST("/login", loginHandlers...)
		authGroup.POST("/refresh", authHandler.Refresh)

		authMiddleware := middleware.RequireAuth(deps.Services.Auth)
		authGroup.GET("/me", authMiddleware, authHandler.Me)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset)
		forgotHandlers := appendRuleHandlers(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts, passwordHandler.ForgotPassword)
		authGroup.POST("/forgot-password", forgotHandlers...)
		authGroup.POST("/reset-password/:token", passwordHandler.ResetPassword)
	}

	return r
}

// appendRuleHandlers prefixes the handler with a per-IP rate limit when one
// is configured for the route.
func appendRuleHandlers(deps Dependencies, ruleName string, limit int, handler gin.HandlerFunc) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return []gin.HandlerFunc{handler}
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       ruleName,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule), handler}
}
