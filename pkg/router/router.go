package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	billingapi "companion-chat/backend/billing/api"
	charapi "companion-chat/backend/character/api"
	convapi "companion-chat/backend/conversation/api"
	"companion-chat/backend/pkg/config"
	"companion-chat/backend/pkg/di"
	"companion-chat/backend/pkg/errors"
	"companion-chat/backend/pkg/health"
	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/pkg/middleware"
	userapi "companion-chat/backend/user/api"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
	Health    *health.Checker
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)
	cfg := container.Config

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	limiterOpts := middleware.DefaultRateLimiterOptions()
	limiterOpts.Limit = rate.Limit(cfg.Security.RateLimit)
	limiterOpts.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, limiterOpts)
	engine.Use(rateLimiter.Middleware())

	checker := health.NewChecker(container.Logger)
	checker.RegisterCheck("database", func() (health.Status, string, error) {
		sqlDB, err := container.DB.DB()
		if err != nil {
			return health.StatusDown, "cannot access connection pool", err
		}
		if err := sqlDB.Ping(); err != nil {
			return health.StatusDown, "ping failed", err
		}
		return health.StatusUp, "connected", nil
	})

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
		Health:    checker,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Config.Security.AllowedOrigins))

	jwtAuth := middleware.JWTAuthMiddleware(r.Container.JWTService, r.Logger)
	optionalAuth := middleware.OptionalJWTAuthMiddleware(r.Container.JWTService)
	requireSubscriber := middleware.RequireSubscriber(r.Container.Entitlements, r.Logger)

	userHandler := userapi.NewUserHandler(r.Container.UserService)
	characterHandler := charapi.NewCharacterHandler(r.Container.CharacterService)
	chatHandler := convapi.NewChatHandler(r.Container.Sessions, r.Container.Store, r.Config.Chat.EphemeralEnabled)
	webhookHandler := billingapi.NewWebhookHandler(r.Container.Entitlements, r.Config.Billing.WebhookSecret, r.Logger)

	v1 := r.Engine.Group("/api/v1")

	// public surface
	v1.GET("/health", r.Health.Handler())
	userHandler.RegisterPublicRoutes(v1)
	characterHandler.RegisterRoutes(v1)
	webhookHandler.RegisterRoutes(v1)

	// chat runs behind optional auth: anonymous requests get ephemeral
	// sessions keyed by a guest token, paid features additionally
	// require a subscription
	chatRoutes := v1.Group("/")
	chatRoutes.Use(optionalAuth, middleware.GuestSessionMiddleware())
	chatHandler.RegisterRoutes(chatRoutes, requireSubscriber)

	// account surface requires a valid token
	protected := v1.Group("/")
	protected.Use(jwtAuth)
	userHandler.RegisterProtectedRoutes(protected)
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (len(allowed) == 0 || allowed[origin] || allowed["*"]) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Run starts the HTTP server
func (r *Router) Run() error {
	addr := ":" + r.Config.Server.Port
	r.Logger.Info("server listening", "addr", addr, "env", r.Config.Server.Env, "time", time.Now().Format(time.RFC3339))
	return r.Engine.Run(addr)
}
