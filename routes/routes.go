package routes

import (
	"context"
	"net/http"
	"time"

	handlers "distress-server/internal/handlers/shared"
	"distress-server/internal/metrics"
	"distress-server/internal/middleware"
	"distress-server/internal/models"
	"distress-server/pkg/logger"
	"distress-server/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

const healthCheckTimeout = 2 * time.Second

// Dependencies holds everything the router needs. Build it once in main.
type Dependencies struct {
	Tokens          middleware.TokenValidator
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	DistressHandler *handlers.DistressHandler
	DeployHandler   *handlers.DeployHandler
	AudioHandler    *websocket.Handler
	// EscalationLimit and LoginLimit are optional rate limiting middleware.
	EscalationLimit gin.HandlerFunc
	LoginLimit      gin.HandlerFunc
	AllowedOrigins  []string
	AudioPath       string
	Version         string
	// HealthChecks are run by GET /health. Any failure turns the response into a 503.
	HealthChecks map[string]HealthCheck
	Logger       *logger.Logger
}

// NewRouter builds the gin engine with global middleware and every route group.
func NewRouter(deps *Dependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	router.GET("/health", healthHandler(deps))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Active"})
	})

	SetupAuthRoutes(api, deps)
	SetupUserRoutes(api, deps)
	SetupDistressRoutes(api, deps)

	// Drone clients post to /deploy at the root; /api/deploy is kept as an alias.
	SetupDeployRoutes(&router.RouterGroup, deps)
	SetupDeployRoutes(api, deps)

	return router
}

func SetupAuthRoutes(r *gin.RouterGroup, deps *Dependencies) {
	auth := r.Group("/auth")
	if deps.LoginLimit != nil {
		auth.Use(deps.LoginLimit)
	}
	{
		auth.POST("/register", deps.AuthHandler.Register)
		auth.POST("/login", deps.AuthHandler.Login)
		auth.POST("/admin/login", deps.AuthHandler.AdminLogin)
		auth.GET("/token/validate", deps.AuthHandler.ValidateToken)
		auth.POST("/token/refresh", deps.AuthHandler.RefreshToken)
	}
}

func SetupUserRoutes(r *gin.RouterGroup, deps *Dependencies) {
	users := r.Group("/user")
	users.Use(middleware.AuthRequired(deps.Tokens))
	{
		users.GET("/:id", deps.UserHandler.GetUser)
		users.PUT("/:id", deps.UserHandler.UpdateUser)
		users.GET("/:id/emergencyContacts", deps.UserHandler.HasEmergencyContacts)
	}

	admin := r.Group("/user")
	admin.Use(middleware.AdminRequired(deps.Tokens))
	{
		admin.GET("", deps.UserHandler.ListUsers)
		admin.POST("", deps.UserHandler.CreateUser)
		admin.GET("/role/:role", deps.UserHandler.ListUsersByRole)
		admin.DELETE("/:id", deps.UserHandler.DeleteUser)
	}
}

func SetupDistressRoutes(r *gin.RouterGroup, deps *Dependencies) {
	distress := r.Group("/distress")

	// Bystanders escalate with only the alert id, so this route has no auth.
	escalate := []gin.HandlerFunc{deps.DistressHandler.EscalateDistress}
	if deps.EscalationLimit != nil {
		escalate = append([]gin.HandlerFunc{deps.EscalationLimit}, escalate...)
	}
	distress.POST("/escalate/:id", escalate...)

	audioPath := deps.AudioPath
	if audioPath == "" {
		audioPath = "/audio/ws"
	}
	distress.GET(audioPath, middleware.AuthRequired(deps.Tokens), deps.AudioHandler.HandleWebSocket)

	authed := distress.Group("")
	authed.Use(middleware.AuthRequired(deps.Tokens))
	{
		authed.POST("", deps.DistressHandler.CreateDistress)
		authed.GET("/user/:userId", deps.DistressHandler.ListUserDistress)
		authed.GET("/:id", deps.DistressHandler.GetDistress)
		authed.PUT("/:id", deps.DistressHandler.UpdateDistress)
		authed.DELETE("/:id", deps.DistressHandler.DeleteDistress)
	}

	distress.GET("", middleware.RequireRole(deps.Tokens, models.RoleAdmin), deps.DistressHandler.ListDistress)
}

func SetupDeployRoutes(r *gin.RouterGroup, deps *Dependencies) {
	r.POST("/deploy", middleware.AdminRequired(deps.Tokens), deps.DeployHandler.DeployDrone)
}

func healthHandler(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		checks := make(gin.H, len(deps.HealthChecks))

		for name, check := range deps.HealthChecks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			err := check(ctx)
			cancel()

			if err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
				checks[name] = "down"
				deps.Logger.WithError(err).WithField("dependency", name).Warn("Health check failed")
				continue
			}
			checks[name] = "up"
		}

		c.JSON(code, gin.H{
			"status":  status,
			"version": deps.Version,
			"checks":  checks,
		})
	}
}
