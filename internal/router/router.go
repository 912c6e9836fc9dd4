package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"moneyrats/internal/handlers"
	"moneyrats/internal/middleware"
	"moneyrats/internal/services"
	"moneyrats/internal/session"

	_ "moneyrats/internal/docs" // Import swagger docs
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Users    services.UserServicer
	Groups   services.GroupServicer
	Savings  services.SavingsServicer
	Audit    services.AuditServicer
	Sessions *session.Manager

	// LoginLimiter throttles register and login per client IP. Nil disables it.
	LoginLimiter middleware.Limiter

	SecureCookie  bool
	MetricsAPIKey string
}

// New builds the gin engine with every route mounted.
func New(deps Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Audit, deps.Sessions, deps.SecureCookie)
	groupHandler := handlers.NewGroupHandler(deps.Groups, deps.Audit)
	savingsHandler := handlers.NewSavingsHandler(deps.Savings, deps.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())
	router.Use(middleware.Identity(session.NewResolver(deps.Sessions, deps.Users)))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", middleware.APIKeyAuth(deps.MetricsAPIKey), gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	if deps.LoginLimiter != nil {
		auth.POST("/register", middleware.RateLimit(deps.LoginLimiter), authHandler.Register)
		auth.POST("/login", middleware.RateLimit(deps.LoginLimiter), authHandler.Login)
	} else {
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.RequireUser())

	protected.POST("/auth/logout", authHandler.Logout)

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/profile/activity", authHandler.GetActivity)

	protected.POST("/savings/contributions", savingsHandler.Contribute)

	groups := protected.Group("/groups")
	groups.POST("", groupHandler.CreateGroup)
	groups.POST("/join", groupHandler.JoinGroup)
	groups.GET("/:id", groupHandler.GetGroup)
	groups.PUT("/:id", groupHandler.UpdateGroup)
	groups.DELETE("/:id", groupHandler.DeleteGroup)
	groups.GET("/:id/ranking", groupHandler.GetRanking)

	protected.GET("/ranking", groupHandler.GetMyRanking)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
