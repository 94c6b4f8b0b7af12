package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/agribridge/agribridge/config"
	"github.com/agribridge/agribridge/controllers"
	"github.com/agribridge/agribridge/middleware"
	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/stores"
	"github.com/agribridge/agribridge/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(regs *stores.RegistrationStore, sessions *stores.SessionStore, posts *stores.PostStore) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access logs go to their own rolling file; app logs stay on the zap
	// global.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	registrationController := controllers.NewRegistrationController(regs)
	authController := controllers.NewAuthController(sessions, regs)
	postController := controllers.NewPostController(posts)
	statsController := controllers.NewStatsController(posts, regs)

	// Legacy registration API, response bodies outside the envelope.
	r.GET("/api/registrations", registrationController.List)
	r.POST("/api/registrations", registrationController.Create)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.GET("/captcha", authController.Captcha)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/join", authController.Join)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.GET("/session", middleware.AuthRequired(), authController.Session)

	api.GET("/stats", statsController.GetStats)

	farmer := api.Group("")
	farmer.Use(middleware.AuthRequired(), middleware.RequireRole(models.RoleFarmer))
	farmer.POST("/posts", postController.Create)
	farmer.PUT("/posts/:id", postController.Update)
	farmer.DELETE("/posts/:id", postController.Delete)
	farmer.GET("/posts/mine", postController.ListMine)
	farmer.GET("/stats/mine", statsController.GetMyStats)

	expert := api.Group("")
	expert.Use(middleware.AuthRequired(), middleware.RequireRole(models.RoleExpert))
	expert.GET("/posts", postController.ListAll)
	expert.POST("/posts/:id/responses", postController.Respond)
	expert.PATCH("/posts/:id/resolved", postController.SetResolved)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
