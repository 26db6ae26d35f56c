package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examroom/backend/internal/config"
	"github.com/examroom/backend/internal/handler"
	"github.com/examroom/backend/internal/middleware"
	"github.com/examroom/backend/internal/response"
	"github.com/examroom/backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Room       *handler.RoomHandler
	Submission *handler.SubmissionHandler
	Test       *handler.TestHandler
	Monitor    *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Candidate-facing routes. No auth: candidates identify themselves by
	// registration number and the server enforces the rest.
	publicAPI := router.Group("/api/v1")
	{
		publicAPI.GET("/rooms/:room/verify", handlers.Room.VerifyRoom)
		publicAPI.GET("/rooms/:room/paper", handlers.Room.GetPaper)
		publicAPI.POST("/rooms/:room/violations", handlers.Monitor.ReportViolation)
		publicAPI.POST("/check-registration", handlers.Submission.CheckRegistration)
		publicAPI.POST("/submit-test", handlers.Submission.SubmitTest)
	}

	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.Me)
	}

	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.POST("/tests", handlers.Test.CreateTest)
		adminAPI.GET("/tests", handlers.Test.ListTests)
		adminAPI.DELETE("/tests/:room", handlers.Test.DeleteTest)
		adminAPI.GET("/tests/:room/availability", handlers.Test.CheckRoomAvailability)
		adminAPI.GET("/tests/:room/responses", handlers.Test.GetResponses)
	}

	// WebSocket monitor. JWT arrives via ?token= since browsers cannot set
	// headers on the upgrade request.
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminJWT(authService))
	{
		ws.GET("/admin/tests/:room/monitor", handlers.Monitor.MonitorRoom)
	}

	return router
}
