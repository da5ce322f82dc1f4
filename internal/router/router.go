package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kpredict/predict-backend/internal/config"
	"github.com/kpredict/predict-backend/internal/handler"
	"github.com/kpredict/predict-backend/internal/middleware"
	"github.com/kpredict/predict-backend/internal/response"
	"github.com/kpredict/predict-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Exam    *handler.ExamHandler
	Student *handler.StudentHandler
	Monitor *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list; otherwise
	// allow all so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
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

	// Auth group (public).
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// Offering group (public): registration, login and aggregate views.
	predictAPI := router.Group("/api/v1/predict/:year/:exam/:round")
	{
		predictAPI.GET("", handlers.Exam.GetExam)
		predictAPI.GET("/statistics", handlers.Exam.GetStatistics)
		predictAPI.GET("/answer-counts", handlers.Exam.GetAnswerCounts)
		predictAPI.POST("/students", handlers.Student.Register)
		predictAPI.POST("/login", handlers.Student.Login)
	}

	// Student group (JWT).
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.POST("/answers", handlers.Student.Submit)
		studentAPI.GET("/scorecard", handlers.Student.Scorecard)
	}

	// Admin group (JWT).
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.POST("/exams", handlers.Exam.CreateExam)
		adminAPI.POST("/exams/:year/:exam/:round/answer-key", handlers.Exam.UploadAnswerKey)
		adminAPI.POST("/exams/:year/:exam/:round/recompute", handlers.Exam.TriggerRecompute)
	}

	// WebSocket group (admin WS auth via ?token=).
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/exams/:year/:exam/:round/progress", handlers.Monitor.RecomputeProgressWS)
	}

	return router
}
