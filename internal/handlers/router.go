package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-trainer-service/internal/services"
	"github.com/SAP-F-2025/exam-trainer-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const serviceName = "exam-trainer-service"

type HandlerManager struct {
	examHandler        *ExamHandler
	performanceHandler *PerformanceHandler
	authHandler        *AuthHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		examHandler: NewExamHandler(serviceManager.Exam(), logger),
		performanceHandler: NewPerformanceHandler(
			serviceManager.Performance(),
			serviceManager.Stats(),
			serviceManager.Export(),
			logger,
		),
		authHandler: NewAuthHandler(serviceManager.Auth(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	api := router.Group("/api")
	{
		// Exam assembly
		api.GET("/listening-exam", hm.examHandler.GetListeningExam)
		api.GET("/reading-exam", hm.examHandler.GetReadingExam)

		// Performance tracking
		api.POST("/save-exam", hm.performanceHandler.SaveExam)
		api.GET("/dashboard-stats", hm.performanceHandler.GetDashboardStats)
		api.GET("/exam-history", hm.performanceHandler.GetExamHistory)
		api.GET("/exam-history/export", hm.performanceHandler.ExportExamHistory)
		api.GET("/exam-result/:timestamp", hm.performanceHandler.GetExamResult)

		// Accounts
		api.POST("/register", hm.authHandler.Register)
		api.POST("/login", hm.authHandler.Login)
	}
}

// HealthCheck reports that the process is serving
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// CORSMiddleware allows the single-page frontend to call the API from another origin
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
