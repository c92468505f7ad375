package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type HandlerManager struct {
	serviceManager    services.ServiceManager
	authHandler       *AuthHandler
	adminHandler      *AdminHandler
	courseHandler     *CourseHandler
	progressHandler   *ProgressHandler
	enrollmentHandler *EnrollmentHandler
	testHandler       *TestHandler
	gradingHandler    *GradingHandler
	statsHandler      *StatsHandler
	authMiddleware    *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authenticator Authenticator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		serviceManager:    serviceManager,
		authHandler:       NewAuthHandler(serviceManager.User(), logger),
		adminHandler:      NewAdminHandler(serviceManager.User(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger),
		progressHandler:   NewProgressHandler(serviceManager.Progress(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		testHandler:       NewTestHandler(serviceManager.Test(), logger),
		gradingHandler:    NewGradingHandler(serviceManager.Grading(), logger),
		statsHandler:      NewStatsHandler(serviceManager.Stats(), serviceManager.Report(), logger),
		authMiddleware:    NewAuthMiddleware(authenticator),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/login", hm.authHandler.Login)
	}

	// Everything below needs a valid token
	authed := v1.Group("")
	authed.Use(hm.authMiddleware.Authenticate())
	authed.GET("/auth/me", hm.authHandler.Me)

	// and an approved account
	api := authed.Group("")
	api.Use(hm.authMiddleware.RequireApproved())
	adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)
	{
		courses := api.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:courseId", hm.courseHandler.GetCourse)
			courses.POST("", adminOnly, hm.courseHandler.CreateCourse)
			courses.DELETE("/:courseId", adminOnly, hm.courseHandler.DeactivateCourse)
			courses.POST("/:courseId/modules", adminOnly, hm.courseHandler.AddModule)

			courses.POST("/:courseId/enroll", hm.enrollmentHandler.Enroll)

			courses.POST("/:courseId/modules/:moduleId/complete", hm.progressHandler.CompleteModule)
			courses.DELETE("/:courseId/modules/:moduleId/complete", hm.progressHandler.UncompleteModule)
			courses.GET("/:courseId/modules/:moduleId/completion", hm.progressHandler.GetModuleCompletion)
		}

		student := api.Group("/student")
		{
			student.POST("/sync-enrollments", hm.enrollmentHandler.SyncMyEnrollments)
			student.GET("/courses", hm.enrollmentHandler.ListMyCourses)
		}

		tests := api.Group("/tests")
		{
			tests.POST("", adminOnly, hm.testHandler.CreateTest)
			tests.GET("/:testId", hm.testHandler.GetTest)
			tests.POST("/:testId/results", adminOnly, hm.gradingHandler.SubmitResult)
		}

		api.GET("/user/stats", hm.statsHandler.GetUserStats)

		admin := api.Group("/admin", adminOnly)
		{
			admin.GET("/stats", hm.statsHandler.GetAdminStats)
			admin.GET("/stats/export", hm.statsHandler.ExportStudentStats)

			admin.GET("/users/pending", hm.adminHandler.ListPendingUsers)
			admin.POST("/users/:userId/approve", hm.adminHandler.ApproveUser)
			admin.DELETE("/users/:userId", hm.adminHandler.RejectUser)
			admin.POST("/users/:userId/sync-enrollments", hm.enrollmentHandler.SyncStudentEnrollments)
		}
	}
}

// HealthCheck reports database and cache health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	body := gin.H{
		"service":   "learning-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		body["status"] = "unhealthy"
		body["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	body["status"] = "healthy"
	c.JSON(http.StatusOK, body)
}
