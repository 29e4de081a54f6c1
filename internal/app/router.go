package app

import (
	"procserv_training_backend/docs"
	"procserv_training_backend/internal/config"
	"procserv_training_backend/internal/middleware"
	"procserv_training_backend/internal/model"
	"procserv_training_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	dbAvailable := cfg.Database.Configured()
	requireDB := middleware.RequireDatabase(dbAvailable)
	auth := middleware.AuthMiddleware(repos.user, cfg.JWT.Secret)

	// Public routes. The catalog stays up even in degraded mode.
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:id/modules", c.course.ListModules)

		public.POST("/register", requireDB, c.auth.Register)
		public.POST("/login", requireDB, c.auth.Login)

		// Authenticated by signature, not by bearer token.
		public.POST("/webhook/stripe", requireDB, c.payment.Webhook)
	}

	authGroup := router.Group("/api")
	authGroup.Use(requireDB, auth)
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.POST("/enroll/:course_id", c.enrollment.Enroll)
		authGroup.GET("/my-courses", c.enrollment.MyCourses)

		authGroup.GET("/modules/:id/quiz", c.progress.GetQuiz)
		authGroup.POST("/enrollments/:id/modules/:module_id/complete", c.progress.CompleteModule)
		authGroup.POST("/enrollments/:id/modules/:module_id/quiz", c.progress.SubmitQuiz)

		authGroup.GET("/certificates/:enrollment_id", c.certificate.GetCertificate)

		authGroup.POST("/payments/checkout", c.payment.CreateCheckout)
		authGroup.GET("/payments/status/:session_id", c.payment.GetStatus)
	}

	admin := router.Group("/api/admin")
	admin.Use(requireDB, auth, middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/courses", c.admin.CreateCourse)
		admin.POST("/courses/:id/modules", c.admin.CreateModule)
		admin.POST("/modules/:id/questions", c.admin.CreateQuestion)
		admin.POST("/modules/:id/video", c.admin.UploadVideo)
	}
}
