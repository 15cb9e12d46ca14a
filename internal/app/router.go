package app

import (
	"neonclub_backend/docs"
	"neonclub_backend/internal/config"
	"neonclub_backend/internal/middleware"
	"neonclub_backend/internal/model"
	"neonclub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录，目录接口可选登录)
	registerPublicRoutes(router, c, cfg)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		registerMemberRoutes(authGroup, c)

		// 导师相关接口
		registerMentorRoutes(authGroup, c)

		// 管理员相关接口
		registerAdminRoutes(authGroup, c)
	}
}

func registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.POST("/coupons/apply", c.coupon.ApplyCoupon)
		public.GET("/mentors", c.user.ListMentors)
	}

	catalog := router.Group("/api")
	catalog.Use(middleware.TryAuthMiddleware(cfg))
	{
		catalog.GET("/courses", c.course.ListCourses)
		catalog.GET("/courses/:id", c.course.GetCourse)
		catalog.GET("/workshops", c.workshop.ListWorkshops)
		catalog.GET("/workshops/:id", c.workshop.GetWorkshop)
		catalog.GET("/events", c.event.ListEvents)
		catalog.GET("/events/:id", c.event.GetEvent)
	}
}

func registerMemberRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)
	group.PUT("/user/profile", c.user.UpdateProfile)
	group.POST("/user/onboarding", c.user.MarkOnboardingSeen)

	group.GET("/courses/my", c.course.MyCourses)
	group.POST("/courses/:id/purchase", c.purchase.PurchaseCourse)
	group.POST("/courses/:id/rate", c.course.RateCourse)

	group.GET("/workshops/my", c.workshop.MyWorkshops)
	group.POST("/workshops/:id/purchase", c.purchase.PurchaseWorkshop)

	group.POST("/events/:id/purchase", c.purchase.PurchaseEvent)

	purchases := group.Group("/purchases")
	{
		purchases.GET("/my", c.purchase.ListMyPurchases)
		purchases.GET("/:id", c.purchase.GetPurchase)
		purchases.POST("/:id/confirm", c.purchase.ConfirmPurchase)
	}

	progress := group.Group("/progress")
	{
		progress.GET("/my", c.progress.ListMyProgress)
		progress.GET("/courses/:courseId", c.progress.GetCourseProgress)
		progress.POST("/courses/:courseId/lessons/:lessonId", c.progress.CompleteLesson)
		progress.PUT("/courses/:courseId/current", c.progress.SetCurrentLesson)
	}

	sessions := group.Group("/sessions")
	{
		sessions.POST("", c.session.BookSession)
		sessions.GET("/my", c.session.ListMySessions)
		sessions.POST("/:id/cancel", c.session.CancelSession)
		sessions.POST("/:id/complete", c.session.CompleteSession)
	}
}

func registerMentorRoutes(group *gin.RouterGroup, c *controllers) {
	mentor := group.Group("")
	mentor.Use(middleware.RoleMiddleware(model.Mentor))
	{
		mentor.POST("/courses", c.course.CreateCourse)
		mentor.PUT("/courses/:id", c.course.UpdateCourse)
		mentor.POST("/courses/:id/lessons", c.course.AddLesson)
		mentor.PUT("/courses/:id/lessons/:lessonId", c.course.UpdateLesson)
		mentor.DELETE("/courses/:id/lessons/:lessonId", c.course.DeleteLesson)
		mentor.POST("/courses/:id/thumbnail", c.course.UploadThumbnail)
		mentor.POST("/courses/:id/lessons/:lessonId/video", c.course.UploadLessonVideo)

		mentor.POST("/workshops", c.workshop.CreateWorkshop)
		mentor.PUT("/workshops/:id", c.workshop.UpdateWorkshop)

		mentor.POST("/events", c.event.CreateEvent)
	}
}

func registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	adminOnly := group.Group("")
	adminOnly.Use(middleware.RoleMiddleware(model.Admin))
	{
		adminOnly.DELETE("/courses/:id", c.course.DeleteCourse)
		adminOnly.DELETE("/workshops/:id", c.workshop.DeleteWorkshop)
		adminOnly.DELETE("/events/:id", c.event.DeleteEvent)
		adminOnly.PATCH("/admin/purchases/:id/status", c.purchase.UpdatePurchaseStatus)
	}
}
