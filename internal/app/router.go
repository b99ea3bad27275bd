package app

import (
	"learnmate_backend/docs"
	"learnmate_backend/internal/config"
	"learnmate_backend/internal/middleware"
	"learnmate_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 学习计划与周进度
		learning := authGroup.Group("/learning")
		{
			learning.POST("/plans", c.learning.CreatePlan)
			learning.GET("/plans/current", c.learning.GetCurrentPlan)
			learning.GET("/sessions/:id", c.learning.GetSession)
			learning.GET("/sessions/:id/weeks/:week", c.learning.GetWeek)
			learning.GET("/sessions/:id/weeks/:week/questions", c.learning.GetWeekQuestions)
			learning.POST("/sessions/:id/weeks/:week/submit", c.learning.SubmitWeek)
			learning.POST("/sessions/:id/weeks/:week/select", c.learning.SelectWeek)
		}

		// 学习历史
		authGroup.GET("/history", c.history.List)
		authGroup.GET("/history/:id", c.history.Get)
		authGroup.POST("/history/:id/resume", c.history.Resume)
		authGroup.DELETE("/history/:id", c.history.Delete)
		authGroup.DELETE("/history", c.history.Clear)

		// AI 问答
		authGroup.POST("/chat", c.chat.Ask)
		authGroup.GET("/chat/history", c.chat.History)

		// 用户资料
		authGroup.GET("/profile", c.user.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)
	}
}
