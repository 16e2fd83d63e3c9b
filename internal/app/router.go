package app

import (
	"lingua_edu_backend/docs"
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/middleware"
	"lingua_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 目标列表，路径与浏览器端保持一致
	goals := router.Group("/goals")
	goals.Use(middleware.AuthMiddleware(cfg))
	{
		goals.GET("", c.goal.GetGoals)
		goals.POST("", c.goal.SaveGoals)
	}

	// 3. 成就
	achievements := router.Group("/api/achievements")
	achievements.Use(middleware.AuthMiddleware(cfg))
	{
		achievements.GET("", c.achievement.GetAchievements)
		achievements.POST("", c.achievement.SaveAchievements)
		achievements.POST("/check", c.achievement.CheckActivity)
		achievements.POST("/:id/unlock", c.achievement.UnlockAchievement)
	}
}
