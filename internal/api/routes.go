package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"devfolio/internal/api/middleware"
	"devfolio/internal/auth"
	"devfolio/internal/config"
)

// RegisterRoutes 注册全部 API 路由。
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	tokenService *auth.TokenService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient ObjectStorage,
	contactMailer ContactMailer,
	cfg *config.Config,
) {
	authHandler := NewAuthHandler(
		db,
		tokenService,
		redisClient,
		logger,
		cfg.Auth.LoginRateLimitPerHour,
		cfg.Auth.LoginLockThreshold,
		cfg.Auth.LoginLockTTL,
	)
	aboutHandler := NewAboutHandler(db)
	skillsHandler := NewSkillsHandler(db)
	projectsHandler := NewProjectsHandler(db)
	experienceHandler := NewExperienceHandler(db)
	publicHandler := NewPublicHandler(db)
	uploadHandler := NewUploadHandler(storageClient, logger, cfg.Clamd.Addr)
	contactHandler := NewContactHandler(contactMailer, logger)
	authMiddleware := middleware.AuthMiddleware(tokenService)

	// 公网只读接口与联系表单，不经过鉴权。
	public := router.Group("/api")
	{
		public.GET("/about", publicHandler.GetAbout)
		public.GET("/skills", publicHandler.GetSkills)
		public.GET("/projects", publicHandler.GetProjects)
		public.GET("/projects/:slug", publicHandler.GetProjectBySlug)
		public.GET("/experience", publicHandler.GetExperience)
		public.POST("/send-email", contactHandler.SendEmail)
	}

	// 上传文件的公开回源地址。
	router.GET("/uploads/:filename", uploadHandler.ServeUpload)

	admin := router.Group("/api/admin")
	{
		authGroup := admin.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
		}

		protected := admin.Group("")
		protected.Use(authMiddleware)
		{
			protected.GET("/about", aboutHandler.GetForAdmin)
			protected.PUT("/about", aboutHandler.Update)

			protected.GET("/skills", skillsHandler.List)
			protected.POST("/skills-category", skillsHandler.Create)
			protected.PUT("/skills-category/:id", skillsHandler.Update)
			protected.DELETE("/skills-category/:id", skillsHandler.Delete)
			protected.POST("/skills-category/:id/skills", skillsHandler.AddSkill)
			protected.PUT("/skills-category/:id/skills/:skillId", skillsHandler.UpdateSkill)
			protected.DELETE("/skills-category/:id/skills/:skillId", skillsHandler.DeleteSkill)

			protected.GET("/projects", projectsHandler.List)
			protected.POST("/projects", projectsHandler.Create)
			protected.GET("/projects/:id", projectsHandler.Get)
			protected.PUT("/projects/:id", projectsHandler.Update)
			protected.DELETE("/projects/:id", projectsHandler.Delete)

			protected.GET("/experience", experienceHandler.List)
			protected.POST("/experience", experienceHandler.Create)
			protected.GET("/experience/:id", experienceHandler.Get)
			protected.PUT("/experience/:id", experienceHandler.Update)
			protected.DELETE("/experience/:id", experienceHandler.Delete)

			protected.POST("/upload/image", uploadHandler.UploadImage)
			protected.POST("/upload/pdf", uploadHandler.UploadPDF)
			protected.POST("/upload/video", uploadHandler.UploadVideo)
		}
	}
}
