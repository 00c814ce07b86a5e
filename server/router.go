package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medcms/handlers"
	"medcms/middleware"
	"medcms/models"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Article  *handlers.ArticleHandler
	Category *handlers.CategoryHandler
	Audit    *handlers.AuditHandler
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func NewRouter(h Handlers, jwtSecret string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	writers := middleware.RequireRole(models.RoleAdmin, models.RoleEditor)
	admins := middleware.RequireRole(models.RoleAdmin)
	auditors := middleware.RequireRole(models.RoleAdmin, models.RoleEditor, models.RoleReviewer)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			protected.GET("/profile", h.Auth.GetProfile)
			protected.POST("/users", admins, h.Auth.CreateUser)

			articles := protected.Group("/articles")
			{
				articles.GET("", h.Article.GetArticles)
				articles.POST("", writers, h.Article.CreateArticle)
				articles.GET("/:id", h.Article.GetArticle)
				articles.PUT("/:id", writers, h.Article.UpdateArticle)
				articles.DELETE("/:id", admins, h.Article.DeleteArticle)
				articles.GET("/:id/versions", h.Article.GetArticleVersions)
				articles.POST("/:id/versions/:version_id/restore", writers, h.Article.RestoreVersion)
				articles.GET("/:id/categories", h.Article.GetArticleCategories)
			}

			versions := protected.Group("/versions")
			{
				versions.GET("/:version_id/attachments", h.Article.GetAttachments)
				versions.POST("/:version_id/attachments", writers, h.Article.AddAttachment)
			}

			protected.DELETE("/attachments/:id", writers, h.Article.RemoveAttachment)

			categories := protected.Group("/categories")
			{
				categories.GET("", h.Category.GetCategories)
				categories.POST("", admins, h.Category.CreateCategory)
				categories.GET("/:id", h.Category.GetCategory)
				categories.PUT("/:id", admins, h.Category.UpdateCategory)
				categories.DELETE("/:id", admins, h.Category.DeleteCategory)
				categories.GET("/:id/articles", h.Category.GetArticlesByCategory)
			}

			changelogs := protected.Group("/changelogs", auditors)
			{
				changelogs.GET("", h.Audit.GetChangelogs)
				changelogs.GET("/:entity_type/:entity_id", h.Audit.GetEntityChangelog)
			}
		}
	}

	return r
}
