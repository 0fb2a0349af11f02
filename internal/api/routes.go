package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"portfolio/internal/api/middleware"
	"portfolio/internal/auth"
	"portfolio/internal/cache"
	"portfolio/internal/config"
	"portfolio/internal/repository"
	"portfolio/internal/upload"
)

// Deps 汇总路由所需的依赖。Redis、Tasks、Feed、Lists 均可为空。
type Deps struct {
	DB      *gorm.DB
	Tokens  *auth.TokenService
	Uploads *upload.Handler
	Lists   *cache.Lists
	Redis   redis.UniversalClient
	Tasks   TaskEnqueuer
	Feed    FeedSource
	Auth    config.AuthConfig
	Contact config.ContactConfig
	Origins []string
	Logger  *slog.Logger
}

// RegisterRoutes 注册 /api 下的全部业务路由，以及 /uploads 与 /metrics。
func RegisterRoutes(router *gin.Engine, d Deps) {
	users := repository.NewUsers(d.DB)
	credentials := auth.NewCredentials(users)

	feed := d.Feed
	if feed == nil && d.Redis != nil {
		feed = RedisFeed{Client: d.Redis}
	}

	var contactLimiter *middleware.IPRateLimiter
	if d.Contact.RatePerMinute > 0 {
		contactLimiter = middleware.NewIPRateLimiter(d.Contact.RatePerMinute, d.Contact.Burst)
	}

	profileHandler := NewProfileHandler(repository.NewProfiles(d.DB))
	projectHandler := NewProjectHandler(repository.NewProjects(d.DB), d.Uploads, d.Lists)
	skillHandler := NewSkillHandler(repository.NewSkills(d.DB), d.Lists)
	blogHandler := NewBlogHandler(repository.NewBlogPosts(d.DB), d.Lists)
	contactHandler := NewContactHandler(repository.NewContactMessages(d.DB), d.Tasks)
	feedHandler := NewContactFeedHandler(feed, d.Tokens, d.Origins)
	authHandler := NewAuthHandler(credentials, d.Tokens, NewLoginGuard(d.Redis, d.Auth, d.Logger))
	fileHandler := NewFileHandler(d.Uploads)
	authMiddleware := middleware.AuthMiddleware(d.Tokens)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/uploads/:name", fileHandler.Serve)

	api := router.Group("/api")
	{
		api.GET("/health", health)

		api.GET("/profile", profileHandler.Get)
		api.PUT("/profile", authMiddleware, profileHandler.Update)

		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.List)
			projects.GET("/:id", projectHandler.Get)
			projects.POST("", authMiddleware, projectHandler.Create)
			projects.PUT("/:id", authMiddleware, projectHandler.Update)
			projects.DELETE("/:id", authMiddleware, projectHandler.Delete)
		}

		skills := api.Group("/skills")
		{
			skills.GET("", skillHandler.List)
			skills.POST("", authMiddleware, skillHandler.Create)
			skills.PUT("/:id", authMiddleware, skillHandler.Update)
			skills.DELETE("/:id", authMiddleware, skillHandler.Delete)
		}

		blog := api.Group("/blog")
		{
			blog.GET("", blogHandler.List)
			blog.GET("/:slug", blogHandler.Read)
			blog.POST("", authMiddleware, blogHandler.Create)
			blog.PUT("/:id", authMiddleware, blogHandler.Update)
			blog.DELETE("/:id", authMiddleware, blogHandler.Delete)
		}

		contact := api.Group("/contact")
		{
			contact.POST("", middleware.RateLimit(contactLimiter), contactHandler.Create)
			contact.GET("", authMiddleware, contactHandler.List)
			contact.GET("/feed", feedHandler.HandleConnection)
		}

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
