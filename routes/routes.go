package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/Jiranon-K/hoshinote/config"
	"github.com/Jiranon-K/hoshinote/handlers"
	"github.com/Jiranon-K/hoshinote/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// Public routes (no auth required)
	router.POST("/api/auth/register", handlers.Register)
	router.POST("/api/auth/login", handlers.Login)

	// Public reads: identity is optional but attaches per-caller fields
	// like isLiked when present.
	public := router.Group("/api")
	public.Use(middleware.OptionalAuth(cfg.JWTSecret))

	public.GET("/posts", handlers.ListPosts)
	public.GET("/posts/slug/:slug", handlers.GetPostBySlug)
	public.GET("/posts/:id", handlers.GetPost)
	public.GET("/posts/:id/comments", handlers.GetComments)
	public.GET("/posts/:id/like", handlers.GetLikeStatus)
	public.POST("/posts/:id/views", handlers.IncrementViews)

	// Protected routes group
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))

	// Posts
	protected.POST("/posts", handlers.CreatePost)
	protected.PUT("/posts/:id", handlers.UpdatePost)
	protected.DELETE("/posts/:id", handlers.DeletePost)
	protected.GET("/posts/user", handlers.GetMyPosts)

	// Comments and likes
	protected.POST("/posts/:id/comments", handlers.CreateComment)
	protected.PUT("/comments/:id", handlers.UpdateComment)
	protected.DELETE("/comments/:id", handlers.DeleteComment)
	protected.POST("/posts/:id/like", handlers.ToggleLike)

	// Dashboard
	protected.GET("/dashboard/stats", handlers.GetDashboardStats)
	protected.GET("/dashboard/trending-posts", handlers.GetTrendingPosts)
	protected.GET("/dashboard/views-analytics", handlers.GetViewsAnalytics)

	// Activity feed
	protected.GET("/activities", handlers.GetActivities)

	// Profile and roles
	protected.GET("/user/profile", handlers.GetProfile)
	protected.PUT("/user/profile", handlers.UpdateProfile)
	protected.PUT("/users/:id/role", handlers.UpdateUserRole)

	// Uploads
	protected.POST("/upload", handlers.UploadImage)

	// JSON 404 for unknown API routes
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
