package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"inkwell/handlers"
	"inkwell/middleware"
)

func SetupRouter(api *handlers.API) *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Inkwell API is running",
			"time":    time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.RateLimit(120, time.Minute))

	// Public routes. Reads carry optional auth so authors see their
	// own drafts and callers get their own reaction/follow state.
	public := router.Group("/api")
	public.Use(middleware.OptionalAuth())

	public.POST("/auth/signup", api.Signup)
	public.POST("/auth/login", api.Login)

	public.GET("/posts", api.ListPosts)
	public.GET("/posts/:idOrSlug", api.GetPost)
	public.GET("/comments", api.ListComments)
	public.GET("/reactions", api.GetReactions)
	public.GET("/users/:id", api.GetUser)
	public.GET("/users/:id/follow", api.GetFollowStatus)

	// Mutations require a valid token.
	protected := router.Group("/api")
	protected.Use(middleware.RequireAuth())

	protected.GET("/me", api.GetMe)
	protected.PUT("/me", api.UpdateMe)

	protected.POST("/posts", api.CreatePost)
	protected.PUT("/posts/:idOrSlug", api.UpdatePost)
	protected.DELETE("/posts/:idOrSlug", api.DeletePost)

	protected.POST("/comments", api.CreateComment)
	protected.DELETE("/comments/:id", api.DeleteComment)

	protected.POST("/reactions", api.ToggleReaction)

	protected.POST("/users/:id/follow", api.ToggleFollow)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"success": false,
				"error":   "Endpoint not found",
				"path":    c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
