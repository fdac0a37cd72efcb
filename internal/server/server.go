package server

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/forum/backend/internal/cache"
	"github.com/campushub/forum/backend/internal/database"
	"github.com/campushub/forum/backend/internal/handlers"
	"github.com/campushub/forum/backend/internal/middleware"
	"github.com/campushub/forum/backend/internal/models"
	"github.com/campushub/forum/backend/internal/notify"
)

type Server struct {
	db      database.Service
	gormDB  *gorm.DB
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	db := database.New()
	gormDB := db.GetDB()

	unread := cache.NewUnreadFromEnv()
	notifier := notify.New(gormDB, unread, notify.NewSMSSenderFromEnv())
	handler := handlers.NewHandler(gormDB, notifier, unread)

	newServer := &Server{
		db:      db,
		gormDB:  gormDB,
		handler: handler,
	}

	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s", port)

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/register", s.handler.Auth.Register)
		api.POST("/auth/login", s.handler.Auth.Login)

		// Post routes (public reads)
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/search", s.handler.Post.SearchPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.gormDB))
		{
			protected.GET("/auth/me", s.handler.Auth.GetMe)

			// Post protected routes
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.POST("/posts/:id/vote", s.handler.Post.VotePost)
			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)

			// Comment protected routes
			protected.POST("/comments/:id/vote", s.handler.Comment.VoteComment)

			// Notification routes
			protected.GET("/notifications", s.handler.Notification.List)
			protected.GET("/notifications/unread-count", s.handler.Notification.UnreadCount)
			protected.PUT("/notifications/:id/read", s.handler.Notification.MarkRead)
			protected.PUT("/notifications/read-all", s.handler.Notification.MarkAllRead)

			// Global chat
			protected.GET("/chat", s.handler.Chat.GetMessages)
			protected.POST("/chat", s.handler.Chat.SendMessage)

			// Admin routes
			admin := protected.Group("")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.DELETE("/posts/:id", s.handler.Post.DeletePost)

				admin.GET("/users", s.handler.User.GetUsers)
				admin.POST("/users", s.handler.User.CreateUser)
				admin.PUT("/users/:id", s.handler.User.UpdateUser)
				admin.DELETE("/users/:id", s.handler.User.DeleteUser)
				admin.POST("/users/:id/toggle-status", s.handler.User.ToggleStatus)
				admin.POST("/users/:id/reset-password", s.handler.User.ResetPassword)
			}
		}
	}

	return r
}
