package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campushub/forum/backend/internal/handlers"
	"github.com/campushub/forum/backend/internal/middleware"
	"github.com/campushub/forum/backend/internal/models"
	"github.com/campushub/forum/backend/internal/notify"
)

// testIdentity authenticates requests from the X-User-ID header instead of a
// JWT so tests can act as any seeded user. It populates the same context keys
// as AuthMiddleware.
func testIdentity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-User-ID")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
			return
		}
		id, err := strconv.Atoi(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
			return
		}
		var user models.User
		if err := db.First(&user, id).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
			return
		}
		c.Set(middleware.ContextUserIDKey, user.ID)
		c.Set(middleware.ContextUserRoleKey, user.Role)
		c.Set(middleware.ContextUserNameKey, user.FullName)
		c.Next()
	}
}

// newTestRouter mirrors the production route table, with testIdentity in
// place of the JWT middleware everywhere except /auth/me, which keeps the
// real one so the token round trip gets exercised.
func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	notifier := notify.New(db, nil, nil)
	h := handlers.NewHandler(db, notifier, nil)

	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/posts", h.Post.GetPosts)
	api.GET("/posts/search", h.Post.SearchPosts)
	api.GET("/posts/:id", h.Post.GetPost)
	api.GET("/posts/:id/comments", h.Comment.GetComments)

	jwtProtected := api.Group("")
	jwtProtected.Use(middleware.AuthMiddleware(db))
	jwtProtected.GET("/auth/me", h.Auth.GetMe)

	protected := api.Group("")
	protected.Use(testIdentity(db))
	{
		protected.POST("/posts", h.Post.CreatePost)
		protected.POST("/posts/:id/vote", h.Post.VotePost)
		protected.POST("/posts/:id/comments", h.Comment.CreateComment)
		protected.POST("/comments/:id/vote", h.Comment.VoteComment)

		protected.GET("/notifications", h.Notification.List)
		protected.GET("/notifications/unread-count", h.Notification.UnreadCount)
		protected.PUT("/notifications/:id/read", h.Notification.MarkRead)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllRead)

		protected.GET("/chat", h.Chat.GetMessages)
		protected.POST("/chat", h.Chat.SendMessage)

		admin := protected.Group("")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.DELETE("/posts/:id", h.Post.DeletePost)
			admin.GET("/users", h.User.GetUsers)
			admin.POST("/users", h.User.CreateUser)
			admin.PUT("/users/:id", h.User.UpdateUser)
			admin.DELETE("/users/:id", h.User.DeleteUser)
			admin.POST("/users/:id/toggle-status", h.User.ToggleStatus)
			admin.POST("/users/:id/reset-password", h.User.ResetPassword)
		}
	}

	return r
}

// doRequest performs a request as the given user (0 means anonymous) and
// decodes the JSON response body.
func doRequest(t *testing.T, r *gin.Engine, method, path string, body any, userID int) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-User-ID", strconv.Itoa(userID))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed), "body: %s", w.Body.String())
	}
	return w, parsed
}

func dataObject(t *testing.T, parsed map[string]any) map[string]any {
	t.Helper()
	data, ok := parsed["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", parsed)
	return data
}
