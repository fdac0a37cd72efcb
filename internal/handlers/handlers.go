package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/forum/backend/internal/cache"
	"github.com/campushub/forum/backend/internal/middleware"
	"github.com/campushub/forum/backend/internal/models"
	"github.com/campushub/forum/backend/internal/notify"
)

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	Post         *PostHandler
	Comment      *CommentHandler
	Notification *NotificationHandler
	Chat         *ChatHandler
	User         *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, notifier *notify.Notifier, unread *cache.Unread) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(db),
		Post:         NewPostHandler(db, notifier),
		Comment:      NewCommentHandler(db, notifier),
		Notification: NewNotificationHandler(db, unread),
		Chat:         NewChatHandler(db),
		User:         NewUserHandler(db, notifier),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func currentRole(c *gin.Context) models.Role {
	raw, exists := c.Get(middleware.ContextUserRoleKey)
	if !exists {
		return models.RoleStudent
	}
	role, ok := raw.(models.Role)
	if !ok {
		return models.RoleStudent
	}
	return role
}

func currentName(c *gin.Context) string {
	raw, exists := c.Get(middleware.ContextUserNameKey)
	if !exists {
		return ""
	}
	name, _ := raw.(string)
	return name
}
