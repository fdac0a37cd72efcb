package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/forum/backend/internal/cache"
	"github.com/campushub/forum/backend/internal/models"
)

type NotificationHandler struct {
	db     *gorm.DB
	unread *cache.Unread
}

func NewNotificationHandler(db *gorm.DB, unread *cache.Unread) *NotificationHandler {
	return &NotificationHandler{db: db, unread: unread}
}

func toNotificationResponse(n models.Notification) gin.H {
	resp := gin.H{
		"id":         n.ID,
		"user_id":    n.UserID,
		"type":       n.Type,
		"title":      n.Title,
		"message":    n.Message,
		"is_read":    n.IsRead,
		"post_id":    n.PostID,
		"comment_id": n.CommentID,
		"actor_id":   n.ActorID,
		"created_at": n.CreatedAt,
	}
	if n.Actor != nil {
		resp["actor"] = gin.H{
			"id":        n.Actor.ID,
			"username":  n.Actor.Username,
			"full_name": n.Actor.FullName,
			"avatar":    n.Actor.Avatar,
		}
	}
	if n.Post != nil {
		resp["post"] = gin.H{
			"id":    n.Post.ID,
			"title": n.Post.Title,
		}
	}
	return resp
}

// unreadCount reads the cached counter, falling back to the database and
// backfilling the cache on a miss.
func (h *NotificationHandler) unreadCount(c *gin.Context, userID int) (int64, error) {
	if count, ok := h.unread.Get(c.Request.Context(), userID); ok {
		return count, nil
	}

	var count int64
	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	h.unread.Set(c.Request.Context(), userID, count)
	return count, nil
}

// List returns the user's notifications newest-first with pagination
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	page, limit := parsePage(c, 20)

	var notifications []models.Notification
	if err := h.db.Where("user_id = ?", userID).
		Preload("Actor").Preload("Post").
		Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch notifications"})
		return
	}

	count, err := h.unreadCount(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch notifications"})
		return
	}

	responses := make([]gin.H, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, toNotificationResponse(n))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"notifications": responses,
			"unreadCount":   count,
			"page":          page,
			"limit":         limit,
			"hasMore":       len(notifications) == limit,
		},
	})
}

// UnreadCount returns the number of unread notifications for the user
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	count, err := h.unreadCount(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch unread count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"unreadCount": count},
	})
}

// MarkRead marks one notification as read. Ownership is part of the update
// predicate so a notification belonging to someone else is simply not found.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Notification not found"})
		return
	}

	result := h.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to mark notification as read"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Notification not found"})
		return
	}

	h.unread.Invalidate(c.Request.Context(), userID)

	var notification models.Notification
	if err := h.db.Preload("Actor").Preload("Post").First(&notification, notificationID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to mark notification as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification marked as read",
		"data":    gin.H{"notification": toNotificationResponse(notification)},
	})
}

// MarkAllRead marks every unread notification of the user as read.
// Idempotent: nothing unread means zero updated, not an error.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	result := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to mark all notifications as read"})
		return
	}

	h.unread.Invalidate(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked as read",
		"data":    gin.H{"updatedCount": result.RowsAffected},
	})
}
