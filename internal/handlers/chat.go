package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/forum/backend/internal/models"
)

type ChatHandler struct {
	db *gorm.DB
}

func NewChatHandler(db *gorm.DB) *ChatHandler {
	return &ChatHandler{db: db}
}

func (h *ChatHandler) toChatResponse(m models.ChatMessage) gin.H {
	return gin.H{
		"id":          m.ID,
		"content":     m.Content,
		"author_id":   m.AuthorID,
		"author_name": m.AuthorName,
		"author_role": m.AuthorRole,
		"author": gin.H{
			"id":        m.User.ID,
			"full_name": m.User.FullName,
			"role":      m.User.Role,
			"avatar":    m.User.Avatar,
		},
		"created_at": m.CreatedAt,
	}
}

// GetMessages returns a page of the global chat. Clients poll this; the page
// is fetched newest-first then reversed so it renders in chat order.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	page, limit := parsePage(c, 50)

	var total int64
	h.db.Model(&models.ChatMessage{}).Count(&total)

	var messages []models.ChatMessage
	if err := h.db.Preload("User").
		Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch chat messages"})
		return
	}

	// Reverse to show oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	responses := make([]gin.H, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, h.toChatResponse(m))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
		"total":   total,
		"page":    page,
		"limit":   limit,
		"hasMore": total > int64(page*limit),
	})
}

// SendMessage posts a message to the global chat
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var input models.SendChatMessageRequest
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Message content is required"})
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	message := models.ChatMessage{
		Content:    strings.TrimSpace(input.Content),
		AuthorID:   authorID,
		AuthorName: currentName(c),
		AuthorRole: currentRole(c),
	}

	if err := h.db.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send message"})
		return
	}

	h.db.Preload("User").First(&message, message.ID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    h.toChatResponse(message),
		"message": "Message sent successfully",
	})
}
