package models

import "time"

// ChatMessage is a message in the single global chat room.
type ChatMessage struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	Content    string `gorm:"type:text;not null" json:"content"`
	AuthorID   int    `gorm:"index" json:"author_id"`
	AuthorName string `json:"author_name"`
	AuthorRole Role   `gorm:"type:varchar(16)" json:"author_role"`
	User       User   `gorm:"foreignKey:AuthorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type SendChatMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
