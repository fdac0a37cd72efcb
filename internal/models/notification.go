package models

import "time"

type NotificationType string

const (
	NotificationCommentOnPost  NotificationType = "COMMENT_ON_POST"
	NotificationReplyToComment NotificationType = "REPLY_TO_COMMENT"
	NotificationPostUpvoted    NotificationType = "POST_UPVOTED"
	NotificationPasswordReset  NotificationType = "PASSWORD_RESET"
)

// Notification is created by the fanout path and mutated only by its
// recipient (marking read).
type Notification struct {
	ID      int              `gorm:"primaryKey" json:"id"`
	UserID  int              `gorm:"not null;index" json:"user_id"` // recipient
	Type    NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title   string           `gorm:"not null" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	IsRead  bool             `gorm:"default:false;index" json:"is_read"`

	PostID    *int  `json:"post_id,omitempty"`
	CommentID *int  `json:"comment_id,omitempty"`
	ActorID   *int  `json:"actor_id,omitempty"`
	Actor     *User `gorm:"foreignKey:ActorID" json:"-"`
	Post      *Post `gorm:"foreignKey:PostID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
