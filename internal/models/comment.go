package models

import "time"

type Comment struct {
	ID              int    `gorm:"primaryKey" json:"id"`
	Content         string `gorm:"type:text;not null" json:"content"`
	PostID          int    `gorm:"index" json:"post_id"`
	ParentCommentID *int   `json:"parent_comment_id,omitempty"`
	AuthorID        int    `gorm:"index" json:"author_id"`
	// Denormalized like Post; comments survive author deletion.
	AuthorName      string `json:"author_name"`
	AuthorRole      Role   `gorm:"type:varchar(16)" json:"author_role"`

	// Same contract as Post.VoteCount.
	VoteCount int `gorm:"default:0" json:"votes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID *int   `json:"parent_comment_id,omitempty"`
}
