package models

import "time"

type Post struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"not null" json:"title"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Tags       string `gorm:"type:text" json:"-"` // JSON-encoded string array
	AuthorID   int    `gorm:"index" json:"author_id"`
	// Author fields are denormalized; no FK back to users, so a post
	// outlives its author's account.
	AuthorName string `json:"author_name"`
	AuthorRole Role   `gorm:"type:varchar(16)" json:"author_role"`

	// Cached projection of the post's vote ledger. Mutated only inside the
	// same transaction as the ledger row it reflects.
	VoteCount int `gorm:"default:0" json:"votes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}
