package models

import "time"

// Vote values stored in the ledger tables.
const (
	VoteUp   = 1
	VoteDown = -1
)

// PostVote is the vote ledger for posts: at most one row per (user, post).
type PostVote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:uk_post_vote" json:"user_id"`
	PostID    int       `gorm:"not null;uniqueIndex:uk_post_vote" json:"post_id"`
	Value     int       `gorm:"not null" json:"value"` // VoteUp or VoteDown
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentVote is the vote ledger for comments: at most one row per (user, comment).
type CommentVote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:uk_comment_vote" json:"user_id"`
	CommentID int       `gorm:"not null;uniqueIndex:uk_comment_vote" json:"comment_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteRequest struct {
	Type string `json:"type" binding:"required,oneof=upvote downvote remove"`
}
