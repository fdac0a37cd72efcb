package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/forum/backend/internal/models"
	"github.com/campushub/forum/backend/internal/notify"
	"github.com/campushub/forum/backend/internal/votes"
)

type CommentHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

func NewCommentHandler(db *gorm.DB, notifier *notify.Notifier) *CommentHandler {
	return &CommentHandler{db: db, notifier: notifier}
}

// commentVoters returns the user IDs that up/downvoted a comment.
func (h *CommentHandler) commentVoters(commentID int) ([]int, []int) {
	var up, down []int
	h.db.Model(&models.CommentVote{}).Where("comment_id = ? AND value = ?", commentID, models.VoteUp).Pluck("user_id", &up)
	h.db.Model(&models.CommentVote{}).Where("comment_id = ? AND value = ?", commentID, models.VoteDown).Pluck("user_id", &down)
	if up == nil {
		up = []int{}
	}
	if down == nil {
		down = []int{}
	}
	return up, down
}

func (h *CommentHandler) toCommentResponse(comment models.Comment) gin.H {
	up, down := h.commentVoters(comment.ID)

	return gin.H{
		"id":                comment.ID,
		"content":           comment.Content,
		"post_id":           comment.PostID,
		"parent_comment_id": comment.ParentCommentID,
		"author_id":         comment.AuthorID,
		"author_name":       comment.AuthorName,
		"author_role":       comment.AuthorRole,
		"votes":             comment.VoteCount,
		"upvoted_by":        up,
		"downvoted_by":      down,
		"created_at":        comment.CreatedAt,
		"updated_at":        comment.UpdatedAt,
	}
}

// GetComments returns all comments for a post, oldest first
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
		return
	}

	var comments []models.Comment
	if err := h.db.Where("post_id = ?", post.ID).Order("created_at asc").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch comments"})
		return
	}

	responses := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, h.toCommentResponse(comment))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
		"total":   len(responses),
	})
}

// CreateComment creates a comment (or a threaded reply) on a post
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Content is required"})
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
		return
	}

	// A reply's parent must exist and belong to the same post.
	if input.ParentCommentID != nil {
		var parent models.Comment
		if err := h.db.First(&parent, *input.ParentCommentID).Error; err != nil || parent.PostID != post.ID {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid parent comment"})
			return
		}
	}

	comment := models.Comment{
		Content:         input.Content,
		PostID:          post.ID,
		ParentCommentID: input.ParentCommentID,
		AuthorID:        authorID,
		AuthorName:      currentName(c),
		AuthorRole:      currentRole(c),
	}

	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create comment"})
		return
	}

	// Fanout after the comment is committed; its failure never reaches
	// the commenter.
	commentID := comment.ID
	if input.ParentCommentID != nil {
		parentID := *input.ParentCommentID
		h.notifier.Async(func() error {
			_, err := h.notifier.CommentReplied(parentID, authorID, commentID)
			return err
		})
	} else {
		postID := post.ID
		h.notifier.Async(func() error {
			_, err := h.notifier.PostCommented(postID, authorID, commentID)
			return err
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    h.toCommentResponse(comment),
		"message": "Comment created successfully",
	})
}

// VoteComment handles upvoting/downvoting/removing a vote on a comment
func (h *CommentHandler) VoteComment(c *gin.Context) {
	voterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	commentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Comment not found"})
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Vote type must be upvote, downvote or remove"})
		return
	}

	result, err := votes.CastCommentVote(h.db, commentID, voterID, votes.Kind(input.Type))
	if err != nil {
		switch {
		case errors.Is(err, votes.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Comment not found"})
		case errors.Is(err, votes.ErrInvalidKind):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Vote type must be upvote, downvote or remove"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "votes": result.VoteCount})
}
