package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/forum/backend/internal/models"
	"github.com/campushub/forum/backend/internal/notify"
	"github.com/campushub/forum/backend/internal/votes"
)

type PostHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

func NewPostHandler(db *gorm.DB, notifier *notify.Notifier) *PostHandler {
	return &PostHandler{db: db, notifier: notifier}
}

func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// postVoters returns the user IDs that up/downvoted a post.
func (h *PostHandler) postVoters(postID int) ([]int, []int) {
	var up, down []int
	h.db.Model(&models.PostVote{}).Where("post_id = ? AND value = ?", postID, models.VoteUp).Pluck("user_id", &up)
	h.db.Model(&models.PostVote{}).Where("post_id = ? AND value = ?", postID, models.VoteDown).Pluck("user_id", &down)
	if up == nil {
		up = []int{}
	}
	if down == nil {
		down = []int{}
	}
	return up, down
}

func (h *PostHandler) toPostResponse(post models.Post) gin.H {
	up, down := h.postVoters(post.ID)

	var commentCount int64
	h.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)

	return gin.H{
		"id":            post.ID,
		"title":         post.Title,
		"content":       post.Content,
		"tags":          decodeTags(post.Tags),
		"author_id":     post.AuthorID,
		"author_name":   post.AuthorName,
		"author_role":   post.AuthorRole,
		"votes":         post.VoteCount,
		"upvoted_by":    up,
		"downvoted_by":  down,
		"comment_count": commentCount,
		"created_at":    post.CreatedAt,
		"updated_at":    post.UpdatedAt,
	}
}

func parsePage(c *gin.Context, defaultLimit int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// GetPosts returns posts newest-first with pagination
func (h *PostHandler) GetPosts(c *gin.Context) {
	page, limit := parsePage(c, 10)

	var total int64
	h.db.Model(&models.Post{}).Count(&total)

	var posts []models.Post
	if err := h.db.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch posts"})
		return
	}

	responses := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, h.toPostResponse(post))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// SearchPosts filters posts by keyword, tags and sort order
func (h *PostHandler) SearchPosts(c *gin.Context) {
	keyword := c.Query("keyword")
	tagsParam := c.Query("tags")
	sortBy := c.DefaultQuery("sortBy", "newest")

	query := h.db.Model(&models.Post{})
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	}

	order := "created_at desc"
	if sortBy == "oldest" {
		order = "created_at asc"
	}

	var posts []models.Post
	if err := query.Order(order).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to search posts"})
		return
	}

	// Tags live in a JSON column, so the tag filter runs in memory.
	if tagsParam != "" {
		wanted := strings.Split(tagsParam, ",")
		filtered := posts[:0]
		for _, post := range posts {
			postTags := decodeTags(post.Tags)
			for _, want := range wanted {
				if slicesContains(postTags, want) {
					filtered = append(filtered, post)
					break
				}
			}
		}
		posts = filtered
	}

	if sortBy == "most_votes" {
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].VoteCount > posts[j].VoteCount
		})
	}

	responses := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, h.toPostResponse(post))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
		"total":   len(responses),
	})
}

func slicesContains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	postID := c.Param("id")
	var post models.Post

	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.toPostResponse(post)})
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Title and content are required"})
		return
	}

	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	post := models.Post{
		Title:      input.Title,
		Content:    input.Content,
		Tags:       encodeTags(input.Tags),
		AuthorID:   authorID,
		AuthorName: currentName(c),
		AuthorRole: currentRole(c),
	}

	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    h.toPostResponse(post),
		"message": "Post created successfully",
	})
}

// DeletePost deletes a post and everything hanging off it (ADMIN only,
// enforced by the route's role guard)
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID := c.Param("id")

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Votes on the post and on its comments go first, then comments,
		// then related notifications, then the post itself.
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", post.ID),
		).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted successfully"})
}

// VotePost handles upvoting/downvoting/removing a vote on a post
func (h *PostHandler) VotePost(c *gin.Context) {
	voterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Vote type must be upvote, downvote or remove"})
		return
	}

	kind := votes.Kind(input.Type)
	result, err := votes.CastPostVote(h.db, postID, voterID, kind)
	if err != nil {
		switch {
		case errors.Is(err, votes.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Post not found"})
		case errors.Is(err, votes.ErrInvalidKind):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Vote type must be upvote, downvote or remove"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return
	}

	// Only a brand-new upvote notifies the author; updates and removals
	// stay silent.
	if result.Created && kind == votes.Upvote {
		h.notifier.Async(func() error {
			_, err := h.notifier.PostUpvoted(postID, voterID)
			return err
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "votes": result.VoteCount})
}
