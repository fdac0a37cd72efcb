// Package votes owns the vote ledger and the denormalized vote counters.
//
// Every mutation runs as one transaction: the ledger row (insert, update or
// delete) and the counter adjustment commit together or not at all. The
// counter only ever moves by a relative SQL increment, so two users voting
// on the same target concurrently cannot lose an update.
package votes

import (
	"errors"

	"gorm.io/gorm"

	"github.com/campushub/forum/backend/internal/models"
)

var (
	// ErrNotFound means the vote target does not exist.
	ErrNotFound = errors.New("vote target not found")
	// ErrInvalidKind means the vote intent string is not one of upvote/downvote/remove.
	ErrInvalidKind = errors.New("invalid vote type")
)

// Kind is a vote intent from the client.
type Kind string

const (
	Upvote   Kind = "upvote"
	Downvote Kind = "downvote"
	Remove   Kind = "remove"
)

func (k Kind) value() int {
	if k == Downvote {
		return models.VoteDown
	}
	return models.VoteUp
}

// Result reports the outcome of a vote mutation.
type Result struct {
	// VoteCount is the target's counter after the transaction committed.
	VoteCount int
	// Created is true only when a brand-new vote row was inserted, as
	// opposed to an update, a removal or a no-op. Notification fanout
	// keys off this.
	Created bool
}

// delta returns the signed counter adjustment for moving a voter's ledger
// state from prev (0 when absent) to next (0 when removing).
func delta(prev, next int) int {
	return next - prev
}

// CastPostVote applies a vote intent to a post and returns the new counter.
func CastPostVote(db *gorm.DB, postID, userID int, kind Kind) (Result, error) {
	if kind != Upvote && kind != Downvote && kind != Remove {
		return Result{}, ErrInvalidKind
	}

	var res Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing models.PostVote
		found := true
		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
		}

		var d int
		switch {
		case kind == Remove && !found:
			// Removing a vote that was never cast is a no-op.
			d = 0
		case kind == Remove:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			d = delta(existing.Value, 0)
		case !found:
			vote := models.PostVote{UserID: userID, PostID: postID, Value: kind.value()}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			d = delta(0, vote.Value)
			res.Created = true
		case existing.Value == kind.value():
			// Re-submitting the identical vote is a no-op; the counter
			// must not move twice for one opinion.
			d = 0
		default:
			d = delta(existing.Value, kind.value())
			if err := tx.Model(&existing).Update("value", kind.value()).Error; err != nil {
				return err
			}
		}

		if d != 0 {
			if err := tx.Model(&models.Post{}).
				Where("id = ?", postID).
				UpdateColumn("vote_count", gorm.Expr("vote_count + ?", d)).Error; err != nil {
				return err
			}
		}

		var count int
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			Select("vote_count").Scan(&count).Error; err != nil {
			return err
		}
		res.VoteCount = count
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// CastCommentVote applies a vote intent to a comment and returns the new counter.
func CastCommentVote(db *gorm.DB, commentID, userID int, kind Kind) (Result, error) {
	if kind != Upvote && kind != Downvote && kind != Remove {
		return Result{}, ErrInvalidKind
	}

	var res Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id").First(&comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing models.CommentVote
		found := true
		if err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&existing).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
		}

		var d int
		switch {
		case kind == Remove && !found:
			d = 0
		case kind == Remove:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			d = delta(existing.Value, 0)
		case !found:
			vote := models.CommentVote{UserID: userID, CommentID: commentID, Value: kind.value()}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			d = delta(0, vote.Value)
			res.Created = true
		case existing.Value == kind.value():
			d = 0
		default:
			d = delta(existing.Value, kind.value())
			if err := tx.Model(&existing).Update("value", kind.value()).Error; err != nil {
				return err
			}
		}

		if d != 0 {
			if err := tx.Model(&models.Comment{}).
				Where("id = ?", commentID).
				UpdateColumn("vote_count", gorm.Expr("vote_count + ?", d)).Error; err != nil {
				return err
			}
		}

		var count int
		if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
			Select("vote_count").Scan(&count).Error; err != nil {
			return err
		}
		res.VoteCount = count
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
