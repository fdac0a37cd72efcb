// Package notify derives and persists notifications from forum actions.
//
// Fanout is a best-effort side channel: the triggering action (comment,
// vote, password reset) has already committed by the time a notifier method
// runs, and nothing here may fail it. Every method either returns the
// created row, or (nil, nil) when the event legitimately warrants no
// notification, or an error that the async dispatcher logs and drops.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/campushub/forum/backend/internal/cache"
	"github.com/campushub/forum/backend/internal/models"
)

type Notifier struct {
	db     *gorm.DB
	unread *cache.Unread
	sms    *SMSSender
}

func New(db *gorm.DB, unread *cache.Unread, sms *SMSSender) *Notifier {
	return &Notifier{db: db, unread: unread, sms: sms}
}

// Async runs fn on its own goroutine. Errors and panics are logged and
// swallowed; the caller's response never waits on or observes them.
func (n *Notifier) Async(fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("notification fanout panic: %v", r)
			}
		}()
		if err := fn(); err != nil {
			log.Printf("notification dropped: %v", err)
		}
	}()
}

func (n *Notifier) create(notification *models.Notification) (*models.Notification, error) {
	if err := n.db.Create(notification).Error; err != nil {
		return nil, err
	}
	n.unread.Invalidate(context.Background(), notification.UserID)
	return notification, nil
}

// PostCommented notifies a post's author that someone commented on it.
// Returns (nil, nil) when the commenter is the author or either side is gone.
func (n *Notifier) PostCommented(postID, commentAuthorID, commentID int) (*models.Notification, error) {
	var post models.Post
	if err := n.db.Select("id", "title", "author_id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if post.AuthorID == commentAuthorID {
		return nil, nil
	}

	var actor models.User
	if err := n.db.Select("id", "full_name").First(&actor, commentAuthorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return n.create(&models.Notification{
		UserID:    post.AuthorID,
		Type:      models.NotificationCommentOnPost,
		Title:     "New comment on your post",
		Message:   fmt.Sprintf("%s commented on \"%s\"", actor.FullName, post.Title),
		PostID:    &post.ID,
		CommentID: &commentID,
		ActorID:   &actor.ID,
	})
}

// CommentReplied notifies a comment's author that someone replied to it.
func (n *Notifier) CommentReplied(parentCommentID, replyAuthorID, replyID int) (*models.Notification, error) {
	var parent models.Comment
	if err := n.db.Select("id", "author_id", "post_id").First(&parent, parentCommentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if parent.AuthorID == replyAuthorID {
		return nil, nil
	}

	var post models.Post
	if err := n.db.Select("id", "title").First(&post, parent.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var actor models.User
	if err := n.db.Select("id", "full_name").First(&actor, replyAuthorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return n.create(&models.Notification{
		UserID:    parent.AuthorID,
		Type:      models.NotificationReplyToComment,
		Title:     "New reply to your comment",
		Message:   fmt.Sprintf("%s replied to your comment on \"%s\"", actor.FullName, post.Title),
		PostID:    &post.ID,
		CommentID: &replyID,
		ActorID:   &actor.ID,
	})
}

// PostUpvoted notifies a post's author about a brand-new upvote. The caller
// is responsible for only invoking this when a vote row was created, never
// for updates or removals.
func (n *Notifier) PostUpvoted(postID, voterID int) (*models.Notification, error) {
	var post models.Post
	if err := n.db.Select("id", "title", "author_id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if post.AuthorID == voterID {
		return nil, nil
	}

	var actor models.User
	if err := n.db.Select("id", "full_name").First(&actor, voterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return n.create(&models.Notification{
		UserID:  post.AuthorID,
		Type:    models.NotificationPostUpvoted,
		Title:   "Your post was upvoted",
		Message: fmt.Sprintf("%s upvoted \"%s\"", actor.FullName, post.Title),
		PostID:  &post.ID,
		ActorID: &actor.ID,
	})
}

// PasswordReset notifies a user that an administrator reset their password.
// Never suppressed, even for self-resets. When twilio is configured and the
// user has a phone number an SMS notice goes out too, same best-effort rules.
func (n *Notifier) PasswordReset(userID int) (*models.Notification, error) {
	var user models.User
	if err := n.db.Select("id", "phone").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	notification, err := n.create(&models.Notification{
		UserID:  userID,
		Type:    models.NotificationPasswordReset,
		Title:   "Your password was reset",
		Message: "An administrator has reset your password. Please log in with your new password.",
	})
	if err != nil {
		return nil, err
	}

	if user.Phone != "" {
		if err := n.sms.Send(user.Phone, "Your forum password was reset by an administrator."); err != nil {
			log.Printf("password reset SMS dropped: %v", err)
		}
	}
	return notification, nil
}
