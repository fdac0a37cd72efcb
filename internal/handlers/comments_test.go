package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/forum/backend/internal/models"
	"github.com/campushub/forum/backend/internal/testdb"
)

func TestCreateComment(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	author := testdb.CreateUser(t, db, "thread_author", models.RoleStudent)
	commenter := testdb.CreateUser(t, db, "thread_commenter", models.RoleStudent)
	post := testdb.CreatePost(t, db, author, "Study group for finals?")

	w, parsed := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		map[string]any{"content": "Count me in"}, commenter.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	data := dataObject(t, parsed)
	assert.Equal(t, "Count me in", data["content"])
	assert.Equal(t, commenter.FullName, data["author_name"])
	assert.Nil(t, data["parent_comment_id"])

	waitForNotifications(t, db, author.ID, models.NotificationCommentOnPost, 1)
}

func TestCreateReply(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	author := testdb.CreateUser(t, db, "reply_op", models.RoleStudent)
	commenter := testdb.CreateUser(t, db, "reply_parent", models.RoleStudent)
	replier := testdb.CreateUser(t, db, "reply_child", models.RoleTeacher)
	post := testdb.CreatePost(t, db, author, "Who took CS301 last year?")
	parent := testdb.CreateComment(t, db, commenter, post, nil)

	w, parsed := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		map[string]any{"content": "I did, happy to share notes", "parent_comment_id": parent.ID}, replier.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	data := dataObject(t, parsed)
	assert.EqualValues(t, parent.ID, data["parent_comment_id"])

	// The reply notifies the parent comment's author, not the post's.
	waitForNotifications(t, db, commenter.ID, models.NotificationReplyToComment, 1)
	assert.EqualValues(t, 0, notificationCount(db, author.ID, models.NotificationReplyToComment))
}

func TestCreateComment_InvalidParent(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	author := testdb.CreateUser(t, db, "cross_author", models.RoleStudent)
	post := testdb.CreatePost(t, db, author, "Post one")
	otherPost := testdb.CreatePost(t, db, author, "Post two")
	foreignParent := testdb.CreateComment(t, db, author, otherPost, nil)

	// Parent from a different post.
	w, _ := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		map[string]any{"content": "reply", "parent_comment_id": foreignParent.ID}, author.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Parent that does not exist at all.
	w, _ = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		map[string]any{"content": "reply", "parent_comment_id": 999999}, author.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetComments(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	author := testdb.CreateUser(t, db, "list_author", models.RoleStudent)
	post := testdb.CreatePost(t, db, author, "Comment ordering")
	first := testdb.CreateComment(t, db, author, post, nil)
	testdb.CreateComment(t, db, author, post, &first)

	w, parsed := doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", post.ID), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, parsed["total"])

	w, _ = doRequest(t, r, http.MethodGet, "/api/posts/999999/comments", nil, 0)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoteComment(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	author := testdb.CreateUser(t, db, "cv_author", models.RoleStudent)
	voter := testdb.CreateUser(t, db, "cv_voter", models.RoleStudent)
	post := testdb.CreatePost(t, db, author, "Helpful answer below")
	comment := testdb.CreateComment(t, db, author, post, nil)
	votePath := fmt.Sprintf("/api/comments/%d/vote", comment.ID)

	w, parsed := doRequest(t, r, http.MethodPost, votePath, map[string]any{"type": "upvote"}, voter.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, parsed["votes"])

	w, parsed = doRequest(t, r, http.MethodPost, votePath, map[string]any{"type": "remove"}, voter.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, parsed["votes"])

	w, _ = doRequest(t, r, http.MethodPost, "/api/comments/999999/vote", map[string]any{"type": "upvote"}, voter.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
