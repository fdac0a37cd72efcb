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

// Walks one thread through its lifecycle: post, vote churn, a comment, a
// threaded reply, then the author clearing their inbox.
func TestForumFlow(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	alice := testdb.CreateUser(t, db, "flow_alice", models.RoleStudent)
	bob := testdb.CreateUser(t, db, "flow_bob", models.RoleStudent)
	carol := testdb.CreateUser(t, db, "flow_carol", models.RoleTeacher)

	// Alice posts.
	w, parsed := doRequest(t, r, http.MethodPost, "/api/posts", map[string]any{
		"title":   "Lost my notes from Tuesday",
		"content": "Can anyone share theirs?",
		"tags":    []string{"help"},
	}, alice.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	postID := int(dataObject(t, parsed)["id"].(float64))
	votePath := fmt.Sprintf("/api/posts/%d/vote", postID)

	// Bob upvotes; Alice hears about it once even when Bob repeats himself.
	w, parsed = doRequest(t, r, http.MethodPost, votePath, map[string]any{"type": "upvote"}, bob.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, parsed["votes"])
	waitForNotifications(t, db, alice.ID, models.NotificationPostUpvoted, 1)

	w, parsed = doRequest(t, r, http.MethodPost, votePath, map[string]any{"type": "upvote"}, bob.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, parsed["votes"])

	// Bob changes his mind entirely.
	w, parsed = doRequest(t, r, http.MethodPost, votePath, map[string]any{"type": "remove"}, bob.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, parsed["votes"])

	// Bob comments on the post; Carol replies to Bob.
	w, parsed = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID),
		map[string]any{"content": "I have them, DM me"}, bob.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	commentID := int(dataObject(t, parsed)["id"].(float64))
	waitForNotifications(t, db, alice.ID, models.NotificationCommentOnPost, 1)

	w, _ = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID),
		map[string]any{"content": "Please post them here for everyone", "parent_comment_id": commentID}, carol.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	waitForNotifications(t, db, bob.ID, models.NotificationReplyToComment, 1)

	// Alice's inbox: the upvote and the comment, nothing from the removal.
	w, parsed = doRequest(t, r, http.MethodGet, "/api/notifications", nil, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataObject(t, parsed)
	assert.Len(t, data["notifications"].([]any), 2)
	assert.EqualValues(t, 2, data["unreadCount"])

	w, parsed = doRequest(t, r, http.MethodPut, "/api/notifications/read-all", nil, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, dataObject(t, parsed)["updatedCount"])

	w, parsed = doRequest(t, r, http.MethodGet, "/api/notifications/unread-count", nil, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, dataObject(t, parsed)["unreadCount"])

	// The post page reflects the final state.
	w, parsed = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	data = dataObject(t, parsed)
	assert.EqualValues(t, 0, data["votes"])
	assert.EqualValues(t, 2, data["comment_count"])
	assert.Empty(t, data["upvoted_by"].([]any))
}
