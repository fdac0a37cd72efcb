package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campushub/forum/backend/internal/models"
	"github.com/campushub/forum/backend/internal/testdb"
)

func seedNotifications(t *testing.T, db *gorm.DB, userID, count int) []models.Notification {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	seeded := make([]models.Notification, 0, count)
	for i := 0; i < count; i++ {
		n := models.Notification{
			UserID:    userID,
			Type:      models.NotificationCommentOnPost,
			Title:     "New comment on your post",
			Message:   fmt.Sprintf("event %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&n).Error)
		seeded = append(seeded, n)
	}
	return seeded
}

func TestListNotifications(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	alice := testdb.CreateUser(t, db, "inbox_alice", models.RoleStudent)
	bob := testdb.CreateUser(t, db, "inbox_bob", models.RoleStudent)
	seedNotifications(t, db, alice.ID, 25)

	w, parsed := doRequest(t, r, http.MethodGet, "/api/notifications?page=1&limit=20", nil, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataObject(t, parsed)

	items, ok := data["notifications"].([]any)
	require.True(t, ok)
	require.Len(t, items, 20)

	// Newest first.
	first := items[0].(map[string]any)
	assert.Equal(t, "event 24", first["message"])
	last := items[19].(map[string]any)
	assert.Equal(t, "event 5", last["message"])

	assert.EqualValues(t, 25, data["unreadCount"])
	assert.EqualValues(t, 1, data["page"])
	assert.EqualValues(t, 20, data["limit"])
	assert.Equal(t, true, data["hasMore"])

	// The remainder.
	w, parsed = doRequest(t, r, http.MethodGet, "/api/notifications?page=2&limit=20", nil, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	data = dataObject(t, parsed)
	items = data["notifications"].([]any)
	require.Len(t, items, 5)
	assert.Equal(t, "event 4", items[0].(map[string]any)["message"])
	assert.Equal(t, false, data["hasMore"])

	// Another user's inbox stays empty.
	w, parsed = doRequest(t, r, http.MethodGet, "/api/notifications", nil, bob.ID)
	require.Equal(t, http.StatusOK, w.Code)
	data = dataObject(t, parsed)
	assert.Empty(t, data["notifications"])
	assert.EqualValues(t, 0, data["unreadCount"])
	assert.Equal(t, false, data["hasMore"])
}

func TestListNotifications_RequiresAuth(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	w, _ := doRequest(t, r, http.MethodGet, "/api/notifications", nil, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMarkNotificationRead(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	alice := testdb.CreateUser(t, db, "read_alice", models.RoleStudent)
	seeded := seedNotifications(t, db, alice.ID, 3)
	target := seeded[0]

	w, parsed := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", target.ID), nil, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataObject(t, parsed)
	returned := data["notification"].(map[string]any)
	assert.Equal(t, true, returned["is_read"])

	var reloaded models.Notification
	require.NoError(t, db.First(&reloaded, target.ID).Error)
	assert.True(t, reloaded.IsRead)

	// Marking an already-read notification succeeds again.
	w, _ = doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", target.ID), nil, alice.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	w, parsed = doRequest(t, r, http.MethodGet, "/api/notifications/unread-count", nil, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, dataObject(t, parsed)["unreadCount"])
}

func TestMarkNotificationRead_OwnershipIsolation(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	alice := testdb.CreateUser(t, db, "owner_alice", models.RoleStudent)
	mallory := testdb.CreateUser(t, db, "mallory", models.RoleStudent)
	seeded := seedNotifications(t, db, alice.ID, 1)

	// Someone else's notification reads as not found, not forbidden.
	w, _ := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", seeded[0].ID), nil, mallory.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var reloaded models.Notification
	require.NoError(t, db.First(&reloaded, seeded[0].ID).Error)
	assert.False(t, reloaded.IsRead)
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)
	alice := testdb.CreateUser(t, db, "nf_alice", models.RoleStudent)

	w, _ := doRequest(t, r, http.MethodPut, "/api/notifications/999999/read", nil, alice.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	db := testdb.New(t)
	r := newTestRouter(db)

	alice := testdb.CreateUser(t, db, "all_alice", models.RoleStudent)
	bob := testdb.CreateUser(t, db, "all_bob", models.RoleStudent)
	seedNotifications(t, db, alice.ID, 4)
	seedNotifications(t, db, bob.ID, 2)

	w, parsed := doRequest(t, r, http.MethodPut, "/api/notifications/read-all", nil, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, dataObject(t, parsed)["updatedCount"])

	// Idempotent: nothing left unread, zero updated, still a success.
	w, parsed = doRequest(t, r, http.MethodPut, "/api/notifications/read-all", nil, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, dataObject(t, parsed)["updatedCount"])

	// Bob's inbox is untouched.
	var bobUnread int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", bob.ID, false).Count(&bobUnread).Error)
	assert.EqualValues(t, 2, bobUnread)
}
