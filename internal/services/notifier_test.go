package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/models"
)

func newTestNotifier(db *gorm.DB) *Notifier {
	return NewNotifier(db, NewNotificationService(db), NewPreferenceService(db), NewEmailLogService(db))
}

func commentEvent(w world, receivers ...string) Event {
	issue := "4f0c3b1e-8a1d-4b57-9d8e-1c2b3a4d5e6f"
	messageHTML := "<p>Looks good</p>"
	return Event{
		WorkspaceID:      w.workspace.ID,
		ProjectID:        &w.project.ID,
		Kind:             models.KindComment,
		EntityIdentifier: &issue,
		EntityName:       "issue",
		Title:            "Alice commented on WEB-12",
		MessageHTML:      &messageHTML,
		TriggeredByID:    w.alice.ID,
		ReceiverIDs:      receivers,
		Data:             datatypes.JSONMap{"issue": map[string]interface{}{"sequence_id": 12}},
	}
}

func TestNotifier_Notify(t *testing.T) {
	db := setupTestDB(t)
	w := seedWorld(t, db)
	n := newTestNotifier(db)

	res, err := n.Notify(context.Background(), commentEvent(w, w.alice.ID, w.bob.ID, w.carol.ID, w.bob.ID, ""))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Notifications)
	assert.Equal(t, 2, res.Emails)

	var notifications []models.Notification
	require.NoError(t, db.Order("receiver_id").Find(&notifications).Error)
	require.Len(t, notifications, 2)
	for _, got := range notifications {
		assert.NotEqual(t, w.alice.ID, got.ReceiverID)
		assert.Equal(t, "in_app:comment", got.Sender)
		assert.Equal(t, "<p>Looks good</p>", got.MessageHTML)
		require.NotNil(t, got.TriggeredByID)
		assert.Equal(t, w.alice.ID, *got.TriggeredByID)
	}

	var logs []models.EmailNotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, "comment", logs[0].Data["kind"])
	assert.Equal(t, "Alice commented on WEB-12", logs[0].Data["title"])
	assert.Equal(t, "<p>Looks good</p>", logs[0].Data["message_html"])
	assert.Contains(t, logs[0].Data, "issue")
}

func TestNotifier_RespectsPreferences(t *testing.T) {
	db := setupTestDB(t)
	w := seedWorld(t, db)
	n := newTestNotifier(db)

	_, err := NewPreferenceService(db).SetScoped(w.bob.ID, w.workspace.ID, nil, PreferencePatch{Comment: boolPtr(false)})
	require.NoError(t, err)

	res, err := n.Notify(context.Background(), commentEvent(w, w.bob.ID, w.carol.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Notifications, "in-app notifications ignore email preferences")
	assert.Equal(t, 1, res.Emails)

	var logs []models.EmailNotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, w.carol.ID, logs[0].ReceiverID)
}

func TestNotifier_RollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	w := seedWorld(t, db)
	n := newTestNotifier(db)

	_, err := n.Notify(context.Background(), commentEvent(w, w.bob.ID, "no-such-user"))
	require.Error(t, err)

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.EmailNotificationLog{}).Count(&count)
	assert.Zero(t, count)
}

func TestNotifier_UnknownKind(t *testing.T) {
	db := setupTestDB(t)
	w := seedWorld(t, db)
	n := newTestNotifier(db)

	ev := commentEvent(w, w.bob.ID)
	ev.Kind = "reaction"
	_, err := n.Notify(context.Background(), ev)
	assert.Error(t, err)
}

func TestEvent_Validate(t *testing.T) {
	ev := Event{Kind: models.KindMention}
	assert.ErrorIs(t, ev.Validate(), errNoReceivers)

	ev.ReceiverIDs = []string{"u1"}
	assert.NoError(t, ev.Validate())

	ev.Kind = "bogus"
	assert.Error(t, ev.Validate())
}

func TestNotifier_MessageHTMLDefault(t *testing.T) {
	db := setupTestDB(t)
	w := seedWorld(t, db)
	n := newTestNotifier(db)

	ev := commentEvent(w, w.bob.ID)
	ev.MessageHTML = nil
	_, err := n.Notify(context.Background(), ev)
	require.NoError(t, err)

	empty := ""
	ev = commentEvent(w, w.carol.ID)
	ev.MessageHTML = &empty
	_, err = n.Notify(context.Background(), ev)
	require.NoError(t, err)

	var bob, carol models.Notification
	require.NoError(t, db.First(&bob, "receiver_id = ?", w.bob.ID).Error)
	require.NoError(t, db.First(&carol, "receiver_id = ?", w.carol.ID).Error)
	assert.Equal(t, models.DefaultMessageHTML, bob.MessageHTML)
	assert.Empty(t, carol.MessageHTML)

	var logs []models.EmailNotificationLog
	require.NoError(t, db.Find(&logs).Error)
	for _, l := range logs {
		assert.NotContains(t, l.Data, "message_html")
	}
}
