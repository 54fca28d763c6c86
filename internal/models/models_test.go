package models_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tasklane/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Project{},
		&models.IssueAttachment{},
		&models.Notification{},
		&models.UserNotificationPreference{},
		&models.EmailNotificationLog{},
	))
	return db
}

type fixture struct {
	alice     models.User
	bob       models.User
	workspace models.Workspace
	project   models.Project
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		alice: models.User{Email: "alice@example.com", DisplayName: "Alice", Role: models.RoleAdmin, IsActive: true},
		bob:   models.User{Email: "bob@example.com", DisplayName: "Bob", Role: models.RoleMember, IsActive: true},
	}
	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)

	f.workspace = models.Workspace{Name: "Acme", Slug: "acme", OwnerID: f.alice.ID}
	require.NoError(t, db.Create(&f.workspace).Error)

	f.project = models.Project{WorkspaceID: f.workspace.ID, Name: "Website", Identifier: "WEB"}
	require.NoError(t, db.Create(&f.project).Error)
	return f
}

func TestBase_BeforeCreateAssignsUUID(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	assert.Len(t, f.alice.ID, 36)
	assert.NotEqual(t, f.alice.ID, f.bob.ID)
	assert.False(t, f.alice.CreatedAt.IsZero())

	fixed := models.User{Base: models.Base{ID: "11111111-1111-1111-1111-111111111111"}, Email: "fixed@example.com", Role: models.RoleMember}
	require.NoError(t, db.Create(&fixed).Error)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", fixed.ID)
}

func TestUser_Password(t *testing.T) {
	u := models.User{Email: "carol@example.com"}
	require.NoError(t, u.SetPassword("s3cret-pass"))
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestNotification_Defaults(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	n := models.Notification{
		WorkspaceID: f.workspace.ID,
		EntityName:  "issue",
		Title:       "Bob commented on WEB-1",
		Sender:      "in_app:issue_activities:commented",
		ReceiverID:  f.alice.ID,
	}
	require.NoError(t, db.Create(&n).Error)
	assert.Empty(t, n.MessageHTML)

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", n.ID).Error)
	assert.Nil(t, stored.ProjectID)
	assert.Nil(t, stored.Data)
	assert.Nil(t, stored.ReadAt)
	assert.Nil(t, stored.TriggeredByID)
	assert.Empty(t, stored.MessageHTML)
}

func TestNotification_JSONPayloads(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	n := models.Notification{
		WorkspaceID: f.workspace.ID,
		ProjectID:   &f.project.ID,
		EntityName:  "issue",
		Title:       "State changed",
		Sender:      "in_app:issue_activities:state",
		ReceiverID:  f.alice.ID,
		Data: datatypes.JSONMap{
			"issue":          map[string]interface{}{"sequence_id": float64(1), "name": "Fix login"},
			"issue_activity": map[string]interface{}{"field": "state", "new_value": "Done"},
		},
		Message: datatypes.JSON(`{"type":"doc","content":[]}`),
	}
	require.NoError(t, db.Create(&n).Error)

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", n.ID).Error)
	activity, ok := stored.Data["issue_activity"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Done", activity["new_value"])
	assert.JSONEq(t, `{"type":"doc","content":[]}`, string(stored.Message))
}

func TestNotification_StateHelpers(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	n := models.Notification{}
	assert.False(t, n.IsRead())
	assert.False(t, n.IsArchived())
	assert.False(t, n.IsSnoozed(now))

	n.ReadAt = &now
	n.ArchivedAt = &now
	n.SnoozedTill = &past
	assert.True(t, n.IsRead())
	assert.True(t, n.IsArchived())
	assert.False(t, n.IsSnoozed(now))

	n.SnoozedTill = &future
	assert.True(t, n.IsSnoozed(now))
}

func TestNotification_String(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	n := models.Notification{WorkspaceID: f.workspace.ID, EntityName: "issue", Title: "t", Sender: "s", ReceiverID: f.bob.ID}
	require.NoError(t, db.Create(&n).Error)

	var loaded models.Notification
	require.NoError(t, db.Preload("Receiver").Preload("Workspace").First(&loaded, "id = ?", n.ID).Error)
	assert.Equal(t, "bob@example.com <Acme>", loaded.String())
}

func TestUserNotificationPreference_ExplicitFalseSurvivesInsert(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	pref := models.NewUserNotificationPreference(f.alice.ID)
	pref.Comment = false
	require.NoError(t, db.Create(&pref).Error)

	var stored models.UserNotificationPreference
	require.NoError(t, db.First(&stored, "id = ?", pref.ID).Error)
	assert.False(t, stored.Comment)
	assert.True(t, stored.PropertyChange)
	assert.True(t, stored.StateChange)
	assert.True(t, stored.Mention)
	assert.True(t, stored.IssueCompleted)
}

func TestUserNotificationPreference_Allows(t *testing.T) {
	pref := models.NewUserNotificationPreference("u")
	pref.Mention = false

	assert.True(t, pref.Allows(models.KindComment))
	assert.False(t, pref.Allows(models.KindMention))
	assert.True(t, pref.Allows(models.NotificationKind("unknown")))
	assert.True(t, models.KindIssueCompleted.Valid())
	assert.False(t, models.NotificationKind("unknown").Valid())
}

func TestStringers(t *testing.T) {
	u := models.User{Email: "dave@example.com"}
	pref := models.UserNotificationPreference{UserID: "u-1", User: &u}
	assert.Equal(t, "<dave@example.com>", pref.String())
	assert.Equal(t, "<u-1>", models.UserNotificationPreference{UserID: "u-1"}.String())

	log := models.EmailNotificationLog{ReceiverID: "u-2", Receiver: &u}
	assert.Equal(t, "<receiver=dave@example.com>", log.String())
	assert.Equal(t, "<receiver=u-2>", models.EmailNotificationLog{ReceiverID: "u-2"}.String())
}

func TestCascade_DeleteWorkspace(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	require.NoError(t, db.Create(&models.Notification{
		WorkspaceID: f.workspace.ID, ProjectID: &f.project.ID, EntityName: "issue", Title: "t", Sender: "s", ReceiverID: f.bob.ID,
	}).Error)
	scoped := models.NewUserNotificationPreference(f.bob.ID)
	scoped.WorkspaceID = &f.workspace.ID
	require.NoError(t, db.Create(&scoped).Error)
	require.NoError(t, db.Create(&models.IssueAttachment{WorkspaceID: f.workspace.ID, ProjectID: f.project.ID, Asset: "a/b.png"}).Error)

	require.NoError(t, db.Delete(&models.Workspace{}, "id = ?", f.workspace.ID).Error)

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.UserNotificationPreference{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Project{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.IssueAttachment{}).Count(&count)
	assert.Zero(t, count)
}

func TestCascade_DeleteUser(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db)

	// bob triggers a notification for alice, alice triggers one for bob
	toAlice := models.Notification{WorkspaceID: f.workspace.ID, EntityName: "issue", Title: "t1", Sender: "s", TriggeredByID: &f.bob.ID, ReceiverID: f.alice.ID}
	toBob := models.Notification{WorkspaceID: f.workspace.ID, EntityName: "issue", Title: "t2", Sender: "s", TriggeredByID: &f.alice.ID, ReceiverID: f.bob.ID}
	require.NoError(t, db.Create(&toAlice).Error)
	require.NoError(t, db.Create(&toBob).Error)
	require.NoError(t, db.Create(&models.EmailNotificationLog{ReceiverID: f.alice.ID, TriggeredByID: f.bob.ID, EntityName: "issue"}).Error)
	pref := models.NewUserNotificationPreference(f.bob.ID)
	require.NoError(t, db.Create(&pref).Error)

	require.NoError(t, db.Delete(&models.User{}, "id = ?", f.bob.ID).Error)

	var survivor models.Notification
	require.NoError(t, db.First(&survivor, "id = ?", toAlice.ID).Error)
	assert.Nil(t, survivor.TriggeredByID)

	var count int64
	db.Model(&models.Notification{}).Where("id = ?", toBob.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.EmailNotificationLog{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.UserNotificationPreference{}).Count(&count)
	assert.Zero(t, count)
}
