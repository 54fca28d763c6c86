package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tasklane/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Project{},
		&models.Notification{},
		&models.UserNotificationPreference{},
		&models.EmailNotificationLog{},
	))
	return db
}

type world struct {
	alice     models.User
	bob       models.User
	carol     models.User
	workspace models.Workspace
	other     models.Workspace
	project   models.Project
}

func seedWorld(t *testing.T, db *gorm.DB) world {
	t.Helper()
	w := world{
		alice: models.User{Email: "alice@example.com", DisplayName: "Alice", Role: models.RoleAdmin, IsActive: true},
		bob:   models.User{Email: "bob@example.com", DisplayName: "Bob", Role: models.RoleMember, IsActive: true},
		carol: models.User{Email: "carol@example.com", Role: models.RoleMember, IsActive: true},
	}
	require.NoError(t, db.Create(&w.alice).Error)
	require.NoError(t, db.Create(&w.bob).Error)
	require.NoError(t, db.Create(&w.carol).Error)

	w.workspace = models.Workspace{Name: "Acme", Slug: "acme", OwnerID: w.alice.ID}
	w.other = models.Workspace{Name: "Globex", Slug: "globex", OwnerID: w.alice.ID}
	require.NoError(t, db.Create(&w.workspace).Error)
	require.NoError(t, db.Create(&w.other).Error)

	w.project = models.Project{WorkspaceID: w.workspace.ID, Name: "Website", Identifier: "WEB"}
	require.NoError(t, db.Create(&w.project).Error)
	return w
}

func newNotification(workspaceID, receiverID, title string) *models.Notification {
	return &models.Notification{
		WorkspaceID: workspaceID,
		EntityName:  "issue",
		Title:       title,
		Sender:      "in_app:issue_activities",
		ReceiverID:  receiverID,
	}
}

func boolPtr(b bool) *bool { return &b }
