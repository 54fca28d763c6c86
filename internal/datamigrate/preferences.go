package datamigrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/logger"
	"github.com/tasklane/backend/internal/models"
)

// CreateDefaultPreferences inserts an account-wide preference row, with every
// kind enabled, for each user that has none. It returns the number created.
func CreateDefaultPreferences(ctx context.Context, db *gorm.DB) (int, error) {
	var userIDs []string
	err := db.WithContext(ctx).Model(&models.User{}).
		Where(`NOT EXISTS (SELECT 1 FROM user_notification_preferences p
			WHERE p.user_id = users.id AND p.workspace_id IS NULL AND p.project_id IS NULL)`).
		Order("created_at").
		Pluck("id", &userIDs).Error
	if err != nil {
		return 0, fmt.Errorf("find users without preferences: %w", err)
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	prefs := make([]models.UserNotificationPreference, 0, len(userIDs))
	for _, id := range userIDs {
		prefs = append(prefs, models.NewUserNotificationPreference(id))
	}
	if err := db.WithContext(ctx).CreateInBatches(&prefs, 100).Error; err != nil {
		return 0, fmt.Errorf("create default preferences: %w", err)
	}

	logger.Component("datamigrate").WithField("created", len(prefs)).Info("created default notification preferences")
	return len(prefs), nil
}
